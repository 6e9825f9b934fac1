package main

import (
	"flag"
	"fmt"
	"os"
)

func runDocuments() {
	fs := flag.NewFlagSet("documents", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the document list as JSON")
	del := fs.String("delete", "", "Delete a document (and its chunks and vectors) by id")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	if *del != "" {
		doc := resolveDoc(a, *del)
		if err := a.DeleteDocument(doc.ID); err != nil {
			fatalf("delete failed: %v", err)
		}
		fmt.Printf("Deleted %q (%s)\n", doc.Name, doc.ID)
		return
	}

	docs, err := a.ListDocuments()
	if err != nil {
		fatalf("failed to list documents: %v", err)
	}

	if *asJSON {
		printJSON(docs)
		return
	}

	if len(docs) == 0 {
		fmt.Println("No documents ingested yet. Run 'f1ri sample' or 'f1ri ingest <path>'.")
		return
	}

	fmt.Printf("%-36s %-30s %-7s %-7s %s\n", "ID", "NAME", "SOURCE", "CHUNKS", "SESSION")
	for _, doc := range docs {
		session := "metadata pending"
		if doc.Metadata.EventNameKnown() {
			session = fmt.Sprintf("%d %s (%s)", doc.Metadata.Year, doc.Metadata.EventName, doc.Metadata.Kind)
		}
		fmt.Printf("%-36s %-30s %-7s %-7d %s\n",
			doc.ID, truncate(doc.Name, 30), doc.Source, doc.ChunkCount, session)
	}
}
