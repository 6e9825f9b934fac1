package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runReembed() {
	fs := flag.NewFlagSet("reembed", flag.ExitOnError)
	docFlag := fs.String("doc", "", "Document id or name fragment (default: all documents)")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	ctx := context.Background()

	if *docFlag != "" {
		doc := resolveDoc(a, *docFlag)
		n, err := a.ReembedDocument(ctx, doc.ID)
		if err != nil {
			fatalf("reembed failed: %v", err)
		}
		fmt.Printf("Re-embedded %d chunks of %q\n", n, doc.Name)
		return
	}

	docs, err := a.ListDocuments()
	if err != nil {
		fatalf("failed to list documents: %v", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested yet. Run 'f1ri sample' or 'f1ri ingest <path>'.")
		return
	}

	total := 0
	for _, doc := range docs {
		n, err := a.ReembedDocument(ctx, doc.ID)
		if err != nil {
			fatalf("reembed of %q failed: %v", doc.Name, err)
		}
		fmt.Printf("  %-30s %d chunks\n", truncate(doc.Name, 30), n)
		total += n
	}
	fmt.Printf("Re-embedded %d chunks across %d documents\n", total, len(docs))
}
