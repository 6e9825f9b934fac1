package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mateluky/f1-race-intelligence/internal/model"
)

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	name := fs.String("name", "", "Override the stored document name")
	fs.Parse(os.Args[1:])

	if fs.NArg() < 1 {
		fatalf("usage: f1ri ingest <path>")
	}
	path := fs.Arg(0)

	a := openApp()
	defer a.Close()
	ctx := context.Background()

	var doc model.Document
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		doc, err = a.IngestPDF(ctx, path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			fatalf("cannot read %s: %v", path, err)
		}
		docName := *name
		if docName == "" {
			docName = filepath.Base(path)
		}
		doc, err = a.IngestText(ctx, docName, string(data))
	}
	if err != nil {
		fatalf("ingest failed: %v", err)
	}
	printIngested(doc)
}

func runSample() {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	doc, err := a.IngestSample(context.Background())
	if err != nil {
		fatalf("sample ingest failed: %v", err)
	}
	printIngested(doc)
}

func printIngested(doc model.Document) {
	fmt.Printf("Ingested %q\n", doc.Name)
	fmt.Printf("  id:     %s\n", doc.ID)
	fmt.Printf("  chunks: %d\n", doc.ChunkCount)
	fmt.Printf("\nNext: f1ri timeline -doc %s\n", doc.ID)
}
