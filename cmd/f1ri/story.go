package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func runStory() {
	fs := flag.NewFlagSet("story", flag.ExitOnError)
	docID := fs.String("doc", "", "Document id (or unique prefix/name)")
	style := fs.String("style", "fan", "Narration style: fan, analyst or newbie")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	doc := resolveDoc(a, *docID)

	story, err := a.Story(context.Background(), doc.ID, *style)
	if err != nil {
		fatalf("story failed: %v", err)
	}
	fmt.Println(story)
}
