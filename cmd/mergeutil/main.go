package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jaywantadh/chunkrelay/internal/mergeutil"
)

func main() {
	pattern := flag.String("pattern", "", `glob pattern matching chunk files, e.g. "downloads/video.mp4.*"`)
	output := flag.String("output", "", "path to write the merged file to")
	flag.Parse()

	if *pattern == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: mergeutil --pattern <glob> --output <path>")
		os.Exit(2)
	}

	if err := mergeutil.Merge(*pattern, *output); err != nil {
		fmt.Fprintf(os.Stderr, "mergeutil: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("merged into %s\n", *output)
}
