package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// fetch-suite downloads the .def files linked from an HTTP index page, e.g.
// a published benchmark suite listing, into a local directory.
func main() {
	var (
		indexURL = flag.String("index", "", "URL of the index page listing .def files (required)")
		outDir   = flag.String("out", "testdata/suite", "Output directory")
		limit    = flag.Int("limit", 0, "Maximum files to download (0 = all)")
	)
	flag.Parse()

	if *indexURL == "" {
		log.Fatal("--index required")
	}

	base, err := url.Parse(*indexURL)
	if err != nil {
		log.Fatal("parse index url:", err)
	}

	links, err := collectDefLinks(base)
	if err != nil {
		log.Fatal("collect links:", err)
	}
	if len(links) == 0 {
		log.Fatal("no .def links found on index page")
	}
	if *limit > 0 && len(links) > *limit {
		links = links[:*limit]
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatal("create output directory:", err)
	}

	log.Printf("Downloading %d DEF files to %s", len(links), *outDir)

	downloaded := 0
	for i, link := range links {
		name := path.Base(link.Path)
		dest := path.Join(*outDir, name)
		if err := download(link.String(), dest); err != nil {
			log.Printf("failed to download %s: %v", link, err)
			continue
		}

		downloaded++
		if (i+1)%10 == 0 {
			log.Printf("Downloaded %d/%d files...", downloaded, len(links))
		}

		// Be nice to the server
		time.Sleep(100 * time.Millisecond)
	}

	log.Printf("Done: %d files in %s", downloaded, *outDir)
}

// collectDefLinks fetches the index page and returns the absolute URLs of
// all anchors pointing at .def files.
func collectDefLinks(base *url.URL) ([]*url.URL, error) {
	resp, err := http.Get(base.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	var links []*url.URL
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if !strings.HasSuffix(strings.ToLower(attr.Val), ".def") {
					continue
				}
				ref, err := url.Parse(attr.Val)
				if err != nil {
					continue
				}
				abs := base.ResolveReference(ref)
				if _, ok := seen[abs.String()]; ok {
					continue
				}
				seen[abs.String()] = struct{}{}
				links = append(links, abs)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

func download(src, dest string) error {
	resp, err := http.Get(src)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
