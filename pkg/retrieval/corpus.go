package retrieval

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

var headerRe = regexp.MustCompile(`(?m)^(#{1,4})\s+(.+)$`)

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 120
)

// section is one markdown header block, title included in the text.
type section struct {
	Title string
	Text  string
}

// splitMarkdownSections cuts a markdown document at its headers (levels 1
// to 4). A document without headers becomes a single "no_header" section.
func splitMarkdownSections(md string) []section {
	md = strings.TrimSpace(md)
	if md == "" {
		return nil
	}

	matches := headerRe.FindAllStringSubmatchIndex(md, -1)
	if len(matches) == 0 {
		return []section{{Title: "no_header", Text: md}}
	}

	sections := make([]section, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := len(md)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		hashes := md[m[2]:m[3]]
		title := strings.TrimSpace(md[m[4]:m[5]])
		sections = append(sections, section{
			Title: hashes + " " + title,
			Text:  strings.TrimSpace(md[start:end]),
		})
	}
	return sections
}

// chunkText splits text into fixed-size character chunks with overlap.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	start := 0
	n := len(text)
	for start < n {
		end := start + size
		if end > n {
			end = n
		}
		chunks = append(chunks, strings.TrimSpace(text[start:end]))
		if end == n {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// LoadCorpus walks docsDir for .md and .txt files (sorted by path) and
// returns chunked passages. Passage IDs are "rel | section_title | chunk=j"
// where rel is the path relative to baseDir, so the document path prefix
// stays stable across machines. Passage text is enriched with its source
// and section so the embedding sees where the chunk came from.
func LoadCorpus(baseDir, docsDir string) ([]Passage, error) {
	var files []string
	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".txt":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs dir %s: %w", docsDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .md or .txt documents found in %s", docsDir)
	}
	sort.Strings(files)

	var passages []Passage
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		for _, sec := range splitMarkdownSections(string(data)) {
			for j, ch := range chunkText(sec.Text, defaultChunkSize, defaultChunkOverlap) {
				passages = append(passages, Passage{
					ID:   fmt.Sprintf("%s | %s | chunk=%d", rel, sec.Title, j),
					Text: strings.TrimSpace(fmt.Sprintf("SOURCE: %s\nSECTION: %s\n\n%s", rel, sec.Title, ch)),
				})
			}
		}
	}

	observability.Infof("Loaded %d passages from %d documents under %s", len(passages), len(files), docsDir)
	return passages, nil
}
