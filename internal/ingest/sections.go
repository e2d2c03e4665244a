// Package ingest loads analysis input: sectioned document text from
// HTML or Markdown, and pre-extracted facts from JSON.
package ingest

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/mkratov/concordia/internal/model"
)

// defaultTitle names content that appears before any heading
const defaultTitle = "Document"

// SectionsFromHTML parses HTML and splits its visible text into
// sections at heading boundaries. Script, style, and other non-content
// elements are skipped.
func SectionsFromHTML(htmlContent string) ([]model.Section, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	var sections []model.Section
	title := defaultTitle
	var buf strings.Builder

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			sections = append(sections, model.Section{Title: title, Content: content})
		}
		buf.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				title = strings.TrimSpace(extractText(n))
				if title == "" {
					title = defaultTitle
				}
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	flush()
	return sections, nil
}

// extractText collects the text nodes under n
func extractText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// SectionsFromText splits plain or Markdown text into sections at
// heading lines. Text with no headings becomes a single section.
func SectionsFromText(text string) []model.Section {
	var sections []model.Section
	title := defaultTitle
	var buf strings.Builder

	flush := func() {
		content := strings.TrimSpace(buf.String())
		if content != "" {
			sections = append(sections, model.Section{Title: title, Content: content})
		}
		buf.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if heading, ok := markdownHeading(line); ok {
			flush()
			title = heading
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	flush()
	return sections
}

// markdownHeading reports whether the line is an ATX heading and
// returns its text
func markdownHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return "", false
	}
	rest := strings.TrimSpace(trimmed[level:])
	if rest == "" {
		return "", false
	}
	return rest, true
}
