// Package markdown extracts document metadata used for tab titles.
package markdown

import (
	"bytes"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// Title returns the document title: a frontmatter `title:` value when
// present, otherwise the text of the first heading. It returns "" when the
// document has neither.
func Title(content []byte) string {
	meta, body := splitFrontmatter(content)
	if t := meta["title"]; t != "" {
		return t
	}
	return firstHeading(body)
}

// TitleOrName returns Title(content), falling back to the base name of p
// without its .md extension.
func TitleOrName(p string, content []byte) string {
	if t := Title(content); t != "" {
		return t
	}
	return strings.TrimSuffix(path.Base(p), ".md")
}

func firstHeading(src []byte) string {
	doc := md.Parser().Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(inlineText(h, src))
		if title == "" {
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkStop, nil
	})
	return title
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

// splitFrontmatter separates a leading --- delimited block. Only simple
// `key: value` lines are read.
func splitFrontmatter(content []byte) (map[string]string, []byte) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || strings.TrimSpace(string(lines[0])) != "---" {
		return nil, content
	}

	meta := make(map[string]string)
	offset := len(lines[0])
	for _, line := range lines[1:] {
		offset += len(line)
		s := strings.TrimSpace(string(line))
		if s == "---" {
			return meta, content[offset:]
		}
		if k, v, ok := strings.Cut(s, ":"); ok {
			meta[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"'`)
		}
	}
	// Unterminated block: treat everything as body.
	return nil, content
}
