package encoding

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a line of text when closed.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// PlainText reduces an HTML document to its visible text, one block per line.
// Script and style contents are dropped.
func PlainText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))

	var (
		b    strings.Builder
		skip int
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed document; either way keep what was read.
			return collapse(b.String())
		case html.TextToken:
			if skip == 0 {
				b.WriteString(strings.Join(strings.Fields(string(z.Text())), " "))
				b.WriteByte(' ')
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				skip++
			case blockTags[tag]:
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case blockTags[tag]:
				b.WriteByte('\n')
			}
		}
	}
}

// LooksLikeHTML is a cheap sniff for bodies sent without a content type.
func LooksLikeHTML(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "<html") || strings.Contains(l, "<body") || strings.Contains(l, "<div") || strings.Contains(l, "<table")
}

func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]

	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}
