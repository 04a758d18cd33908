package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms start on a fresh line.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Section: true, atom.Article: true,
	atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Hr: true,
}

// Rendered is a document body flattened for the terminal. Links[i] is the
// href shown as [i+1] in Text.
type Rendered struct {
	Text  string
	Links []string
}

// RenderHTML flattens an HTML fragment to wrapped text and numbers its
// links. Scripts and styles are dropped. Unparseable input is shown raw.
func RenderHTML(fragment string, width int) Rendered {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return Rendered{Text: wrap(fragment, width)}
	}

	r := &renderer{}
	for _, n := range nodes {
		r.walk(n)
	}
	return Rendered{Text: wrap(r.text(), width), Links: r.links}
}

type renderer struct {
	b     strings.Builder
	links []string
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.write(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}

	block := n.Type == html.ElementNode && blockAtoms[n.DataAtom]
	if block {
		r.newline()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		if href := attr(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
			r.links = append(r.links, href)
			r.b.WriteString(linkStyle.Render(fmt.Sprintf("[%d]", len(r.links))))
		}
	}
	if block {
		r.newline()
	}
}

func (r *renderer) write(s string) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return
	}
	cur := r.b.String()
	if cur != "" && !strings.HasSuffix(cur, "\n") && !strings.HasSuffix(cur, " ") && !strings.ContainsAny(s[:1], ".,;:)") {
		r.b.WriteByte(' ')
	}
	r.b.WriteString(s)
}

func (r *renderer) newline() {
	cur := r.b.String()
	if cur == "" || strings.HasSuffix(cur, "\n\n") {
		return
	}
	if strings.HasSuffix(cur, "\n") {
		r.b.WriteByte('\n')
		return
	}
	r.b.WriteString("\n\n")
}

func (r *renderer) text() string {
	return strings.TrimSpace(r.b.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}
