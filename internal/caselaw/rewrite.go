package caselaw

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var docPathRe = regexp.MustCompile(`/doc/(\d+)`)

// RewriteLinks makes every href in a provider HTML fragment resolve against
// origin and opens absolute http(s) links in a new tab:
//
//  1. "/path" becomes origin+"/path".
//  2. Any other href that is not http(s)://, mailto:, javascript: or a
//     #fragment becomes origin+"/"+href.
//  3. http(s) hrefs get target="_blank" rel="noopener noreferrer".
//
// Applying it twice gives the same output as applying it once. On a parse
// failure the input is returned unchanged. Fragments that start inside a
// table (bare cells or rows) are parsed in their table context so the markup
// survives.
func RewriteLinks(fragment, origin string) string {
	origin = strings.TrimRight(origin, "/")
	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext(fragment))
	if err != nil {
		return fragment
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n, origin)
		if err := html.Render(&buf, n); err != nil {
			return fragment
		}
	}
	return buf.String()
}

// fragmentContext picks the element a fragment is parsed inside, based on its
// first start tag. Anything that is not table-internal parses under <body>.
func fragmentContext(fragment string) *html.Node {
	a := atom.Body
	z := html.NewTokenizer(strings.NewReader(fragment))
scan:
	for {
		switch z.Next() {
		case html.ErrorToken, html.EndTagToken:
			break scan
		case html.TextToken:
			if strings.TrimSpace(string(z.Text())) != "" {
				break scan
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Td, atom.Th:
				a = atom.Tr
			case atom.Tr:
				a = atom.Tbody
			case atom.Tbody, atom.Thead, atom.Tfoot, atom.Caption, atom.Colgroup:
				a = atom.Table
			case atom.Col:
				a = atom.Colgroup
			}
			break scan
		}
	}
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func walk(n *html.Node, origin string) {
	if n.Type == html.ElementNode {
		rewriteElement(n, origin)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, origin)
	}
}

func rewriteElement(n *html.Node, origin string) {
	idx := -1
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, "href") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	href := rewriteHref(strings.TrimSpace(n.Attr[idx].Val), origin)
	n.Attr[idx].Val = href
	if !isHTTP(href) {
		return
	}

	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && (strings.EqualFold(a.Key, "target") || strings.EqualFold(a.Key, "rel")) {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = append(attrs,
		html.Attribute{Key: "target", Val: "_blank"},
		html.Attribute{Key: "rel", Val: "noopener noreferrer"},
	)
}

func rewriteHref(href, origin string) string {
	switch {
	case href == "":
		return href
	case strings.HasPrefix(href, "/"):
		return origin + href
	case isHTTP(href), hasPrefixFold(href, "mailto:"), hasPrefixFold(href, "javascript:"), strings.HasPrefix(href, "#"):
		return href
	default:
		return origin + "/" + href
	}
}

func isHTTP(href string) bool {
	return hasPrefixFold(href, "http://") || hasPrefixFold(href, "https://")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// DocIDFromHref extracts the numeric id of a same-corpus document link.
func DocIDFromHref(href string) (string, bool) {
	m := docPathRe.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionNavigate shows another corpus document inside the viewer.
	ActionNavigate
	// ActionOpenExternal hands URL to the host's external opener.
	ActionOpenExternal
)

func (k ActionKind) String() string {
	switch k {
	case ActionNavigate:
		return "navigate"
	case ActionOpenExternal:
		return "open_external"
	default:
		return "none"
	}
}

// Action is the outcome of a click on an in-document link. The host never
// follows the link itself.
type Action struct {
	Kind  ActionKind
	DocID string
	URL   string
}

// ClassifyHref decides what a click on href does.
func ClassifyHref(href, origin string) Action {
	href = strings.TrimSpace(href)
	origin = strings.TrimRight(origin, "/")
	if id, ok := DocIDFromHref(href); ok {
		return Action{Kind: ActionNavigate, DocID: id}
	}
	switch {
	case hasPrefixFold(href, "http"):
		return Action{Kind: ActionOpenExternal, URL: href}
	case strings.HasPrefix(href, "/"):
		return Action{Kind: ActionOpenExternal, URL: origin + href}
	case hasPrefixFold(href, "mailto:"):
		return Action{Kind: ActionOpenExternal, URL: href}
	case href == "", strings.HasPrefix(href, "#"), hasPrefixFold(href, "javascript:"):
		return Action{Kind: ActionNone}
	default:
		return Action{Kind: ActionOpenExternal, URL: origin + "/" + href}
	}
}
