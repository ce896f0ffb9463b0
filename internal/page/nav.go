package page

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const activeNavClass = "!text-teal"

// MarkActiveNav adds the active class to the first element, in document
// order, whose data-page matches current. The fragment is returned unchanged when nothing matches.
func MarkActiveNav(fragment, current string) (string, error) {
	if current == "" {
		return fragment, nil
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", fmt.Errorf("parse component: %w", err)
	}

	matched := false
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if matched {
			return
		}
		if n.Type == html.ElementNode && attr(n, "data-page") == current {
			addClass(n, activeNavClass)
			matched = true
			return
		}
		for c := n.FirstChild; c != nil && !matched; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	if !matched {
		return fragment, nil
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render component: %w", err)
		}
	}
	return buf.String(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, existing := range strings.Fields(a.Val) {
			if existing == class {
				return
			}
		}
		n.Attr[i].Val = strings.TrimSpace(a.Val + " " + class)
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}
