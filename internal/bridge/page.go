package bridge

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// MarkerAttr associates a rendered element with a content key.
const MarkerAttr = "data-key"

// Page is one live document session of the editor bridge: the parsed
// HTML of an embedded page instance, scanned for marked elements and
// mutated in place by overrides. All operations are defensive; a broken
// document degrades to empty results instead of faulting the host.
type Page struct {
	mu       sync.Mutex
	doc      *html.Node
	location string
}

// NewPage parses the rendered HTML of an embedded page. A parse failure
// yields an empty page rather than an error; the bridge must never take
// the host down.
func NewPage(rendered string, location string) *Page {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		logrus.Errorf("bridge page parse failed: %v", err)
		doc = nil
	}

	return &Page{doc: doc, location: location}
}

// Location returns the page's current client-side route.
func (p *Page) Location() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location
}

// Navigate records a client-side route change and replaces the rendered
// document the session scans against.
func (p *Page) Navigate(location, rendered string) {
	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		logrus.Errorf("bridge page parse failed: %v", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = location
	p.doc = doc
}

// Scan collects the current content of every marked element into the
// two snapshot maps: img elements by tag into images (resolved src),
// everything else into text (rendered text). Duplicate markers keep the
// first-seen value only.
func (p *Page) Scan() (snapshot Overrides) {
	snapshot.Normalize()

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("bridge scan recovered: %v", r)
			snapshot.Normalize()
		}
	}()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc == nil {
		return snapshot
	}

	walk(p.doc, func(n *html.Node) {
		key, ok := attr(n, MarkerAttr)
		if !ok || key == "" {
			return
		}

		if n.Data == "img" {
			if _, seen := snapshot.Images[key]; seen {
				return
			}
			if src, ok := attr(n, "src"); ok {
				snapshot.Images[key] = src
			}
			return
		}

		if _, seen := snapshot.Text[key]; seen {
			return
		}
		snapshot.Text[key] = textContent(n)
	})

	return snapshot
}

// Apply writes overrides into the document by marker key: text content
// for text entries, img src for image entries. Keys with no matching
// element are silently ignored. The last applied override wins.
func (p *Page) Apply(overrides Overrides) {
	overrides.Normalize()

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("bridge apply recovered: %v", r)
		}
	}()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.doc == nil {
		return
	}

	walk(p.doc, func(n *html.Node) {
		key, ok := attr(n, MarkerAttr)
		if !ok || key == "" {
			return
		}

		if n.Data == "img" {
			if src, ok := overrides.Images[key]; ok {
				setAttr(n, "src", src)
			}
			return
		}

		if text, ok := overrides.Text[key]; ok {
			setText(n, text)
		}
	})
}

// walk visits element nodes in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}

func setText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
