// Package markup builds a generic, navigable XML tree. The feed model only
// depends on the Node and Parser interfaces declared here.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	xpp "github.com/mmcdole/goxpp"
	"golang.org/x/net/html/charset"
)

// Node is the minimal tree capability: named nodes, ordered children,
// siblings in both directions, the parent, and string attributes.
//
// Navigation methods return a nil interface when there is no such node.
type Node interface {
	Name() string
	Space() string
	IsElement() bool
	Parent() Node
	FirstChild() Node
	LastChild() Node
	PrevSibling() Node
	NextSibling() Node
	Attr(name string) (string, bool)
	Text() string
}

// Parser turns a document into a tree and returns its root element, or nil
// when the document has no element at all.
type Parser interface {
	Parse(r io.Reader) (Node, error)
}

type kind int

const (
	documentNode kind = iota
	elementNode
	textNode
)

type node struct {
	kind  kind
	name  string
	space string
	attrs []xml.Attr
	text  string

	parent     *node
	firstChild *node
	lastChild  *node
	prev       *node
	next       *node
}

var _ Node = (*node)(nil)

func wrap(n *node) Node {
	if n == nil {
		return nil
	}
	return n
}

func (n *node) Name() string      { return n.name }
func (n *node) Space() string     { return n.space }
func (n *node) IsElement() bool   { return n.kind == elementNode }
func (n *node) FirstChild() Node  { return wrap(n.firstChild) }
func (n *node) LastChild() Node   { return wrap(n.lastChild) }
func (n *node) PrevSibling() Node { return wrap(n.prev) }
func (n *node) NextSibling() Node { return wrap(n.next) }

func (n *node) Parent() Node {
	if n.parent == nil || n.parent.kind == documentNode {
		return nil
	}
	return n.parent
}

// Attr looks up an attribute without a namespace prefix.
func (n *node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text concatenates the character data of all descendants.
func (n *node) Text() string {
	if n.kind == textNode {
		return n.text
	}

	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *node) collectText(sb *strings.Builder) {
	for c := n.firstChild; c != nil; c = c.next {
		if c.kind == textNode {
			sb.WriteString(c.text)
		} else {
			c.collectText(sb)
		}
	}
}

func (n *node) appendChild(c *node) {
	c.parent = n
	if n.lastChild == nil {
		n.firstChild = c
	} else {
		n.lastChild.next = c
		c.prev = n.lastChild
	}
	n.lastChild = c
}

// XPP parses documents with the goxpp pull parser in non-strict mode,
// converting legacy charsets to UTF-8 on the way in.
type XPP struct{}

func NewParser() *XPP {
	return &XPP{}
}

var _ Parser = (*XPP)(nil)

func (p *XPP) Parse(r io.Reader) (Node, error) {
	pull := xpp.NewXMLPullParser(r, false, charset.NewReaderLabel)

	doc := &node{kind: documentNode}
	cur := doc

	for {
		event, err := pull.NextToken()
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		switch event {
		case xpp.StartTag:
			el := &node{
				kind:  elementNode,
				name:  pull.Name,
				space: pull.Space,
				attrs: append([]xml.Attr(nil), pull.Attrs...),
			}
			cur.appendChild(el)
			cur = el
		case xpp.EndTag:
			if cur.parent != nil {
				cur = cur.parent
			}
		case xpp.Text:
			if cur != doc {
				cur.appendChild(&node{kind: textNode, text: pull.Text})
			}
		case xpp.EndDocument:
			for c := doc.firstChild; c != nil; c = c.next {
				if c.kind == elementNode {
					return c, nil
				}
			}
			return nil, nil
		}
	}
}
