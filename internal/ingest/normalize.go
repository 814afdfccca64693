package ingest

import (
	"fmt"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// ParseFeed reads the SDN XML document at path and strips namespace prefixes
// from every element so lookups can use bare tag names.
func ParseFeed(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", path, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse feed %s: no root element", path)
	}
	StripNamespaces(root)
	return doc, nil
}

// StripNamespaces clears the namespace prefix of el and all its descendants.
func StripNamespaces(el *etree.Element) {
	el.Space = ""
	for _, child := range el.ChildElements() {
		StripNamespaces(child)
	}
}
