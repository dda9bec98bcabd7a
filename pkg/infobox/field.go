// Package infobox turns a parsed infobox field map into numbered field
// frames, one per office-term block.
//
// Infobox templates number repeated blocks with a trailing suffix
// ("office2", "term_start2"). Group splits a flat field map on that suffix;
// Decode reads the page JSON produced by the upstream wikitext parser and
// picks the infobox that describes offices held.
package infobox

import "strings"

// Link is an outbound wiki link inside a field value.
type Link struct {
	Page string `json:"page"`
}

// Field is one infobox value: its display text and the pages it links to.
type Field struct {
	Text  string `json:"text"`
	Links []Link `json:"links,omitempty"`
}

// IsZero returns true if the field has neither text nor links.
func (f Field) IsZero() bool {
	return strings.TrimSpace(f.Text) == "" && len(f.Links) == 0
}

// Pages returns the link targets in document order.
func (f Field) Pages() []string {
	pages := make([]string, 0, len(f.Links))
	for _, link := range f.Links {
		if link.Page == "" {
			continue
		}
		pages = append(pages, link.Page)
	}
	return pages
}
