package infobox

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the parsed page JSON: a title and the infoboxes found in
// each section.
type Document struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is one page section.
type Section struct {
	Title     string             `json:"title,omitempty"`
	Infoboxes []map[string]Field `json:"infoboxes,omitempty"`
}

// Decode reads a page JSON document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding page document: %w", err)
	}
	return &doc, nil
}

// Infoboxes returns every infobox on the page in document order.
func (d *Document) Infoboxes() []map[string]Field {
	var boxes []map[string]Field
	for _, section := range d.Sections {
		for _, box := range section.Infoboxes {
			if box != nil {
				boxes = append(boxes, box)
			}
		}
	}
	return boxes
}

// OfficeInfobox returns the first infobox with an office or order field,
// skipping unrelated boxes such as a Korean name box at the top of a page.
func (d *Document) OfficeInfobox() (map[string]Field, bool) {
	for _, box := range d.Infoboxes() {
		for key := range box {
			switch Unnumbered(key) {
			case KeyOffice, KeyOrder:
				return box, true
			}
		}
	}
	return nil, false
}

// Frames groups the office infobox into frames. A page with no office
// infobox has no frames.
func (d *Document) Frames() ([]Frame, error) {
	box, ok := d.OfficeInfobox()
	if !ok {
		return nil, nil
	}
	frames, err := Group(box)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", d.Title, err)
	}
	return frames, nil
}
