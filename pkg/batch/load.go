package batch

import (
	"fmt"
	"os"

	"github.com/coolbeans/tenure/pkg/infobox"
)

// ReadDocument decodes the page JSON at path into a Document named after
// the path.
func ReadDocument(path, locale string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	page, err := infobox.Decode(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return Document{Name: path, Locale: locale, Page: page}, nil
}

// ReadDocuments reads every path, stopping at the first failure.
func ReadDocuments(paths []string, locale string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := ReadDocument(path, locale)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
