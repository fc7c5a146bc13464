package fs

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/glowrays"
	"github.com/fwojciec/glowrays/memory"
	"gitlab.com/tozd/go/errors"
)

// Documents loads files into in-memory documents and keeps them in sync with
// the disk. A path opened twice yields the same document.
type Documents struct {
	languages glowrays.LanguageDetector

	mu   sync.Mutex
	docs map[string]*memory.Document
}

// NewDocuments creates a loader that picks language ids with languages.
func NewDocuments(languages glowrays.LanguageDetector) *Documents {
	return &Documents{languages: languages, docs: make(map[string]*memory.Document)}
}

// URI returns the document identity for path.
func URI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Open reads path into a document.
func (d *Documents) Open(path string) (*memory.Document, error) {
	uri, err := URI(path)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.docs[uri]; ok {
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	doc := memory.NewDocument(uri, d.languages.DetectFromPath(path), string(data))
	d.docs[uri] = doc
	return doc, nil
}

// Reload re-reads an opened document from path. It reports false when the
// text did not change.
func (d *Documents) Reload(path string) (*memory.Document, bool, error) {
	uri, err := URI(path)
	if err != nil {
		return nil, false, err
	}

	d.mu.Lock()
	doc, ok := d.docs[uri]
	d.mu.Unlock()
	if !ok {
		return nil, false, errors.Errorf("%s is not open", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, errors.Errorf("reading %s: %w", path, err)
	}
	if string(data) == doc.Text() {
		return doc, false, nil
	}
	doc.SetText(string(data))
	return doc, true, nil
}
