// Copyright © 2024 The ELPS authors

package lsp

import (
	"path/filepath"
	"sync"

	"github.com/luthersystems/sembind/analysis"
	"github.com/luthersystems/sembind/workspace"
)

// Document represents an open declaration file tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	opts []workspace.Option
	// ws is nil when the content is not a YAML document.
	ws *workspace.Workspace
	// loadErr holds the YAML or declaration errors of the content.
	loadErr  error
	analysis *analysis.Result
	analyzed bool
}

// load reads the declarations of the document content. Invalid
// declarations are skipped; the rest of the file is still analyzed.
func (d *Document) load() {
	path := uriToPath(d.URI)
	d.ws, d.loadErr = workspace.Parse(filepath.Base(path), []byte(d.Content), d.opts...)
	d.analysis = nil
	d.analyzed = false
}

// analyze binds the expressions of the loaded declarations.
func (d *Document) analyze(cfg *analysis.Config) {
	d.analyzed = true
	if d.ws == nil {
		return
	}
	d.analysis = analysis.Analyze(d.ws, cfg)
}

// snapshot returns the analysis state under the document lock.
func (d *Document) snapshot() (string, *workspace.Workspace, *analysis.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Content, d.ws, d.analysis, d.loadErr
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and loads it.
func (s *DocumentStore) Open(uri string, version int32, content string, opts ...workspace.Option) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
		opts:    opts,
	}
	doc.load()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and reloads it.
func (s *DocumentStore) Change(uri string, version int32, content string, opts ...workspace.Option) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri, opts: opts}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.load()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
