package extract

import "context"

// Extractor turns a complete file buffer into plain text. Implementations may
// fail; partial output is never returned alongside an error.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Registry dispatches strictly by exact MIME-type match. No fuzzy matching:
// an unregistered type means the ingestion ends in the unsupported status.
type Registry struct {
	extractors map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

func (r *Registry) Register(mimeType string, e Extractor) {
	r.extractors[mimeType] = e
}

func (r *Registry) Lookup(mimeType string) (Extractor, bool) {
	e, ok := r.extractors[mimeType]
	return e, ok
}

func (r *Registry) Supported() []string {
	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	return types
}
