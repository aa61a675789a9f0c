package template

import "context"

// Parser decodes a template document into the validated in-memory catalog.
// Parsing is pure: no side effects, no host interaction, and the returned
// slice preserves the document's declaration order.
type Parser interface {
	Parse(ctx context.Context, doc Document) ([]ComponentTemplate, error)
}
