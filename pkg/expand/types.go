package expand

import internalexpand "github.com/simkit/compgen/internal/expand"

// Property re-exports the internal expansion output type.
type Property = internalexpand.Property

// Expander re-exports the internal expansion engine.
type Expander = internalexpand.Expander

// Error types raised by the expansion engine.
type (
	TypeMismatchError          = internalexpand.TypeMismatchError
	DuplicatePropertyNameError = internalexpand.DuplicatePropertyNameError
)

// New creates an Expander.
func New() *Expander {
	return internalexpand.New()
}
