// Package host defines the contract between the materialization pipeline and
// an external simulation application. The pipeline consumes this API; it
// never implements simulation behavior itself. A session represents one open
// simulation instance whose lifecycle (open/close) is owned by the caller.
package host

import (
	"context"

	"github.com/simkit/compgen/pkg/template"
)

// EntityHandle identifies a created entity inside the host. It is opaque to
// the pipeline; only the owning session can interpret it.
type EntityHandle string

// Session is the host creation API. All calls are blocking, synchronous
// requests against a single-writer simulation session, so implementations do
// not need internal locking for pipeline use.
type Session interface {
	// CloneOrCreate resolves a base entity: it clones the object named
	// layoutName, or creates a primitive placeholder when layoutName is empty.
	CloneOrCreate(ctx context.Context, layoutName string) (EntityHandle, error)

	// Place moves the entity under a folder in the host's organizational
	// hierarchy.
	Place(ctx context.Context, entity EntityHandle, folder string) error

	// SetProperty attaches one typed property with its default value.
	SetProperty(ctx context.Context, entity EntityHandle, name string, typ template.PropertyType, defaultValue any) error

	// BindBehavior binds an opaque script reference as the entity's behavior.
	// The reference is resolved by the host; the pipeline never inspects it.
	BindBehavior(ctx context.Context, entity EntityHandle, script string) error
}
