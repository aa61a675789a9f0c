// Package expand re-exports the template expansion engine so callers can
// depend on a stable public surface while the implementation lives under
// internal/expand.
package expand
