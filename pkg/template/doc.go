// Package template defines the declarative component template model and the
// contracts for loading and parsing template documents. Templates describe a
// simulation component's display name, placement folder, base properties, and
// repeated ("numbered") property groups; they are parsed once at load time,
// validated, and immutable afterwards.
package template
