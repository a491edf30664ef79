// Package formats provides readers for the static mesh interchange formats
// accepted by the collar importer: STL (binary, with an ASCII fallback) and
// binary glTF 2.0 (GLB).
//
// Readers take the whole file as a byte slice, validate every offset against
// it and either return a complete result or a wrapped sentinel error.
package formats
