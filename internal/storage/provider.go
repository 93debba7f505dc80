// Package storage provides read-only traversal of the content tree and
// atomic writes for the maintenance commands that rewrite it.
package storage

// Provider is the interface for content file operations. Paths are relative
// to the provider's root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Root returns the absolute root directory.
	Root() string
}
