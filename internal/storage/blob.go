package storage

import "io"

// BlobStore holds uploaded support materials. Keys are slash-separated
// paths, e.g. "materials/<lessonID>/<file>".
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}
