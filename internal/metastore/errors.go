package metastore

import "errors"

var (
	ErrChunkNotFound = errors.New("embedding chunk not found")
)
