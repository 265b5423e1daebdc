package pcd

import "github.com/pkg/errors"

var (
	ErrMissingDataMarker  = errors.New("pcd header has no DATA line")
	ErrUnsupportedStorage = errors.New("unsupported pcd data storage")
	ErrInvalidHeader      = errors.New("invalid pcd header")
)
