package blob

import (
	"hospitalcore/internal/infra/blob/fs"
)

// NewFilesystem returns a Store writing below root (./archive when empty).
func NewFilesystem(root string) (Store, error) {
	return fs.New(root)
}
