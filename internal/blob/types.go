// Package blob is the entry point to the snapshot archive backends. Callers
// depend on blob.Store and obtain implementations through Open or the New*
// constructors; the backend packages under internal/infra/blob stay private
// to this package.
package blob

import (
	"hospitalcore/internal/blob/core"
)

type (
	Driver     = core.Driver
	PutOptions = core.PutOptions
	Info       = core.Info
	Store      = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory

	MetaBucket  = core.MetaBucket
	MetaTakenAt = core.MetaTakenAt
)

var (
	ErrExists   = core.ErrExists
	ErrNotFound = core.ErrNotFound
	ErrInvalid  = core.ErrInvalid
)
