// Package services defines the business logic around the catalog engine:
// reloading snapshots from a data source, answering queries and reporting
// status. This file centralizes the service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrEntryNotFound indicates that no entry with the requested id exists in
	// the current snapshot.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrCatalogNotLoaded is returned while no load has succeeded yet.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")

	// ErrReloadFailed wraps the data source error of a failed reload. The
	// previous snapshot stays current.
	ErrReloadFailed = errors.New("catalog reload failed")

	// ErrNoDatabase is returned by operations that need the database when
	// none is configured.
	ErrNoDatabase = errors.New("no database configured")
)
