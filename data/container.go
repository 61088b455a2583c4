// Package data holds the catalog snapshot shared by the services, with atomic
// swaps for zero-downtime reloads.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/d3ai-api/catalog"
	"github.com/giygas/d3ai-api/interfaces"
	"github.com/giygas/d3ai-api/logging"
)

var (
	_ interfaces.CatalogStore  = (*CatalogContainer)(nil)
	_ interfaces.CatalogSource = catalog.FileSource{}
	_ interfaces.CatalogSource = catalog.BuiltinSource{}
)

// reloadError wraps the last reload failure so atomic.Value always stores
// the same concrete type.
type reloadError struct{ err error }

// CatalogContainer holds the current catalog with atomic pointers for
// lock-free reads.
type CatalogContainer struct {
	catalog         atomic.Pointer[catalog.Catalog]
	lastUpdated     atomic.Value // time.Time
	serverStartTime atomic.Value // time.Time
	lastReloadError atomic.Value // reloadError
	updating        atomic.Bool
}

// NewCatalogContainer creates a container serving initial. A nil initial
// catalog is replaced by an empty one so Snapshot never returns nil.
func NewCatalogContainer(initial *catalog.Catalog) *CatalogContainer {
	cc := &CatalogContainer{}
	cc.serverStartTime.Store(time.Time{})
	cc.lastReloadError.Store(reloadError{})
	if initial == nil {
		empty, _ := catalog.Build("empty", catalog.File{})
		cc.catalog.Store(empty)
		cc.lastUpdated.Store(time.Time{})
		return cc
	}
	cc.Replace(initial)
	return cc
}

// Snapshot returns the current catalog. Callers must treat it as read-only.
func (cc *CatalogContainer) Snapshot() *catalog.Catalog {
	return cc.catalog.Load()
}

// Replace atomically swaps in c and records the update time.
func (cc *CatalogContainer) Replace(c *catalog.Catalog) {
	if c == nil {
		logging.Warn("Ignoring nil catalog replacement")
		return
	}
	cc.catalog.Store(c)
	cc.lastUpdated.Store(time.Now())
}

// GetLastUpdated returns when the current snapshot was installed.
func (cc *CatalogContainer) GetLastUpdated() time.Time {
	if t, ok := cc.lastUpdated.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}

// SetServerStartTime sets the server start time
func (cc *CatalogContainer) SetServerStartTime(t time.Time) {
	cc.serverStartTime.Store(t)
}

// GetServerStartTime returns the server start time
func (cc *CatalogContainer) GetServerStartTime() time.Time {
	if t, ok := cc.serverStartTime.Load().(time.Time); ok {
		return t
	}
	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// BeginUpdate marks the start of a reload. It returns false if another
// reload is already running.
func (cc *CatalogContainer) BeginUpdate() bool {
	return cc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload.
func (cc *CatalogContainer) EndUpdate() {
	cc.updating.Store(false)
}

// IsUpdating returns true while a reload is in progress.
func (cc *CatalogContainer) IsUpdating() bool {
	return cc.updating.Load()
}

func (cc *CatalogContainer) SetReloadError(err error) {
	cc.lastReloadError.Store(reloadError{err: err})
}

func (cc *CatalogContainer) LastReloadError() error {
	if re, ok := cc.lastReloadError.Load().(reloadError); ok {
		return re.err
	}
	return nil
}
