// Package schedule is the core of the service: the adjustment store, the
// pending-batch manager, the approval workflow and the schedule compositor.
// All writes run inside database transactions so multi-segment batches are
// never partially visible.
package schedule

import (
	"log"

	"gorm.io/gorm"

	"roster/catalog"
	"roster/timeutil"
)

// Engine holds the injected collaborators. The database handle is passed in
// by the process entry point; the engine never owns connection lifecycle.
type Engine struct {
	db      *gorm.DB
	tz      *timeutil.Normalizer
	catalog *catalog.Catalog
	lg      *log.Logger
}

func New(db *gorm.DB, tz *timeutil.Normalizer, cat *catalog.Catalog, lg *log.Logger) *Engine {
	if lg == nil {
		lg = log.Default()
	}
	return &Engine{db: db, tz: tz, catalog: cat, lg: lg}
}
