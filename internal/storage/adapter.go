package storage

import (
	"context"

	"medrecords/internal/core"
)

// CollectionKey is the single named key under which the record collection is
// stored. It matches the key used by earlier versions of the application, so
// existing data keeps loading.
const CollectionKey = "medicalRecords"

// Adapter is the persistence boundary: synchronous load and save of the whole
// collection. Save is atomic with respect to one logical write; a failed save
// leaves the previously stored collection readable. Load tolerates absent or
// corrupt data by returning an empty collection, never an error for those
// cases.
type Adapter interface {
	Load(ctx context.Context) ([]core.Record, error)
	Save(ctx context.Context, records []core.Record) error
}
