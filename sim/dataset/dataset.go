// Package dataset loads and stores collections of astronomical objects:
// PLAsTiCC-layout CSV files and a SQLite store for reference and augmented
// datasets.
package dataset

import (
	"context"
	"fmt"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

// Dataset is a named collection of objects. When MetadataOnly is set the
// objects carry no observations.
type Dataset struct {
	Name         string
	MetadataOnly bool
	Objects      []*sim.Object
}

// Metadata returns the metadata of every object, in order.
func (d *Dataset) Metadata() []sim.Metadata {
	out := make([]sim.Metadata, len(d.Objects))
	for i, o := range d.Objects {
		out[i] = o.Metadata
	}
	return out
}

// Lookup returns the object with the given id.
func (d *Dataset) Lookup(objectID string) (*sim.Object, bool) {
	for _, o := range d.Objects {
		if o.Metadata.ObjectID == objectID {
			return o, true
		}
	}
	return nil, false
}

// Loader loads a dataset by name.
type Loader interface {
	Load(ctx context.Context, name string, metadataOnly bool) (*Dataset, error)
}

// ReferenceLoader adapts a Loader to the photo-z reference cache: it loads
// dataset name with metadata only.
func ReferenceLoader(loader Loader, name string) sim.ReferenceLoader {
	return func(ctx context.Context) ([]sim.Metadata, error) {
		ds, err := loader.Load(ctx, name, true)
		if err != nil {
			return nil, fmt.Errorf("loading reference dataset %q: %w", name, err)
		}
		return ds.Metadata(), nil
	}
}
