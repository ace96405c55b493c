package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/plasticc-sim/plasticc-sim/sim"
	"github.com/plasticc-sim/plasticc-sim/sim/dataset"
)

// runOptions carries the shared flags into the testable run functions.
type runOptions struct {
	Seed            int64
	ConfigPath      string
	DataDir         string
	DBPath          string
	Reference       string
	PhotozReference string
}

// loadSurveyConfig returns the defaults, or the file at path layered on them.
func loadSurveyConfig(path string) (*sim.SurveyConfig, error) {
	if path == "" {
		cfg := sim.DefaultSurveyConfig()
		return &cfg, nil
	}
	cfg, err := sim.LoadSurveyConfig(path)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded survey config from %s", path)
	return cfg, nil
}

// datasetSource is where datasets are read from and, for SQLite, written to.
type datasetSource struct {
	loader dataset.Loader
	store  *dataset.SQLiteStore // nil for CSV sources
}

func openDatasetSource(opts runOptions) (*datasetSource, error) {
	if opts.DBPath != "" {
		store, err := dataset.OpenSQLiteStore(opts.DBPath)
		if err != nil {
			return nil, err
		}
		return &datasetSource{loader: store, store: store}, nil
	}
	return &datasetSource{loader: dataset.CSVLoader{Dir: opts.DataDir}}, nil
}

func (s *datasetSource) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// photozReference returns a lazily loaded photo-z reference over the
// source's photo-z dataset.
func (s *datasetSource) photozReference(name string) *sim.PhotozReference {
	return sim.NewPhotozReference(dataset.ReferenceLoader(s.loader, name))
}

// parseRegion accepts "ddf" or "wfd".
func parseRegion(s string) (sim.Region, error) {
	switch strings.ToLower(s) {
	case "ddf":
		return sim.DeepField, nil
	case "wfd":
		return sim.WideField, nil
	}
	return 0, fmt.Errorf("unknown region %q (want ddf or wfd)", s)
}
