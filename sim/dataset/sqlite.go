package dataset

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

// schema.sql defines the datasets, objects and observations tables.
//
//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists datasets in a SQLite database.
type SQLiteStore struct {
	*sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// applies the schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logrus.Debugf("Opened dataset store %s", path)
	return &SQLiteStore{db}, nil
}

// Save writes ds in a single transaction, replacing any dataset with the
// same name. runID may be empty.
func (s *SQLiteStore) Save(ctx context.Context, ds *Dataset, runID string) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE dataset = ?`, ds.Name); err != nil {
		return fmt.Errorf("clearing observations of %q: %w", ds.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE dataset = ?`, ds.Name); err != nil {
		return fmt.Errorf("clearing objects of %q: %w", ds.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO datasets (name, run_id) VALUES (?, ?)`, ds.Name, runID); err != nil {
		return fmt.Errorf("inserting dataset %q: %w", ds.Name, err)
	}

	objStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO objects (dataset, object_id, redshift, host_specz, host_photoz, host_photoz_error,
			distmod, galactic, ddf, mwebv, augment_brightness, ra, decl, gal_l, gal_b, target, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing object insert: %w", err)
	}
	defer func() { _ = objStmt.Close() }()

	obsStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (dataset, object_id, mjd, band, flux, flux_error, detected)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing observation insert: %w", err)
	}
	defer func() { _ = obsStmt.Close() }()

	for _, o := range ds.Objects {
		m := o.Metadata
		var extra sql.NullString
		if len(m.Extra) > 0 {
			data, err := json.Marshal(m.Extra)
			if err != nil {
				return fmt.Errorf("encoding extra columns of %s: %w", m.ObjectID, err)
			}
			extra = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := objStmt.ExecContext(ctx, ds.Name, m.ObjectID,
			nullFloat(m.Redshift), nullFloat(m.HostSpecz), nullFloat(m.HostPhotoz), nullFloat(m.HostPhotozError),
			nullFloat(m.Distmod), m.Galactic, m.DDF, nullFloat(m.MWEBV), nullFloat(m.AugmentBrightness),
			nullFloat(m.RA), nullFloat(m.Dec), nullFloat(m.GalL), nullFloat(m.GalB), m.Target, extra,
		); err != nil {
			return fmt.Errorf("inserting object %s: %w", m.ObjectID, err)
		}
		if ds.MetadataOnly {
			continue
		}
		for _, obs := range o.Observations {
			if _, err := obsStmt.ExecContext(ctx, ds.Name, m.ObjectID,
				nullFloat(obs.MJD), string(obs.Band), nullFloat(obs.Flux), nullFloat(obs.FluxError), obs.Detected,
			); err != nil {
				return fmt.Errorf("inserting observation of %s: %w", m.ObjectID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dataset %q: %w", ds.Name, err)
	}
	logrus.Infof("Saved dataset %q (%d objects)", ds.Name, len(ds.Objects))
	return nil
}

// Load reads dataset name. Objects are returned in object_id order.
func (s *SQLiteStore) Load(ctx context.Context, name string, metadataOnly bool) (*Dataset, error) {
	var exists int
	if err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("looking up dataset %q: %w", name, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("dataset %q not found", name)
	}

	rows, err := s.QueryContext(ctx, `
		SELECT object_id, redshift, host_specz, host_photoz, host_photoz_error, distmod,
			galactic, ddf, mwebv, augment_brightness, ra, decl, gal_l, gal_b, target, extra
		FROM objects WHERE dataset = ? ORDER BY object_id
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying objects of %q: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	ds := &Dataset{Name: name, MetadataOnly: metadataOnly}
	byID := make(map[string]*sim.Object)
	for rows.Next() {
		var (
			m                                        sim.Metadata
			redshift, specz, photoz, photozErr, dmod sql.NullFloat64
			mwebv, brightness, ra, dec, galL, galB   sql.NullFloat64
			target                                   sql.NullInt64
			extra                                    sql.NullString
		)
		if err := rows.Scan(&m.ObjectID, &redshift, &specz, &photoz, &photozErr, &dmod,
			&m.Galactic, &m.DDF, &mwebv, &brightness, &ra, &dec, &galL, &galB, &target, &extra); err != nil {
			return nil, fmt.Errorf("scanning object row: %w", err)
		}
		m.Redshift = floatOrNaN(redshift)
		m.HostSpecz = floatOrNaN(specz)
		m.HostPhotoz = floatOrNaN(photoz)
		m.HostPhotozError = floatOrNaN(photozErr)
		m.Distmod = floatOrNaN(dmod)
		m.MWEBV = floatOrNaN(mwebv)
		m.AugmentBrightness = brightness.Float64
		m.RA = floatOrNaN(ra)
		m.Dec = floatOrNaN(dec)
		m.GalL = floatOrNaN(galL)
		m.GalB = floatOrNaN(galB)
		m.Target = int(target.Int64)
		if extra.Valid {
			if err := json.Unmarshal([]byte(extra.String), &m.Extra); err != nil {
				return nil, fmt.Errorf("decoding extra columns of %s: %w", m.ObjectID, err)
			}
		}
		o := &sim.Object{Metadata: m}
		ds.Objects = append(ds.Objects, o)
		byID[m.ObjectID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objects of %q: %w", name, err)
	}
	if metadataOnly {
		return ds, nil
	}

	obsRows, err := s.QueryContext(ctx, `
		SELECT object_id, mjd, band, flux, flux_error, detected
		FROM observations WHERE dataset = ? ORDER BY object_id, rowid
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying observations of %q: %w", name, err)
	}
	defer func() { _ = obsRows.Close() }()

	for obsRows.Next() {
		var (
			objectID, band     string
			obs                sim.Observation
			mjd, flux, fluxErr sql.NullFloat64
		)
		if err := obsRows.Scan(&objectID, &mjd, &band, &flux, &fluxErr, &obs.Detected); err != nil {
			return nil, fmt.Errorf("scanning observation row: %w", err)
		}
		obs.MJD = floatOrNaN(mjd)
		obs.Band = sim.Band(band)
		obs.Flux = floatOrNaN(flux)
		obs.FluxError = floatOrNaN(fluxErr)
		if o, ok := byID[objectID]; ok {
			o.Observations = append(o.Observations, obs)
		}
	}
	if err := obsRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating observations of %q: %w", name, err)
	}
	return ds, nil
}

// nullFloat stores NaN as NULL; SQLite has no NaN. Infinities are kept.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
