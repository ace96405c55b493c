package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/plasticc-sim/plasticc-sim/sim"
)

// CSV column names of the PLAsTiCC metadata layout. "redshift", "galactic"
// and "augment_brightness" are added by this package; when "redshift" is
// absent it falls back to "true_z" and then "hostgal_specz", and when
// "galactic" is absent an object is galactic iff hostgal_photoz is zero.
const (
	colObjectID          = "object_id"
	colRA                = "ra"
	colDec               = "decl"
	colGalL              = "gal_l"
	colGalB              = "gal_b"
	colDDF               = "ddf"
	colHostSpecz         = "hostgal_specz"
	colHostPhotoz        = "hostgal_photoz"
	colHostPhotozErr     = "hostgal_photoz_err"
	colDistmod           = "distmod"
	colMWEBV             = "mwebv"
	colTarget            = "target"
	colRedshift          = "redshift"
	colTrueZ             = "true_z"
	colGalactic          = "galactic"
	colAugmentBrightness = "augment_brightness"
)

var metadataColumns = []string{
	colObjectID, colRA, colDec, colGalL, colGalB, colDDF,
	colHostSpecz, colHostPhotoz, colHostPhotozErr, colDistmod, colMWEBV,
	colTarget, colRedshift, colGalactic, colAugmentBrightness,
}

var observationColumns = []string{"object_id", "mjd", "passband", "flux", "flux_err", "detected"}

// CSVLoader reads <Dir>/<name>_metadata.csv and <Dir>/<name>.csv.
type CSVLoader struct {
	Dir string
}

// MetadataPath returns the metadata file of dataset name.
func (l CSVLoader) MetadataPath(name string) string {
	return filepath.Join(l.Dir, name+"_metadata.csv")
}

// ObservationsPath returns the observation file of dataset name.
func (l CSVLoader) ObservationsPath(name string) string {
	return filepath.Join(l.Dir, name+".csv")
}

// Load reads the dataset. With metadataOnly the observation file is not
// opened.
func (l CSVLoader) Load(ctx context.Context, name string, metadataOnly bool) (*Dataset, error) {
	f, err := os.Open(l.MetadataPath(name))
	if err != nil {
		return nil, fmt.Errorf("opening metadata: %w", err)
	}
	defer func() { _ = f.Close() }()

	objects, err := ReadMetadataCSV(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	ds := &Dataset{Name: name, MetadataOnly: metadataOnly, Objects: objects}
	if metadataOnly {
		logrus.Debugf("Loaded metadata of %d objects from dataset %q", len(objects), name)
		return ds, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	of, err := os.Open(l.ObservationsPath(name))
	if err != nil {
		return nil, fmt.Errorf("opening observations: %w", err)
	}
	defer func() { _ = of.Close() }()

	byObject, err := ReadObservationsCSV(of)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	for _, o := range objects {
		o.Observations = byObject[o.Metadata.ObjectID]
	}
	logrus.Debugf("Loaded %d objects with observations from dataset %q", len(objects), name)
	return ds, nil
}

// ReadMetadataCSV parses a metadata file. Unknown columns are kept in
// Metadata.Extra.
func ReadMetadataCSV(r io.Reader) ([]*sim.Object, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metadata header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	if _, ok := index[colObjectID]; !ok {
		return nil, fmt.Errorf("metadata has no %s column", colObjectID)
	}
	known := make(map[string]bool, len(metadataColumns)+1)
	for _, c := range metadataColumns {
		known[c] = true
	}
	// true_z is consumed into Redshift and written back as "redshift".
	known[colTrueZ] = true

	var objects []*sim.Object
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading metadata row: %w", err)
		}
		p := rowParser{row: row, index: index}
		m := sim.Metadata{
			ObjectID:          row[index[colObjectID]],
			RA:                p.float(colRA),
			Dec:               p.float(colDec),
			GalL:              p.float(colGalL),
			GalB:              p.float(colGalB),
			DDF:               p.bool(colDDF),
			HostSpecz:         p.float(colHostSpecz),
			HostPhotoz:        p.float(colHostPhotoz),
			HostPhotozError:   p.float(colHostPhotozErr),
			Distmod:           p.float(colDistmod),
			MWEBV:             p.float(colMWEBV),
			Target:            p.int(colTarget),
			AugmentBrightness: p.float(colAugmentBrightness),
		}
		switch {
		case p.has(colRedshift):
			m.Redshift = p.float(colRedshift)
		case p.has(colTrueZ):
			m.Redshift = p.float(colTrueZ)
		default:
			m.Redshift = m.HostSpecz
		}
		if p.has(colGalactic) {
			m.Galactic = p.bool(colGalactic)
		} else {
			m.Galactic = m.HostPhotoz == 0
		}
		if p.err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, p.err)
		}
		for i, h := range header {
			if known[h] {
				continue
			}
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[h] = row[i]
		}
		if math.IsNaN(m.AugmentBrightness) {
			m.AugmentBrightness = 0
		}
		objects = append(objects, &sim.Object{Metadata: m})
	}
	return objects, nil
}

// ReadObservationsCSV parses an observation file into light curves keyed by
// object id. The passband column accepts indices (0..5) or band names.
func ReadObservationsCSV(r io.Reader) (map[string]sim.ObservationTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading observation header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	for _, c := range observationColumns[:5] {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("observations have no %s column", c)
		}
	}

	out := make(map[string]sim.ObservationTable)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading observation row: %w", err)
		}
		p := rowParser{row: row, index: index}
		band, err := sim.ParseBand(row[index["passband"]])
		if err != nil {
			return nil, fmt.Errorf("observation line %d: %w", line, err)
		}
		obs := sim.Observation{
			MJD:       p.float("mjd"),
			Band:      band,
			Flux:      p.float("flux"),
			FluxError: p.float("flux_err"),
			Detected:  p.bool("detected"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("observation line %d: %w", line, p.err)
		}
		id := row[index[colObjectID]]
		out[id] = append(out[id], obs)
	}
	return out, nil
}

// WriteCSV writes ds as <dir>/<name>_metadata.csv and, unless the dataset
// is metadata-only, <dir>/<name>.csv.
func WriteCSV(dir string, ds *Dataset) error {
	loader := CSVLoader{Dir: dir}
	if err := writeFile(loader.MetadataPath(ds.Name), func(w io.Writer) error {
		return WriteMetadataCSV(w, ds.Objects)
	}); err != nil {
		return err
	}
	if ds.MetadataOnly {
		return nil
	}
	return writeFile(loader.ObservationsPath(ds.Name), func(w io.Writer) error {
		return WriteObservationsCSV(w, ds.Objects)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteMetadataCSV writes the metadata of objects. Extra columns are
// appended in sorted order.
func WriteMetadataCSV(w io.Writer, objects []*sim.Object) error {
	extraSet := make(map[string]bool)
	for _, o := range objects {
		for k := range o.Metadata.Extra {
			extraSet[k] = true
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	writer := csv.NewWriter(w)
	if err := writer.Write(append(append([]string{}, metadataColumns...), extras...)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, o := range objects {
		m := o.Metadata
		row := []string{
			m.ObjectID,
			formatFloat(m.RA),
			formatFloat(m.Dec),
			formatFloat(m.GalL),
			formatFloat(m.GalB),
			formatBool(m.DDF),
			formatFloat(m.HostSpecz),
			formatFloat(m.HostPhotoz),
			formatFloat(m.HostPhotozError),
			formatFloat(m.Distmod),
			formatFloat(m.MWEBV),
			strconv.Itoa(m.Target),
			formatFloat(m.Redshift),
			formatBool(m.Galactic),
			formatFloat(m.AugmentBrightness),
		}
		for _, k := range extras {
			row = append(row, m.Extra[k])
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", m.ObjectID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteObservationsCSV writes every light curve, with PLAsTiCC passband
// indices.
func WriteObservationsCSV(w io.Writer, objects []*sim.Object) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(observationColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, o := range objects {
		for _, obs := range o.Observations {
			row := []string{
				o.Metadata.ObjectID,
				formatFloat(obs.MJD),
				strconv.Itoa(obs.Band.PassbandIndex()),
				formatFloat(obs.Flux),
				formatFloat(obs.FluxError),
				formatBool(obs.Detected),
			}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("writing CSV row for %s: %w", o.Metadata.ObjectID, err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// rowParser reads typed columns from one CSV row and keeps the first error.
// Missing columns and empty cells read as NaN / false.
type rowParser struct {
	row   []string
	index map[string]int
	err   error
}

func (p *rowParser) has(col string) bool {
	i, ok := p.index[col]
	return ok && i < len(p.row)
}

func (p *rowParser) float(col string) float64 {
	if !p.has(col) || p.row[p.index[col]] == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(p.row[p.index[col]], 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *rowParser) int(col string) int {
	if !p.has(col) || p.row[p.index[col]] == "" {
		return 0
	}
	v, err := strconv.Atoi(p.row[p.index[col]])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *rowParser) bool(col string) bool {
	if !p.has(col) || p.row[p.index[col]] == "" {
		return false
	}
	v, err := strconv.ParseBool(p.row[p.index[col]])
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
