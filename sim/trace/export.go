package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TraceHeader describes the run an exported trace belongs to.
type TraceHeader struct {
	Version   int    `yaml:"trace_version"`
	RunID     string `yaml:"run_id"`
	Seed      int64  `yaml:"seed"`
	CreatedAt string `yaml:"created_at,omitempty"`
	Reference string `yaml:"reference_dataset,omitempty"`
	PerObject int    `yaml:"per_object"`
}

// CSV column headers for exported attempt records.
var attemptColumns = []string{
	"reference_id", "augmented_id", "attempt", "class", "region",
	"redshift", "brightness", "target_epochs", "epochs", "detected_count",
	"passed", "reason",
}

// Export writes the trace header (YAML) and attempt records (CSV) to
// separate files.
func Export(header *TraceHeader, at *AugmentationTrace, headerPath, dataPath string) error {
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling trace header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating trace data file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var records []AttemptRecord
	if at != nil {
		records = at.Attempts
	}
	return WriteAttempts(file, records)
}

// WriteAttempts writes records as CSV with a header row.
func WriteAttempts(w io.Writer, records []AttemptRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(attemptColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ReferenceID,
			r.AugmentedID,
			strconv.Itoa(r.Attempt),
			r.Class,
			r.Region,
			strconv.FormatFloat(r.Redshift, 'g', -1, 64),
			strconv.FormatFloat(r.Brightness, 'g', -1, 64),
			strconv.Itoa(r.TargetEpochs),
			strconv.Itoa(r.Epochs),
			strconv.Itoa(r.DetectedCount),
			strconv.FormatBool(r.Passed),
			r.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", r.AugmentedID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadAttempts parses CSV written by WriteAttempts.
func ReadAttempts(r io.Reader) ([]AttemptRecord, error) {
	reader := csv.NewReader(r)
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var records []AttemptRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) != len(attemptColumns) {
			return nil, fmt.Errorf("CSV row has %d columns, expected %d", len(row), len(attemptColumns))
		}
		rec, err := parseAttempt(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseAttempt(row []string) (AttemptRecord, error) {
	attempt, err := strconv.Atoi(row[2])
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing attempt %q: %w", row[2], err)
	}
	redshift, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing redshift %q: %w", row[5], err)
	}
	brightness, err := strconv.ParseFloat(row[6], 64)
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing brightness %q: %w", row[6], err)
	}
	targetEpochs, err := strconv.Atoi(row[7])
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing target_epochs %q: %w", row[7], err)
	}
	epochs, err := strconv.Atoi(row[8])
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing epochs %q: %w", row[8], err)
	}
	detected, err := strconv.Atoi(row[9])
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing detected_count %q: %w", row[9], err)
	}
	passed, err := strconv.ParseBool(row[10])
	if err != nil {
		return AttemptRecord{}, fmt.Errorf("parsing passed %q: %w", row[10], err)
	}

	return AttemptRecord{
		ReferenceID:   row[0],
		AugmentedID:   row[1],
		Attempt:       attempt,
		Class:         row[3],
		Region:        row[4],
		Redshift:      redshift,
		Brightness:    brightness,
		TargetEpochs:  targetEpochs,
		Epochs:        epochs,
		DetectedCount: detected,
		Passed:        passed,
		Reason:        row[11],
	}, nil
}
