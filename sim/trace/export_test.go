package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExport_WritesHeaderAndRecords(t *testing.T) {
	// GIVEN a trace with two attempts
	at := NewAugmentationTrace(TraceConfig{Level: TraceLevelAttempts})
	want := []AttemptRecord{
		{ReferenceID: "615", AugmentedID: "615_aug_0", Attempt: 0, Class: "galactic", Region: "wfd",
			Brightness: 0.37, TargetEpochs: 112, Epochs: 112, DetectedCount: 1, Reason: "not detected"},
		{ReferenceID: "615", AugmentedID: "615_aug_0", Attempt: 1, Class: "galactic", Region: "wfd",
			Brightness: -0.12, TargetEpochs: 140, Epochs: 140, DetectedCount: 9, Passed: true},
	}
	for _, r := range want {
		at.RecordAttempt(r)
	}
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "trace.yaml")
	dataPath := filepath.Join(dir, "trace.csv")

	// WHEN exported
	header := &TraceHeader{Version: 1, RunID: "run-1", Seed: 42, PerObject: 1}
	require.NoError(t, Export(header, at, headerPath, dataPath))

	// THEN the header parses back
	headerData, err := os.ReadFile(headerPath)
	require.NoError(t, err)
	var gotHeader TraceHeader
	require.NoError(t, yaml.Unmarshal(headerData, &gotHeader))
	if diff := cmp.Diff(*header, gotHeader); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// AND the records parse back
	data, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	got, err := ReadAttempts(bytes.NewReader(data))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAttempts_WrongColumnCount_ReturnsError(t *testing.T) {
	_, err := ReadAttempts(bytes.NewBufferString("a,b\n1,2\n"))
	require.Error(t, err)
}

func TestReadAttempts_CorruptCountsOrFlags_ReturnError(t *testing.T) {
	header := "reference_id,augmented_id,attempt,class,region,redshift,brightness,target_epochs,epochs,detected_count,passed,reason\n"
	valid := []string{"730", "730_aug_0", "0", "extragalactic", "ddf", "0.4", "0", "330", "60", "12", "true", ""}
	for _, col := range []int{7, 8, 9, 10} {
		row := append([]string(nil), valid...)
		row[col] = "garbage"
		input := header + strings.Join(row, ",") + "\n"
		_, err := ReadAttempts(bytes.NewBufferString(input))
		require.Error(t, err, "column %d", col)
		require.Contains(t, err.Error(), "garbage")
	}

	// The untouched row still parses.
	records, err := ReadAttempts(bytes.NewBufferString(header + strings.Join(valid, ",") + "\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 12, records[0].DetectedCount)
}
