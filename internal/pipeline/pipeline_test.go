package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/healthprep-cli/internal/loader"
	"github.com/KaramelBytes/healthprep-cli/internal/visual"
)

const header = "Patient ID,Visit Date,Age,Gender,Phone Number,Email,Cholesterol,Blood Pressure\n"

// fixture writes a messy CSV with one duplicated row and one extreme reading.
func fixture(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "%d,%02d/01/2024,%d,%s,(555) 123-%04d,p%d@example.com,%d,120/80\n",
			i, i%28+1, 30+i%40, []string{"M", "f", "Male", "FEMALE"}[i%4], i, i, 190+i%7)
	}
	b.WriteString("40,15/02/2024,150,x,12,nope,9999,high\n")
	b.WriteString("41,16/02/2024,52,F,555-000-1111,q@example.com,395,130/85\n")
	b.WriteString("41,16/02/2024,52,F,555-000-1111,q@example.com,395,130/85\n")
	path := filepath.Join(t.TempDir(), "healthcare_messy_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunFullPipeline(t *testing.T) {
	var out bytes.Buffer
	rec := &visual.Recorder{}
	res, err := Run(Options{Input: fixture(t), Surface: rec, Out: &out})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Log.DuplicatesRemoved)
	assert.Equal(t, 42, res.Table.Len())
	assert.Len(t, rec.Shown, 4)
	assert.Len(t, res.Charts, 4)
	require.NotNil(t, res.Anomalies)
	assert.True(t, res.Anomalies.Found)
	require.Len(t, res.Anomalies.Scores, 1, "395 is the only reading far from the rest")
	assert.Equal(t, 41, res.Anomalies.Scores[0].RowID)

	s := out.String()
	loaded := strings.Index(s, "Data loaded successfully!")
	cleaned := strings.Index(s, "Data cleaning complete!")
	detected := strings.Index(s, "Anomalies detected in 'Cholesterol':")
	summary := strings.Index(s, "Summary Statistics for 'Patient ID':")
	require.True(t, loaded >= 0 && cleaned > loaded && detected > cleaned && summary > detected, s)
	assert.Contains(t, s, "Summary Statistics for 'Cholesterol':")
	assert.NotContains(t, s, "Duplicates removed", "audit only prints in debug")
}

func TestRunDebugAndReport(t *testing.T) {
	var out bytes.Buffer
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")
	res, err := Run(Options{Input: fixture(t), Out: &out, Debug: true, ReportPath: reportPath, ReportFormat: "json"})
	require.NoError(t, err)
	assert.Empty(t, res.Charts, "no surface means no charts")
	assert.Contains(t, out.String(), "Duplicates removed: 1")
	assert.Contains(t, out.String(), "✓ Report written to")

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, 42.0, got["rows"])
	assert.NotEmpty(t, got["run_id"])
}

func TestRunStagesAndMissingColumn(t *testing.T) {
	var out bytes.Buffer
	res, err := Run(Options{Input: fixture(t), Out: &out, Stages: Detect, AnomalyColumn: "Triglycerides"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No column 'Triglycerides' for anomaly detection.")
	assert.NotContains(t, out.String(), "Summary Statistics")
	assert.Nil(t, res.Summaries)
}

func TestRunPNGSurface(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	var out bytes.Buffer
	res, err := Run(Options{Input: fixture(t), Out: &out, Stages: Visualize,
		Surface: &visual.PNGSurface{Dir: dir, Width: 400, Height: 300}})
	require.NoError(t, err)
	assert.Len(t, res.Report.Charts, 4)
	assert.Contains(t, out.String(), "4 chart(s) written to "+dir)
}

func TestRunLoadFailureIsFatal(t *testing.T) {
	_, err := Run(Options{Input: filepath.Join(t.TempDir(), "missing.csv"), Out: &bytes.Buffer{}})
	var le *loader.DataLoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
