package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var initOnce sync.Once

// runCmd is a helper to execute the root command with args and return stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	initOnce.Do(func() { cobra.OnInitialize(loadConfig) })
	// Reset sticky flags that may persist Changed state across invocations
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(fl *pflag.Flag) {
			_ = fl.Value.Set(fl.DefValue)
			fl.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	reset(rootCmd.Flags())
	cfg, cfgErr = nil, nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// setup isolates HOME and the working directory and writes a small dataset.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, _ := os.Getwd()
	work := t.TempDir()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var b strings.Builder
	b.WriteString("Visit Date,Age,Gender,Phone Number,Email,Cholesterol,Blood Pressure\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "%02d/03/2024,%d,%s,555-010-%04d,p%d@example.com,%d,120/80\n",
			i%28+1, 25+i, []string{"M", "F"}[i%2], i, i, 200+i%5)
	}
	b.WriteString("29/03/2024,61,F,555-999-0000,z@example.com,399,140/90\n")
	if err := os.WriteFile(filepath.Join(work, "healthcare_messy_data.csv"), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return work
}

func TestCLI_DefaultRunWritesChartsAndReport(t *testing.T) {
	work := setup(t)
	out, err := runCmd(t, "--report", "run.yaml", "--report-format", "yaml")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{
		"Data loaded successfully!",
		"Data cleaning complete!",
		"Anomalies detected in 'Cholesterol':",
		"Summary Statistics for 'Age':",
		"chart(s) written to charts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	pngs, _ := filepath.Glob(filepath.Join(work, "charts", "*.png"))
	if len(pngs) != 4 {
		t.Errorf("expected 4 charts, got %v", pngs)
	}
	b, err := os.ReadFile(filepath.Join(work, "run.yaml"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(b), "run_id:") {
		t.Errorf("unexpected report:\n%s", b)
	}
}

func TestCLI_NoChartsAndMissingInput(t *testing.T) {
	work := setup(t)
	if _, err := runCmd(t, "--no-charts"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, "charts")); !os.IsNotExist(err) {
		t.Errorf("charts dir created with --no-charts")
	}
	if _, err := runCmd(t, "-i", "nope.csv", "--no-charts"); err == nil {
		t.Fatal("expected load failure")
	} else if !strings.Contains(err.Error(), "nope.csv") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestCLI_AnomaliesColumnArg(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "anomalies", "Triglycerides")
	if err != nil {
		t.Fatalf("anomalies failed: %v", err)
	}
	if !strings.Contains(out, "No column 'Triglycerides' for anomaly detection.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Summary Statistics") {
		t.Error("anomalies must not summarize")
	}
}

func TestCLI_Summary(t *testing.T) {
	setup(t)
	out, err := runCmd(t, "summary", "--preview-rows", "3")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(out, "Summary Statistics for 'Cholesterol':") {
		t.Errorf("missing summary:\n%s", out)
	}
	if strings.Contains(out, "Anomalies detected") {
		t.Error("summary must not run detection")
	}
	if !strings.Contains(out, "more rows") {
		t.Error("preview should be truncated to 3 rows")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	setup(t)
	if _, err := runCmd(t, "config", "set", "anomaly_column", "Age"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".healthprep", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "anomaly_column: Age") {
		t.Errorf("unexpected config:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "report_format", "xml"); err == nil {
		t.Error("expected validation error for report_format")
	}
	if _, err := runCmd(t, "config", "set", "bogus", "1"); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', "tab": '\t', `\t`: '\t', ";": ';', "|": '|'}
	for in, want := range cases {
		got, err := parseDelimiter(in)
		if err != nil || got != want {
			t.Errorf("parseDelimiter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseDelimiter("::"); err == nil {
		t.Error("expected error")
	}
}
