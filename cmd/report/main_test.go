package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/risk"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const fixturePath = "../../internal/dataset/testdata/patients.csv"

func setup(t *testing.T, path string) *bytes.Buffer {
	t.Helper()
	logger = zap.NewNop()

	oldData, oldSource, oldBins := dataPath, source, ageBins
	dataPath, source, ageBins = path, "file", 6
	t.Cleanup(func() { dataPath, source, ageBins = oldData, oldSource, oldBins })

	return &bytes.Buffer{}
}

func newCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd
}

func TestSummaryCmd(t *testing.T) {
	out := setup(t, fixturePath)

	if err := runSummary(newCmd(out), nil); err != nil {
		t.Fatalf("runSummary failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Total patients", "8", "50.0 years", "37.5%", "Pneumonia", "IMSS", "50.0%"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary output missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryCmd_MissingFile(t *testing.T) {
	out := setup(t, filepath.Join(t.TempDir(), "covid19_data_nettoye.csv"))

	err := runSummary(newCmd(out), nil)
	if !errors.Is(err, dataset.ErrDatasetNotFound) {
		t.Errorf("expected ErrDatasetNotFound, got %v", err)
	}
}

func TestExportCmd(t *testing.T) {
	out := setup(t, fixturePath)
	path := filepath.Join(t.TempDir(), "stats.xlsx")

	cmd := newCmd(out)
	cmd.Flags().String("out", "", "")
	if err := cmd.Flags().Set("out", path); err != nil {
		t.Fatal(err)
	}

	if err := runExport(cmd, nil); err != nil {
		t.Fatalf("runExport failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("workbook not readable: %v", err)
	}
	defer f.Close()

	want := []string{"Summary", "Sex", "Age", "Comorbidities", "Survival"}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("sheets = %v, want %v", got, want)
	}
}

func assessCommand(t *testing.T, out *bytes.Buffer, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := newCmd(out)
	cmd.Flags().Int("age", risk.DefaultAge, "")
	cmd.Flags().String("sex", "female", "")
	for _, name := range []string{"pneumonia", "diabetes", "hypertension", "obesity", "cardiovascular", "renal_chronic", "tobacco", "asthma"} {
		cmd.Flags().Bool(name, false, "")
	}
	for k, v := range flags {
		if err := cmd.Flags().Set(k, v); err != nil {
			t.Fatal(err)
		}
	}
	return cmd
}

func TestAssessCmd(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
		want  string
	}{
		{"default", nil, "LOW RISK"},
		{"over sixty", map[string]string{"age": "61"}, "HIGH RISK"},
		{"sixty", map[string]string{"age": "60", "diabetes": "true"}, "LOW RISK"},
		{"pneumonia", map[string]string{"age": "10", "pneumonia": "true"}, "HIGH RISK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := setup(t, fixturePath)
			if err := runAssess(assessCommand(t, out, tt.flags), nil); err != nil {
				t.Fatalf("runAssess failed: %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q does not contain %q", out.String(), tt.want)
			}
		})
	}
}

func TestAssessCmd_InvalidInput(t *testing.T) {
	out := setup(t, fixturePath)

	err := runAssess(assessCommand(t, out, map[string]string{"age": "120"}), nil)
	if !errors.Is(err, risk.ErrInvalidAge) {
		t.Errorf("expected ErrInvalidAge, got %v", err)
	}

	err = runAssess(assessCommand(t, out, map[string]string{"sex": "unknown"}), nil)
	if err == nil {
		t.Error("expected error for invalid sex")
	}
}

func TestRootCommandTree(t *testing.T) {
	for _, name := range []string{"summary", "export", "assess"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %s not registered: %v", name, err)
		}
	}
	if rootCmd.PersistentFlags().Lookup("data") == nil {
		t.Error("--data flag missing")
	}
}

func TestPrepare_FillsFlagsFromConfig(t *testing.T) {
	setup(t, "")
	source = ""
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_FILE", fixturePath)
	t.Setenv("DATA_SOURCE", "")
	t.Cleanup(func() { logger = zap.NewNop() })

	require.NoError(t, prepare(&cobra.Command{}, nil))
	assert.Equal(t, fixturePath, dataPath)
	assert.Equal(t, "file", source)
}

func TestPrepare_ExplicitFlagWins(t *testing.T) {
	setup(t, "explicit.csv")
	source = ""
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATA_FILE", fixturePath)
	t.Cleanup(func() { logger = zap.NewNop() })

	require.NoError(t, prepare(&cobra.Command{}, nil))
	assert.Equal(t, "explicit.csv", dataPath)
}

func TestPrepare_MalformedConfigFile(t *testing.T) {
	setup(t, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unterminated\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	err := prepare(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
