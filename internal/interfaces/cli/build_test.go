package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestBuildCmd_EndToEnd(t *testing.T) {
	dir, cfgPath := writeConfig(t, "CCO\nc1ccccc1\n")

	out, err := execute(t, "build", "-c", cfgPath, "-o", "json", "--no-sinks")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var report buildReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("build output is not JSON: %v\n%s", err, out)
	}
	if report.Summary.Molecules != 2 {
		t.Errorf("expected 2 molecules, got %d", report.Summary.Molecules)
	}
	// ethane, methanol, methane, water and the benzene ring
	if report.Summary.AromaticVocab != 5 {
		t.Errorf("expected 5 aromatic fragments, got %d", report.Summary.AromaticVocab)
	}
	if len(report.Files) != 4 {
		t.Fatalf("expected 4 files, got %v", report.Files)
	}
	for _, name := range []string{"frag_with_aromatic.json", "frag_with_aromatic.csv", "frag_reduced.json", "frag_reduced.csv"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestBuildCmd_FlagOverrides(t *testing.T) {
	dir, cfgPath := writeConfig(t, "CCO\n")
	other := filepath.Join(dir, "other.smi")
	if err := os.WriteFile(other, []byte("c1ccccc1\nCC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "elsewhere")

	out, err := execute(t, "build", "-c", cfgPath, "-o", "json",
		"--corpus", other, "--out-dir", outDir, "--formats", "json",
		"--max-molecules", "1", "-j", "2", "--reducer", "skeleton")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	var report buildReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("build output is not JSON: %v", err)
	}
	if report.Summary.Molecules != 1 {
		t.Errorf("expected 1 molecule, got %d", report.Summary.Molecules)
	}
	if len(report.Files) != 2 {
		t.Errorf("expected json files only, got %v", report.Files)
	}
	for _, f := range report.Files {
		if !strings.HasPrefix(f, outDir) {
			t.Errorf("file %s not under %s", f, outDir)
		}
	}
}

func TestBuildCmd_InvalidMode(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	_, err := execute(t, "build", "-c", cfgPath, "--aromatic-mode", "flat")
	if err == nil || !strings.Contains(err.Error(), "aromatic_mode") {
		t.Errorf("expected aromatic mode error, got %v", err)
	}
}

func TestBuildCmd_InvalidMoleculeAborts(t *testing.T) {
	dir, cfgPath := writeConfig(t, "CCO\nC1CC\n")

	if _, err := execute(t, "build", "-c", cfgPath); err == nil {
		t.Fatal("expected build to fail on an unclosed ring")
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "frag_with_aromatic.json")); !os.IsNotExist(err) {
		t.Error("no vocabulary should be written after an aborted build")
	}

	out, err := execute(t, "build", "-c", cfgPath, "--skip-invalid")
	if err != nil {
		t.Fatalf("build with --skip-invalid failed: %v", err)
	}
	if !strings.Contains(out, "(1 skipped)") {
		t.Errorf("summary should report the skipped molecule: %q", out)
	}
}

func TestBuildCmd_MetricsTextfile(t *testing.T) {
	dir, cfgPath := writeConfig(t, "CCO\n")
	prom := filepath.Join(dir, "metrics.prom")
	t.Setenv("FRAGVOCAB_METRICS_ENABLED", "true")
	t.Setenv("FRAGVOCAB_METRICS_TEXTFILE_PATH", prom)

	if _, err := execute(t, "build", "-c", cfgPath); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	data, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}
	if !strings.Contains(string(data), `fragvocab_vocabulary_size{variant="aromatic"} 4`) {
		t.Errorf("unexpected metrics:\n%s", data)
	}
}

func TestBuildReport_TableRows(t *testing.T) {
	r := buildReport{Files: []string{"a.json", "b.csv"}}
	rows := r.TableRows()
	if len(rows) != 12 {
		t.Errorf("expected 12 rows, got %d", len(rows))
	}
	if rows[len(rows)-1][1] != "b.csv" {
		t.Errorf("last row should be the last file, got %v", rows[len(rows)-1])
	}
	if len(r.TableHeaders()) != 2 {
		t.Error("expected two columns")
	}
}
