package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig creates a config file and a corpus in a temp dir and returns
// the dir and the config path.
func writeConfig(t *testing.T, corpus string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "corpus.smi"), []byte(corpus), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := "log:\n  level: error\n" +
		"corpus:\n  path: " + filepath.Join(dir, "corpus.smi") + "\n" +
		"output:\n  dir: " + filepath.Join(dir, "out") + "\n"
	path := filepath.Join(dir, "fragvocab.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "fragvocab" {
		t.Errorf("expected Use='fragvocab', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("Short and Long should not be empty")
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}
	for _, name := range []string{"build", "decompose", "reduce", "migrate", "version"} {
		if !subNames[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("flag %q should exist", name)
		}
	}
	if f := cmd.PersistentFlags().Lookup("verbose"); f.Shorthand != "v" {
		t.Errorf("verbose flag shorthand should be 'v', got %q", f.Shorthand)
	}
	if f := cmd.PersistentFlags().Lookup("output"); f.DefValue != "text" {
		t.Errorf("output flag default should be 'text', got %q", f.DefValue)
	}
}

func TestVersionCmd_Output(t *testing.T) {
	origVersion := Version
	Version = "1.2.3"
	defer func() { Version = origVersion }()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if !strings.Contains(out, "fragvocab 1.2.3") {
		t.Errorf("unexpected version output: %q", out)
	}

	out, err = execute(t, "version", "-o", "json")
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	var info BuildInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version output is not JSON: %v", err)
	}
	if info.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", info.Version)
	}
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	if _, err := execute(t, "unknownsubcommand"); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	_, err := execute(t, "decompose", "-c", cfgPath, "-o", "yaml", "CCO")
	if err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Errorf("expected output format error, got %v", err)
	}
}

func TestExecute_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "decompose", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "CCO")
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("expected missing config error, got %v", err)
	}
}

func TestExecute_InvalidLogLevel(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	if _, err := execute(t, "decompose", "-c", cfgPath, "--log-level", "loud", "CCO"); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := newDecomposeCmd()
	cmd.SetContext(context.Background())
	if _, err := GetCLIContext(cmd); err == nil {
		t.Error("expected error without CLIContext")
	}
}

func TestPrintResult_Table(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	out, err := execute(t, "decompose", "-c", cfgPath, "-o", "table", "CO")
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if !strings.Contains(out, string(ftypes.TagNonRing)) {
		t.Errorf("table should list non_ring clusters:\n%s", out)
	}
	if !strings.Contains(out, "+") {
		t.Errorf("table should have borders:\n%s", out)
	}
}
