package cli

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"

	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

func TestDecomposeCmd_JSON(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	out, err := execute(t, "decompose", "-c", cfgPath, "-o", "json", "CCO", "c1ccccc1")
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}

	var dtos []ftypes.DecompositionDTO
	if err := json.Unmarshal([]byte(out), &dtos); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 decompositions, got %d", len(dtos))
	}
	if len(dtos[0].Clusters) != 8 {
		t.Errorf("ethanol: expected 8 clusters, got %d", len(dtos[0].Clusters))
	}
	rings := 0
	for _, c := range dtos[1].Clusters {
		if c.Tag == ftypes.TagRing {
			rings++
			if len(c.Atoms) != 6 {
				t.Errorf("benzene ring should have 6 atoms, got %v", c.Atoms)
			}
		}
	}
	if rings != 1 {
		t.Errorf("benzene: expected 1 ring cluster, got %d", rings)
	}
}

func TestDecomposeCmd_Text(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")
	out, err := execute(t, "decompose", "-c", cfgPath, "C1CC2CCC1C2")
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	// norbornane rings share three atoms and form one cluster
	rings := 0
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == string(ftypes.TagRing) {
			rings++
		}
	}
	if rings != 1 {
		t.Errorf("expected one merged ring cluster:\n%s", out)
	}
}

func TestDecomposeCmd_Errors(t *testing.T) {
	_, cfgPath := writeConfig(t, "CCO\n")

	if _, err := execute(t, "decompose", "-c", cfgPath); err == nil {
		t.Error("expected error without arguments")
	}
	if _, err := execute(t, "decompose", "-c", cfgPath, "C1CC"); err == nil {
		t.Error("expected error for unparsable SMILES")
	}
	if _, err := execute(t, "decompose", "-c", cfgPath, "--marker-mode", "x", "CC"); err == nil {
		t.Error("expected error for invalid marker mode")
	}
}
