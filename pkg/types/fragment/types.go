// Package fragment defines the plain data types shared by the decomposition
// domain, the corpus driver, the sinks and the CLI. No domain logic lives here;
// the package can be imported from any layer without creating cycles.
package fragment

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// ClusterTag: kind of a decomposition cluster
// ─────────────────────────────────────────────────────────────────────────────

// ClusterTag labels a cluster as a ring system or a single acyclic bond.
type ClusterTag string

const (
	// TagRing marks a perceived ring or a merged group of rings.
	TagRing ClusterTag = "ring"

	// TagNonRing marks the two endpoints of one acyclic bond.
	TagNonRing ClusterTag = "non_ring"
)

// IsValid reports whether t is a known tag.
func (t ClusterTag) IsValid() bool {
	return t == TagRing || t == TagNonRing
}

// ─────────────────────────────────────────────────────────────────────────────
// Variant: which vocabulary a fragment belongs to
// ─────────────────────────────────────────────────────────────────────────────

// Variant names one of the two vocabularies produced by a build.
type Variant string

const (
	// VariantAromatic is the vocabulary of fragments as cut.
	VariantAromatic Variant = "aromatic"

	// VariantReduced is the vocabulary after marker removal.
	VariantReduced Variant = "reduced"
)

// IsValid reports whether v is a known variant.
func (v Variant) IsValid() bool {
	return v == VariantAromatic || v == VariantReduced
}

// BaseName returns the output file stem of the variant.
func (v Variant) BaseName() string {
	switch v {
	case VariantAromatic:
		return "frag_with_aromatic"
	case VariantReduced:
		return "frag_reduced"
	default:
		return "frag_" + string(v)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Processing modes
// ─────────────────────────────────────────────────────────────────────────────

// AromaticMode selects how fragment aromaticity is handled before a fragment
// is serialized.
type AromaticMode string

const (
	// AromaticPreserve clears aromaticity on acyclic fragments only.
	AromaticPreserve AromaticMode = "preserve"
	// AromaticKekulize clears aromaticity on acyclic fragments and writes every
	// fragment in Kekulé form.
	AromaticKekulize AromaticMode = "kekulize"
	// AromaticNone serializes fragments as cut.
	AromaticNone AromaticMode = "none"
)

// IsValid reports whether m is a known mode.
func (m AromaticMode) IsValid() bool {
	switch m {
	case AromaticPreserve, AromaticKekulize, AromaticNone:
		return true
	}
	return false
}

// MarkerMode selects what replaces the attachment markers of a cut.
type MarkerMode string

const (
	// MarkerHydrogen turns every marker into a hydrogen atom.
	MarkerHydrogen MarkerMode = "hydrogen"
	// MarkerWildcard keeps markers and turns every hydrogen into a wildcard.
	MarkerWildcard MarkerMode = "wildcard"
)

// IsValid reports whether m is a known mode.
func (m MarkerMode) IsValid() bool {
	return m == MarkerHydrogen || m == MarkerWildcard
}

// Reducer selects the second-pass transformation of the vocabulary.
type Reducer string

const (
	// ReducerWildcard drops wildcard atoms from ring-containing fragments.
	ReducerWildcard Reducer = "wildcard"
	// ReducerSkeleton keeps heavy atoms only and makes every bond single.
	ReducerSkeleton Reducer = "skeleton"
)

// IsValid reports whether r is a known reducer.
func (r Reducer) IsValid() bool {
	return r == ReducerWildcard || r == ReducerSkeleton
}

// ─────────────────────────────────────────────────────────────────────────────
// Decomposition DTOs
// ─────────────────────────────────────────────────────────────────────────────

// ClusterDTO is the serializable form of one cluster.
type ClusterDTO struct {
	Tag      ClusterTag `json:"tag"`
	Atoms    []int      `json:"atoms"`
	Fragment string     `json:"fragment,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// DecompositionDTO describes the decomposition of a single molecule.
type DecompositionDTO struct {
	SMILES      string       `json:"smiles"`
	Canonical   string       `json:"canonical"`
	Formula     string       `json:"formula"`
	NumAtoms    int          `json:"num_atoms"`
	NumBonds    int          `json:"num_bonds"`
	NumRings    int          `json:"num_rings"`
	Clusters    []ClusterDTO `json:"clusters"`
	BranchAtoms []int        `json:"branch_atoms"`
}

// FragmentEvent is published for every distinct fragment of a build.
type FragmentEvent struct {
	RunID     string    `json:"run_id"`
	Variant   Variant   `json:"variant"`
	SMILES    string    `json:"smiles"`
	Timestamp time.Time `json:"timestamp"`
}

// ─────────────────────────────────────────────────────────────────────────────
// RunSummary: outcome of one corpus build
// ─────────────────────────────────────────────────────────────────────────────

// RunSummary holds the counters of a build.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Molecules        int           `json:"molecules"`
	SkippedMolecules int           `json:"skipped_molecules"`
	Clusters         int           `json:"clusters"`
	RingClusters     int           `json:"ring_clusters"`
	FragmentsCut     int           `json:"fragments_cut"`
	CutFailures      int           `json:"cut_failures"`
	AromaticVocab    int           `json:"aromatic_vocabulary"`
	ReducedVocab     int           `json:"reduced_vocabulary"`
	Duration         time.Duration `json:"duration"`
}

// String renders a one-line summary for console output.
func (s RunSummary) String() string {
	return fmt.Sprintf("run %s: %d molecules (%d skipped), %d clusters, %d fragments cut, %d failures, vocabulary %d aromatic / %d reduced in %s",
		s.RunID, s.Molecules, s.SkippedMolecules, s.Clusters, s.FragmentsCut, s.CutFailures,
		s.AromaticVocab, s.ReducedVocab, s.Duration.Round(time.Millisecond))
}
