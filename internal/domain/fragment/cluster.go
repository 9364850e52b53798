// Package fragment implements the tree decomposition of a molecular graph
// into ring and acyclic-bond clusters, the extraction of each cluster as a
// standalone fragment, and the vocabulary that collects fragment identities.
package fragment

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/turtacn/fragvocab/internal/domain/molecule"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// mergeThreshold is the number of shared atoms above which two rings belong
// to the same cluster.
const mergeThreshold = 3

// branchThreshold is the cluster count that makes an atom a branch atom.
const branchThreshold = 3

// Cluster is a tagged, sorted set of atom indices.
type Cluster struct {
	Tag   ftypes.ClusterTag
	Atoms []int
}

// Key returns a string identity used for set semantics.
func (c Cluster) Key() string {
	var sb strings.Builder
	sb.WriteString(string(c.Tag))
	sb.WriteByte(':')
	for i, a := range c.Atoms {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(a))
	}
	return sb.String()
}

// Contains reports whether atom a is part of the cluster.
func (c Cluster) Contains(a int) bool {
	i := sort.SearchInts(c.Atoms, a)
	return i < len(c.Atoms) && c.Atoms[i] == a
}

// IsRing reports whether the cluster is a ring system.
func (c Cluster) IsRing() bool { return c.Tag == ftypes.TagRing }

// Decomposition is the cluster set of one molecule.
type Decomposition struct {
	// Clusters are sorted by tag, then by atom tuple.
	Clusters []Cluster
	// BranchAtoms lists, ascending, the atoms found in three or more clusters
	// of the overlay of perceived rings and acyclic bonds.
	BranchAtoms []int
}

// RingClusters returns the number of ring clusters.
func (d Decomposition) RingClusters() int {
	n := 0
	for _, c := range d.Clusters {
		if c.IsRing() {
			n++
		}
	}
	return n
}

// GetClusterAtoms decomposes m into clusters. Every acyclic bond forms a
// two-atom non_ring cluster; every perceived ring forms a ring cluster, except
// that rings connected through pairs sharing at least three atoms are merged
// into one cluster holding the union of their atoms.
func GetClusterAtoms(m *molecule.Molecule) Decomposition {
	rings := m.Rings()

	nonRing := make(map[string][]int)
	for bi, bd := range m.Bonds() {
		if rings.IsRingBond(bi) {
			continue
		}
		t := []int{bd.Begin, bd.End}
		sort.Ints(t)
		nonRing[tupleKey(t)] = t
	}

	ringSet := make(map[string][]int)
	for _, r := range rings.AtomRings() {
		sort.Ints(r)
		ringSet[tupleKey(r)] = r
	}
	ringTuples := sortedTuples(ringSet)

	branch := branchAtoms(m.NumAtoms(), sortedTuples(nonRing), ringTuples)

	g := simple.NewUndirectedGraph()
	for i := 0; i < len(ringTuples); i++ {
		for j := i + 1; j < len(ringTuples); j++ {
			if intersectionSize(ringTuples[i], ringTuples[j]) >= mergeThreshold {
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}
	for _, comp := range topo.ConnectedComponents(g) {
		var merged []int
		for _, node := range comp {
			t := ringTuples[node.ID()]
			delete(ringSet, tupleKey(t))
			merged = append(merged, t...)
		}
		merged = uniqueSorted(merged)
		ringSet[tupleKey(merged)] = merged
	}

	var clusters []Cluster
	for _, t := range sortedTuples(nonRing) {
		clusters = append(clusters, Cluster{Tag: ftypes.TagNonRing, Atoms: t})
	}
	for _, t := range sortedTuples(ringSet) {
		clusters = append(clusters, Cluster{Tag: ftypes.TagRing, Atoms: t})
	}
	sortClusters(clusters)
	return Decomposition{Clusters: clusters, BranchAtoms: branch}
}

func branchAtoms(numAtoms int, groups ...[][]int) []int {
	count := make([]int, numAtoms)
	for _, tuples := range groups {
		for _, t := range tuples {
			for _, a := range t {
				count[a]++
			}
		}
	}
	out := []int{}
	for a, c := range count {
		if c >= branchThreshold {
			out = append(out, a)
		}
	}
	return out
}

func sortClusters(cs []Cluster) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Tag != cs[j].Tag {
			return cs[i].Tag < cs[j].Tag
		}
		return lessTuple(cs[i].Atoms, cs[j].Atoms)
	})
}

func tupleKey(t []int) string {
	parts := make([]string, len(t))
	for i, v := range t {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func sortedTuples(set map[string][]int) [][]int {
	out := make([][]int, 0, len(set))
	for _, t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return lessTuple(out[i], out[j]) })
	return out
}

func lessTuple(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// intersectionSize counts the common elements of two sorted tuples.
func intersectionSize(a, b []int) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}

func uniqueSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	j := 0
	for i, v := range out {
		if i == 0 || v != out[j-1] {
			out[j] = v
			j++
		}
	}
	return out[:j]
}
