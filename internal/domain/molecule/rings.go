package molecule

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// RingInfo is the smallest set of smallest rings of a molecule.
type RingInfo struct {
	atomRings [][]int
	bondRings [][]int
	atomCount []int
	bondCount []int
}

// NumRings returns the number of perceived rings.
func (r *RingInfo) NumRings() int { return len(r.atomRings) }

// AtomRings returns, per ring, the atom indices in ring traversal order.
func (r *RingInfo) AtomRings() [][]int { return copyNested(r.atomRings) }

// BondRings returns, per ring, the sorted bond indices.
func (r *RingInfo) BondRings() [][]int { return copyNested(r.bondRings) }

// IsRingBond reports whether bond i lies on a perceived ring.
func (r *RingInfo) IsRingBond(i int) bool { return r.bondCount[i] > 0 }

// IsRingAtom reports whether atom i lies on a perceived ring.
func (r *RingInfo) IsRingAtom(i int) bool { return r.atomCount[i] > 0 }

// NumAtomRings returns how many perceived rings contain atom i.
func (r *RingInfo) NumAtomRings(i int) int { return r.atomCount[i] }

func copyNested(in [][]int) [][]int {
	out := make([][]int, len(in))
	for i, s := range in {
		out[i] = append([]int(nil), s...)
	}
	return out
}

// Rings returns the ring information of m, perceiving it on first use.
func (m *Molecule) Rings() *RingInfo {
	m.ringOnce.Do(func() { m.rings = perceiveRings(m) })
	return m.rings
}

// HasRing reports whether the molecular graph contains a cycle.
func (m *Molecule) HasRing() bool { return m.Rings().NumRings() > 0 }

// ringCore returns the atoms that survive iterative removal of atoms with at
// most one neighbour. Only these can lie on a cycle.
func ringCore(m *Molecule) []bool {
	n := m.NumAtoms()
	deg := make([]int, n)
	alive := make([]bool, n)
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		deg[i] = m.Degree(i)
		alive[i] = true
		if deg[i] <= 1 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if !alive[i] {
			continue
		}
		alive[i] = false
		for _, nb := range m.Neighbors(i) {
			if alive[nb] {
				deg[nb]--
				if deg[nb] == 1 {
					queue = append(queue, nb)
				}
			}
		}
	}
	return alive
}

type ringCandidate struct {
	atoms []int
	bonds []int
	bits  *bitset.BitSet
}

// perceiveRings computes a minimum cycle basis (SSSR) from Horton candidate
// cycles, keeping the shortest cycles that are linearly independent over
// GF(2) until the basis reaches the cyclomatic number.
func perceiveRings(m *Molecule) *RingInfo {
	info := &RingInfo{
		atomCount: make([]int, m.NumAtoms()),
		bondCount: make([]int, m.NumBonds()),
	}

	core := ringCore(m)
	g := simple.NewUndirectedGraph()
	var coreAtoms []int
	for i, ok := range core {
		if ok {
			g.AddNode(simple.Node(i))
			coreAtoms = append(coreAtoms, i)
		}
	}
	var coreBonds []int
	for i, b := range m.bonds {
		if core[b.Begin] && core[b.End] {
			g.SetEdge(simple.Edge{F: simple.Node(b.Begin), T: simple.Node(b.End)})
			coreBonds = append(coreBonds, i)
		}
	}
	if len(coreBonds) == 0 {
		return info
	}

	cyclomatic := len(coreBonds) - len(coreAtoms) + len(topo.ConnectedComponents(g))
	if cyclomatic <= 0 {
		return info
	}

	candidates := hortonCandidates(m, g, coreAtoms, coreBonds)
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if len(ci.bonds) != len(cj.bonds) {
			return len(ci.bonds) < len(cj.bonds)
		}
		return lessInts(ci.bonds, cj.bonds)
	})

	type row struct {
		pivot uint
		vec   *bitset.BitSet
	}
	var basis []row
	for _, c := range candidates {
		if len(basis) == cyclomatic {
			break
		}
		v := c.bits.Clone()
		for _, r := range basis {
			if v.Test(r.pivot) {
				v.InPlaceSymmetricDifference(r.vec)
			}
		}
		pivot, ok := v.NextSet(0)
		if !ok {
			continue
		}
		basis = append(basis, row{pivot: pivot, vec: v})
		info.atomRings = append(info.atomRings, c.atoms)
		info.bondRings = append(info.bondRings, c.bonds)
		for _, a := range c.atoms {
			info.atomCount[a]++
		}
		for _, b := range c.bonds {
			info.bondCount[b]++
		}
	}
	return info
}

func hortonCandidates(m *Molecule, g graph.Undirected, coreAtoms, coreBonds []int) []ringCandidate {
	seen := make(map[string]bool)
	var out []ringCandidate
	for _, v := range coreAtoms {
		sh := path.DijkstraFrom(g.Node(int64(v)), g)
		for _, bi := range coreBonds {
			b := m.bonds[bi]
			px, _ := sh.To(int64(b.Begin))
			py, _ := sh.To(int64(b.End))
			if len(px) == 0 || len(py) == 0 || len(px)+len(py)-1 < 3 {
				continue
			}
			cycle, ok := joinPaths(px, py)
			if !ok {
				continue
			}
			c, ok := newCandidate(m, cycle)
			if !ok {
				continue
			}
			key := c.bits.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, c)
		}
	}
	return out
}

// joinPaths closes two shortest paths from a common root into a cycle. It
// fails when the paths meet anywhere other than the root.
func joinPaths(px, py []graph.Node) ([]int, bool) {
	used := make(map[int64]bool, len(px))
	for _, n := range px[1:] {
		used[n.ID()] = true
	}
	for _, n := range py[1:] {
		if used[n.ID()] {
			return nil, false
		}
	}
	cycle := make([]int, 0, len(px)+len(py)-1)
	for _, n := range px {
		cycle = append(cycle, int(n.ID()))
	}
	for i := len(py) - 1; i >= 1; i-- {
		cycle = append(cycle, int(py[i].ID()))
	}
	return cycle, true
}

func newCandidate(m *Molecule, cycle []int) (ringCandidate, bool) {
	bits := bitset.New(uint(m.NumBonds()))
	bonds := make([]int, 0, len(cycle))
	for i := range cycle {
		a, b := cycle[i], cycle[(i+1)%len(cycle)]
		bi, ok := m.BondBetween(a, b)
		if !ok {
			return ringCandidate{}, false
		}
		bits.Set(uint(bi))
		bonds = append(bonds, bi)
	}
	sort.Ints(bonds)
	return ringCandidate{atoms: cycle, bonds: bonds, bits: bits}, true
}

func lessInts(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
