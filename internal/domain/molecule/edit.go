package molecule

import (
	"sort"

	"github.com/turtacn/fragvocab/pkg/errors"
)

// FragmentOnBonds returns a copy of m with each listed bond removed and a
// wildcard atom (atomic number 0) attached to each former endpoint by a bond
// of the original order. Original atoms keep their indices; wildcards are
// appended in bond order, begin side first.
func FragmentOnBonds(m *Molecule, bondIdx []int) (*Molecule, error) {
	idx := uniqueSorted(bondIdx)
	b := BuilderFrom(m)
	for _, bi := range idx {
		if bi < 0 || bi >= m.NumBonds() {
			return nil, errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "bond index %d out of range", bi)
		}
		if err := b.RemoveBond(bi); err != nil {
			return nil, err
		}
	}
	for _, bi := range idx {
		bd := m.Bond(bi)
		for _, end := range []int{bd.Begin, bd.End} {
			w := b.AddAtom(Atom{AtomicNum: 0, NoImplicit: true})
			if _, err := b.AddBond(end, w, bd.Order); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// PathToSubmol returns a new molecule made of the listed bonds and their
// endpoint atoms. Atoms are renumbered in ascending order of their original
// index; bonds keep the ascending order of their original index.
func PathToSubmol(m *Molecule, bondIdx []int) (*Molecule, error) {
	sub, _, err := pathToSubmol(m, bondIdx)
	return sub, err
}

func pathToSubmol(m *Molecule, bondIdx []int) (*Molecule, map[int]int, error) {
	idx := uniqueSorted(bondIdx)
	var atomIdx []int
	seen := make(map[int]bool)
	for _, bi := range idx {
		if bi < 0 || bi >= m.NumBonds() {
			return nil, nil, errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "bond index %d out of range", bi)
		}
		bd := m.Bond(bi)
		for _, a := range []int{bd.Begin, bd.End} {
			if !seen[a] {
				seen[a] = true
				atomIdx = append(atomIdx, a)
			}
		}
	}
	sort.Ints(atomIdx)

	b := NewBuilder()
	atomMap := make(map[int]int, len(atomIdx))
	for _, a := range atomIdx {
		atomMap[a] = b.AddAtom(m.Atom(a))
	}
	for _, bi := range idx {
		bd := m.Bond(bi)
		if _, err := b.AddBond(atomMap[bd.Begin], atomMap[bd.End], bd.Order); err != nil {
			return nil, nil, err
		}
	}
	return b.Build(), atomMap, nil
}

// InducedSubmol returns the molecule made of every bond whose two endpoints
// are in atoms.
func InducedSubmol(m *Molecule, atoms []int) (*Molecule, error) {
	in := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		in[a] = true
	}
	var keep []int
	for i, bd := range m.bonds {
		if in[bd.Begin] && in[bd.End] {
			keep = append(keep, i)
		}
	}
	return PathToSubmol(m, keep)
}

// ConnectedBonds returns, in ascending order, every bond reachable from atom
// start by breadth-first traversal.
func ConnectedBonds(m *Molecule, start int) []int {
	if start < 0 || start >= m.NumAtoms() {
		return nil
	}
	visited := make([]bool, m.NumAtoms())
	used := make(map[int]bool)
	queue := []int{start}
	visited[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, bi := range m.adj[cur] {
			used[bi] = true
			o := m.bonds[bi].Other(cur)
			if !visited[o] {
				visited[o] = true
				queue = append(queue, o)
			}
		}
	}
	out := make([]int, 0, len(used))
	for bi := range used {
		out = append(out, bi)
	}
	sort.Ints(out)
	return out
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
