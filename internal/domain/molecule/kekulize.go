package molecule

import (
	"fmt"
	"sort"

	"github.com/turtacn/fragvocab/pkg/errors"
)

// kekulizeBudget bounds the matching search on pathological aromatic systems.
const kekulizeBudget = 200000

type piRole int

const (
	piNone piRole = iota
	piRequired
	piOptional
)

// Kekulize returns a copy of m where every aromatic bond is replaced by an
// explicit single or double bond. Hydrogen counts are frozen so that the
// result describes the same molecule. With clearAromaticFlags set, atoms lose
// their aromatic flag as well.
func Kekulize(m *Molecule, clearAromaticFlags bool) (*Molecule, error) {
	if !hasAromatic(m) {
		return m.Clone(), nil
	}
	roles := make([]piRole, m.NumAtoms())
	for i := 0; i < m.NumAtoms(); i++ {
		roles[i] = piRoleOf(m, i)
	}

	k := &kekulizer{m: m, roles: roles, mate: make([]int, m.NumAtoms())}
	for i := range k.mate {
		k.mate[i] = -1
	}
	if !k.solve() {
		return nil, errors.New(errors.ErrCodeMoleculeKekulization, "can't kekulize aromatic system").
			WithDetail(k.unmatchedDetail())
	}

	// Indices come from m itself, so the builder edits below cannot fail.
	b := BuilderFrom(m)
	for i := 0; i < m.NumAtoms(); i++ {
		a := m.Atom(i)
		a.HCount = m.TotalHs(i)
		a.NoImplicit = true
		if clearAromaticFlags {
			a.Aromatic = false
		}
		_ = b.ReplaceAtom(i, a)
	}
	for bi, bd := range m.bonds {
		if bd.Order != BondAromatic {
			continue
		}
		order := BondSingle
		if k.mate[bd.Begin] == bd.End {
			order = BondDouble
		}
		_ = b.SetBondOrder(bi, order)
	}
	return b.Build(), nil
}

// piRoleOf decides whether an aromatic atom must take one double bond from
// its aromatic bonds, may take one (wildcards) or must not.
func piRoleOf(m *Molecule, i int) piRole {
	a := m.atoms[i]
	aromaticBonds := 0
	base := m.TotalHs(i)
	for _, bi := range m.adj[i] {
		bd := m.bonds[bi]
		if bd.Order == BondAromatic {
			aromaticBonds++
			base++
			continue
		}
		base += bd.Order.halfValence() / 2
	}
	if aromaticBonds == 0 && !a.Aromatic {
		return piNone
	}
	if a.AtomicNum == 0 {
		if aromaticBonds == 0 {
			return piNone
		}
		return piOptional
	}
	vals := valencesFor(a.AtomicNum, a.Charge)
	if len(vals) == 0 {
		return piOptional
	}
	target := vals[0]
	if base > target {
		// Hypervalent aromatic atoms such as thiophene S-oxides.
		for _, v := range vals {
			if v >= base {
				target = v
				break
			}
		}
	}
	if target-base >= 1 {
		return piRequired
	}
	return piNone
}

type kekulizer struct {
	m     *Molecule
	roles []piRole
	mate  []int
	steps int
}

func (k *kekulizer) partners(i int) []int {
	var out []int
	for _, bi := range k.m.adj[i] {
		bd := k.m.bonds[bi]
		if bd.Order != BondAromatic {
			continue
		}
		o := bd.Other(i)
		if k.roles[o] != piNone && k.mate[o] < 0 {
			out = append(out, o)
		}
	}
	sort.Ints(out)
	return out
}

func (k *kekulizer) solve() bool {
	k.steps++
	if k.steps > kekulizeBudget {
		return false
	}
	best, bestCount := -1, 0
	for i, r := range k.roles {
		if r != piRequired || k.mate[i] >= 0 {
			continue
		}
		c := len(k.partners(i))
		if best < 0 || c < bestCount {
			best, bestCount = i, c
		}
		if c == 0 {
			return false
		}
	}
	if best < 0 {
		return true
	}
	for _, w := range k.partners(best) {
		k.mate[best], k.mate[w] = w, best
		if k.solve() {
			return true
		}
		k.mate[best], k.mate[w] = -1, -1
	}
	return false
}

func (k *kekulizer) unmatchedDetail() string {
	var idx []int
	for i, r := range k.roles {
		if r == piRequired {
			idx = append(idx, i)
		}
	}
	return fmt.Sprintf("atoms %v", idx)
}
