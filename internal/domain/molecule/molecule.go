// Package molecule implements the molecular graph engine used by the fragment
// decomposition: an immutable atom/bond graph, a builder that finalizes into
// it, SMILES reading and canonical writing, ring perception, hydrogen
// handling, kekulization and the structural edits needed to cut fragments.
package molecule

import (
	"fmt"
	"math"
	"sync"
)

// BondOrder is the chemical order of a bond.
type BondOrder int

const (
	BondUnspecified BondOrder = iota
	BondSingle
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// String returns the lowercase name of the order.
func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondQuadruple:
		return "quadruple"
	case BondAromatic:
		return "aromatic"
	default:
		return "unspecified"
	}
}

// halfValence returns the contribution of the bond to an atom's valence, in
// half-units so that aromatic bonds count 1.5.
func (o BondOrder) halfValence() int {
	switch o {
	case BondDouble:
		return 4
	case BondTriple:
		return 6
	case BondQuadruple:
		return 8
	case BondAromatic:
		return 3
	default:
		return 2
	}
}

// Atom is a value describing one atom. Its identity is its index in the
// owning Molecule.
type Atom struct {
	AtomicNum int
	Charge    int
	Isotope   int
	Aromatic  bool
	// HCount is the number of hydrogens attached without being graph atoms
	// (bracket hydrogens).
	HCount int
	// NoImplicit disables implicit hydrogen assignment for this atom.
	NoImplicit bool
	// MapNum is the SMILES atom class.
	MapNum int
}

// Symbol returns the element symbol of the atom.
func (a Atom) Symbol() string { return Symbol(a.AtomicNum) }

// IsWildcard reports whether the atom is a placeholder with atomic number 0.
func (a Atom) IsWildcard() bool { return a.AtomicNum == 0 }

// Bond joins two atoms of the same molecule.
type Bond struct {
	Begin int
	End   int
	Order BondOrder
}

// Other returns the endpoint opposite to atom.
func (b Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// Has reports whether atom is an endpoint of the bond.
func (b Bond) Has(atom int) bool { return b.Begin == atom || b.End == atom }

// Molecule is an immutable molecular graph. Instances are created by
// Builder.Build, ParseSMILES and the edit functions; none of them alias the
// storage of another Molecule.
type Molecule struct {
	atoms     []Atom
	bonds     []Bond
	adj       [][]int
	implicitH []int

	ringOnce sync.Once
	rings    *RingInfo
}

func newMolecule(atoms []Atom, bonds []Bond) *Molecule {
	m := &Molecule{atoms: atoms, bonds: bonds}
	m.adj = make([][]int, len(atoms))
	for i, b := range bonds {
		m.adj[b.Begin] = append(m.adj[b.Begin], i)
		m.adj[b.End] = append(m.adj[b.End], i)
	}
	m.implicitH = make([]int, len(atoms))
	for i := range atoms {
		m.implicitH[i] = m.computeImplicitH(i)
	}
	return m
}

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.bonds) }

// Atom returns a copy of atom i.
func (m *Molecule) Atom(i int) Atom { return m.atoms[i] }

// Bond returns a copy of bond i.
func (m *Molecule) Bond(i int) Bond { return m.bonds[i] }

// Atoms returns a copy of the atom list.
func (m *Molecule) Atoms() []Atom {
	out := make([]Atom, len(m.atoms))
	copy(out, m.atoms)
	return out
}

// Bonds returns a copy of the bond list.
func (m *Molecule) Bonds() []Bond {
	out := make([]Bond, len(m.bonds))
	copy(out, m.bonds)
	return out
}

// AtomBonds returns the indices of the bonds incident to atom i.
func (m *Molecule) AtomBonds(i int) []int {
	out := make([]int, len(m.adj[i]))
	copy(out, m.adj[i])
	return out
}

// Degree returns the number of graph neighbours of atom i.
func (m *Molecule) Degree(i int) int { return len(m.adj[i]) }

// Neighbors returns the atoms bonded to atom i, in bond order.
func (m *Molecule) Neighbors(i int) []int {
	out := make([]int, 0, len(m.adj[i]))
	for _, bi := range m.adj[i] {
		out = append(out, m.bonds[bi].Other(i))
	}
	return out
}

// BondBetween returns the index of the bond joining a and b.
func (m *Molecule) BondBetween(a, b int) (int, bool) {
	for _, bi := range m.adj[a] {
		if m.bonds[bi].Other(a) == b {
			return bi, true
		}
	}
	return -1, false
}

// ImplicitHs returns the implicit hydrogen count of atom i.
func (m *Molecule) ImplicitHs(i int) int { return m.implicitH[i] }

// TotalHs returns bracket plus implicit hydrogens of atom i. Hydrogens present
// as graph atoms are not included.
func (m *Molecule) TotalHs(i int) int { return m.atoms[i].HCount + m.implicitH[i] }

// HasWildcard reports whether any atom has atomic number 0.
func (m *Molecule) HasWildcard() bool {
	for _, a := range m.atoms {
		if a.IsWildcard() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m.
func (m *Molecule) Clone() *Molecule {
	return newMolecule(m.Atoms(), m.Bonds())
}

// Equal reports whether two molecules have identical atoms and bonds in the
// same order.
func (m *Molecule) Equal(o *Molecule) bool {
	if len(m.atoms) != len(o.atoms) || len(m.bonds) != len(o.bonds) {
		return false
	}
	for i := range m.atoms {
		if m.atoms[i] != o.atoms[i] {
			return false
		}
	}
	for i := range m.bonds {
		if m.bonds[i] != o.bonds[i] {
			return false
		}
	}
	return true
}

// String returns the canonical SMILES of m.
func (m *Molecule) String() string { return ToSMILES(m) }

// ─────────────────────────────────────────────────────────────────────────────
// Valence model
// ─────────────────────────────────────────────────────────────────────────────

// bondHalfValence sums bond contributions of atom i in half-units.
func (m *Molecule) bondHalfValence(i int) int {
	sum := 0
	for _, bi := range m.adj[i] {
		sum += m.bonds[bi].Order.halfValence()
	}
	return sum
}

// ExplicitValence returns the valence of atom i from its bonds and bracket
// hydrogens. Aromatic atoms whose aromatic bonds overshoot the allowed
// valence are rounded down to the nearest permitted value within 1.5.
func (m *Molecule) ExplicitValence(i int) int {
	return m.explicitValenceOf(i, m.atoms[i])
}

// explicitValenceOf evaluates the valence of the bonds of atom i as if the
// atom carried the properties of a.
func (m *Molecule) explicitValenceOf(i int, a Atom) int {
	accum := float64(m.bondHalfValence(i))/2 + float64(a.HCount)
	vals := valencesFor(a.AtomicNum, a.Charge)
	if a.Aromatic && len(vals) > 0 && accum > float64(vals[0]) {
		pval := vals[0]
		for _, v := range vals {
			if float64(v) > accum {
				break
			}
			pval = v
		}
		if accum-float64(pval) <= 1.5 {
			accum = float64(pval)
		}
	}
	return int(math.Round(accum + 0.1))
}

func (m *Molecule) computeImplicitH(i int) int {
	return m.implicitHOf(i, m.atoms[i])
}

// implicitHOf returns the hydrogens a valence model would add to atom i if it
// carried the properties of a. Aromatic atoms only use their default valence.
func (m *Molecule) implicitHOf(i int, a Atom) int {
	if a.NoImplicit || a.AtomicNum == 0 {
		return 0
	}
	vals := valencesFor(a.AtomicNum, a.Charge)
	if len(vals) == 0 {
		return 0
	}
	ev := m.explicitValenceOf(i, a)
	if a.Aromatic {
		if ev <= vals[0] {
			return vals[0] - ev
		}
		return 0
	}
	for _, v := range vals {
		if v >= ev {
			return v - ev
		}
	}
	return 0
}

// checkValence reports an error when atom i exceeds every allowed valence.
func (m *Molecule) checkValence(i int) error {
	a := m.atoms[i]
	vals := valencesFor(a.AtomicNum, a.Charge)
	if len(vals) == 0 {
		return nil
	}
	ev := m.ExplicitValence(i)
	if ev > vals[len(vals)-1] {
		return fmt.Errorf("explicit valence %d for atom #%d %s is greater than permitted", ev, i, a.Symbol())
	}
	return nil
}
