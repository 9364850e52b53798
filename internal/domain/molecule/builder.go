package molecule

import (
	"github.com/turtacn/fragvocab/pkg/errors"
)

// Builder accumulates atoms and bonds by index and finalizes them into an
// immutable Molecule. Removed atoms and bonds are tombstoned until Build
// compacts the indices. A Builder never shares storage with the Molecule it
// was seeded from or with the Molecules it builds.
type Builder struct {
	atoms       []Atom
	bonds       []Bond
	atomRemoved []bool
	bondRemoved []bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuilderFrom returns a builder seeded with a copy of m.
func BuilderFrom(m *Molecule) *Builder {
	b := &Builder{
		atoms:       m.Atoms(),
		bonds:       m.Bonds(),
		atomRemoved: make([]bool, m.NumAtoms()),
		bondRemoved: make([]bool, m.NumBonds()),
	}
	return b
}

// NumAtoms returns the number of atom slots, including removed ones.
func (b *Builder) NumAtoms() int { return len(b.atoms) }

// AddAtom appends an atom and returns its index.
func (b *Builder) AddAtom(a Atom) int {
	b.atoms = append(b.atoms, a)
	b.atomRemoved = append(b.atomRemoved, false)
	return len(b.atoms) - 1
}

// Atom returns the atom stored at idx.
func (b *Builder) Atom(idx int) Atom { return b.atoms[idx] }

func (b *Builder) liveAtom(idx int) error {
	if idx < 0 || idx >= len(b.atoms) || b.atomRemoved[idx] {
		return errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "atom index %d out of range", idx)
	}
	return nil
}

// AddBond joins two live atoms and returns the bond index. Self bonds and
// duplicate bonds are rejected.
func (b *Builder) AddBond(begin, end int, order BondOrder) (int, error) {
	if err := b.liveAtom(begin); err != nil {
		return -1, err
	}
	if err := b.liveAtom(end); err != nil {
		return -1, err
	}
	if begin == end {
		return -1, errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "atom %d cannot bond to itself", begin)
	}
	if _, ok := b.findBond(begin, end); ok {
		return -1, errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "bond %d-%d already exists", begin, end)
	}
	b.bonds = append(b.bonds, Bond{Begin: begin, End: end, Order: order})
	b.bondRemoved = append(b.bondRemoved, false)
	return len(b.bonds) - 1, nil
}

func (b *Builder) findBond(x, y int) (int, bool) {
	for i, bd := range b.bonds {
		if b.bondRemoved[i] {
			continue
		}
		if (bd.Begin == x && bd.End == y) || (bd.Begin == y && bd.End == x) {
			return i, true
		}
	}
	return -1, false
}

// Bond returns the bond stored at idx.
func (b *Builder) Bond(idx int) Bond { return b.bonds[idx] }

// ReplaceAtom overwrites the atom at idx, keeping its bonds.
func (b *Builder) ReplaceAtom(idx int, a Atom) error {
	if err := b.liveAtom(idx); err != nil {
		return err
	}
	b.atoms[idx] = a
	return nil
}

// SetBondOrder changes the order of a live bond.
func (b *Builder) SetBondOrder(idx int, order BondOrder) error {
	if idx < 0 || idx >= len(b.bonds) || b.bondRemoved[idx] {
		return errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "bond index %d out of range", idx)
	}
	b.bonds[idx].Order = order
	return nil
}

// RemoveBond tombstones a bond.
func (b *Builder) RemoveBond(idx int) error {
	if idx < 0 || idx >= len(b.bonds) || b.bondRemoved[idx] {
		return errors.Newf(errors.ErrCodeMoleculeInvalidEdit, "bond index %d out of range", idx)
	}
	b.bondRemoved[idx] = true
	return nil
}

// RemoveAtom tombstones an atom together with every bond touching it.
func (b *Builder) RemoveAtom(idx int) error {
	if err := b.liveAtom(idx); err != nil {
		return err
	}
	b.atomRemoved[idx] = true
	for i, bd := range b.bonds {
		if !b.bondRemoved[i] && bd.Has(idx) {
			b.bondRemoved[i] = true
		}
	}
	return nil
}

// Build compacts the live atoms and bonds, preserving their relative order,
// and returns a new Molecule.
func (b *Builder) Build() *Molecule {
	remap := make([]int, len(b.atoms))
	atoms := make([]Atom, 0, len(b.atoms))
	for i, a := range b.atoms {
		if b.atomRemoved[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(atoms)
		atoms = append(atoms, a)
	}
	bonds := make([]Bond, 0, len(b.bonds))
	for i, bd := range b.bonds {
		if b.bondRemoved[i] {
			continue
		}
		bonds = append(bonds, Bond{Begin: remap[bd.Begin], End: remap[bd.End], Order: bd.Order})
	}
	return newMolecule(atoms, bonds)
}
