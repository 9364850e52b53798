package fragment

import (
	"github.com/turtacn/fragvocab/internal/domain/molecule"
)

// RemoveAnyAtomBonds drops every wildcard atom and its bonds from a fragment
// that contains a ring. Acyclic fragments are returned unchanged. Remaining
// atoms keep their relative order, element, charge, isotope and aromatic
// flag, and have their hydrogens recomputed.
func RemoveAnyAtomBonds(m *molecule.Molecule) *molecule.Molecule {
	if !m.HasRing() {
		return m
	}
	b := molecule.NewBuilder()
	atomMap := make(map[int]int, m.NumAtoms())
	for i, a := range m.Atoms() {
		if a.IsWildcard() {
			continue
		}
		atomMap[i] = b.AddAtom(molecule.Atom{
			AtomicNum: a.AtomicNum,
			Charge:    a.Charge,
			Isotope:   a.Isotope,
			Aromatic:  a.Aromatic,
			HCount:    a.HCount,
		})
	}
	for _, bd := range m.Bonds() {
		begin, ok1 := atomMap[bd.Begin]
		end, ok2 := atomMap[bd.End]
		if !ok1 || !ok2 {
			continue
		}
		// Bonds of a valid molecule are unique, so AddBond cannot fail.
		_, _ = b.AddBond(begin, end, bd.Order)
	}
	return b.Build()
}

// ToSingleBondSkeleton keeps the heavy atoms of m as bare elements and joins
// them with single bonds. Hydrogens and wildcards are dropped.
func ToSingleBondSkeleton(m *molecule.Molecule) *molecule.Molecule {
	b := molecule.NewBuilder()
	atomMap := make(map[int]int, m.NumAtoms())
	for i, a := range m.Atoms() {
		if a.AtomicNum <= 1 {
			continue
		}
		atomMap[i] = b.AddAtom(molecule.Atom{AtomicNum: a.AtomicNum})
	}
	for _, bd := range m.Bonds() {
		begin, ok1 := atomMap[bd.Begin]
		end, ok2 := atomMap[bd.End]
		if !ok1 || !ok2 {
			continue
		}
		// Same uniqueness as in RemoveAnyAtomBonds.
		_, _ = b.AddBond(begin, end, molecule.BondSingle)
	}
	return b.Build()
}
