package molecule

import (
	"github.com/turtacn/fragvocab/pkg/errors"
)

// AddHs returns a copy of m where every bracket and implicit hydrogen is an
// explicit hydrogen atom joined by a single bond. Hydrogens are appended after
// the existing atoms in the order of their parents. Parents keep their
// hydrogen count fixed afterwards.
func AddHs(m *Molecule) *Molecule {
	b := BuilderFrom(m)
	for i := 0; i < m.NumAtoms(); i++ {
		a := m.Atom(i)
		n := m.TotalHs(i)
		a.HCount = 0
		a.NoImplicit = true
		// i is a live index of m.
		_ = b.ReplaceAtom(i, a)
		for k := 0; k < n; k++ {
			h := b.AddAtom(Atom{AtomicNum: 1, NoImplicit: true})
			// Fresh atoms cannot collide with existing bonds.
			_, _ = b.AddBond(i, h, BondSingle)
		}
	}
	return b.Build()
}

// Sanitize validates valences and, when the molecule carries aromatic atoms
// or bonds,
// that a Kekulé structure exists.
func Sanitize(m *Molecule) error {
	if err := checkValences(m); err != nil {
		return err
	}
	if hasAromatic(m) {
		if _, err := Kekulize(m, false); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePropertyCache returns a copy of m with implicit hydrogens and ring
// information recomputed. With strict set, a valence violation is an error.
func UpdatePropertyCache(m *Molecule, strict bool) (*Molecule, error) {
	out := m.Clone()
	if strict {
		if err := checkValences(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkValences(m *Molecule) error {
	for i := 0; i < m.NumAtoms(); i++ {
		if err := m.checkValence(i); err != nil {
			return errors.Wrap(err, errors.ErrCodeMoleculeValence, "valence check failed")
		}
	}
	return nil
}

func hasAromatic(m *Molecule) bool {
	for _, a := range m.atoms {
		if a.Aromatic {
			return true
		}
	}
	for _, b := range m.bonds {
		if b.Order == BondAromatic {
			return true
		}
	}
	return false
}
