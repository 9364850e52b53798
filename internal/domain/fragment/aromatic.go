package fragment

import (
	"github.com/turtacn/fragvocab/internal/domain/molecule"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// UpdateAromatic prepares a fragment for serialization. An acyclic bond
// cannot be aromatic outside its parent ring, so non_ring fragments always
// lose their aromatic flags:
//
//   - preserve: aromatic bonds of a non_ring fragment become single and the
//     freed valence is filled with explicit hydrogens; ring fragments are
//     returned unchanged.
//   - kekulize: every fragment is written in Kekulé form without aromatic
//     flags.
//   - none: the fragment is returned as cut.
func UpdateAromatic(frag *molecule.Molecule, tag ftypes.ClusterTag, mode ftypes.AromaticMode, logger logging.Logger) (*molecule.Molecule, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger.Info("update aromatic",
		logging.String("smiles", molecule.ToSMILES(frag)),
		logging.String("tag", string(tag)),
		logging.String("mode", string(mode)))

	switch mode {
	case ftypes.AromaticNone:
		return frag, nil
	case ftypes.AromaticPreserve, "":
		if tag != ftypes.TagNonRing {
			return frag, nil
		}
		flat, err := dearomatize(frag, true)
		if err != nil {
			return nil, err
		}
		return molecule.AddHs(flat), nil
	case ftypes.AromaticKekulize:
		if tag == ftypes.TagNonRing {
			flat, err := dearomatize(frag, false)
			if err != nil {
				return nil, err
			}
			frag = flat
		}
		k, err := molecule.Kekulize(frag, true)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "kekulize "+string(tag)+" fragment")
		}
		return k, nil
	default:
		return nil, errors.Newf(errors.ErrCodeBadRequest, "unknown aromatic mode %q", mode)
	}
}

// dearomatize clears atom aromatic flags. With saturate set it also turns
// aromatic bonds into single bonds and lets the valence model assign
// hydrogens again.
func dearomatize(frag *molecule.Molecule, saturate bool) (*molecule.Molecule, error) {
	b := molecule.BuilderFrom(frag)
	for i := 0; i < frag.NumAtoms(); i++ {
		a := frag.Atom(i)
		a.Aromatic = false
		if saturate {
			a.NoImplicit = false
		}
		if err := b.ReplaceAtom(i, a); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "dearomatize fragment")
		}
	}
	if saturate {
		for bi, bd := range frag.Bonds() {
			if bd.Order != molecule.BondAromatic {
				continue
			}
			if err := b.SetBondOrder(bi, molecule.BondSingle); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "dearomatize fragment")
			}
		}
	}
	return b.Build(), nil
}
