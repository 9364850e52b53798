package fragment

import (
	"fmt"

	"github.com/turtacn/fragvocab/internal/domain/molecule"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// CutResult is the outcome of cutting one cluster out of its parent.
// Exactly one of Fragment and Err is set.
type CutResult struct {
	Cluster  Cluster
	Fragment *molecule.Molecule
	Err      error
}

// OK reports whether the cut produced a fragment.
func (r CutResult) OK() bool { return r.Err == nil && r.Fragment != nil }

type cutOptions struct {
	markers ftypes.MarkerMode
	logger  logging.Logger
}

// CutOption configures CreateSubstructure.
type CutOption func(*cutOptions)

// WithMarkerMode selects what replaces attachment markers.
func WithMarkerMode(mode ftypes.MarkerMode) CutOption {
	return func(o *cutOptions) { o.markers = mode }
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(l logging.Logger) CutOption {
	return func(o *cutOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// CreateSubstructure cuts cluster c out of m. Boundary bonds are broken with
// a marker on each side; the fragment is the connected part of the broken
// graph that holds the first atom of the cluster. Markers then become
// hydrogens joined by single bonds, or, in wildcard mode, every hydrogen
// becomes a wildcard.
//
// A failure never panics: it is returned in CutResult.Err after the parent's
// canonical SMILES has been logged.
func CreateSubstructure(m *molecule.Molecule, c Cluster, opts ...CutOption) (res CutResult) {
	o := cutOptions{markers: ftypes.MarkerHydrogen, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	res.Cluster = c

	defer func() {
		if r := recover(); r != nil {
			res.Fragment = nil
			res.Err = errors.Newf(errors.ErrCodeFragmentCutFailed, "panic while cutting cluster: %v", r)
		}
		if res.Err != nil {
			o.logger.Warn("fragment cut failed",
				logging.String("smiles", parentSMILES(m)),
				logging.String("tag", string(c.Tag)),
				logging.Ints("atoms", c.Atoms),
				logging.Err(res.Err))
		}
	}()

	frag, err := cut(m, c)
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "cut cluster "+c.Key())
		return res
	}
	frag, err = substituteMarkers(frag, o.markers)
	if err != nil {
		res.Err = errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "substitute markers")
		return res
	}
	res.Fragment = frag
	return res
}

func cut(m *molecule.Molecule, c Cluster) (*molecule.Molecule, error) {
	if len(c.Atoms) == 0 {
		return nil, errors.New(errors.ErrCodeClusterInvalid, "empty cluster")
	}
	for _, a := range c.Atoms {
		if a < 0 || a >= m.NumAtoms() {
			return nil, errors.Newf(errors.ErrCodeClusterInvalid, "atom %d not in molecule", a)
		}
	}

	var cutBonds []int
	for bi, bd := range m.Bonds() {
		if c.Contains(bd.Begin) != c.Contains(bd.End) {
			cutBonds = append(cutBonds, bi)
		}
	}
	split, err := molecule.FragmentOnBonds(m, cutBonds)
	if err != nil {
		return nil, err
	}
	keep := molecule.ConnectedBonds(split, c.Atoms[0])
	if len(keep) == 0 {
		return nil, errors.Newf(errors.ErrCodeClusterInvalid, "atom %d has no bonds", c.Atoms[0])
	}
	frag, err := molecule.PathToSubmol(split, keep)
	if err != nil {
		return nil, err
	}
	return molecule.UpdatePropertyCache(frag, true)
}

func substituteMarkers(frag *molecule.Molecule, mode ftypes.MarkerMode) (*molecule.Molecule, error) {
	b := molecule.BuilderFrom(frag)
	for i := 0; i < frag.NumAtoms(); i++ {
		a := frag.Atom(i)
		switch mode {
		case ftypes.MarkerWildcard:
			if a.AtomicNum == 1 {
				if err := b.ReplaceAtom(i, molecule.Atom{AtomicNum: 0, NoImplicit: true}); err != nil {
					return nil, err
				}
			}
		case ftypes.MarkerHydrogen, "":
			if !a.IsWildcard() {
				continue
			}
			if err := b.ReplaceAtom(i, molecule.Atom{AtomicNum: 1, NoImplicit: true}); err != nil {
				return nil, err
			}
			for _, bi := range frag.AtomBonds(i) {
				if err := demoteMarkerBond(b, bi, frag.Bond(bi), i); err != nil {
					return nil, err
				}
			}
		default:
			return nil, errors.Newf(errors.ErrCodeBadRequest, "unknown marker mode %q", mode)
		}
	}
	return b.Build(), nil
}

// demoteMarkerBond turns the bond between a marker and its boundary atom into
// a single bond. A hydrogen never takes part in an aromatic bond. Each order
// lost from a double or higher bond goes back to the boundary atom as one more
// explicit hydrogen, so its valence is unchanged.
func demoteMarkerBond(b *molecule.Builder, bi int, bd molecule.Bond, marker int) error {
	extra := 0
	switch bd.Order {
	case molecule.BondSingle:
		return nil
	case molecule.BondDouble:
		extra = 1
	case molecule.BondTriple:
		extra = 2
	case molecule.BondQuadruple:
		extra = 3
	}
	if err := b.SetBondOrder(bi, molecule.BondSingle); err != nil {
		return err
	}
	boundary := bd.Other(marker)
	for k := 0; k < extra; k++ {
		h := b.AddAtom(molecule.Atom{AtomicNum: 1, NoImplicit: true})
		if _, err := b.AddBond(boundary, h, molecule.BondSingle); err != nil {
			return err
		}
	}
	return nil
}

func parentSMILES(m *molecule.Molecule) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<unprintable: %v>", r)
		}
	}()
	if m == nil {
		return ""
	}
	return molecule.ToSMILES(m)
}

// FastBreak returns the submolecule made of the bonds whose two endpoints are
// both in cluster c, without markers.
func FastBreak(m *molecule.Molecule, c Cluster) (*molecule.Molecule, error) {
	frag, err := molecule.InducedSubmol(m, c.Atoms)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFragmentCutFailed, "induced cut "+c.Key())
	}
	return frag, nil
}
