package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/fragvocab/pkg/errors"
)

func TestBuilder_BuildCompactsRemovedAtoms(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	c0 := b.AddAtom(Atom{AtomicNum: 6})
	c1 := b.AddAtom(Atom{AtomicNum: 6})
	o := b.AddAtom(Atom{AtomicNum: 8})
	_, err := b.AddBond(c0, c1, BondSingle)
	require.NoError(t, err)
	_, err = b.AddBond(c1, o, BondDouble)
	require.NoError(t, err)

	require.NoError(t, b.RemoveAtom(c0))
	m := b.Build()

	assert.Equal(t, 2, m.NumAtoms())
	assert.Equal(t, 1, m.NumBonds())
	assert.Equal(t, Bond{Begin: 0, End: 1, Order: BondDouble}, m.Bond(0))
	assert.Equal(t, 2, m.ImplicitHs(0))
}

func TestBuilder_RejectsInvalidEdits(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	a := b.AddAtom(Atom{AtomicNum: 6})
	c := b.AddAtom(Atom{AtomicNum: 6})

	_, err := b.AddBond(a, a, BondSingle)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidEdit))

	_, err = b.AddBond(a, 7, BondSingle)
	assert.Error(t, err)

	_, err = b.AddBond(a, c, BondSingle)
	require.NoError(t, err)
	_, err = b.AddBond(c, a, BondDouble)
	assert.Error(t, err)

	assert.Error(t, b.SetBondOrder(3, BondDouble))
	assert.Error(t, b.RemoveBond(-1))
	require.NoError(t, b.RemoveAtom(c))
	assert.Error(t, b.ReplaceAtom(c, Atom{AtomicNum: 7}))
}

func TestBuilderFrom_DoesNotAliasSource(t *testing.T) {
	t.Parallel()

	src := MustParseSMILES("CCO")
	b := BuilderFrom(src)
	require.NoError(t, b.ReplaceAtom(2, Atom{AtomicNum: 7}))
	require.NoError(t, b.SetBondOrder(0, BondDouble))
	out := b.Build()

	assert.Equal(t, 8, src.Atom(2).AtomicNum)
	assert.Equal(t, BondSingle, src.Bond(0).Order)
	assert.Equal(t, 7, out.Atom(2).AtomicNum)
	assert.Equal(t, BondDouble, out.Bond(0).Order)
}

func TestMolecule_AccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("CCO")
	atoms := m.Atoms()
	atoms[0].AtomicNum = 92
	bonds := m.Bonds()
	bonds[0].Order = BondTriple
	nb := m.AtomBonds(1)
	nb[0] = 99

	assert.Equal(t, 6, m.Atom(0).AtomicNum)
	assert.Equal(t, BondSingle, m.Bond(0).Order)
	assert.Equal(t, []int{0, 1}, m.AtomBonds(1))
	assert.ElementsMatch(t, []int{0, 2}, m.Neighbors(1))
}

func TestMolecule_CloneAndEqual(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("c1ccccc1O")
	c := m.Clone()
	assert.True(t, m.Equal(c))
	assert.NotSame(t, m, c)
	assert.False(t, m.Equal(MustParseSMILES("c1ccccc1N")))
}

func TestExplicitValence_AromaticRounding(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("c1ccc2ccccc2c1")
	// Fusion carbons carry three aromatic bonds.
	assert.Equal(t, 4, m.ExplicitValence(3))
	assert.Equal(t, 0, m.ImplicitHs(3))
	assert.Equal(t, 1, m.ImplicitHs(0))

	p := MustParseSMILES("c1ccsc1")
	assert.Equal(t, 2, p.ExplicitValence(3))
	assert.Equal(t, 0, p.ImplicitHs(3))
}

func TestAddHs(t *testing.T) {
	t.Parallel()

	m := AddHs(MustParseSMILES("CCO"))
	assert.Equal(t, 9, m.NumAtoms())
	assert.Equal(t, 8, m.NumBonds())
	for i := 0; i < 3; i++ {
		assert.True(t, m.Atom(i).NoImplicit)
		assert.Equal(t, 0, m.TotalHs(i))
	}
	for i := 3; i < 9; i++ {
		assert.Equal(t, 1, m.Atom(i).AtomicNum)
		assert.Equal(t, 1, m.Degree(i))
	}

	b := AddHs(MustParseSMILES("c1cc[nH]c1"))
	assert.Equal(t, 10, b.NumAtoms())
	assert.Equal(t, 0, b.Atom(3).HCount)
	assert.NoError(t, Sanitize(b))
}

func TestUpdatePropertyCache(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	c := b.AddAtom(Atom{AtomicNum: 6, NoImplicit: true})
	for i := 0; i < 5; i++ {
		h := b.AddAtom(Atom{AtomicNum: 1, NoImplicit: true})
		_, err := b.AddBond(c, h, BondSingle)
		require.NoError(t, err)
	}
	m := b.Build()

	_, err := UpdatePropertyCache(m, true)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeValence))

	out, err := UpdatePropertyCache(m, false)
	require.NoError(t, err)
	assert.True(t, out.Equal(m))
}

func TestFormula(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"CCO":         "C2H6O",
		"c1ccccc1":    "C6H6",
		"[NH4+]":      "H4N",
		"ClC(Cl)Cl":   "CHCl3",
		"*C":          "CH3*",
		"O=S(=O)(O)O": "H2O4S",
	}
	for smiles, want := range cases {
		assert.Equal(t, want, Formula(MustParseSMILES(smiles)), smiles)
	}
	assert.Equal(t, "C2H6O", Formula(AddHs(MustParseSMILES("CCO"))))
}
