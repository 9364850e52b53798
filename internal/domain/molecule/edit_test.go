package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/fragvocab/pkg/errors"
)

func TestFragmentOnBonds(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("CCO")
	f, err := FragmentOnBonds(m, []int{0})
	require.NoError(t, err)

	assert.Equal(t, 5, f.NumAtoms())
	assert.Equal(t, 3, f.NumBonds())
	assert.True(t, f.Atom(3).IsWildcard())
	assert.True(t, f.Atom(4).IsWildcard())

	_, ok := f.BondBetween(0, 1)
	assert.False(t, ok)
	bi, ok := f.BondBetween(0, 3)
	require.True(t, ok)
	assert.Equal(t, BondSingle, f.Bond(bi).Order)
	_, ok = f.BondBetween(1, 4)
	assert.True(t, ok)

	// Hydrogen counts of the original atoms are unchanged.
	for i := 0; i < m.NumAtoms(); i++ {
		assert.Equal(t, m.TotalHs(i), f.TotalHs(i), "atom %d", i)
	}
	assert.Equal(t, 3, m.NumAtoms(), "input untouched")
}

func TestFragmentOnBonds_KeepsOrder(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("C=CC")
	f, err := FragmentOnBonds(m, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 5, f.NumAtoms())
	bi, ok := f.BondBetween(0, 3)
	require.True(t, ok)
	assert.Equal(t, BondDouble, f.Bond(bi).Order)

	_, err = FragmentOnBonds(m, []int{7})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeInvalidEdit))
}

func TestConnectedBonds(t *testing.T) {
	t.Parallel()

	f, err := FragmentOnBonds(MustParseSMILES("CCO"), []int{0})
	require.NoError(t, err)

	// Bond 1-2 keeps index 0; the marker bonds follow.
	assert.Equal(t, []int{1}, ConnectedBonds(f, 0))
	assert.Equal(t, []int{0, 2}, ConnectedBonds(f, 2))
	assert.Empty(t, ConnectedBonds(MustParseSMILES("C"), 0))
	assert.Nil(t, ConnectedBonds(f, 99))
}

func TestPathToSubmol(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("CCO")
	sub, err := PathToSubmol(m, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 2, sub.NumAtoms())
	assert.Equal(t, 1, sub.NumBonds())
	assert.Equal(t, "CO", ToSMILES(sub))

	empty, err := PathToSubmol(m, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.NumAtoms())

	_, err = PathToSubmol(m, []int{-1})
	assert.Error(t, err)
}

func TestInducedSubmol(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("Cc1ccccc1")
	ring, err := InducedSubmol(m, []int{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 6, ring.NumAtoms())
	assert.Equal(t, 6, ring.NumBonds())
	assert.Equal(t, BondAromatic, ring.Bond(0).Order)

	pair, err := InducedSubmol(m, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, pair.NumAtoms())
}
