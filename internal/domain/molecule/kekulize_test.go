package molecule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/fragvocab/pkg/errors"
)

func countOrder(m *Molecule, order BondOrder) int {
	n := 0
	for _, b := range m.Bonds() {
		if b.Order == order {
			n++
		}
	}
	return n
}

func TestKekulize_DoubleBondCounts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		smiles  string
		doubles int
	}{
		{"c1ccccc1", 3},
		{"c1cc[nH]c1", 2},
		{"c1ccoc1", 2},
		{"c1ccsc1", 2},
		{"c1ccncc1", 3},
		{"c1ccc2ccccc2c1", 5},
		{"Cc1ccccc1", 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.smiles, func(t *testing.T) {
			t.Parallel()
			m := MustParseSMILES(tc.smiles)
			k, err := Kekulize(m, true)
			require.NoError(t, err)
			assert.Equal(t, tc.doubles, countOrder(k, BondDouble))
			assert.Zero(t, countOrder(k, BondAromatic))
			assert.Equal(t, Formula(m), Formula(k))
			for i := 0; i < k.NumAtoms(); i++ {
				assert.False(t, k.Atom(i).Aromatic)
				assert.NoError(t, k.checkValence(i))
			}
		})
	}
}

func TestKekulize_KeepsAromaticFlags(t *testing.T) {
	t.Parallel()

	k, err := Kekulize(MustParseSMILES("c1ccccc1"), false)
	require.NoError(t, err)
	for i := 0; i < k.NumAtoms(); i++ {
		assert.True(t, k.Atom(i).Aromatic)
		assert.Equal(t, 1, k.TotalHs(i))
	}
}

func TestKekulize_NoAromaticIsCopy(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("CC=O")
	k, err := Kekulize(m, true)
	require.NoError(t, err)
	assert.True(t, m.Equal(k))
	assert.NotSame(t, m, k)
}

func TestKekulize_Failure(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("c1ccnc1", WithoutSanitize())
	_, err := Kekulize(m, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeKekulization))

	_, err = ParseSMILES("c1ccnc1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeKekulization))
}

func TestKekulize_WildcardNeighbour(t *testing.T) {
	t.Parallel()

	// A ring opened by a cut keeps its aromatic flags and marker atoms.
	m := MustParseSMILES("*c1ccccc1", WithoutSanitize())
	k, err := Kekulize(m, true)
	require.NoError(t, err)
	assert.Equal(t, 3, countOrder(k, BondDouble))
}
