package molecule

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedRingSizes(r *RingInfo) []int {
	var sizes []int
	for _, ring := range r.AtomRings() {
		sizes = append(sizes, len(ring))
	}
	sort.Ints(sizes)
	return sizes
}

func TestRings_SSSR(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		smiles string
		sizes  []int
	}{
		{"acyclic", "CCCC(C)O", nil},
		{"cyclopropane", "C1CC1", []int{3}},
		{"benzene", "c1ccccc1", []int{6}},
		{"toluene with hydrogens", "Cc1ccccc1", []int{6}},
		{"naphthalene", "c1ccc2ccccc2c1", []int{6, 6}},
		{"spiro", "C1CCC2(CC1)CCC2", []int{4, 6}},
		{"norbornane", "C1CC2CCC1C2", []int{5, 5}},
		{"biphenyl", "c1ccccc1-c1ccccc1", []int{6, 6}},
		{"anthracene", "c1ccc2cc3ccccc3cc2c1", []int{6, 6, 6}},
		{"cubane", "C12C3C4C1C5C2C3C45", []int{4, 4, 4, 4, 4}},
		{"macrocycle", "C1CSCCSCCSC1", []int{10}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := MustParseSMILES(tc.smiles)
			assert.Equal(t, tc.sizes, sortedRingSizes(m.Rings()))
			assert.Equal(t, len(tc.sizes) > 0, m.HasRing())
		})
	}
}

func TestRings_BondAndAtomMembership(t *testing.T) {
	t.Parallel()

	m := AddHs(MustParseSMILES("Cc1ccccc1"))
	r := m.Rings()
	require.Equal(t, 1, r.NumRings())

	ringBonds := r.BondRings()[0]
	assert.Len(t, ringBonds, 6)
	for _, bi := range ringBonds {
		assert.True(t, r.IsRingBond(bi))
		b := m.Bond(bi)
		assert.True(t, r.IsRingAtom(b.Begin))
		assert.True(t, r.IsRingAtom(b.End))
	}
	bi, ok := m.BondBetween(0, 1)
	require.True(t, ok)
	assert.False(t, r.IsRingBond(bi))
	assert.False(t, r.IsRingAtom(0))
	for i := 7; i < m.NumAtoms(); i++ {
		assert.False(t, r.IsRingAtom(i))
	}
}

func TestRings_AtomRingsAreCycles(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("c1ccc2c(c1)[nH]c1ccccc12")
	r := m.Rings()
	require.Equal(t, 3, r.NumRings())
	for _, ring := range r.AtomRings() {
		for i := range ring {
			_, ok := m.BondBetween(ring[i], ring[(i+1)%len(ring)])
			assert.True(t, ok, "ring %v is not closed at position %d", ring, i)
		}
	}
	assert.Equal(t, 2, r.NumAtomRings(3))
}

func TestRings_ResultIsStable(t *testing.T) {
	t.Parallel()

	m := MustParseSMILES("C1CC2CCC1C2")
	first := m.Rings().AtomRings()
	second := MustParseSMILES("C1CC2CCC1C2").Rings().AtomRings()
	assert.Equal(t, first, second)
}
