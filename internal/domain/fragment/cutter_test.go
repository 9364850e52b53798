package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/fragvocab/internal/domain/molecule"
	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

func countAtomic(m *molecule.Molecule, z int) int {
	n := 0
	for _, a := range m.Atoms() {
		if a.AtomicNum == z {
			n++
		}
	}
	return n
}

func TestCreateSubstructure_WholeRing(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("c1ccccc1"))
	d := GetClusterAtoms(m)
	rings := clustersByTag(d, ftypes.TagRing)
	require.Len(t, rings, 1)

	res := CreateSubstructure(m, rings[0])
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, molecule.ToSMILES(m), molecule.ToSMILES(res.Fragment))
	assert.Equal(t, rings[0], res.Cluster)
}

func TestCreateSubstructure_RingOfSubstitutedMolecule(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("Cc1ccccc1"))
	rings := clustersByTag(GetClusterAtoms(m), ftypes.TagRing)
	require.Len(t, rings, 1)

	res := CreateSubstructure(m, rings[0])
	require.True(t, res.OK())
	benzene := molecule.AddHs(molecule.MustParseSMILES("c1ccccc1"))
	assert.Equal(t, molecule.ToSMILES(benzene), molecule.ToSMILES(res.Fragment))
	assert.Zero(t, countAtomic(res.Fragment, 0))
}

func TestCreateSubstructure_MultipleBondMarkersStayValid(t *testing.T) {
	t.Parallel()

	for _, smi := range []string{"O=C1CCCCC1", "O=c1cccc[nH]1", "CC(=O)N", "C#CC1CC1"} {
		smi := smi
		t.Run(smi, func(t *testing.T) {
			t.Parallel()

			m := molecule.AddHs(molecule.MustParseSMILES(smi))
			for _, c := range GetClusterAtoms(m).Clusters {
				res := CreateSubstructure(m, c)
				require.True(t, res.OK(), "%s: %v", c.Key(), res.Err)
				f := res.Fragment

				for _, bd := range f.Bonds() {
					if f.Atom(bd.Begin).AtomicNum == 1 || f.Atom(bd.End).AtomicNum == 1 {
						assert.Equal(t, molecule.BondSingle, bd.Order, "%s: bond to hydrogen", c.Key())
					}
				}
				out := molecule.ToSMILES(f)
				_, err := molecule.ParseSMILES(out)
				assert.NoError(t, err, "%s: %s", c.Key(), out)
			}
		})
	}
}

func TestCreateSubstructure_CarbonylRingKeepsValence(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("O=C1CCCCC1"))
	rings := clustersByTag(GetClusterAtoms(m), ftypes.TagRing)
	require.Len(t, rings, 1)

	res := CreateSubstructure(m, rings[0])
	require.True(t, res.OK(), "%v", res.Err)
	cyclohexane := molecule.AddHs(molecule.MustParseSMILES("C1CCCCC1"))
	assert.Equal(t, molecule.ToSMILES(cyclohexane), molecule.ToSMILES(res.Fragment))
	assert.Equal(t, 12, countAtomic(res.Fragment, 1))
}

func TestCreateSubstructure_NonRingBond(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("CCO"))
	res := CreateSubstructure(m, Cluster{Tag: ftypes.TagNonRing, Atoms: []int{0, 1}})
	require.True(t, res.OK())
	assert.Equal(t, "C2H6", molecule.Formula(res.Fragment))
	assert.Equal(t, 8, res.Fragment.NumAtoms())
	assert.Equal(t, 7, res.Fragment.NumBonds())
}

func TestCreateSubstructure_LinkerBetweenRings(t *testing.T) {
	t.Parallel()

	m := molecule.MustParseSMILES("c1ccccc1-c1ccccc1")
	res := CreateSubstructure(m, Cluster{Tag: ftypes.TagNonRing, Atoms: []int{5, 6}})
	require.True(t, res.OK())

	f := res.Fragment
	assert.Equal(t, 2, countAtomic(f, 6))
	assert.Equal(t, 4, countAtomic(f, 1))
	for _, bd := range f.Bonds() {
		assert.NotEqual(t, molecule.BondAromatic, bd.Order)
	}
}

func TestCreateSubstructure_FragmentBondsAreClosed(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("CC(=O)Nc1ccc2ccccc2c1"))
	for _, c := range GetClusterAtoms(m).Clusters {
		res := CreateSubstructure(m, c)
		require.True(t, res.OK(), c.Key())
		f := res.Fragment
		for _, bd := range f.Bonds() {
			assert.True(t, bd.Begin >= 0 && bd.Begin < f.NumAtoms())
			assert.True(t, bd.End >= 0 && bd.End < f.NumAtoms())
		}
		assert.Zero(t, countAtomic(f, 0))
		assert.GreaterOrEqual(t, f.NumAtoms(), len(c.Atoms))
	}
}

func TestCreateSubstructure_WildcardMode(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("CCO"))
	res := CreateSubstructure(m, Cluster{Tag: ftypes.TagNonRing, Atoms: []int{0, 1}},
		WithMarkerMode(ftypes.MarkerWildcard))
	require.True(t, res.OK())
	assert.Equal(t, 6, countAtomic(res.Fragment, 0))
	assert.Zero(t, countAtomic(res.Fragment, 1))
	assert.True(t, res.Fragment.HasWildcard())
}

func TestCreateSubstructure_InputUntouched(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("CCO"))
	before := m.Clone()
	for _, c := range GetClusterAtoms(m).Clusters {
		_ = CreateSubstructure(m, c)
	}
	assert.True(t, before.Equal(m))
}

func TestCreateSubstructure_Failure(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	logger := logging.NewLoggerFromCore(core)
	m := molecule.MustParseSMILES("CCO")

	res := CreateSubstructure(m, Cluster{Tag: ftypes.TagNonRing, Atoms: []int{0, 7}}, WithLogger(logger))
	assert.False(t, res.OK())
	assert.Nil(t, res.Fragment)
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeFragmentCutFailed))
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeClusterInvalid))

	entries := logs.FilterMessage("fragment cut failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "CCO", entries[0].ContextMap()["smiles"])
	assert.Equal(t, "non_ring", entries[0].ContextMap()["tag"])

	res = CreateSubstructure(m, Cluster{Tag: ftypes.TagRing}, WithLogger(logger))
	assert.False(t, res.OK())
	assert.Len(t, logs.FilterMessage("fragment cut failed").All(), 2)
}

func TestCreateSubstructure_UnknownMarkerMode(t *testing.T) {
	t.Parallel()

	m := molecule.MustParseSMILES("CC")
	res := CreateSubstructure(m, Cluster{Tag: ftypes.TagNonRing, Atoms: []int{0, 1}}, WithMarkerMode("bogus"))
	assert.False(t, res.OK())
	assert.True(t, errors.IsCode(res.Err, errors.ErrCodeBadRequest))
}

func TestCreateSubstructure_Macrocycle(t *testing.T) {
	t.Parallel()

	m := molecule.AddHs(molecule.MustParseSMILES("C1CSCCSCCCSCCSC1"))
	d := GetClusterAtoms(m)
	rings := clustersByTag(d, ftypes.TagRing)
	require.Len(t, rings, 1)
	res := CreateSubstructure(m, rings[0])
	require.True(t, res.OK())
	assert.Equal(t, molecule.Formula(m), molecule.Formula(res.Fragment))
}

func TestFastBreak(t *testing.T) {
	t.Parallel()

	m := molecule.MustParseSMILES("Cc1ccccc1")
	rings := clustersByTag(GetClusterAtoms(m), ftypes.TagRing)
	require.Len(t, rings, 1)
	f, err := FastBreak(m, rings[0])
	require.NoError(t, err)
	assert.Equal(t, 6, f.NumAtoms())
	assert.Equal(t, 6, f.NumBonds())
	assert.False(t, f.HasWildcard())
}
