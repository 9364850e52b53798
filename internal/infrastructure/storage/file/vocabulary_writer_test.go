package file

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON([]string{"CC", "c1ccccc1"})
	require.NoError(t, err)
	assert.JSONEq(t, `["CC","c1ccccc1"]`, string(data))

	data, err = EncodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestEncodeCSV(t *testing.T) {
	data, err := EncodeCSV([]string{"CC", "[H]c1ccccc1[H]"})
	require.NoError(t, err)
	assert.Equal(t, "smiles\nCC\n[H]c1ccccc1[H]\n", string(data))

	data, err = EncodeCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "smiles\n", string(data))
}

func TestVocabularyWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewVocabularyWriter(fs, "out", nil, nil)

	paths, err := w.Write(context.Background(), ftypes.VariantAromatic, []string{"CC", "CO"})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/frag_with_aromatic.json", "out/frag_with_aromatic.csv"}, paths)

	csvData, err := afero.ReadFile(fs, "out/frag_with_aromatic.csv")
	require.NoError(t, err)
	assert.Equal(t, "smiles\nCC\nCO\n", string(csvData))

	items, err := ReadVocabulary(fs, "out/frag_with_aromatic.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"CC", "CO"}, items)

	exists, err := afero.Exists(fs, "out/frag_with_aromatic.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestVocabularyWriter_SingleFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewVocabularyWriter(fs, "out", []string{FormatCSV}, nil)
	paths, err := w.Write(context.Background(), ftypes.VariantReduced, []string{"C"})
	require.NoError(t, err)
	assert.Equal(t, []string{"out/frag_reduced.csv"}, paths)
	assert.Equal(t, "out/frag_reduced.json", w.Path(ftypes.VariantReduced, FormatJSON))
}

func TestVocabularyWriter_UnknownFormat(t *testing.T) {
	w := NewVocabularyWriter(afero.NewMemMapFs(), "out", []string{"xml"}, nil)
	_, err := w.Write(context.Background(), ftypes.VariantReduced, []string{"C"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestVocabularyWriter_ReadOnlyFs(t *testing.T) {
	w := NewVocabularyWriter(afero.NewReadOnlyFs(afero.NewMemMapFs()), "out", nil, nil)
	_, err := w.Write(context.Background(), ftypes.VariantAromatic, []string{"C"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeVocabularyWriteFailed))
}

func TestReadVocabulary_Invalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte("{"), 0o644))
	_, err := ReadVocabulary(fs, "bad.json")
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}
