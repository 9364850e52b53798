package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvHeader is the single column name of vocabulary CSV files.
const csvHeader = "smiles"

// VocabularyWriter writes vocabularies as JSON arrays and single-column CSV
// files named after their variant.
type VocabularyWriter struct {
	fs      afero.Fs
	dir     string
	formats []string
	logger  logging.Logger
}

// NewVocabularyWriter returns a writer into dir. A nil fs writes to the OS
// filesystem; empty formats write both JSON and CSV.
func NewVocabularyWriter(fs afero.Fs, dir string, formats []string, logger logging.Logger) *VocabularyWriter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if len(formats) == 0 {
		formats = []string{FormatJSON, FormatCSV}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VocabularyWriter{fs: fs, dir: dir, formats: formats, logger: logger}
}

// Path returns the file a variant is written to in the given format.
func (w *VocabularyWriter) Path(variant ftypes.Variant, format string) string {
	return filepath.Join(w.dir, variant.BaseName()+"."+format)
}

// Write stores items for variant in every configured format and returns the
// written paths.
func (w *VocabularyWriter) Write(ctx context.Context, variant ftypes.Variant, items []string) ([]string, error) {
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVocabularyWriteFailed, "create output dir").WithDetail(w.dir)
	}
	var paths []string
	for _, format := range w.formats {
		if err := ctx.Err(); err != nil {
			return paths, errors.Wrap(err, errors.ErrCodeCancelled, "vocabulary write cancelled")
		}
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = EncodeJSON(items)
		case FormatCSV:
			data, err = EncodeCSV(items)
		default:
			return paths, errors.Newf(errors.ErrCodeBadRequest, "unknown output format %q", format)
		}
		if err != nil {
			return paths, errors.Wrap(err, errors.ErrCodeSerialization, "encode vocabulary")
		}
		path := w.Path(variant, format)
		if err := w.writeAtomic(path, data); err != nil {
			return paths, err
		}
		w.logger.Info("vocabulary written",
			logging.String("path", path),
			logging.String("variant", string(variant)),
			logging.Int("size", len(items)))
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *VocabularyWriter) writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(w.fs, tmp, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeVocabularyWriteFailed, "write vocabulary").WithDetail(path)
	}
	if err := w.fs.Rename(tmp, path); err != nil {
		_ = w.fs.Remove(tmp)
		return errors.Wrap(err, errors.ErrCodeVocabularyWriteFailed, "rename vocabulary").WithDetail(path)
	}
	return nil
}

// EncodeJSON renders items as a JSON array. A nil slice renders as [].
func EncodeJSON(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

// EncodeCSV renders items as a CSV file with a smiles header.
func EncodeCSV(items []string) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{csvHeader}); err != nil {
		return nil, err
	}
	for _, s := range items {
		if err := cw.Write([]string{s}); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// ReadVocabulary loads a JSON vocabulary written by Write.
func ReadVocabulary(fs afero.Fs, path string) ([]string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCorpusReadFailed, "read vocabulary").WithDetail(path)
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode vocabulary").WithDetail(path)
	}
	return items, nil
}
