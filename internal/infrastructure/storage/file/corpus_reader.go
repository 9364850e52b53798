// Package file reads molecule corpora and writes fragment vocabularies on a
// filesystem abstraction, so that tests can run against memory.
package file

import (
	"bufio"
	"context"
	"strings"

	"github.com/spf13/afero"

	"github.com/turtacn/fragvocab/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fragvocab/pkg/errors"
)

// maxLineSize bounds a single corpus line.
const maxLineSize = 1 << 20

// Record is one molecule of a corpus.
type Record struct {
	Line   int
	SMILES string
}

// CorpusReader reads a line-oriented SMILES file.
type CorpusReader struct {
	fs     afero.Fs
	logger logging.Logger
}

// NewCorpusReader returns a reader on fs. A nil fs reads the OS filesystem.
func NewCorpusReader(fs afero.Fs, logger logging.Logger) *CorpusReader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CorpusReader{fs: fs, logger: logger}
}

// ParseLine returns the SMILES of a corpus line: its first whitespace
// separated token. Blank lines report false.
func ParseLine(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// Each calls fn for every molecule of the file at path, in file order, and
// stops after limit records when limit is positive. An error from fn stops
// the scan and is returned as is.
func (r *CorpusReader) Each(ctx context.Context, path string, limit int, fn func(Record) error) error {
	f, err := r.fs.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCorpusReadFailed, "open corpus").WithDetail(path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo, count := 0, 0
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCodeCancelled, "corpus read cancelled")
		}
		smiles, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		if err := fn(Record{Line: lineNo, SMILES: smiles}); err != nil {
			return err
		}
		count++
		if limit > 0 && count >= limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCorpusReadFailed, "scan corpus").WithDetail(path)
	}
	r.logger.Debug("corpus read", logging.String("path", path), logging.Int("molecules", count))
	return nil
}

// ReadAll returns every molecule of the file at path.
func (r *CorpusReader) ReadAll(ctx context.Context, path string, limit int) ([]Record, error) {
	var out []Record
	err := r.Each(ctx, path, limit, func(rec Record) error {
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
