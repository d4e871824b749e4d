package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
)

// FileSource reads the static JSON fallback: an array of entry objects. Rows
// carrying a "_menu" key are menu markers and are skipped. Blank ids are
// filled with generated ones.
type FileSource struct {
	Path string
	Now  func() time.Time
}

// Name implements Source. It is the file's base name, e.g.
// "menu-database.json".
func (s *FileSource) Name() string { return filepath.Base(s.Path) }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) (catalog.Batch, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Batch{}, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return catalog.Batch{}, fmt.Errorf("source %s: %w", s.Name(), err)
	}
	defer f.Close()

	entries, err := DecodeEntries(f)
	if err != nil {
		return catalog.Batch{}, fmt.Errorf("source %s: %w", s.Name(), err)
	}
	return catalog.Batch{Entries: entries, Source: s.Name(), LoadedAt: now(s.Now)}, nil
}

// DecodeEntries parses a JSON document of entries. A valid document that is
// not an array yields no entries.
func DecodeEntries(r io.Reader) ([]catalog.Entry, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, errors.New("invalid JSON document")
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		return []catalog.Entry{}, nil
	}

	out := make([]catalog.Entry, 0, len(rows))
	for i, row := range rows {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(row, &probe); err != nil || probe == nil {
			// Non-object rows carry no entry.
			continue
		}
		if _, marker := probe["_menu"]; marker {
			continue
		}
		var e catalog.Entry
		if err := json.Unmarshal(row, &e); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, e)
	}
	catalog.AssignIDs(out)
	return out, nil
}
