package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
	eventerr "github.com/aevon-lab/event-replay/internal/core/errors"
)

// DefaultExtension is the suffix of stored event units.
const DefaultExtension = ".json"

// UseNumber keeps integer payload values (balances, limits) exact instead of float64.
var eventJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Source implements storage.EventSource using the local file system.
// It expects a directory structure: root/{table}/{seq}{ext}, one event per file.
type Source struct {
	rootDir   string
	extension string
}

// NewSource creates a file system backed event source.
// An empty extension defaults to DefaultExtension.
func NewSource(rootDir, extension string) *Source {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Source{
		rootDir:   rootDir,
		extension: extension,
	}
}

// RootDir returns the directory holding one subdirectory per table.
func (s *Source) RootDir() string {
	return s.rootDir
}

type unit struct {
	name string
	seq  int64
}

// ReadTable lists the table directory, orders units by their numeric
// sequence token and decodes each one. Nothing is cached.
func (s *Source) ReadTable(ctx context.Context, table string) ([]*v1.Event, error) {
	tableDir := filepath.Join(s.rootDir, table)

	info, err := os.Stat(tableDir)
	if os.IsNotExist(err) {
		return nil, eventerr.SourceNotFound(table, tableDir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat table dir %s: %w", tableDir, err)
	}
	if !info.IsDir() {
		return nil, eventerr.SourceNotFound(table, tableDir)
	}

	units, err := s.scanTableDir(table, tableDir)
	if err != nil {
		return nil, err
	}

	events := make([]*v1.Event, 0, len(units))
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		evt, err := s.readUnit(table, filepath.Join(tableDir, u.name))
		if err != nil {
			return nil, err
		}
		evt.Seq = u.seq
		evt.Unit = u.name
		events = append(events, evt)
	}

	slog.Debug("[Reader] Loaded table",
		"table", table,
		"dir", tableDir,
		"events", len(events))

	return events, nil
}

// scanTableDir returns the table's units sorted by sequence token.
// Equal tokens ("01.json", "1.json") fall back to name order.
func (s *Source) scanTableDir(table, dirPath string) ([]unit, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("reading table dir %s: %w", dirPath, err)
	}

	units := make([]unit, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.extension) {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), s.extension)
		seq, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			slog.Warn("[Reader] Skipping unit without numeric sequence token",
				"table", table,
				"unit", entry.Name())
			continue
		}
		units = append(units, unit{name: entry.Name(), seq: seq})
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].seq != units[j].seq {
			return units[i].seq < units[j].seq
		}
		return units[i].name < units[j].name
	})

	return units, nil
}

func (s *Source) readUnit(table, path string) (*v1.Event, error) {
	name := filepath.Base(path)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event unit %s: %w", path, err)
	}

	return decodeEvent(table, name, content)
}

// decodeEvent parses one stored unit. The content must be a single JSON object.
func decodeEvent(table, unitName string, content []byte) (*v1.Event, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, eventerr.NewMalformedEventError(table, unitName, fmt.Errorf("content is not a JSON object"))
	}

	var evt v1.Event
	if err := eventJSON.Unmarshal(trimmed, &evt); err != nil {
		return nil, eventerr.NewMalformedEventError(table, unitName, err)
	}
	return &evt, nil
}

// ResolveDataDir returns the first candidate that is an existing directory.
// When none exists the primary is returned unchanged, so the first table
// read reports ErrSourceNotFound against the location the operator asked for.
func ResolveDataDir(primary string, fallbacks ...string) string {
	for _, candidate := range append([]string{primary}, fallbacks...) {
		if candidate == "" {
			continue
		}
		if dirExists(candidate) {
			if candidate != primary {
				slog.Info("[Reader] Using fallback data directory",
					"requested", primary,
					"using", candidate)
			}
			return candidate
		}
	}
	return primary
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
