// Package fixtures installs serialized model objects into the database.
//
// A fixture is a JSON array of {"model": "nba.team", "pk": 1, "fields": {...}}
// objects, optionally gzip-compressed (.json.gz). Every object is written
// with upsert semantics so reloading a fixture updates rows in place.
package fixtures

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnknownModel   = errors.New("unknown model")
	ErrUnknownField   = errors.New("unknown field")
	ErrFixtureMissing = errors.New("no fixture named")
)

// Object is one serialized model instance
type Object struct {
	Model  string         `json:"model"`
	PK     any            `json:"pk"`
	Fields map[string]any `json:"fields"`
}

// Sink stores objects. Install must upsert.
type Sink interface {
	Install(ctx context.Context, obj Object) error
}

// Result counts what a load installed
type Result struct {
	Fixtures   int
	Objects    int
	PerFixture map[string]int
}

// Loader reads fixture files and hands their objects to a Sink
type Loader struct {
	sink   Sink
	dirs   []string
	logger *log.Logger
}

// NewLoader creates a loader searching dirs for fixture labels
func NewLoader(sink Sink, dirs []string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(log.Writer(), "[fixtures] ", log.LstdFlags)
	}
	return &Loader{sink: sink, dirs: dirs, logger: logger}
}

// Load installs every fixture matching the labels, in order
func (l *Loader) Load(ctx context.Context, labels ...string) (*Result, error) {
	result := &Result{PerFixture: make(map[string]int)}
	for _, label := range labels {
		files, err := l.Find(label)
		if err != nil {
			return result, err
		}
		for _, file := range files {
			n, err := l.LoadFile(ctx, file)
			if err != nil {
				return result, err
			}
			result.Fixtures++
			result.Objects += n
			result.PerFixture[file] = n
		}
	}
	l.logger.Printf("✓ Installed %d object(s) from %d fixture(s)", result.Objects, result.Fixtures)
	return result, nil
}

// Find resolves a label to fixture files. A label naming an existing file
// is used as is; otherwise each directory is searched for label.json and
// label.json.gz.
func (l *Loader) Find(label string) ([]string, error) {
	if isFixtureFile(label) {
		if _, err := os.Stat(label); err == nil {
			return []string{label}, nil
		}
	}

	var found []string
	for _, dir := range l.dirs {
		for _, ext := range []string{".json", ".json.gz"} {
			path := filepath.Join(dir, label+ext)
			if _, err := os.Stat(path); err == nil {
				found = append(found, path)
			}
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w %q", ErrFixtureMissing, label)
	}
	return found, nil
}

// LoadFile installs one fixture file and returns its object count
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	objects, err := readFixture(path)
	if err != nil {
		return 0, fmt.Errorf("problem installing fixture %q: %w", path, err)
	}

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := l.sink.Install(ctx, obj); err != nil {
			return 0, fmt.Errorf("problem installing fixture %q: could not load %s(pk=%v): %w",
				path, obj.Model, formatPK(obj.PK), err)
		}
	}

	if len(objects) == 0 {
		l.logger.Printf("WARNING: No fixture data found for %q. (File format may be invalid.)", fixtureName(path))
	} else {
		l.logger.Printf("Installed %d object(s) from %s", len(objects), path)
	}
	return len(objects), nil
}

func readFixture(path string) ([]Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var objects []Object
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding: %w", err)
	}
	return objects, nil
}

func isFixtureFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz")
}

func fixtureName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, ".json")
}

// formatPK prints JSON numbers without a trailing ".0"
func formatPK(pk any) any {
	if f, ok := pk.(float64); ok && f == float64(int64(f)) {
		return int64(f)
	}
	return pk
}
