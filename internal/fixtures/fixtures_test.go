package fixtures

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recordingSink struct {
	objects []Object
	failOn  string
}

func (s *recordingSink) Install(_ context.Context, obj Object) error {
	if _, err := checkFields(obj, false); err != nil {
		return err
	}
	if obj.Model == s.failOn {
		return errors.New("duplicate key value violates unique constraint")
	}
	s.objects = append(s.objects, obj)
	return nil
}

const teamsFixture = `[
  {"model": "nba.league", "pk": 1, "fields": {"name": "National Basketball Association"}},
  {"model": "nba.conference", "pk": 1, "fields": {"name": "Western", "league": 1}},
  {"model": "nba.division", "pk": 5, "fields": {"name": "Pacific", "conference": 1}},
  {"model": "nba.team", "pk": 10, "fields": {"nba_id": "1610612744", "abbr": "GSW", "city": "Golden State", "nickname": "Warriors", "division": 5}}
]`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(buf, "", 0)
}

func TestLoadCountsObjects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "teams.json", []byte(teamsFixture))
	writeFile(t, dir, "schools.json.gz", gzipped(t, `[{"model": "nba.school", "pk": 1, "fields": {"name": "Davidson"}}]`))

	sink := &recordingSink{}
	var logs bytes.Buffer
	l := NewLoader(sink, []string{dir}, quietLogger(&logs))

	res, err := l.Load(context.Background(), "teams", "schools")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Fixtures != 2 || res.Objects != 5 {
		t.Errorf("result = %d fixtures, %d objects; want 2, 5", res.Fixtures, res.Objects)
	}
	if got := res.PerFixture[filepath.Join(dir, "schools.json.gz")]; got != 1 {
		t.Errorf("schools fixture count = %d, want 1", got)
	}

	models := make([]string, len(sink.objects))
	for i, o := range sink.objects {
		models[i] = o.Model
	}
	want := []string{"nba.league", "nba.conference", "nba.division", "nba.team", "nba.school"}
	if diff := cmp.Diff(want, models); diff != "" {
		t.Errorf("install order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileEmptyWarns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.json", []byte(`[]`))
	blank := writeFile(t, dir, "blank.json", nil)

	var logs bytes.Buffer
	l := NewLoader(&recordingSink{}, nil, quietLogger(&logs))

	for _, path := range []string{empty, blank} {
		n, err := l.LoadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", path, err)
		}
		if n != 0 {
			t.Errorf("LoadFile(%s) = %d objects, want 0", path, n)
		}
	}
	if !strings.Contains(logs.String(), `No fixture data found for "empty"`) {
		t.Errorf("missing empty-fixture warning, logs:\n%s", logs.String())
	}
}

func TestLoadFileWrapsInstallErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "teams.json", []byte(teamsFixture))

	var logs bytes.Buffer
	l := NewLoader(&recordingSink{failOn: "nba.team"}, nil, quietLogger(&logs))

	_, err := l.LoadFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `problem installing fixture "` + path + `": could not load nba.team(pk=10): duplicate key`
	if !strings.HasPrefix(err.Error(), want) {
		t.Errorf("error = %q\nwant prefix %q", err, want)
	}
}

func TestLoadFileRejectsUnknownModelsAndFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	unknownModel := writeFile(t, dir, "a.json", []byte(`[{"model": "nba.coach", "pk": 1, "fields": {}}]`))
	unknownField := writeFile(t, dir, "b.json", []byte(`[{"model": "nba.school", "pk": 1, "fields": {"name": "x", "mascot": "y"}}]`))

	var logs bytes.Buffer
	l := NewLoader(&recordingSink{}, nil, quietLogger(&logs))

	if _, err := l.LoadFile(context.Background(), unknownModel); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("unknown model error = %v", err)
	}
	if _, err := l.LoadFile(context.Background(), unknownField); !errors.Is(err, ErrUnknownField) {
		t.Errorf("unknown field error = %v", err)
	}
}

func TestLoadFileBadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", []byte(`{"model": `))

	var logs bytes.Buffer
	l := NewLoader(&recordingSink{}, nil, quietLogger(&logs))
	_, err := l.LoadFile(context.Background(), path)
	if err == nil || !strings.HasPrefix(err.Error(), `problem installing fixture "`) {
		t.Errorf("error = %v", err)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	explicit := writeFile(t, dir, "players.json", []byte(`[]`))
	writeFile(t, dir, "players.json.gz", gzipped(t, `[]`))

	l := NewLoader(&recordingSink{}, []string{dir}, nil)

	got, err := l.Find(explicit)
	if err != nil || len(got) != 1 || got[0] != explicit {
		t.Errorf("Find(explicit) = %v, %v", got, err)
	}

	got, err = l.Find("players")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Find(label) = %v, want json and json.gz", got)
	}

	if _, err := l.Find("nothing"); !errors.Is(err, ErrFixtureMissing) {
		t.Errorf("Find(missing) error = %v", err)
	}
}

func TestCheckFields(t *testing.T) {
	t.Parallel()

	f, err := checkFields(Object{Model: "nba.arena", Fields: map[string]any{"name": "Oracle Arena"}}, false)
	if err != nil {
		t.Fatalf("checkFields: %v", err)
	}
	want := fields{"name": "Oracle Arena", "capacity": nil}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}

	capacity, err := f.nullInt("capacity")
	if err != nil || capacity.Valid {
		t.Errorf("nullInt(capacity) = %v, %v", capacity, err)
	}

	f, err = checkFields(Object{Model: "nba.school", Fields: map[string]any{"name": "x", "extra": 1}}, true)
	if err != nil {
		t.Fatalf("checkFields with ignore: %v", err)
	}
	if _, ok := f["extra"]; ok {
		t.Error("ignored field should be dropped")
	}
}

func TestFieldConversions(t *testing.T) {
	t.Parallel()

	f := fields{"nba_id": "201939", "n": float64(42), "d": "1988-03-14", "bad": "14/03/1988"}

	if n, err := f.integer("nba_id"); err != nil || n != 201939 {
		t.Errorf("integer(nba_id) = %d, %v", n, err)
	}
	if n, err := f.integer("n"); err != nil || n != 42 {
		t.Errorf("integer(n) = %d, %v", n, err)
	}
	if d, err := f.date("d"); err != nil || !d.Valid || d.Time.Year() != 1988 {
		t.Errorf("date(d) = %v, %v", d, err)
	}
	if _, err := f.date("bad"); err == nil {
		t.Error("expected error for malformed date")
	}
	if got := pkKey(float64(10)); got != "10" {
		t.Errorf("pkKey(10.0) = %q", got)
	}
}

func TestModels(t *testing.T) {
	t.Parallel()

	models := Models()
	if len(models) != len(modelFields) || models[0] != "nba.arena" {
		t.Errorf("Models() = %v", models)
	}
}
