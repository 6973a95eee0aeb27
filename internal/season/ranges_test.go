package season

import (
	"errors"
	"iter"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func years(seq iter.Seq[time.Time]) []int {
	var out []int
	for t := range seq {
		out = append(out, t.Year())
	}
	return out
}

func TestYearStream(t *testing.T) {
	t.Parallel()

	var got []int
	for y := range YearStream(YearStart(2000), -3) {
		got = append(got, y.Year())
		if len(got) == 4 {
			break
		}
	}
	if diff := cmp.Diff([]int{2000, 1997, 1994, 1991}, got); diff != "" {
		t.Errorf("YearStream mismatch (-want +got):\n%s", diff)
	}

	// A second call starts over.
	for y := range YearStream(YearStart(2000), -3) {
		if y.Year() != 2000 {
			t.Errorf("restarted stream began at %d", y.Year())
		}
		break
	}
}

func TestYearRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start, stop int
		step        int
		want        []int
	}{
		{"ascending", 2001, 2005, 1, []int{2001, 2002, 2003, 2004}},
		{"ascending by two", 2001, 2006, 2, []int{2001, 2003, 2005}},
		{"descending includes stop", 2005, 2001, -1, []int{2005, 2004, 2003, 2002, 2001}},
		{"descending equal bounds", 2005, 2005, -1, []int{2005}},
		{"ascending equal bounds", 2005, 2005, 1, nil},
		{"positive step wrong way", 2005, 2001, 1, nil},
		{"negative step wrong way", 2001, 2005, -1, nil},
		{"zero step", 2001, 2005, 0, nil},
		{"huge positive step", 2002, 2014, math.MaxInt / 2, []int{2002}},
		{"huge negative step", 2014, 2002, math.MinInt / 2, []int{2014}},
		{"min int step", 2014, 2002, math.MinInt, []int{2014}},
		{"max int step", 2002, 2014, math.MaxInt, []int{2002}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := years(YearRange(YearStart(tt.start), YearStart(tt.stop), tt.step))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("YearRange(%d, %d, %d) mismatch (-want +got):\n%s", tt.start, tt.stop, tt.step, diff)
			}
		})
	}
}

func TestSeasonRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start, stop Identifier
		step        int
		want        []string
	}{
		{
			name:  "bare years",
			start: FromString("2002"),
			stop:  FromString("2014"),
			step:  1,
			want: []string{
				"2001-02", "2002-03", "2003-04", "2004-05", "2005-06", "2006-07",
				"2007-08", "2008-09", "2009-10", "2010-11", "2011-12", "2012-13",
			},
		},
		{
			name:  "reversed bounds",
			start: FromString("2014"),
			stop:  FromString("2002"),
			step:  1,
		},
		{
			name:  "negative step wrong way",
			start: FromString("2002"),
			stop:  FromString("2009"),
			step:  -2,
		},
		{
			name:  "season start with step",
			start: FromString("2002-03"),
			stop:  FromString("2014"),
			step:  4,
			want:  []string{"2002-03", "2006-07", "2010-11"},
		},
		{
			name:  "descending by five",
			start: FromString("2014-15"),
			stop:  FromString("1951"),
			step:  -5,
			want: []string{
				"2014-15", "2009-10", "2004-05", "1999-00", "1994-95", "1989-90",
				"1984-85", "1979-80", "1974-75", "1969-70", "1964-65", "1959-60",
				"1954-55",
			},
		},
		{
			name:  "mixed identifier kinds",
			start: FromDate(time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)),
			stop:  FromYear(2013),
			step:  1,
			want:  []string{"2009-10", "2010-11", "2011-12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Seasons(tt.start, tt.stop, tt.step)
			if err != nil {
				t.Fatalf("Seasons error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Seasons mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeasonRange_DescendingInclusive(t *testing.T) {
	t.Parallel()

	got, err := Seasons(FromString("2014-15"), FromString("2000-01"), -1)
	if err != nil {
		t.Fatalf("Seasons error: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("got %d seasons, want 15: %v", len(got), got)
	}
	if got[0] != "2014-15" || got[len(got)-1] != "2000-01" {
		t.Errorf("bounds = %s..%s, want 2014-15..2000-01", got[0], got[len(got)-1])
	}
	if !slices.IsSortedFunc(got, func(a, b string) int { return strings.Compare(b, a) }) {
		t.Errorf("seasons not descending: %v", got)
	}
}

func TestSeasonRange_HugeStep(t *testing.T) {
	t.Parallel()

	got, err := Seasons(FromString("2002"), FromString("2014"), math.MaxInt/2)
	if err != nil {
		t.Fatalf("Seasons error: %v", err)
	}
	if diff := cmp.Diff([]string{"2001-02"}, got); diff != "" {
		t.Errorf("Seasons mismatch (-want +got):\n%s", diff)
	}
}

func TestYearStream_StopsAtYearLimit(t *testing.T) {
	t.Parallel()

	got := years(YearStream(YearStart(2000), yearLimit/2))
	if diff := cmp.Diff([]int{2000, 2000 + yearLimit/2}, got); diff != "" {
		t.Errorf("YearStream mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonRange_InvalidInputFailsEagerly(t *testing.T) {
	t.Parallel()

	if _, err := SeasonRange(FromString("rubbish"), FromString("2014"), 1); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("start error = %v, want ErrInvalidFormat", err)
	}
	if _, err := SeasonRange(FromString("2002"), FromString("2000-2013"), 1); !errors.Is(err, ErrInvalidSeasonRange) {
		t.Errorf("stop error = %v, want ErrInvalidSeasonRange", err)
	}
}
