package season

import (
	"errors"
	"testing"
	"time"
)

func TestYearOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    Identifier
		first bool
		want  int
	}{
		{"short suffix", FromString("2014-15"), false, 2015},
		{"short suffix first", FromString("2014-15"), true, 2014},
		{"century rollover", FromString("1999-00"), false, 2000},
		{"early century", FromString("1914-15"), false, 1915},
		{"fifties", FromString("1950-51"), false, 1951},
		{"short prefix", FromString("12-2013"), false, 2013},
		{"short prefix first", FromString("12-2013"), true, 2012},
		{"short prefix old century", FromString("14-1915"), true, 1914},
		{"both short", FromString("99-00"), false, 2000},
		{"both short first", FromString("99-00"), true, 1999},
		{"both long", FromString("2014-2015"), false, 2015},
		{"bare two digit", FromString("15"), false, 2015},
		{"bare two digit pivot", FromString("75"), false, 1975},
		{"bare four digit", FromString("2014"), false, 2014},
		{"padded text", FromString(" 2014-15 "), false, 2015},
		{"int", FromYear(1984), false, 1984},
		{"int first", FromYear(1984), true, 1984},
		{"date", FromDate(time.Date(2013, 2, 4, 0, 0, 0, 0, time.UTC)), false, 2013},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := YearOf(tt.id, tt.first)
			if err != nil {
				t.Fatalf("YearOf(%q, %v) error: %v", tt.id, tt.first, err)
			}
			if got != tt.want {
				t.Errorf("YearOf(%q, %v) = %d, want %d", tt.id, tt.first, got, tt.want)
			}
		})
	}
}

func TestYearOf_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		id    Identifier
		first bool
		want  error
	}{
		{"non consecutive long halves", FromString("2000-2013"), true, ErrInvalidSeasonRange},
		{"non consecutive suffix", FromString("2014-17"), false, ErrInvalidSeasonRange},
		{"non consecutive prefix", FromString("10-2013"), true, ErrInvalidSeasonRange},
		{"rubbish", FromString("rubbish"), false, ErrInvalidFormat},
		{"three digits", FromString("201"), false, ErrInvalidFormat},
		{"empty", FromString(""), false, ErrInvalidFormat},
		{"empty half", FromString("2014-"), false, ErrInvalidFormat},
		{"two hyphens", FromString("2013-14-15"), false, ErrInvalidFormat},
		{"letters in half", FromString("2014-1x"), false, ErrInvalidFormat},
		{"zero identifier", Identifier{}, false, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := YearOf(tt.id, tt.first)
			if !errors.Is(err, tt.want) {
				t.Fatalf("YearOf(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"00":   2000,
		"68":   2068,
		"69":   1969,
		"99":   1999,
		"1946": 1946,
	}
	for in, want := range cases {
		got, err := ParseYear(in)
		if err != nil {
			t.Fatalf("ParseYear(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseYear(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"", "1", "123", "12345", "-1", "2k14"} {
		if _, err := ParseYear(in); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseYear(%q) error = %v, want ErrInvalidFormat", in, err)
		}
	}
}

func TestDateToSeasonStr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2013, 2, 4, 0, 0, 0, 0, time.UTC), "2012-13"},
		{time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC), "1999-00"},
		{time.Date(2009, 3, 15, 0, 0, 0, 0, time.UTC), "2008-09"},
		// No month boundary: November still maps to the season ending that year.
		{time.Date(2013, 11, 20, 0, 0, 0, 0, time.UTC), "2012-13"},
	}
	for _, tt := range tests {
		if got := DateToSeasonStr(tt.date); got != tt.want {
			t.Errorf("DateToSeasonStr(%s) = %q, want %q", tt.date.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestCurrent(t *testing.T) {
	orig := Now
	t.Cleanup(func() { Now = orig })
	Now = func() time.Time { return time.Date(2015, 3, 1, 12, 0, 0, 0, time.UTC) }

	if got := Current(0); got != "2014-15" {
		t.Errorf("Current(0) = %q, want 2014-15", got)
	}
	if got := Current(-1); got != "2013-14" {
		t.Errorf("Current(-1) = %q, want 2013-14", got)
	}
	if got := Current(2); got != "2016-17" {
		t.Errorf("Current(2) = %q, want 2016-17", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2014-15":   "2014-15",
		"2014-2015": "2014-15",
		"15":        "2014-15",
		"2015":      "2014-15",
		"99-00":     "1999-00",
	}
	for in, want := range cases {
		got, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeasonWindow(t *testing.T) {
	t.Parallel()

	start, end, err := Window(FromString("2024-25"))
	if err != nil {
		t.Fatalf("Window error: %v", err)
	}
	if want := time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}

	s := Season(2025)
	if !s.Contains(time.Date(2024, 12, 25, 20, 0, 0, 0, time.UTC)) {
		t.Error("Christmas game should be inside 2024-25")
	}
	if s.Contains(end) {
		t.Error("window end should be exclusive")
	}
}

func TestForGameDate(t *testing.T) {
	t.Parallel()

	if got := ForGameDate(time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)); got.String() != "2024-25" {
		t.Errorf("November game season = %s, want 2024-25", got)
	}
	if got := ForGameDate(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)); got.String() != "2024-25" {
		t.Errorf("April game season = %s, want 2024-25", got)
	}
}
