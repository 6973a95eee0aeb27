// Package season converts between NBA season identifiers ("2014-15"),
// calendar years and dates.
//
// A season is keyed by its ending calendar year unless a caller asks for
// the first year explicitly. All functions are pure apart from Current,
// which reads the clock through Now.
package season

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidFormat is returned for year or season text that matches no
	// recognized pattern.
	ErrInvalidFormat = errors.New("invalid season format")

	// ErrInvalidSeasonRange is returned for a hyphenated season whose halves
	// are not consecutive years.
	ErrInvalidSeasonRange = errors.New("invalid season range")
)

// Now is the clock used by Current.
var Now = time.Now

type kind uint8

const (
	kindYear kind = iota + 1
	kindText
	kindDate
)

// Identifier is a season reference given as a bare year, a season or year
// string, or a date.
type Identifier struct {
	kind kind
	year int
	text string
	date time.Time
}

// FromYear identifies the season ending in year.
func FromYear(year int) Identifier {
	return Identifier{kind: kindYear, year: year}
}

// FromString identifies a season by text: "2014-15", "2014", "15".
func FromString(text string) Identifier {
	return Identifier{kind: kindText, text: text}
}

// FromDate identifies the season ending in the date's calendar year.
func FromDate(date time.Time) Identifier {
	return Identifier{kind: kindDate, date: date}
}

// String returns the identifier as the caller supplied it.
func (id Identifier) String() string {
	switch id.kind {
	case kindYear:
		return strconv.Itoa(id.year)
	case kindText:
		return id.text
	case kindDate:
		return id.date.Format(time.DateOnly)
	default:
		return ""
	}
}

// ParseYear parses a 2 or 4 digit year. Two digit years use the strptime
// pivot: 69-99 map to the 1900s, 00-68 to the 2000s.
func ParseYear(text string) (int, error) {
	n, err := digits(text)
	if err != nil {
		return 0, err
	}
	if len(text) == 4 {
		return n, nil
	}
	return pivot(n), nil
}

// YearOf resolves id to the season's ending year, or its starting year when
// first is set. Dates and bare years resolve to their own calendar year
// regardless of first.
func YearOf(id Identifier, first bool) (int, error) {
	switch id.kind {
	case kindYear:
		return id.year, nil
	case kindDate:
		return id.date.Year(), nil
	case kindText:
		text := strings.TrimSpace(id.text)
		if !strings.Contains(text, "-") {
			return ParseYear(text)
		}
		top, bot, err := parseSeason(text)
		if err != nil {
			return 0, err
		}
		if first {
			return top, nil
		}
		return bot, nil
	default:
		return 0, fmt.Errorf("%w: empty identifier", ErrInvalidFormat)
	}
}

// parseSeason resolves both halves of "A-B". Two digit halves take their
// century from the other half so that bot == top+1.
func parseSeason(text string) (top, bot int, err error) {
	a, b, _ := strings.Cut(text, "-")
	if strings.Contains(b, "-") {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	ta, err := digits(a)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	tb, err := digits(b)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	switch {
	case len(a) == 4 && len(b) == 4:
		top, bot = ta, tb
	case len(a) == 4:
		top = ta
		bot = top + 1
		if bot%100 != tb {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeasonRange, text)
		}
	case len(b) == 4:
		bot = tb
		top = bot - 1
		if top%100 != ta {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeasonRange, text)
		}
	default:
		top = pivot(ta)
		bot = top + 1
		if bot%100 != tb {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeasonRange, text)
		}
	}

	if bot != top+1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSeasonRange, text)
	}
	return top, bot, nil
}

func digits(text string) (int, error) {
	if len(text) != 2 && len(text) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}
	return n, nil
}

func pivot(yy int) int {
	if yy < 69 {
		return 2000 + yy
	}
	return 1900 + yy
}

// DateToSeasonStr names the season ending in the date's calendar year.
// The month is ignored: 2013-11-20 maps to "2012-13", not "2013-14".
func DateToSeasonStr(date time.Time) string {
	return Label(date.Year())
}

// Label renders the season ending in endYear, e.g. 2015 -> "2014-15".
func Label(endYear int) string {
	return fmt.Sprintf("%d-%02d", endYear-1, mod100(endYear))
}

func mod100(n int) int {
	m := n % 100
	if m < 0 {
		m += 100
	}
	return m
}

// Current returns the season string for today shifted by offsetYears.
func Current(offsetYears int) string {
	return DateToSeasonStr(Now().AddDate(offsetYears, 0, 0))
}

// Season is an NBA season identified by its ending year.
type Season int

// Of resolves id to a Season.
func Of(id Identifier) (Season, error) {
	year, err := YearOf(id, false)
	if err != nil {
		return 0, err
	}
	return Season(year), nil
}

// Normalize rewrites any accepted season text in canonical "YYYY-YY" form.
func Normalize(text string) (string, error) {
	s, err := Of(FromString(text))
	if err != nil {
		return "", err
	}
	return s.String(), nil
}

func (s Season) StartYear() int { return int(s) - 1 }
func (s Season) EndYear() int   { return int(s) }
func (s Season) String() string { return Label(int(s)) }

// Window returns the calendar span games of the season are played in:
// October 1 of the starting year up to (not including) July 1 of the
// ending year.
func (s Season) Window() (time.Time, time.Time) {
	start := time.Date(s.StartYear(), time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(s.EndYear(), time.July, 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// Window resolves id and returns its season window.
func Window(id Identifier) (time.Time, time.Time, error) {
	s, err := Of(id)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := s.Window()
	return start, end, nil
}

// Contains reports whether t falls inside the season window.
func (s Season) Contains(t time.Time) bool {
	start, end := s.Window()
	return !t.Before(start) && t.Before(end)
}

// ForGameDate returns the season a game played on t belongs to, taking the
// October start into account.
func ForGameDate(t time.Time) Season {
	if t.Month() >= time.July {
		return Season(t.Year() + 1)
	}
	return Season(t.Year())
}
