package season

import (
	"iter"
	"slices"
	"time"
)

// YearStart returns January 1 of year, UTC.
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// yearLimit bounds the years a stream will step to. Years past it are
// well inside time.Time's range but far outside any useful season.
const yearLimit = 1 << 30

// YearStream yields start, start+step years, start+2*step years, ...
// until the next year would leave [-yearLimit, yearLimit]. Each call
// returns an independent sequence.
func YearStream(start time.Time, step int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		y := start.Year()
		for {
			t := time.Date(y, start.Month(), start.Day(), start.Hour(), start.Minute(),
				start.Second(), start.Nanosecond(), start.Location())
			if !yield(t) {
				return
			}
			next, ok := stepYear(y, step)
			if !ok {
				return
			}
			y = next
		}
	}
}

// stepYear returns y+step, or false when the sum overflows or leaves
// [-yearLimit, yearLimit].
func stepYear(y, step int) (int, bool) {
	next := y + step
	if (step > 0 && next < y) || (step < 0 && next > y) {
		return 0, false
	}
	if next > yearLimit || next < -yearLimit {
		return 0, false
	}
	return next, true
}

// YearRange yields instants from start toward stop in steps of step years.
// A positive step stops before stop; a negative step continues while the
// instant is at or after stop. The sequence is empty when step is zero or
// points away from stop.
func YearRange(start, stop time.Time, step int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if step == 0 {
			return
		}
		for t := range YearStream(start, step) {
			if step > 0 && !t.Before(stop) {
				return
			}
			if step < 0 && t.Before(stop) {
				return
			}
			if !yield(t) {
				return
			}
		}
	}
}

// SeasonRange yields season strings from start toward stop. Both ends are
// resolved to their ending years first, so malformed identifiers fail here
// rather than during iteration.
func SeasonRange(start, stop Identifier, step int) (iter.Seq[string], error) {
	from, err := YearOf(start, false)
	if err != nil {
		return nil, err
	}
	to, err := YearOf(stop, false)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		for t := range YearRange(YearStart(from), YearStart(to), step) {
			if !yield(DateToSeasonStr(t)) {
				return
			}
		}
	}, nil
}

// Seasons is SeasonRange collected into a slice.
func Seasons(start, stop Identifier, step int) ([]string, error) {
	seq, err := SeasonRange(start, stop, step)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
