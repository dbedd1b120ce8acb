// Package tzmaterial turns a validated tztable.Table into the concrete
// sequence of UTC-offset/abbreviation changes ("timespans") a zone goes
// through over time — the step a real resolver needs, and the step the
// zoneinfo compiler performs internally before ever touching a binary file
// format.
package tzmaterial

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/zonemap/tzdb/internal/tzexpand"
	"github.com/zonemap/tzdb/tzdata"
	"github.com/zonemap/tzdb/tztable"
)

// FixedTimespan is a contiguous interval during which a zone's UTC offset,
// daylight-saving offset, and abbreviation are all constant.
type FixedTimespan struct {
	UTCOffset int64  `yaml:"utc_offset"` // seconds east of UT, the era's standard offset
	DSTOffset int64  `yaml:"dst_offset"` // seconds of save active during this span
	Name      string `yaml:"name"`       // abbreviation, e.g. "CET" or "CEST"
}

// String formats a FixedTimespan as "NAME (OFFSET, no dst)" or
// "NAME (OFFSET, dst +SAVE)", with OFFSET and SAVE printed as time.Duration
// values, e.g. "CEST (1h0m0s, dst +1h0m0s)".
func (s FixedTimespan) String() string {
	dst := "no dst"
	if s.DSTOffset != 0 {
		dst = fmt.Sprintf("dst +%s", time.Duration(s.DSTOffset)*time.Second)
	}
	return fmt.Sprintf("%s (%s, %s)", s.Name, time.Duration(s.UTCOffset)*time.Second, dst)
}

// Transition is the instant at which the active FixedTimespan changes.
type Transition struct {
	At   int64         `yaml:"at"` // Unix seconds
	Span FixedTimespan `yaml:"span"`
}

// FixedTimespanSet is the complete materialized history of a zone: the span
// in effect since the indefinite past, followed by every later change in
// chronological order.
type FixedTimespanSet struct {
	First FixedTimespan `yaml:"first"`
	Rest  []Transition  `yaml:"rest"`
}

// At returns the FixedTimespan active at instant t.
func (s FixedTimespanSet) At(t int64) FixedTimespan {
	span := s.First
	for _, tr := range s.Rest {
		if tr.At > t {
			break
		}
		span = tr.Span
	}
	return span
}

func (s FixedTimespanSet) last() FixedTimespan {
	if len(s.Rest) == 0 {
		return s.First
	}
	return s.Rest[len(s.Rest)-1].Span
}

func (s FixedTimespanSet) lastInstant() (int64, bool) {
	if len(s.Rest) == 0 {
		return 0, false
	}
	return s.Rest[len(s.Rest)-1].At, true
}

// ErrorKind classifies a MaterializeError.
type ErrorKind int

const (
	InvalidDay ErrorKind = iota
	DuplicateTransition
	UnresolvedLink
	UnknownAbbreviationSlot
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidDay:
		return "InvalidDay"
	case DuplicateTransition:
		return "DuplicateTransition"
	case UnresolvedLink:
		return "UnresolvedLink"
	case UnknownAbbreviationSlot:
		return "UnknownAbbreviationSlot"
	default:
		return "<UNDEFINED>"
	}
}

// MaterializeError is an error that occurred while materializing a zone,
// implementing the error interface.
type MaterializeError struct {
	Kind ErrorKind
	Zone string
	Err  error
}

func (e *MaterializeError) Error() string {
	return fmt.Sprintf("materialize %s %q: %v", e.Kind, e.Zone, e.Err)
}

func (e *MaterializeError) Unwrap() error { return e.Err }

// Timespans materializes the complete transition history of the zone named
// zoneName in table. If zoneName is a link alias, it is resolved to its
// canonical zone first; the returned FixedTimespanSet is then identical to
// one obtained by materializing the canonical name directly.
func Timespans(table tztable.Table, zoneName string) (FixedTimespanSet, error) {
	canonical, ok := table.Canonical(zoneName)
	if !ok {
		return FixedTimespanSet{}, &MaterializeError{Kind: UnresolvedLink, Zone: zoneName, Err: fmt.Errorf("name does not resolve to a defined zone")}
	}
	zone, ok := table.Zones[canonical]
	if !ok || len(zone.Infos) == 0 {
		return FixedTimespanSet{}, &MaterializeError{Kind: UnresolvedLink, Zone: zoneName, Err: fmt.Errorf("resolved zone %q has no eras", canonical)}
	}

	var (
		result      FixedTimespanSet
		currentSave int64
		startYear   = tzexpand.MinYear
		eraStart    = int64(math.MinInt64) // no lower bound for the first era
	)

	for i := range zone.Infos {
		era := zone.Infos[i]
		offsetSeconds := int64(era.Offset / time.Second)
		rules, initialSave := rulesFor(table, era)

		switch {
		case isOneOff(era):
			// A OneOff era's save applies from the era's start, not from an
			// internal transition, per the "never itself generates an
			// internal transition" rule.
			currentSave = initialSave
		case i == 0:
			currentSave = 0
		default:
			// Carries over from the previous era's boundary transition.
		}

		if i == 0 {
			result.First = FixedTimespan{
				UTCOffset: offsetSeconds,
				DSTOffset: currentSave,
				Name:      formatAbbrev(era.Format, "", currentSave),
			}
		}

		hasEnd := era.Until.Defined
		endYear := tzexpand.MaxYear
		if hasEnd {
			endYear = era.Until.Year
		}

		occs, err := occurrencesIn(zoneName, rules, startYear, endYear)
		if err != nil {
			return FixedTimespanSet{}, err
		}

		for _, o := range occs {
			y, m, d := tzexpand.DayOfMonth(o.year, o.rule.In, o.rule.On)
			instant := resolveInstant(offsetSeconds, currentSave, y, m, d, o.rule.At)

			if instant < eraStart {
				continue // Occurrence belongs to the previous era, not this one.
			}

			if hasEnd {
				boundary := untilBoundary(era.Until, offsetSeconds, currentSave)
				if instant >= boundary {
					break // The UNTIL wins on an exact tie.
				}
			}

			save := tzexpand.Seconds(o.rule.Save)
			span := FixedTimespan{UTCOffset: offsetSeconds, DSTOffset: save, Name: formatAbbrev(era.Format, o.rule.Letter, save)}
			if span != result.last() {
				if last, ok := result.lastInstant(); ok && instant <= last {
					return FixedTimespanSet{}, &MaterializeError{Kind: DuplicateTransition, Zone: zoneName, Err: fmt.Errorf("rule transition at %d is not after the previous transition at %d", instant, last)}
				}
				result.Rest = append(result.Rest, Transition{At: instant, Span: span})
			}
			currentSave = save
		}

		if hasEnd {
			boundaryInstant := untilBoundary(era.Until, offsetSeconds, currentSave)

			var nextSpan FixedTimespan
			if i+1 < len(zone.Infos) {
				next := zone.Infos[i+1]
				_, nextInitialSave := rulesFor(table, next)
				if !isOneOff(next) {
					nextInitialSave = 0
				}
				nextSpan = FixedTimespan{
					UTCOffset: int64(next.Offset / time.Second),
					DSTOffset: nextInitialSave,
					Name:      formatAbbrev(next.Format, "", nextInitialSave),
				}
				currentSave = nextInitialSave
			} else {
				// Only a non-final era should have UNTIL defined; tztable's
				// own validation rejects the alternative, but Timespans is
				// re-checked defensively since it may run against a
				// hand-built Table.
				nextSpan = FixedTimespan{UTCOffset: offsetSeconds, DSTOffset: currentSave, Name: formatAbbrev(era.Format, "", currentSave)}
			}

			if nextSpan != result.last() {
				if last, ok := result.lastInstant(); ok && boundaryInstant <= last {
					return FixedTimespanSet{}, &MaterializeError{Kind: DuplicateTransition, Zone: zoneName, Err: fmt.Errorf("era boundary at %d is not after the previous transition at %d", boundaryInstant, last)}
				}
				result.Rest = append(result.Rest, Transition{At: boundaryInstant, Span: nextSpan})
			}

			startYear = endYear
			eraStart = boundaryInstant
		}
	}

	return result, nil
}

// rulesFor returns the rules active during era and the save that applies
// from the moment era starts, before any of its rules have fired.
func rulesFor(table tztable.Table, era tzdata.ZoneLine) (rules []tzdata.RuleLine, initialSave int64) {
	switch era.Rules.Form {
	case tzdata.ZoneRulesStandard:
		return nil, 0
	case tzdata.ZoneRulesTime:
		return nil, tzexpand.Seconds(era.Rules.Time)
	case tzdata.ZoneRulesName:
		return table.Rules[era.Rules.Name], 0
	default:
		return nil, 0
	}
}

func isOneOff(era tzdata.ZoneLine) bool {
	return era.Rules.Form == tzdata.ZoneRulesTime
}

type occurrence struct {
	sortKey int64
	order   int
	year    int
	rule    tzdata.RuleLine
}

// occurrencesIn collects every rule occurrence whose nominal year falls in
// [startYear-1, endYear+1], sorted by calendar date and time of day, with
// same-instant ties broken in favor of the later-listed rule.
func occurrencesIn(zoneName string, rules []tzdata.RuleLine, startYear, endYear int) ([]occurrence, error) {
	var occs []occurrence
	for order, r := range rules {
		from := tzexpand.ClampYear(r.From)
		to := tzexpand.ClampYear(r.To)
		lo := max(from, startYear-1)
		hi := min(to, endYear+1)
		for y := lo; y <= hi; y++ {
			if r.On.Form == tzdata.DayFormDayNum && !tzexpand.ValidDayNum(y, r.In, r.On.Num) {
				return nil, &MaterializeError{Kind: InvalidDay, Zone: zoneName, Err: fmt.Errorf("rule %q: day %d is not valid in %d-%02d", r.Name, r.On.Num, y, int(r.In))}
			}
			ry, rm, rd := tzexpand.DayOfMonth(y, r.In, r.On)
			key := tzexpand.Midnight(ry, rm, rd) + tzexpand.Seconds(r.At)
			occs = append(occs, occurrence{sortKey: key, order: order, year: y, rule: r})
		}
	}

	sort.SliceStable(occs, func(a, b int) bool {
		if occs[a].sortKey != occs[b].sortKey {
			return occs[a].sortKey < occs[b].sortKey
		}
		return occs[a].order < occs[b].order
	})

	deduped := occs[:0]
	for idx := range occs {
		if idx+1 < len(occs) && occs[idx+1].sortKey == occs[idx].sortKey {
			continue // A later-listed rule shares this instant and wins.
		}
		deduped = append(deduped, occs[idx])
	}
	return deduped, nil
}

// resolveInstant converts a calendar date and time-of-day, expressed in the
// basis t.Form, to a Unix timestamp using the era's standard offset and the
// save active immediately before this instant.
func resolveInstant(offsetSeconds, save int64, year int, month time.Month, day int, t tzdata.Time) int64 {
	nominal := tzexpand.Midnight(year, month, day) + tzexpand.Seconds(t)
	switch t.Form {
	case tzdata.UniversalTime:
		return nominal
	case tzdata.StandardTime:
		return nominal - offsetSeconds
	default: // WallClock
		return nominal - offsetSeconds - save
	}
}

// untilBoundary resolves a zone era's UNTIL column to a Unix timestamp,
// defaulting any trailing fields the source line omitted to their earliest
// possible value, per tzdb convention.
func untilBoundary(u tzdata.Until, offsetSeconds, save int64) int64 {
	// Parts accumulates strictly (year, then +month, then +day, then +time),
	// so a plain numeric comparison against the cumulative UntilMonth/
	// UntilDay/UntilTime masks tells us exactly how far the UNTIL column
	// was specified.
	month := time.January
	if u.Parts >= tzdata.UntilMonth {
		month = u.Month
	}
	day := tzdata.Day{Form: tzdata.DayFormDayNum, Num: 1}
	if u.Parts >= tzdata.UntilDay {
		day = u.Day
	}
	tm := tzdata.Time{Form: tzdata.WallClock}
	if u.Parts >= tzdata.UntilTime {
		tm = u.Time
	}
	y, m, d := tzexpand.DayOfMonth(u.Year, month, day)
	return resolveInstant(offsetSeconds, save, y, m, d, tm)
}

// formatAbbrev resolves a zone's FORMAT column against a rule's LETTER/S and
// save, per the three forms tzdb allows: a %s substitution slot, a slash-
// separated standard/daylight pair, or a literal abbreviation.
func formatAbbrev(format, letters string, save int64) string {
	if idx := strings.Index(format, "%s"); idx != -1 {
		return format[:idx] + letters + format[idx+2:]
	}
	if idx := strings.IndexByte(format, '/'); idx != -1 {
		if save == 0 {
			return format[:idx]
		}
		return format[idx+1:]
	}
	return format
}
