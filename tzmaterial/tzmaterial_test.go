package tzmaterial

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zonemap/tzdb/internal/tzexpand"
	"github.com/zonemap/tzdb/tzdata"
	"github.com/zonemap/tzdb/tztable"
)

func buildTable(t *testing.T, src string) tztable.Table {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(strings.TrimSpace(src)))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	b := tztable.NewBuilder()
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return table
}

// S1: a zone with standard time only never transitions.
func TestTimespans_SimpleStandardTimeZone(t *testing.T) {
	table := buildTable(t, `Zone  UTC  0  -  UTC`)

	got, err := Timespans(table, "UTC")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}
	want := FixedTimespanSet{First: FixedTimespan{UTCOffset: 0, DSTOffset: 0, Name: "UTC"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Timespans() mismatch (-want +got):\n%s", diff)
	}
}

// S2: a one-off save with no named rule set applies from the start of the zone.
func TestTimespans_OneOffSave(t *testing.T) {
	table := buildTable(t, `Zone  Etc/Test  -5:00  1:00  EDT`)

	got, err := Timespans(table, "Etc/Test")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}
	want := FixedTimespanSet{First: FixedTimespan{UTCOffset: -18000, DSTOffset: 3600, Name: "EDT"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Timespans() mismatch (-want +got):\n%s", diff)
	}
}

// S3: a slash-form FORMAT alternates between its standard and daylight halves.
func TestTimespans_SlashFormatAlternates(t *testing.T) {
	table := buildTable(t, `
Rule  Rname  2020  max  -  Mar  lastSun  1:00u  1:00  -
Rule  Rname  2020  max  -  Oct  lastSun  1:00u  0     -

Zone  X  1:00  Rname  EET/EEST
`)

	got, err := Timespans(table, "X")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}
	if got.First.Name != "EET" {
		t.Errorf("First.Name = %q, want EET", got.First.Name)
	}
	if len(got.Rest) == 0 {
		t.Fatal("expected at least one transition")
	}
	last := got.First.Name
	for i, tr := range got.Rest {
		if tr.Span.Name != "EET" && tr.Span.Name != "EEST" {
			t.Fatalf("transition %d has unexpected name %q", i, tr.Span.Name)
		}
		if tr.Span.Name == last {
			t.Fatalf("transition %d repeats name %q; abbreviations should alternate", i, tr.Span.Name)
		}
		last = tr.Span.Name
	}
}

// S4: materializing a link alias yields the same result as the canonical zone.
func TestTimespans_LinkMatchesCanonical(t *testing.T) {
	table := buildTable(t, `
Rule  Czech  1979  1985  -  Apr  Sun>=1   2:00  1:00  S
Rule  Czech  1979  1985  -  Sep  lastSun  2:00  0     -

Zone  Europe/Prague  1:00  Czech  CE%sT

Link  Europe/Prague  Europe/Bratislava
`)

	canonical, err := Timespans(table, "Europe/Prague")
	if err != nil {
		t.Fatalf("Timespans(Europe/Prague) error: %v", err)
	}
	aliased, err := Timespans(table, "Europe/Bratislava")
	if err != nil {
		t.Fatalf("Timespans(Europe/Bratislava) error: %v", err)
	}
	if diff := cmp.Diff(canonical, aliased); diff != "" {
		t.Errorf("link materialization mismatch (-canonical +alias):\n%s", diff)
	}
}

// S6: a lastSun DaySpec resolves to the same instant tzexpand.DayOfMonth would
// compute directly, cross-checking the two packages agree.
func TestTimespans_LastSunInstantMatchesDayOfMonth(t *testing.T) {
	table := buildTable(t, `
Rule  Once  2023  only  -  Mar  lastSun  2:00  1:00  S

Zone  Y  0:00  Once  E%sT
`)

	got, err := Timespans(table, "Y")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}
	if len(got.Rest) != 1 {
		t.Fatalf("expected exactly one transition, got %d", len(got.Rest))
	}

	y, m, d := tzexpand.DayOfMonth(2023, time.March, tzdata.Day{Form: tzdata.DayFormLast, Day: time.Sunday})
	want := tzexpand.Midnight(y, m, d) + 2*3600
	if got.Rest[0].At != want {
		t.Errorf("transition instant = %d, want %d", got.Rest[0].At, want)
	}
	if got.Rest[0].Span.Name != "EST" {
		t.Errorf("transition name = %q, want EST", got.Rest[0].Span.Name)
	}
}

// A ruleset that runs continuously across an era boundary must not
// generate occurrences from the era before its own UNTIL predecessor ends.
// Rule R has run since 1920, well before the 1950-06-01 boundary; its 1949
// and early-1950 occurrences belong to the first era, not the second, and
// must be discarded rather than compared against the boundary transition.
func TestTimespans_MultiContinuationEraBoundary(t *testing.T) {
	table := buildTable(t, `
Zone  Z  0:00  -  A  1950  Jun  1
              1:00  R  B

Rule  R  1920  max  -  Mar  lastSun  2:00  1:00  S
Rule  R  1920  max  -  Oct  lastSun  2:00  0     -
`)

	got, err := Timespans(table, "Z")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}

	if got.First != (FixedTimespan{UTCOffset: 0, DSTOffset: 0, Name: "A"}) {
		t.Errorf("First = %+v, want standard-time era A", got.First)
	}
	if len(got.Rest) == 0 {
		t.Fatal("expected at least the era-boundary transition")
	}

	wantBoundary := tzexpand.Midnight(1950, time.June, 1)
	if got.Rest[0].At != wantBoundary {
		t.Errorf("first transition at %d, want era boundary %d", got.Rest[0].At, wantBoundary)
	}
	if got.Rest[0].Span != (FixedTimespan{UTCOffset: 3600, DSTOffset: 0, Name: "B"}) {
		t.Errorf("first transition span = %+v, want era B at standard time", got.Rest[0].Span)
	}

	var lastAt int64 = -1 << 62
	for i, tr := range got.Rest {
		if tr.At <= lastAt {
			t.Fatalf("transition %d at %d is not after previous transition at %d (stray pre-boundary rule occurrence?)", i, tr.At, lastAt)
		}
		lastAt = tr.At
	}
}

// Invariant 1 & 2: strictly increasing instants, no two adjacent identical spans.
func TestTimespans_InvariantsHold(t *testing.T) {
	table := buildTable(t, `
Rule  EU  1981  max  -  Mar  lastSun  1:00u  1:00  S
Rule  EU  1996  max  -  Oct  lastSun  1:00u  0     -

Zone  Europe/Paris  1:00  EU  CE%sT
`)
	got, err := Timespans(table, "Europe/Paris")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}

	last := got.First
	var lastAt int64 = -1 << 62
	for i, tr := range got.Rest {
		if tr.At <= lastAt {
			t.Fatalf("transition %d at %d is not after previous transition at %d", i, tr.At, lastAt)
		}
		if tr.Span == last {
			t.Fatalf("transition %d repeats the previous span %+v", i, tr.Span)
		}
		last = tr.Span
		lastAt = tr.At
	}
}

// Invariant 3: At(t) is well-defined everywhere, including before the first transition.
func TestTimespans_AtIsDefinedEverywhere(t *testing.T) {
	table := buildTable(t, `
Rule  EU  1981  max  -  Mar  lastSun  1:00u  1:00  S
Rule  EU  1996  max  -  Oct  lastSun  1:00u  0     -

Zone  Europe/Paris  1:00  EU  CE%sT
`)
	got, err := Timespans(table, "Europe/Paris")
	if err != nil {
		t.Fatalf("Timespans() error: %v", err)
	}

	if span := got.At(-1 << 61); span != got.First {
		t.Errorf("At(far past) = %+v, want First %+v", span, got.First)
	}
	if len(got.Rest) > 0 {
		mid := got.Rest[0].At
		if span := got.At(mid); span != got.Rest[0].Span {
			t.Errorf("At(first transition instant) = %+v, want %+v", span, got.Rest[0].Span)
		}
		if span := got.At(mid - 1); span != got.First {
			t.Errorf("At(instant before first transition) = %+v, want First %+v", span, got.First)
		}
	}
}
