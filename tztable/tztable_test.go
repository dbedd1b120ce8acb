package tztable

import (
	"strings"
	"testing"

	"github.com/zonemap/tzdb/tzdata"
)

func mustParse(t *testing.T, src string) tzdata.File {
	t.Helper()
	f, err := tzdata.Parse(strings.NewReader(strings.TrimSpace(src)))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return f
}

func TestBuilder_ZurichExample(t *testing.T) {
	f := mustParse(t, `
# Rule  NAME  FROM  TO    -  IN   ON       AT    SAVE  LETTER/S
Rule    Swiss 1941  1942  -  May  Mon>=1   1:00  1:00  S
Rule    Swiss 1941  1942  -  Oct  Mon>=1   2:00  0     -
Rule    EU    1981  max   -  Mar  lastSun  1:00u 1:00  S
Rule    EU    1996  max   -  Oct  lastSun  1:00u 0     -

# Zone  NAME           STDOFF      RULES  FORMAT  [UNTIL]
Zone    Europe/Zurich  0:34:08     -      LMT     1853 Jul 16
						1:00        Swiss  CE%sT   1981
						1:00        EU     CE%sT

Link    Europe/Zurich  Europe/Vaduz
`)

	b := NewBuilder()
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if len(table.Zones["Europe/Zurich"].Infos) != 3 {
		t.Fatalf("expected 3 eras for Europe/Zurich, got %d", len(table.Zones["Europe/Zurich"].Infos))
	}
	if table.Links["Europe/Vaduz"] != "Europe/Zurich" {
		t.Errorf("expected Europe/Vaduz to resolve to Europe/Zurich, got %q", table.Links["Europe/Vaduz"])
	}
	canonical, ok := table.Canonical("Europe/Vaduz")
	if !ok || canonical != "Europe/Zurich" {
		t.Errorf("Canonical(Europe/Vaduz) = %q, %v", canonical, ok)
	}
	if len(table.Rules["Swiss"]) != 2 || len(table.Rules["EU"]) != 2 {
		t.Errorf("unexpected rule set sizes: Swiss=%d EU=%d", len(table.Rules["Swiss"]), len(table.Rules["EU"]))
	}
}

func TestBuilder_UndefinedRuleset(t *testing.T) {
	f := mustParse(t, `
Zone  Test/Zone  0:00  Ghost  TST
`)
	b := NewBuilder()
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	_, err := b.Build()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	be, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T", err)
	}
	if be.Kind != UndefinedRuleset {
		t.Errorf("expected UndefinedRuleset, got %v", be.Kind)
	}
}

func TestBuilder_DuplicateZone(t *testing.T) {
	f1 := mustParse(t, `Zone Test/Zone 0:00 - TST`)
	f2 := mustParse(t, `Zone Test/Zone 0:00 - TST`)

	b := NewBuilder()
	if err := b.AddFile(f1); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	err := b.AddFile(f2)
	be, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T (%v)", err, err)
	}
	if be.Kind != DuplicateZone {
		t.Errorf("expected DuplicateZone, got %v", be.Kind)
	}
}

func TestBuilder_CyclicLink(t *testing.T) {
	f := mustParse(t, `
Link A B
Link B A
`)
	b := NewBuilder()
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	_, err := b.Build()
	be, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T (%v)", err, err)
	}
	if be.Kind != CyclicLink {
		t.Errorf("expected CyclicLink, got %v", be.Kind)
	}
}

func TestBuilder_WithFilter(t *testing.T) {
	f := mustParse(t, `
Zone  Europe/Zurich  0:00  -  CET
Zone  America/NYC    0:00  -  EST

Link  Europe/Zurich  Europe/Vaduz
`)
	b := NewBuilder(WithFilter(func(name string) bool {
		return strings.HasPrefix(name, "Europe/")
	}))
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if _, ok := table.Zones["America/NYC"]; ok {
		t.Error("expected America/NYC to be filtered out")
	}
	if _, ok := table.Zones["Europe/Zurich"]; !ok {
		t.Error("expected Europe/Zurich to be kept")
	}
	if _, ok := table.Links["Europe/Vaduz"]; !ok {
		t.Error("expected Europe/Vaduz link to be kept since its target passes the filter")
	}
}

// A link is filtered on its own alias, not its target: an alias that fails
// the predicate is dropped even if its target passes, and an alias that
// passes is still dropped if its target was itself filtered out (it would
// otherwise point at a zone absent from the table).
func TestBuilder_WithFilter_FiltersOnAlias(t *testing.T) {
	f := mustParse(t, `
Zone  Europe/Zurich  0:00  -  CET
Zone  America/NYC    0:00  -  EST

Link  Europe/Zurich  Europe/Vaduz
Link  Europe/Zurich  America/Keepalias
Link  America/NYC    Europe/DanglingAlias
`)
	b := NewBuilder(WithFilter(func(name string) bool {
		return strings.HasPrefix(name, "Europe/")
	}))
	if err := b.AddFile(f); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if _, ok := table.Links["Europe/Vaduz"]; !ok {
		t.Error("expected Europe/Vaduz to be kept: alias matches filter, target is kept")
	}
	if _, ok := table.Links["America/Keepalias"]; ok {
		t.Error("expected America/Keepalias to be dropped: alias does not match filter")
	}
	if _, ok := table.Links["Europe/DanglingAlias"]; ok {
		t.Error("expected Europe/DanglingAlias to be dropped: target America/NYC was filtered out")
	}
}
