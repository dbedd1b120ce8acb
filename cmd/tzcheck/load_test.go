package main

import (
	"strings"
	"testing"

	"github.com/zonemap/tzdb/internal/tzconfig"
)

func TestLoadFacade_ZoneFilterIsRegularExpression(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, `
Zone  Europe/Zurich  0:00  -  CET
Zone  Europe/Vaduz   0:00  -  CET
Zone  America/NYC    0:00  -  EST
`)

	cfg := &tzconfig.Config{Source: path, ZoneFilter: "^Europe/(Zurich|Vaduz)$"}
	facade, err := loadFacade(cfg)
	if err != nil {
		t.Fatalf("loadFacade() error: %v", err)
	}

	names := facade.ZoneNames()
	for _, want := range []string{"Europe/Zurich", "Europe/Vaduz"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("zone names %v missing %q", names, want)
		}
	}
	for _, n := range names {
		if n == "America/NYC" {
			t.Errorf("zone names %v should not contain America/NYC", names)
		}
	}
}

func TestLoadFacade_InvalidZoneFilterErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, `Zone  Europe/Zurich  0:00  -  CET`)

	cfg := &tzconfig.Config{Source: path, ZoneFilter: "("}
	if _, err := loadFacade(cfg); err == nil {
		t.Fatal("expected error for invalid regular expression")
	} else if !strings.Contains(err.Error(), "zone filter") {
		t.Errorf("error = %v, want it to mention the zone filter", err)
	}
}
