package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zonemap/tzdb/internal/tzconfig"
	"github.com/zonemap/tzdb/tzdata"
	"github.com/zonemap/tzdb/tzdb/ianadist"
	"github.com/zonemap/tzdb/tztable"
	"github.com/zonemap/tzdb/tzview"
)

// loadFacade builds a tzview.Facade from cfg.Source: a .tar.gz release
// archive, a single tzdata text file, or, if Source is empty, the latest
// release fetched from the IANA data server.
func loadFacade(cfg *tzconfig.Config) (*tzview.Facade, error) {
	var opts []tztable.Option
	if strings.TrimSpace(cfg.ZoneFilter) != "" {
		re, err := regexp.Compile(cfg.ZoneFilter)
		if err != nil {
			return nil, fmt.Errorf("zone filter %q: %w", cfg.ZoneFilter, err)
		}
		opts = append(opts, tztable.WithFilter(re.MatchString))
	}

	table, err := buildTable(cfg, opts)
	if err != nil {
		return nil, err
	}
	return tzview.New(table), nil
}

func buildTable(cfg *tzconfig.Config, opts []tztable.Option) (tztable.Table, error) {
	switch {
	case strings.TrimSpace(cfg.Source) == "":
		release, _, err := ianadist.Latest(context.Background(), "")
		if err != nil {
			return tztable.Table{}, fmt.Errorf("fetch latest release: %w", err)
		}
		return release.BuildTable(opts...)
	case strings.HasSuffix(cfg.Source, ".tar.gz"):
		f, err := os.Open(cfg.Source)
		if err != nil {
			return tztable.Table{}, fmt.Errorf("open %q: %w", cfg.Source, err)
		}
		defer f.Close()
		release, err := ianadist.ReadArchive(f)
		if err != nil {
			return tztable.Table{}, fmt.Errorf("read archive %q: %w", cfg.Source, err)
		}
		return release.BuildTable(opts...)
	default:
		f, err := os.Open(cfg.Source)
		if err != nil {
			return tztable.Table{}, fmt.Errorf("open %q: %w", cfg.Source, err)
		}
		defer f.Close()
		parsed, err := tzdata.Parse(f)
		if err != nil {
			return tztable.Table{}, fmt.Errorf("parse %q: %w", cfg.Source, err)
		}
		b := tztable.NewBuilder(opts...)
		if err := b.AddFile(parsed); err != nil {
			return tztable.Table{}, fmt.Errorf("add %q: %w", cfg.Source, err)
		}
		return b.Build()
	}
}
