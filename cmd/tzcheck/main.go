// Command tzcheck is a small demonstration binary over the tzview facade:
// it lists zones, prints a zone's materialized transition history, and can
// fetch the latest release from the IANA data server. It is not a code
// generator — its only output is human-readable text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zonemap/tzdb/internal/tzconfig"
	"github.com/zonemap/tzdb/tzmaterial"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tzcheck",
		Short:        "Inspect a tzdb release through the tzview facade",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("source", "s", "", "tzdata file or .tar.gz release archive (default: fetch latest from IANA)")
	cmd.PersistentFlags().StringP("filter", "f", "", "keep only zone names matching this regular expression")
	cmd.PersistentFlags().String("format", "text", "output format for \"show\": text or yaml")

	cmd.AddCommand(newZonesCmd(), newShowCmd(), newFetchCmd())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*tzconfig.Config, error) {
	source, _ := cmd.Flags().GetString("source")
	filter, _ := cmd.Flags().GetString("filter")
	return tzconfig.Load(source, filter)
}

func newZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List every canonical zone name and link alias",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			facade, err := loadFacade(cfg)
			if err != nil {
				return err
			}

			for _, name := range facade.ZoneNames() {
				fmt.Println(name)
			}
			for _, alias := range facade.AliasNames() {
				canonical, _ := facade.Canonical(alias)
				fmt.Printf("%s -> %s\n", alias, canonical)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show <zone>",
		Short: "Print a zone's materialized transition history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			facade, err := loadFacade(cfg)
			if err != nil {
				return err
			}

			name := args[0]
			canonical, ok := facade.Canonical(name)
			if !ok {
				return fmt.Errorf("unknown zone %q", name)
			}
			if canonical != name {
				fmt.Printf("%s is a link to %s\n", name, canonical)
			}

			spans, err := facade.Timespans(name)
			if err != nil {
				return err
			}

			total := len(spans.Rest)
			n := total
			if limit > 0 && limit < n {
				n = limit
			}
			spans.Rest = spans.Rest[:n]

			format, _ := cmd.Flags().GetString("format")
			if format == "yaml" {
				return printYAML(spans)
			}

			fmt.Printf("since the indefinite past: %s\n", formatSpan(spans.First))
			for _, tr := range spans.Rest {
				fmt.Printf("%s: %s\n", time.Unix(tr.At, 0).UTC().Format(time.RFC3339), formatSpan(tr.Span))
			}
			if n < total {
				fmt.Printf("... %d more transition(s) omitted\n", total-n)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of transitions to print (0 for all)")
	return cmd
}

func formatSpan(s tzmaterial.FixedTimespan) string {
	return s.String()
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(v)
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the latest release from the IANA data server and print how many zones it defines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Source = "" // always hit the network for this subcommand
			table, err := buildTable(cfg, nil)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d zones\n", len(table.Zones))
			return nil
		},
	}
}
