package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ug-admin-search/internal/refdata"
	"github.com/ug-admin-search/internal/search"
	"github.com/ug-admin-search/internal/service"
)

// loadEngine builds an engine from the configured source for one-shot commands.
func loadEngine(ctx context.Context) (*search.Engine, error) {
	provider, conn, err := service.OpenProvider(cfg)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		defer conn.Close()
	}
	ds, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(ds, cfg.Search.FuzzyOptions())
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createSearchCmd() *cobra.Command {
	var (
		limit   int
		asJSON  bool
		details bool
	)
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Fuzzy search, e.g. search Mbuya in Nakawa",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Search.DefaultLimit
			}
			q := strings.Join(args, " ")
			results := e.Search(q, limit)
			if asJSON {
				return printJSON(results)
			}
			if len(results) == 0 {
				fmt.Println("No matches")
				return nil
			}

			fmt.Printf("Terms: %s\n\n", strings.Join(e.Terms(q), " | "))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tLEVEL\tID\tNAME\tSIMILARITY\tMATCHED\tCONFIDENCE")
			for i, r := range results {
				matched, confidence := "1/1", "-"
				if r.MatchInfo != nil {
					matched = fmt.Sprintf("%d/%d", r.MatchInfo.MatchedTerms, r.MatchInfo.TotalTerms)
					confidence = fmt.Sprintf("%.3f", r.MatchInfo.Confidence)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.3f\t%s\t%s\n",
					i+1, r.Unit.Level, r.Unit.ID, r.Unit.Name, r.Similarity, matched, confidence)
				if details {
					fmt.Fprintf(w, "\t\t\t%s\t\t\t\n", strings.Join(e.AncestorNames(r.Unit.Level, r.Unit.ID), ", "))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVarP(&details, "ancestors", "a", false, "print each result's ancestors")
	return cmd
}

func createExactCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "exact <text...>",
		Short: "List units whose name contains text, ignoring case",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			results := e.ExactSearch(strings.Join(args, " "))
			if asJSON {
				return printJSON(results)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEVEL\tID\tNAME")
			for _, c := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Unit.Level, c.Unit.ID, c.Unit.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d unit(s)\n", len(results))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func createChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chain <level> <id>",
		Short: "Show a unit's identifier chain and ancestors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := refdata.ParseLevel(args[0])
			if err != nil {
				return err
			}
			e, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			u, ok := e.Unit(level, args[1])
			if !ok {
				return fmt.Errorf("%s %s not found", level, args[1])
			}

			chain := e.Chain(level, u.ID)
			fmt.Printf("%s %s (%s)\n", level, u.ID, u.Name)
			for _, l := range refdata.Levels() {
				if id := chain.At(l); id != "" {
					fmt.Printf("  %-10s %s\n", l, id)
				}
			}
			if names := e.AncestorNames(level, u.ID); len(names) > 0 {
				fmt.Printf("Ancestors: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func createStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load the reference data and print unit counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(e.Stats())
		},
	}
}
