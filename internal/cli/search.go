package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrlokans/legalshelf/internal/catalog"
	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/entities"
	"github.com/mrlokans/legalshelf/internal/entrypoint"
	"github.com/mrlokans/legalshelf/internal/search"
)

// cliUser owns the per-reader views the CLI reads through the store.
const cliUser = "cli"

type searchOptions struct {
	Area      string
	Threshold float64
	Limit     int
	JSON      bool
}

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Long: `Fuzzy search over book titles, areas and descriptions.

Falls back to the bundled sample catalog when the database is empty.

Examples:
  legalshelf search "direito penal"
  legalshelf search "codigo civl" --threshold 0.5
  legalshelf search contratos --area Civil --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cfg, cmd.ErrOrStderr())
			results, err := searchLibrary(cmd.Context(), cfg, log, args[0], opts)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), args[0], results, opts.JSON)
		},
	}

	cmd.Flags().StringVarP(&opts.Area, "area", "a", "", "Only return books from this area")
	cmd.Flags().Float64VarP(&opts.Threshold, "threshold", "t", 0, "Minimum similarity between 0 and 1 (default $LIBRARY_SEARCH_THRESHOLD)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Limit number of results (0 for all)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print results as JSON")

	return cmd
}

func searchLibrary(ctx context.Context, cfg *config.Config, log zerolog.Logger, query string, opts searchOptions) ([]search.Result[entities.Book], error) {
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be between 0 and 1, got %v", opts.Threshold)
	}

	var results []search.Result[entities.Book]
	useSample := true

	services, err := entrypoint.NewServices(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Database unavailable, searching the sample catalog")
	} else {
		defer services.Close()
		count, err := services.DB.CountBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("count books: %w", err)
		}
		if count > 0 {
			useSample = false
			results, err = services.Store.SearchBooks(ctx, cliUser, query, opts.Threshold)
			if err != nil {
				return nil, fmt.Errorf("search catalog: %w", err)
			}
		} else {
			log.Info().Msg("Catalog is empty, searching the sample catalog")
		}
	}

	if useSample {
		sample, err := catalog.Sample()
		if err != nil {
			return nil, fmt.Errorf("load sample catalog: %w", err)
		}
		threshold := opts.Threshold
		if threshold == 0 {
			threshold = cfg.Library.SearchThreshold
		}
		results = search.RankedSearch(sample, strings.TrimSpace(query), entities.Book.SearchText, threshold)
	}

	return filterResults(results, opts.Area, opts.Limit), nil
}

func filterResults(results []search.Result[entities.Book], area string, limit int) []search.Result[entities.Book] {
	filtered := make([]search.Result[entities.Book], 0, len(results))
	for _, r := range results {
		if area != "" && !strings.EqualFold(r.Item.Area, area) {
			continue
		}
		filtered = append(filtered, r)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered
}

func writeResults(w io.Writer, query string, results []search.Result[entities.Book], asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintf(w, "No books found matching %q\n", query)
		return nil
	}

	fmt.Fprintf(w, "Found %d result(s) for %q:\n\n", len(results), query)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tMATCH\tAREA\tTITLE")
	for _, r := range results {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\n", r.Item.ID, r.Score, r.MatchType, r.Item.Area, truncate(r.Item.Title, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
