package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mwelte/appgrid/pkg/compat"
	"github.com/mwelte/appgrid/pkg/config"
	"github.com/mwelte/appgrid/pkg/search"
	"github.com/mwelte/appgrid/pkg/stats"
)

// parseSortMode maps the --sort flag value to a sort mode.
func parseSortMode(value string) (search.SortMode, error) {
	switch value {
	case "", "relevance":
		return search.SortRelevance, nil
	case "downloads":
		return search.SortMostDownloads, nil
	case "updated":
		return search.SortRecentlyUpdated, nil
	case "wayland":
		return search.SortBestWaylandSupport, nil
	default:
		return 0, fmt.Errorf("unknown sort mode %q (relevance, downloads, updated, wayland)", value)
	}
}

// parseWaylandFilter maps the --filter flag value to a risk bucket filter.
func parseWaylandFilter(value string) (search.WaylandFilter, error) {
	switch value {
	case "", "all":
		return search.FilterAll, nil
	case "excellent":
		return search.FilterExcellent, nil
	case "good":
		return search.FilterGood, nil
	case "caution":
		return search.FilterCaution, nil
	case "limited":
		return search.FilterLimited, nil
	case "unknown":
		return search.FilterUnknown, nil
	default:
		return 0, fmt.Errorf("unknown filter %q (all, excellent, good, caution, limited, unknown)", value)
	}
}

// resultRow is the JSON projection of one search result.
type resultRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Summary   string `json:"summary,omitempty"`
	Backend   string `json:"backend"`
	Source    string `json:"source,omitempty"`
	Downloads uint64 `json:"downloads,omitempty"`
	Wayland   string `json:"wayland,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

// printResults renders a ranked result list, truncated to the configured
// page size.
func printResults(cfg *config.Config, snapshot *stats.Snapshot, results []search.SearchResult) error {
	limit := cfg.Settings.PageSize
	if limit <= 0 || limit > len(results) {
		limit = len(results)
	}
	results = results[:limit]

	rows := make([]resultRow, 0, len(results))
	for i := range results {
		r := &results[i]
		rows = append(rows, resultRow{
			ID:        r.ID.String(),
			Name:      r.Info.Name,
			Summary:   r.Info.Summary,
			Backend:   r.BackendName,
			Source:    r.Info.SourceID,
			Downloads: r.Info.MonthlyDownloads,
			Wayland:   waylandLabel(compatFor(r, snapshot)),
			Icon:      r.Icon,
		})
	}

	if cfg.Settings.OutputFormat == "json" {
		return printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No applications found")
		return nil
	}

	fmt.Printf("%-32s %-40s %-16s %12s  %s\n", "NAME", "ID", "BACKEND", "DOWNLOADS", "WAYLAND")
	fmt.Println(strings.Repeat("-", 110))
	for _, row := range rows {
		fmt.Printf("%-32s %-40s %-16s %12d  %s\n",
			truncate(row.Name, 32), truncate(row.ID, 40), row.Backend, row.Downloads, row.Wayland)
	}
	fmt.Printf("\n%d application(s)\n", len(rows))
	return nil
}

func compatFor(r *search.SearchResult, snapshot *stats.Snapshot) *compat.WaylandCompatibility {
	if r.Info.WaylandCompat != nil {
		return r.Info.WaylandCompat
	}
	return snapshot.Compat(r.ID)
}

// waylandLabel renders a risk bucket for display; unclassified records show
// as a dash.
func waylandLabel(wc *compat.WaylandCompatibility) string {
	if wc == nil {
		return "-"
	}
	return string(wc.RiskLevel)
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
