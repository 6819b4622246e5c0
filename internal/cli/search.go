package cli

import (
	"fmt"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/search"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var (
		sortFlag   string
		filterFlag string
		exactID    bool
		mimeType   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for applications",
		Long: `Search for applications across all configured backends.

Name matches rank before summary matches, summary before description;
ties are broken by download count. Results can be re-sorted and
restricted to a Wayland compatibility bucket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if exactID && mimeType {
				return fmt.Errorf("--id and --mime are mutually exclusive")
			}
			return runSearch(args[0], sortFlag, filterFlag, exactID, mimeType)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "relevance", "result order (relevance, downloads, updated, wayland)")
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "Wayland compatibility bucket (all, excellent, good, caution, limited, unknown)")
	cmd.Flags().BoolVar(&exactID, "id", false, "treat the query as an exact application id")
	cmd.Flags().BoolVar(&mimeType, "mime", false, "find applications handling the given media type")

	return cmd
}

func runSearch(query, sortFlag, filterFlag string, exactID, mimeType bool) error {
	sortMode, err := parseSortMode(sortFlag)
	if err != nil {
		return err
	}
	waylandFilter, err := parseWaylandFilter(filterFlag)
	if err != nil {
		return err
	}

	env, err := buildEnv()
	if err != nil {
		return err
	}

	snapshot := env.stats.Current()
	var results []search.SearchResult
	switch {
	case exactID:
		results = search.Generic(env.store.Apps(), env.registry, snapshot, env.codename,
			search.ExactID(appid.New(query)), sortMode, waylandFilter)
	case mimeType:
		results = search.Generic(env.store.Apps(), env.registry, snapshot, env.codename,
			search.MediaType(query), sortMode, waylandFilter)
	default:
		results = search.Text(env.store.Apps(), env.registry, snapshot, env.codename,
			query, sortMode, waylandFilter)
	}

	return printResults(env.cfg, snapshot, results)
}
