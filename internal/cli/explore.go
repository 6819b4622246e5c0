package cli

import (
	"fmt"
	"time"

	"github.com/mwelte/appgrid/pkg/search"
	"github.com/spf13/cobra"
)

// NewExploreCmd creates the explore command.
func NewExploreCmd() *cobra.Command {
	var filterFlag string

	cmd := &cobra.Command{
		Use:   "explore [page]",
		Short: "Browse the curated explore pages",
		Long: `Show one explore page: the built-in pages (editors' choice, popular,
recently updated, per-genre listings) plus any curation scripts found in
the configured curation directory. Without an argument the available
pages are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runExploreList()
			}
			return runExplore(args[0], filterFlag)
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", "all", "Wayland compatibility bucket (all, excellent, good, caution, limited, unknown)")

	return cmd
}

func runExploreList() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, page := range search.AllExplorePages() {
		fmt.Println(string(page))
	}
	for _, page := range loadCuratedPages(cfg) {
		fmt.Println(page.Name)
	}
	return nil
}

func runExplore(name, filterFlag string) error {
	waylandFilter, err := parseWaylandFilter(filterFlag)
	if err != nil {
		return err
	}

	env, err := buildEnv()
	if err != nil {
		return err
	}

	score, err := exploreScorer(env, name)
	if err != nil {
		return err
	}

	snapshot := env.stats.Current()
	results := search.Generic(env.store.Apps(), env.registry, snapshot, env.codename,
		score, search.SortRelevance, waylandFilter)
	return printResults(env.cfg, snapshot, results)
}

// exploreScorer resolves a page name: built-in pages first, then the loaded
// curation scripts.
func exploreScorer(env *appEnv, name string) (search.ScoreFunc, error) {
	for _, page := range search.AllExplorePages() {
		if string(page) == name {
			return search.Explore(page, time.Now()), nil
		}
	}
	for _, page := range loadCuratedPages(env.cfg) {
		if page.Name == name {
			return page.Score(), nil
		}
	}
	return nil, fmt.Errorf("unknown explore page %q, run 'appgrid explore' for the list", name)
}
