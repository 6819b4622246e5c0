package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwelte/appgrid/pkg/search"
	"github.com/spf13/cobra"
)

// NewCategoryCmd creates the category command.
func NewCategoryCmd() *cobra.Command {
	var (
		sortFlag   string
		filterFlag string
	)

	cmd := &cobra.Command{
		Use:   "category [name]",
		Short: "Browse applications by category",
		Long:  "List the applications of one navigation category. Without an argument the known categories are listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runCategoryList()
			}
			return runCategory(args[0], sortFlag, filterFlag)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "relevance", "result order (relevance, downloads, updated, wayland)")
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "Wayland compatibility bucket (all, excellent, good, caution, limited, unknown)")

	return cmd
}

func runCategoryList() error {
	names := make([]string, 0, len(search.NavCategories))
	for name := range search.NavCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println(strings.Join(names, "\n"))
	return nil
}

func runCategory(name, sortFlag, filterFlag string) error {
	categories, ok := search.NavCategories[name]
	if !ok {
		return fmt.Errorf("unknown category %q, run 'appgrid category' for the list", name)
	}
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
	results := search.Generic(env.store.Apps(), env.registry, snapshot, env.codename,
		search.Categories(categories), sortMode, waylandFilter)
	return printResults(env.cfg, snapshot, results)
}
