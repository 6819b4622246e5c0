package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/search"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show application details",
		Long:  "Show the metadata of one application across every source that carries it, including its addons.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}

	return cmd
}

// infoSource is the JSON projection of one source entry.
type infoSource struct {
	Backend   string `json:"backend"`
	Source    string `json:"source"`
	Version   string `json:"version,omitempty"`
	Installed bool   `json:"installed"`
}

type infoReport struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	License     string       `json:"license,omitempty"`
	Homepage    string       `json:"homepage,omitempty"`
	Downloads   uint64       `json:"downloads,omitempty"`
	Wayland     string       `json:"wayland,omitempty"`
	Verified    bool         `json:"verified,omitempty"`
	Sources     []infoSource `json:"sources"`
	Addons      []string     `json:"addons,omitempty"`
}

func runInfo(rawID string) error {
	env, err := buildEnv()
	if err != nil {
		return err
	}

	id := appid.New(rawID)
	entries := env.store.Sources(id)
	if len(entries) == 0 {
		return fmt.Errorf("unknown application %q", rawID)
	}

	report := buildInfoReport(env, id, entries)
	if env.cfg.Settings.OutputFormat == "json" {
		return printJSON(report)
	}

	printInfoReport(report)
	return nil
}

func buildInfoReport(env *appEnv, id appid.AppId, entries []model.AppEntry) infoReport {
	preferred := entries[0].Info
	snapshot := env.stats.Current()

	result := search.SearchResult{ID: id, Info: preferred}
	report := infoReport{
		ID:          id.String(),
		Name:        preferred.Name,
		Summary:     preferred.Summary,
		Description: preferred.Description,
		License:     preferred.License,
		Homepage:    preferred.Urls["homepage"],
		Downloads:   snapshot.Downloads(id),
		Wayland:     waylandLabel(compatFor(&result, snapshot)),
		Verified:    preferred.Verified,
	}

	for _, entry := range entries {
		source := infoSource{
			Backend:   entry.BackendName,
			Installed: entry.Installed,
		}
		if entry.Info != nil {
			source.Source = entry.Info.SourceID
			if release := entry.Info.LatestRelease(); release != nil {
				source.Version = release.Version
			}
		}
		report.Sources = append(report.Sources, source)
	}

	report.Addons = collectAddons(env, id)
	return report
}

// collectAddons gathers the addon ids declared for the application across
// every loaded catalog.
func collectAddons(env *appEnv, id appid.AppId) []string {
	seen := map[string]bool{}
	var addons []string
	env.registry.Each(func(_ string, b backend.Backend) {
		for _, cache := range b.InfoCaches() {
			for _, addon := range cache.Addons[id] {
				raw := addon.String()
				if !seen[raw] {
					seen[raw] = true
					addons = append(addons, raw)
				}
			}
		}
	})
	sort.Strings(addons)
	return addons
}

func printInfoReport(report infoReport) {
	fmt.Printf("%s (%s)\n", report.Name, report.ID)
	if report.Summary != "" {
		fmt.Println(report.Summary)
	}
	fmt.Println()
	if report.Description != "" {
		fmt.Println(report.Description)
		fmt.Println()
	}
	if report.License != "" {
		fmt.Printf("License:   %s\n", report.License)
	}
	if report.Homepage != "" {
		fmt.Printf("Homepage:  %s\n", report.Homepage)
	}
	if report.Downloads > 0 {
		fmt.Printf("Downloads: %d (last month)\n", report.Downloads)
	}
	if report.Wayland != "-" && report.Wayland != "" {
		fmt.Printf("Wayland:   %s risk\n", report.Wayland)
	}
	if report.Verified {
		fmt.Println("Verified:  yes")
	}

	fmt.Println("\nSources:")
	for _, source := range report.Sources {
		marker := ""
		if source.Installed {
			marker = " [installed]"
		}
		version := source.Version
		if version == "" {
			version = "-"
		}
		fmt.Printf("  %-16s %-24s %s%s\n", source.Backend, source.Source, version, marker)
	}

	if len(report.Addons) > 0 {
		fmt.Printf("\nAddons:\n  %s\n", strings.Join(report.Addons, "\n  "))
	}
}
