package cli

import (
	"fmt"
	"strings"

	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/search"
	"github.com/spf13/cobra"
)

// NewInstalledCmd creates the installed command.
func NewInstalledCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "installed",
		Short: "List installed applications",
		Long:  "List the installed applications of every enabled backend, distro packages first.",
		RunE: func(*cobra.Command, []string) error {
			return runListing("installed", search.ListInstalled)
		},
	}

	return cmd
}

// NewUpdatesCmd creates the updates command.
func NewUpdatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "List available updates",
		Long:  "List the installed applications with a newer version available in their source.",
		RunE: func(*cobra.Command, []string) error {
			return runListing("updates", search.ListUpdates)
		},
	}

	return cmd
}

// listedRow is the JSON projection of one installed or updatable package.
type listedRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Backend string `json:"backend"`
	Source  string `json:"source,omitempty"`
	Version string `json:"version,omitempty"`
}

func runListing(kind string, list func(*backend.Registry) []search.ListedPackage) error {
	env, err := buildEnv()
	if err != nil {
		return err
	}

	listed := list(env.registry)
	rows := make([]listedRow, 0, len(listed))
	for _, pkg := range listed {
		row := listedRow{
			ID:      pkg.Package.ID.String(),
			Backend: pkg.BackendName,
		}
		if info := pkg.Package.Info; info != nil {
			row.Name = info.Name
			row.Source = info.SourceID
			if release := info.LatestRelease(); release != nil {
				row.Version = release.Version
			}
		}
		rows = append(rows, row)
	}

	if env.cfg.Settings.OutputFormat == "json" {
		return printJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Printf("No %s applications\n", kind)
		return nil
	}

	fmt.Printf("%-32s %-40s %-16s %s\n", "NAME", "ID", "BACKEND", "VERSION")
	fmt.Println(strings.Repeat("-", 100))
	for _, row := range rows {
		fmt.Printf("%-32s %-40s %-16s %s\n",
			truncate(row.Name, 32), truncate(row.ID, 40), row.Backend, row.Version)
	}
	fmt.Printf("\n%d application(s)\n", len(rows))
	return nil
}
