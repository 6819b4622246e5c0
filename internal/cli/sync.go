package cli

import (
	"github.com/mwelte/appgrid/internal/logger"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh statistics and reload catalogs",
		Long: `Download the popularity and Wayland compatibility documents when the
remote copies are newer than the cache, then rebuild the aggregated
application map. A failed download keeps the cached statistics.`,
		RunE: runSync,
	}

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	env, err := buildEnv()
	if err != nil {
		return err
	}

	snapshot, err := env.stats.Refresh(cmd.Context())
	if err != nil {
		// Stale stats degrade ranking, not correctness.
		logger.Warn("stats refresh failed, keeping cached data", logger.Fields{"error": err.Error()})
	}
	env.store.Rebuild()

	logger.Info("sync complete", logger.Fields{
		"apps":     len(env.store.Apps()),
		"backends": env.registry.Len(),
		"stats":    snapshot.Len(),
	})
	return nil
}
