package cli

import (
	"fmt"

	"github.com/mwelte/appgrid/internal/logger"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/backend/flatpak"
	"github.com/mwelte/appgrid/pkg/backend/system"
	"github.com/mwelte/appgrid/pkg/cache"
	"github.com/mwelte/appgrid/pkg/config"
	"github.com/mwelte/appgrid/pkg/curation"
	"github.com/mwelte/appgrid/pkg/download"
	"github.com/mwelte/appgrid/pkg/platform"
	"github.com/mwelte/appgrid/pkg/stats"
	"github.com/mwelte/appgrid/pkg/store"
)

// These variables will be set by the main package.
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

const userAgent = "appgrid/" + Version

// loadConfig loads the configuration, applies flag overrides and initializes
// the logger. Every command goes through here.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}
	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

// appEnv bundles the components a catalog-reading command needs: the loaded
// backends, the stats service and the aggregated store.
type appEnv struct {
	cfg      *config.Config
	registry *backend.Registry
	stats    *stats.Service
	store    *store.Store
	codename string
}

// buildEnv constructs the full environment from the configuration: backends
// are loaded, cached stats picked up and the aggregated map built. A backend
// that fails to load is logged and participates with empty catalogs.
func buildEnv() (*appEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildEnvFromConfig(cfg)
}

func buildEnvFromConfig(cfg *config.Config) (*appEnv, error) {
	registry := backend.NewRegistry()
	arch := platform.FlatpakArch()

	if cfg.Backends.FlatpakUser.Enabled {
		b := flatpak.New(backend.NameFlatpakUser, cfg.Backends.FlatpakUser.Root, arch)
		if err := b.Load(); err != nil {
			logger.Warn("failed to load flatpak user installation", logger.Fields{"error": err.Error()})
		}
		registry.Register(backend.NameFlatpakUser, b)
	}
	if cfg.Backends.FlatpakSystem.Enabled {
		b := flatpak.New(backend.NameFlatpakSystem, cfg.Backends.FlatpakSystem.Root, arch)
		if err := b.Load(); err != nil {
			logger.Warn("failed to load flatpak system installation", logger.Fields{"error": err.Error()})
		}
		registry.Register(backend.NameFlatpakSystem, b)
	}
	if cfg.Backends.System.Enabled {
		b := system.New(backend.NameSystem, cfg.Backends.System.CatalogDir, cfg.Backends.System.InstalledDB)
		if err := b.Load(); err != nil {
			logger.Warn("failed to load system catalogs", logger.Fields{"error": err.Error()})
		}
		registry.Register(backend.NameSystem, b)
	}

	statsService, err := buildStatsService(cfg)
	if err != nil {
		return nil, err
	}
	statsService.LoadCached()

	st := store.New(registry, statsService)
	st.Rebuild()

	codename := cfg.Settings.OSCodename
	if codename == "" {
		codename = platform.Detect().Codename()
	}

	return &appEnv{
		cfg:      cfg,
		registry: registry,
		stats:    statsService,
		store:    st,
		codename: codename,
	}, nil
}

func buildStatsService(cfg *config.Config) (*stats.Service, error) {
	cacheManager, err := newCacheManager(cfg)
	if err != nil {
		return nil, err
	}
	downloadsURL, compatibilityURL, metadataURL, err := cfg.StatsURLs()
	if err != nil {
		return nil, err
	}
	fetcher := download.NewManager(cfg.Settings.HTTPTimeout, userAgent)
	urls := stats.URLs{
		Downloads:     downloadsURL,
		Compatibility: compatibilityURL,
		Metadata:      metadataURL,
	}
	return stats.NewService(fetcher, cacheManager.StatsDir(), urls), nil
}

func newCacheManager(cfg *config.Config) (cache.Manager, error) {
	if cfg.Settings.CacheDir != "" {
		return cache.NewManager(cfg.Settings.CacheDir), nil
	}
	manager, err := cache.NewDefaultManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create cache manager: %w", err)
	}
	return manager, nil
}

// loadCuratedPages loads the curation scripts; a missing directory yields no
// pages.
func loadCuratedPages(cfg *config.Config) []*curation.Page {
	pages, err := curation.LoadDir(cfg.Settings.CurationDir)
	if err != nil {
		logger.Warn("failed to load curation scripts", logger.Fields{"dir": cfg.Settings.CurationDir, "error": err.Error()})
		return nil
	}
	return pages
}
