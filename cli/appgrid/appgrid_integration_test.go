//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwelte/appgrid/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command in-process and captures stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := newRootCmd()
	cmd.SetArgs(args)
	execErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), execErr
}

const sampleCatalog = `source_id: noble-main
source_name: Noble Main
origin: noble
packages:
  - id: vim
    name: Vim
    summary: Vi IMproved, a highly configurable text editor
    version: "9.1"
    kind: desktop-application
    categories:
      - Utility
      - Development
    pkgnames:
      - vim
      - vim-runtime
  - id: htop
    name: htop
    summary: Interactive process viewer
    version: "3.3"
    kind: desktop-application
    categories:
      - System
`

// writeTestConfig builds a config rooted in a temp directory: flatpak
// backends disabled, system backend reading a fixture catalog.
func writeTestConfig(t *testing.T, root string, mutate func(*config.Config)) string {
	t.Helper()

	catalogDir := filepath.Join(root, "catalogs")
	require.NoError(t, os.MkdirAll(catalogDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "noble-main.yaml"), []byte(sampleCatalog), 0o644))

	cfg := config.DefaultConfig()
	cfg.Backends.FlatpakUser.Enabled = false
	cfg.Backends.FlatpakSystem.Enabled = false
	cfg.Backends.System.Enabled = true
	cfg.Backends.System.CatalogDir = catalogDir
	cfg.Backends.System.InstalledDB = filepath.Join(root, "installed.json")
	cfg.Settings.CacheDir = filepath.Join(root, "cache")
	cfg.Settings.CurationDir = filepath.Join(root, "pages")
	cfg.Settings.OSCodename = "noble"
	cfg.Settings.LogLevel = "error"
	if mutate != nil {
		mutate(cfg)
	}

	cfgPath := filepath.Join(root, "config.yaml")
	require.NoError(t, cfg.SaveConfig(cfgPath))
	return cfgPath
}

// writeInstalledDB writes an installed-package database fixture.
func writeInstalledDB(t *testing.T, root string, packages []map[string]interface{}) {
	t.Helper()
	db := map[string]interface{}{
		"format_version": "1",
		"last_update":    time.Now().UTC().Format(time.RFC3339),
		"packages":       packages,
	}
	data, err := json.Marshal(db)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "installed.json"), data, 0o644))
}

func TestVersionCommand(t *testing.T) {
	output, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "appgrid version")
}

func TestSearchCommand(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "search", "vim")
	require.NoError(t, err)
	assert.Contains(t, output, "Vim")
	assert.Contains(t, output, "system")
	assert.NotContains(t, output, "htop")
}

func TestSearchCommandJSONOutput(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "--output", "json", "search", "vim")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "vim", rows[0]["id"])
	assert.Equal(t, "Vim", rows[0]["name"])
	assert.Equal(t, "system", rows[0]["backend"])
}

func TestSearchCommandExactID(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "search", "--id", "htop")
	require.NoError(t, err)
	assert.Contains(t, output, "htop")
	assert.NotContains(t, output, "Vim")
}

func TestSearchCommandRejectsBadSortMode(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	_, err := runCLI(t, "--config", cfgPath, "search", "--sort", "alphabetical", "vim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort mode")
}

func TestCategoryCommand(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "category", "develop")
	require.NoError(t, err)
	assert.Contains(t, output, "Vim")
	assert.NotContains(t, output, "htop")

	listing, err := runCLI(t, "--config", cfgPath, "category")
	require.NoError(t, err)
	assert.Contains(t, listing, "develop")
	assert.Contains(t, listing, "game")
}

func TestExploreListsPages(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "explore")
	require.NoError(t, err)
	assert.Contains(t, output, "editors-choice")
	assert.Contains(t, output, "recently-updated")
}

func TestExploreCuratedPage(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	pagesDir := filepath.Join(root, "pages")
	require.NoError(t, os.MkdirAll(pagesDir, 0o755))
	script := "accept := kind == \"desktop-application\" && name == \"htop\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "staff-picks.tengo"), []byte(script), 0o644))

	listing, err := runCLI(t, "--config", cfgPath, "explore")
	require.NoError(t, err)
	assert.Contains(t, listing, "staff-picks")

	output, err := runCLI(t, "--config", cfgPath, "explore", "staff-picks")
	require.NoError(t, err)
	assert.Contains(t, output, "htop")
	assert.NotContains(t, output, "Vim")
}

func TestInstalledAndUpdatesCommands(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)
	writeInstalledDB(t, root, []map[string]interface{}{
		{"name": "vim", "version": "9.0", "pkgnames": []string{"vim", "vim-runtime"}},
	})

	installed, err := runCLI(t, "--config", cfgPath, "installed")
	require.NoError(t, err)
	assert.Contains(t, installed, "Vim")
	assert.NotContains(t, installed, "htop")

	// 9.0 installed, 9.1 in the catalog
	updates, err := runCLI(t, "--config", cfgPath, "updates")
	require.NoError(t, err)
	assert.Contains(t, updates, "Vim")
	assert.Contains(t, updates, "9.1")
}

func TestInfoCommand(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "info", "vim")
	require.NoError(t, err)
	assert.Contains(t, output, "Vim (vim)")
	assert.Contains(t, output, "Sources:")
	assert.Contains(t, output, "noble-main")

	_, err = runCLI(t, "--config", cfgPath, "info", "does.not.Exist")
	require.Error(t, err)
}

func TestSyncCommand(t *testing.T) {
	root := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/downloads.json":
			_, _ = w.Write([]byte(`{"generated_at": 1700000000, "downloads": {"vim": 4200}}`))
		case "/compatibility.json":
			_, _ = w.Write([]byte(`{"generated_at": 1700000000, "compatibility": {}}`))
		case "/metadata.json":
			_, _ = w.Write([]byte(`{"generated_at": 1700000000}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfgPath := writeTestConfig(t, root, func(cfg *config.Config) {
		cfg.Stats.DownloadsURL = server.URL + "/downloads.json"
		cfg.Stats.CompatibilityURL = server.URL + "/compatibility.json"
		cfg.Stats.MetadataURL = server.URL + "/metadata.json"
	})

	_, err := runCLI(t, "--config", cfgPath, "sync")
	require.NoError(t, err)

	cached, err := os.ReadFile(filepath.Join(root, "cache", "stats", "downloads.json"))
	require.NoError(t, err)
	assert.Contains(t, string(cached), "4200")

	// The refreshed stats feed the ranking on the next run.
	output, err := runCLI(t, "--config", cfgPath, "--output", "json", "search", "vim")
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 4200, rows[0]["downloads"])
}

func TestCacheCommands(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	cacheDir := filepath.Join(root, "cache")
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "stats"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "stats", "downloads.json"), []byte(`{}`), 0o644))

	info, err := runCLI(t, "--config", cfgPath, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, info, "Cache directory:")
	assert.Contains(t, info, cacheDir)

	dir, err := runCLI(t, "--config", cfgPath, "cache", "dir")
	require.NoError(t, err)
	assert.Contains(t, dir, cacheDir)

	_, err = runCLI(t, "--config", cfgPath, "cache", "clean", "--all")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(cacheDir, "stats"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConfigShowAndInit(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeTestConfig(t, root, nil)

	output, err := runCLI(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "backends:")
	assert.Contains(t, output, "os_codename: noble")

	initPath := filepath.Join(root, "fresh", "config.yaml")
	_, err = runCLI(t, "--config", initPath, "config", "init")
	require.NoError(t, err)
	_, statErr := os.Stat(initPath)
	require.NoError(t, statErr)

	// A second init without --force refuses to overwrite.
	_, err = runCLI(t, "--config", initPath, "config", "init")
	require.Error(t, err)
	_, err = runCLI(t, "--config", initPath, "config", "init", "--force")
	require.NoError(t, err)
}
