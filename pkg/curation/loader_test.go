package curation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/search"
	"github.com/mwelte/appgrid/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gamesScript = `
accept := false
weight := 0
for c in categories {
	if c == "Game" {
		accept = true
	}
}
if accept && downloads > 1000 {
	weight = -1
}
`

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func loadsOnePage(t *testing.T, content string) *Page {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "page.tengo", content)
	pages, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	return pages[0]
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "games.tengo", gamesScript)
	writeScript(t, dir, "broken.tengo", "if {{{")
	writeScript(t, dir, "notes.txt", "not a script")

	pages, err := LoadDir(dir)
	require.NoError(t, err)

	// The malformed script is skipped, the other file ignored.
	require.Len(t, pages, 1)
	assert.Equal(t, "games", pages[0].Name)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	pages, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPageScore(t *testing.T) {
	page := loadsOnePage(t, gamesScript)
	score := page.Score()

	game := &model.AppInfo{
		Kind:             model.KindDesktopApplication,
		Categories:       []string{"Game"},
		MonthlyDownloads: 50,
	}
	weight, ok := score(appid.New("org.example.Game"), game, false)
	require.True(t, ok)
	assert.Equal(t, int64(0), weight.Primary)
	assert.Equal(t, int64(-50), weight.Secondary)

	popular := &model.AppInfo{
		Kind:             model.KindDesktopApplication,
		Categories:       []string{"Game"},
		MonthlyDownloads: 5000,
	}
	boosted, ok := score(appid.New("org.example.Popular"), popular, false)
	require.True(t, ok)
	assert.Equal(t, int64(-1), boosted.Primary)
	assert.True(t, boosted.Less(weight))

	_, ok = score(appid.New("org.example.Editor"), &model.AppInfo{Categories: []string{"Office"}}, false)
	assert.False(t, ok)
}

func TestPageScore_RuntimeErrorExcludes(t *testing.T) {
	page := loadsOnePage(t, "x := [1]\naccept := x[5]")
	_, ok := page.Score()(appid.New("a.b.c"), &model.AppInfo{}, false)
	assert.False(t, ok)
}

func TestPageScore_ParallelUse(t *testing.T) {
	page := loadsOnePage(t, gamesScript)
	info := &model.AppInfo{Categories: []string{"Game"}}

	results := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		go func() {
			_, ok := page.Score()(appid.New("a.b.c"), info, false)
			results <- ok
		}()
	}
	for i := 0; i < 32; i++ {
		assert.True(t, <-results)
	}
}

func TestUsableAsEngineScorer(t *testing.T) {
	page := loadsOnePage(t, gamesScript)

	apps := model.Apps{
		appid.New("org.example.Game"): {{BackendName: "b", Info: &model.AppInfo{
			Name: "Game", Kind: model.KindDesktopApplication, Categories: []string{"Game"},
		}}},
		appid.New("org.example.Tool"): {{BackendName: "b", Info: &model.AppInfo{
			Name: "Tool", Kind: model.KindDesktopApplication, Categories: []string{"Utility"},
		}}},
	}

	results := search.Generic(apps, nil, stats.EmptySnapshot(), "", page.Score(), search.SortRelevance, search.FilterAll)
	require.Len(t, results, 1)
	assert.Equal(t, "Game", results[0].Info.Name)
}
