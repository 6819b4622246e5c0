package store

import (
	"testing"

	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/backend"
	"github.com/mwelte/appgrid/pkg/backend/mocks"
	"github.com/mwelte/appgrid/pkg/compat"
	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/model"
	"github.com/mwelte/appgrid/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixedStats struct {
	snapshot *stats.Snapshot
}

func (f fixedStats) Current() *stats.Snapshot {
	if f.snapshot == nil {
		return stats.EmptySnapshot()
	}
	return f.snapshot
}

func catalogBackend(ctrl *gomock.Controller, sourceID string, installed []model.Package, infos map[appid.AppId]*model.AppInfo) *mocks.MockBackend {
	b := mocks.NewMockBackend(ctrl)
	b.EXPECT().Installed().Return(installed, nil).AnyTimes()
	b.EXPECT().InfoCaches().Return([]*backend.InfoCache{
		{SourceID: sourceID, SourceName: sourceID, Infos: infos},
	}).AnyTimes()
	return b
}

func infoFrom(name, sourceID string) *model.AppInfo {
	return &model.AppInfo{Name: name, SourceID: sourceID, Kind: model.KindDesktopApplication}
}

func TestRebuild_EntryPreferenceOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	id := appid.New("org.example.App")

	// Registration order is deliberately the reverse of the expected
	// preference order; the sort must not depend on insertion order.
	registry := backend.NewRegistry()
	registry.Register(backend.NameFlatpakSystem, catalogBackend(ctrl, "flathub", nil,
		map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}))
	registry.Register(backend.NameFlatpakUser, catalogBackend(ctrl, "flathub", nil,
		map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}))

	s := New(registry, fixedStats{})
	s.Rebuild()

	entries := s.Sources(id)
	require.Len(t, entries, 2)
	assert.Equal(t, backend.NameFlatpakUser, entries[0].BackendName)
	assert.Equal(t, backend.NameFlatpakSystem, entries[1].BackendName)
}

func TestRebuild_InstalledSortsBeforeHigherPriority(t *testing.T) {
	ctrl := gomock.NewController(t)
	id := appid.New("org.example.App")

	systemInfo := infoFrom("App", "thirdparty")
	registry := backend.NewRegistry()
	registry.Register(backend.NameFlatpakUser, catalogBackend(ctrl, "flathub", nil,
		map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}))
	registry.Register(backend.NameFlatpakSystem, catalogBackend(ctrl, "thirdparty",
		[]model.Package{{ID: id, Info: systemInfo}},
		map[appid.AppId]*model.AppInfo{id: systemInfo}))

	s := New(registry, fixedStats{})
	s.Rebuild()

	entries := s.Sources(id)
	require.Len(t, entries, 2)
	// flatpak-user/flathub outranks flatpak-system/thirdparty on priority,
	// but the installed entry still comes first.
	assert.True(t, entries[0].Installed)
	assert.Equal(t, backend.NameFlatpakSystem, entries[0].BackendName)
}

func TestRebuild_AppliesStatsToEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	id := appid.New("org.example.App")

	registry := backend.NewRegistry()
	registry.Register(backend.NameFlatpakUser, catalogBackend(ctrl, "flathub", nil,
		map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}))

	snapshot := stats.NewSnapshot(
		map[appid.AppId]uint64{id: 1234},
		map[appid.AppId]compat.WaylandCompatibility{
			id: {Support: compat.SupportNative, Framework: compat.FrameworkGTK4, RiskLevel: compat.RiskLow},
		}, 0)

	s := New(registry, fixedStats{snapshot: snapshot})
	s.Rebuild()

	entries := s.Sources(id)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1234), entries[0].Info.MonthlyDownloads)
	require.NotNil(t, entries[0].Info.WaylandCompat)
	assert.Equal(t, compat.RiskLow, entries[0].Info.WaylandCompat.RiskLevel)
}

func TestRebuild_MergesUncatalogedInstalledPackages(t *testing.T) {
	ctrl := gomock.NewController(t)
	manual := appid.New("localtool")

	registry := backend.NewRegistry()
	registry.Register(backend.NameSystem, catalogBackend(ctrl, "os-repo",
		[]model.Package{{ID: manual, Info: &model.AppInfo{Name: "localtool", SourceID: "manual"}}},
		map[appid.AppId]*model.AppInfo{}))

	s := New(registry, fixedStats{})
	s.Rebuild()

	entries := s.Sources(manual)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Installed)
	assert.Equal(t, backend.NameSystem, entries[0].BackendName)
}

func TestRebuild_InstalledListingFailureKeepsCatalog(t *testing.T) {
	ctrl := gomock.NewController(t)
	id := appid.New("org.example.App")

	b := mocks.NewMockBackend(ctrl)
	b.EXPECT().Installed().Return(nil, errors.ErrCatalogNotFound)
	b.EXPECT().InfoCaches().Return([]*backend.InfoCache{
		{SourceID: "flathub", Infos: map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}},
	})

	registry := backend.NewRegistry()
	registry.Register(backend.NameFlatpakUser, b)

	s := New(registry, fixedStats{})
	s.Rebuild()

	entries := s.Sources(id)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Installed)
}

func TestRebuild_SwapsAtomically(t *testing.T) {
	ctrl := gomock.NewController(t)
	id := appid.New("org.example.App")

	registry := backend.NewRegistry()
	registry.Register(backend.NameFlatpakUser, catalogBackend(ctrl, "flathub", nil,
		map[appid.AppId]*model.AppInfo{id: infoFrom("App", "flathub")}))

	s := New(registry, fixedStats{})
	before := s.Apps()
	assert.Empty(t, before)

	s.Rebuild()

	// The snapshot captured before the rebuild is unchanged.
	assert.Empty(t, before)
	assert.Len(t, s.Apps(), 1)
}

func TestIsInstalled(t *testing.T) {
	appID := appid.New("org.example.App")
	sysID := appid.New("vim")

	tests := []struct {
		name      string
		id        appid.AppId
		info      *model.AppInfo
		installed []model.Package
		want      bool
	}{
		{
			name:      "exact id and source",
			id:        appID,
			info:      &model.AppInfo{SourceID: "flathub"},
			installed: []model.Package{{ID: appID, Info: &model.AppInfo{SourceID: "flathub"}}},
			want:      true,
		},
		{
			name:      "exact id wrong source",
			id:        appID,
			info:      &model.AppInfo{SourceID: "flathub"},
			installed: []model.Package{{ID: appID, Info: &model.AppInfo{SourceID: "thirdparty"}}},
			want:      false,
		},
		{
			name: "system id alias subset",
			id:   sysID,
			info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"vim-common"}},
			installed: []model.Package{{
				ID:   appid.New("vim-meta"),
				Info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"vim-common", "vim-runtime"}},
			}},
			want: true,
		},
		{
			name: "system id alias not subset",
			id:   sysID,
			info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"vim-common", "gvim"}},
			installed: []model.Package{{
				ID:   appid.New("vim-meta"),
				Info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"vim-common"}},
			}},
			want: false,
		},
		{
			name: "system id alias subset from different source",
			id:   sysID,
			info: &model.AppInfo{SourceID: "jammy-main", Pkgnames: []string{"vim-common"}},
			installed: []model.Package{{
				ID:   appid.New("vim-meta"),
				Info: &model.AppInfo{SourceID: "noble-main", Pkgnames: []string{"vim-common", "vim-runtime"}},
			}},
			want: false,
		},
		{
			name: "alias fallback never applies to reverse-dns ids",
			id:   appID,
			info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"sharedname"}},
			installed: []model.Package{{
				ID:   appid.New("other"),
				Info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"sharedname"}},
			}},
			want: false,
		},
		{
			name: "system id with no aliases needs exact match",
			id:   sysID,
			info: &model.AppInfo{SourceID: "os-repo"},
			installed: []model.Package{{
				ID:   appid.New("other"),
				Info: &model.AppInfo{SourceID: "os-repo", Pkgnames: []string{"vim"}},
			}},
			want: false,
		},
		{
			name: "empty installed list",
			id:   appID,
			info: &model.AppInfo{SourceID: "flathub"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInstalled(tt.id, tt.info, tt.installed))
		})
	}
}

func TestEntryPriority(t *testing.T) {
	appID := appid.New("org.example.App")
	sysID := appid.New("bash")

	tests := []struct {
		backend string
		source  string
		id      appid.AppId
		want    int
	}{
		{backend.NameFlatpakUser, "flathub", appID, 3},
		{backend.NameFlatpakSystem, "flathub", appID, 2},
		{backend.NameFlatpakUser, "thirdparty", appID, 1},
		{backend.NameFlatpakSystem, "thirdparty", appID, 0},
		{backend.NameSystem, "os-repo", sysID, 4},
		{backend.NameSystem, "os-repo", appID, -1},
		{"someother", "x", appID, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, entryPriority(tt.backend, tt.source, tt.id),
			"%s/%s", tt.backend, tt.source)
	}
}
