package flatpak

import (
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mholt/archives"
	"github.com/mwelte/appgrid/pkg/appid"
	"github.com/mwelte/appgrid/pkg/errors"
	"github.com/mwelte/appgrid/pkg/model"
)

// appstream XML document shapes. Only the fields the catalog consumes are
// declared; everything else is skipped by the decoder.
type documentXML struct {
	XMLName    xml.Name       `xml:"components"`
	Origin     string         `xml:"origin,attr"`
	Components []componentXML `xml:"component"`
}

type componentXML struct {
	Type           string          `xml:"type,attr"`
	ID             string          `xml:"id"`
	Name           string          `xml:"name"`
	Summary        string          `xml:"summary"`
	Description    richTextXML     `xml:"description"`
	ProjectLicense string          `xml:"project_license"`
	Pkgnames       []string        `xml:"pkgname"`
	Categories     []string        `xml:"categories>category"`
	Launchables    []launchableXML `xml:"launchable"`
	Provides       providesXML     `xml:"provides"`
	Releases       []releaseXML    `xml:"releases>release"`
	Screenshots    []screenshotXML `xml:"screenshots>screenshot"`
	URLs           []urlXML        `xml:"url"`
	Icons          []iconXML       `xml:"icon"`
	Extends        []string        `xml:"extends"`
	Metadata       []valueXML      `xml:"metadata>value"`
}

type richTextXML struct {
	Inner string `xml:",innerxml"`
}

type launchableXML struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type providesXML struct {
	IDs        []string `xml:"id"`
	MediaTypes []string `xml:"mediatype"`
}

type releaseXML struct {
	Version     string      `xml:"version,attr"`
	Timestamp   string      `xml:"timestamp,attr"`
	Date        string      `xml:"date,attr"`
	Description richTextXML `xml:"description"`
	URL         string      `xml:"url"`
}

type screenshotXML struct {
	Type    string     `xml:"type,attr"`
	Caption string     `xml:"caption"`
	Images  []imageXML `xml:"image"`
}

type imageXML struct {
	Type string `xml:"type,attr"`
	URL  string `xml:",chardata"`
}

type urlXML struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type iconXML struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type valueXML struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// CatalogData is the parsed content of one remote's appstream document.
type CatalogData struct {
	Origin string
	Infos  map[appid.AppId]*model.AppInfo
	Addons map[appid.AppId][]appid.AppId
}

// ParseAppstreamFile reads an appstream catalog, transparently decompressing
// a gzipped file.
func ParseAppstreamFile(path string) (*CatalogData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogNotFound, "open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := archives.Gz{}.OpenReader(f)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCatalogParse, "decompress %s: %v", path, err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}
	return ParseAppstream(reader)
}

// ParseAppstream decodes an appstream XML document into per-id records.
// Addon components are indexed by the component they extend; components
// without an id are skipped.
func ParseAppstream(r io.Reader) (*CatalogData, error) {
	var doc documentXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(errors.ErrCatalogParse, "decode appstream: %v", err)
	}

	data := &CatalogData{
		Origin: doc.Origin,
		Infos:  make(map[appid.AppId]*model.AppInfo, len(doc.Components)),
		Addons: make(map[appid.AppId][]appid.AppId),
	}

	for i := range doc.Components {
		comp := &doc.Components[i]
		if comp.ID == "" {
			continue
		}
		id := appid.New(comp.ID)

		if comp.Type == string(model.KindAddon) {
			for _, parent := range comp.Extends {
				parentID := appid.New(parent)
				data.Addons[parentID] = append(data.Addons[parentID], id)
			}
		}

		data.Infos[id] = componentInfo(comp)
	}
	return data, nil
}

func componentInfo(comp *componentXML) *model.AppInfo {
	info := &model.AppInfo{
		Name:        comp.Name,
		Summary:     comp.Summary,
		Description: plainText(comp.Description.Inner),
		Kind:        componentKind(comp.Type),
		Categories:  comp.Categories,
		Pkgnames:    comp.Pkgnames,
		License:     comp.ProjectLicense,
		Releases:    componentReleases(comp.Releases),
		Screenshots: componentScreenshots(comp.Screenshots),
		Verified:    componentVerified(comp.Metadata),
		Icon:        cachedIcon(comp.Icons),
	}
	for _, launchable := range comp.Launchables {
		if launchable.Type == "" || launchable.Type == "desktop-id" {
			info.DesktopIDs = append(info.DesktopIDs, strings.TrimSpace(launchable.Value))
		}
	}
	for _, provide := range comp.Provides.IDs {
		info.Provides = append(info.Provides, model.Provide{Kind: model.ProvideID, Value: provide})
	}
	for _, mediaType := range comp.Provides.MediaTypes {
		info.Provides = append(info.Provides, model.Provide{Kind: model.ProvideMediaType, Value: mediaType})
	}
	if len(comp.URLs) > 0 {
		info.Urls = make(map[string]string, len(comp.URLs))
		for _, u := range comp.URLs {
			info.Urls[u.Type] = strings.TrimSpace(u.Value)
		}
	}
	return info
}

func componentKind(kind string) model.AppKind {
	switch kind {
	case "", "desktop", string(model.KindDesktopApplication):
		// Legacy catalogs use "desktop" and may omit the attribute.
		return model.KindDesktopApplication
	case string(model.KindConsoleApplication):
		return model.KindConsoleApplication
	case string(model.KindAddon):
		return model.KindAddon
	case string(model.KindGeneric):
		return model.KindGeneric
	default:
		return model.AppKind(kind)
	}
}

// componentReleases converts the release history, newest first, resolving a
// timestamp from either the unix attribute or the ISO date.
func componentReleases(releases []releaseXML) []model.Release {
	if len(releases) == 0 {
		return nil
	}
	out := make([]model.Release, 0, len(releases))
	for _, release := range releases {
		out = append(out, model.Release{
			Version:     release.Version,
			Timestamp:   releaseTimestamp(release),
			Description: plainText(release.Description.Inner),
			URL:         release.URL,
		})
	}
	sortReleasesNewestFirst(out)
	return out
}

func releaseTimestamp(release releaseXML) int64 {
	if release.Timestamp != "" {
		ts, err := strconv.ParseInt(release.Timestamp, 10, 64)
		if err != nil || ts < 0 {
			return 0
		}
		return ts
	}
	if release.Date != "" {
		if t, err := time.Parse("2006-01-02", release.Date); err == nil {
			return t.Unix()
		}
	}
	return 0
}

func sortReleasesNewestFirst(releases []model.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Timestamp > releases[j].Timestamp
	})
}

func componentScreenshots(screenshots []screenshotXML) []model.Screenshot {
	var out []model.Screenshot
	for _, shot := range screenshots {
		url := ""
		for _, image := range shot.Images {
			// Prefer the source image; any image beats none.
			if image.Type == "source" || url == "" {
				url = strings.TrimSpace(image.URL)
			}
		}
		if url == "" {
			continue
		}
		out = append(out, model.Screenshot{URL: url, Caption: shot.Caption})
	}
	return out
}

func componentVerified(metadata []valueXML) bool {
	for _, value := range metadata {
		if value.Key == "flathub::verified" {
			return strings.EqualFold(strings.TrimSpace(value.Value), "true")
		}
	}
	return false
}

func cachedIcon(icons []iconXML) string {
	name := ""
	for _, icon := range icons {
		if icon.Type == "cached" {
			return strings.TrimSpace(icon.Value)
		}
		if name == "" {
			name = strings.TrimSpace(icon.Value)
		}
	}
	return name
}

// plainText strips markup from an appstream rich-text block and collapses
// whitespace. Paragraphs are separated by a blank line.
func plainText(markup string) string {
	if markup == "" {
		return ""
	}
	var paragraphs []string
	var current strings.Builder
	inTag := false
	tag := strings.Builder{}
	flush := func() {
		text := strings.Join(strings.Fields(current.String()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}
	for _, c := range markup {
		switch {
		case c == '<':
			inTag = true
			tag.Reset()
		case c == '>':
			inTag = false
			if name := tag.String(); name == "/p" || name == "/ul" || name == "/ol" {
				flush()
			} else {
				// Tag boundaries separate words (list items carry no
				// whitespace between them).
				current.WriteByte(' ')
			}
		case inTag:
			tag.WriteRune(c)
		default:
			current.WriteRune(c)
		}
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}
