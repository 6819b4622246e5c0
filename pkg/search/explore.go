package search

// ExplorePage is a named curated or algorithmic listing.
type ExplorePage string

const (
	ExploreEditorsChoice   ExplorePage = "editors-choice"
	ExplorePopularApps     ExplorePage = "popular-apps"
	ExploreMadeForPlatform ExplorePage = "made-for-platform"
	ExploreRecentlyUpdated ExplorePage = "recently-updated"
	ExploreDevelopment     ExplorePage = "development-tools"
	ExploreScientific      ExplorePage = "scientific-tools"
	ExploreProductivity    ExplorePage = "productivity-apps"
	ExploreGraphics        ExplorePage = "graphics-and-photography-tools"
	ExploreSocial          ExplorePage = "social-networking-apps"
	ExploreGames           ExplorePage = "games"
	ExploreMusicAndVideo   ExplorePage = "music-and-video-apps"
	ExploreLearning        ExplorePage = "apps-for-learning"
	ExploreUtilities       ExplorePage = "utilities"
)

// AllExplorePages lists every page in display order.
func AllExplorePages() []ExplorePage {
	return []ExplorePage{
		ExploreEditorsChoice,
		ExplorePopularApps,
		ExploreMadeForPlatform,
		ExploreRecentlyUpdated,
		ExploreDevelopment,
		ExploreScientific,
		ExploreProductivity,
		ExploreGraphics,
		ExploreSocial,
		ExploreGames,
		ExploreMusicAndVideo,
		ExploreLearning,
		ExploreUtilities,
	}
}

// Categories returns the category set of a category-driven explore page, or
// nil for the algorithmic pages.
func (p ExplorePage) Categories() []Category {
	switch p {
	case ExploreDevelopment:
		return []Category{CategoryDevelopment}
	case ExploreScientific:
		return []Category{CategoryScience}
	case ExploreProductivity:
		return []Category{CategoryOffice}
	case ExploreGraphics:
		return []Category{CategoryGraphics}
	case ExploreSocial:
		return []Category{CategoryNetwork}
	case ExploreGames:
		return []Category{CategoryGame}
	case ExploreMusicAndVideo:
		return []Category{CategoryAudioVideo}
	case ExploreLearning:
		return []Category{CategoryEducation}
	case ExploreUtilities:
		return []Category{CategorySettings, CategorySystem, CategoryUtility}
	default:
		return nil
	}
}

// editorsChoice is the fixed editorial list shown on the editors' choice
// page; position in the list is the sort weight. Normalized ids.
var editorsChoice = []string{
	"org.mozilla.firefox",
	"org.gimp.gimp",
	"org.inkscape.inkscape",
	"org.blender.blender",
	"com.obsproject.studio",
	"org.videolan.vlc",
	"org.signal.signal",
	"md.obsidian.obsidian",
	"org.libreoffice.libreoffice",
	"com.valvesoftware.steam",
	"org.kde.krita",
	"org.audacityteam.audacity",
}

// EditorsChoicePosition returns the list index of a normalized id, or -1.
func EditorsChoicePosition(normalized string) int {
	for i, choice := range editorsChoice {
		if choice == normalized {
			return i
		}
	}
	return -1
}
