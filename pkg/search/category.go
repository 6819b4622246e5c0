package search

// Category is a freedesktop menu category id, plus the synthetic applet
// pseudo-category. From
// https://specifications.freedesktop.org/menu-spec/latest/apa.html
type Category string

const (
	CategoryAudioVideo  Category = "AudioVideo"
	CategoryDevelopment Category = "Development"
	CategoryEducation   Category = "Education"
	CategoryGame        Category = "Game"
	CategoryGraphics    Category = "Graphics"
	CategoryNetwork     Category = "Network"
	CategoryOffice      Category = "Office"
	CategoryScience     Category = "Science"
	CategorySettings    Category = "Settings"
	CategorySystem      Category = "System"
	CategoryUtility     Category = "Utility"

	// CategoryApplet is not a real menu category; membership is decided by
	// the applet capability provide instead of the category list.
	CategoryApplet Category = "CosmicApplet"
)

// appletProvideID marks a component as a panel applet.
const appletProvideID = "com.system76.CosmicApplet"

// platformProvideID marks a component as built for the native platform.
const platformProvideID = "com.system76.CosmicApplication"

// NavCategories maps the navigation page names to their category sets.
var NavCategories = map[string][]Category{
	"create":    {CategoryAudioVideo, CategoryGraphics},
	"work":      {CategoryDevelopment, CategoryOffice, CategoryScience},
	"develop":   {CategoryDevelopment},
	"learn":     {CategoryEducation},
	"game":      {CategoryGame},
	"relax":     {CategoryAudioVideo},
	"socialize": {CategoryNetwork},
	"utilities": {CategorySettings, CategorySystem, CategoryUtility},
	"applets":   {CategoryApplet},
}
