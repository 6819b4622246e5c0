// Package compat classifies an application's Wayland integration risk from
// its sandbox permissions and detected UI framework.
package compat

import (
	"encoding/json"
	"strings"
)

// Support describes how an application talks to the display server.
type Support string

const (
	SupportNative   Support = "native"
	SupportFallback Support = "fallback"
	SupportX11Only  Support = "x11_only"
	SupportUnknown  Support = "unknown"
)

// Framework is the UI toolkit detected from the application manifest.
type Framework string

const (
	FrameworkNative      Framework = "native"
	FrameworkGTK3        Framework = "gtk3"
	FrameworkGTK4        Framework = "gtk4"
	FrameworkQt5         Framework = "qt5"
	FrameworkQt6         Framework = "qt6"
	FrameworkQtWebEngine Framework = "qtwebengine"
	FrameworkElectron    Framework = "electron"
	FrameworkUnknown     Framework = "unknown"
)

// RiskLevel is the coarse platform-integration risk bucket.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Ordinal returns the sort ordinal of a risk level, lower meaning better.
// Unrecognized values sort as Critical.
func (r RiskLevel) Ordinal() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 3
	}
}

// WaylandCompatibility is the classification result for one application.
type WaylandCompatibility struct {
	Support   Support   `json:"support"`
	Framework Framework `json:"framework"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// Sockets holds the display-server socket permissions declared by a sandbox
// manifest.
type Sockets struct {
	Wayland     bool
	X11         bool
	FallbackX11 bool
}

// SocketsFromPermissions extracts display socket flags from a list of sandbox
// permission strings ("--socket=wayland" style finish-args).
func SocketsFromPermissions(permissions []string) Sockets {
	var sockets Sockets
	for _, perm := range permissions {
		switch {
		case strings.Contains(perm, "--socket=wayland"):
			sockets.Wayland = true
		case strings.Contains(perm, "--socket=fallback-x11"):
			sockets.FallbackX11 = true
		case strings.Contains(perm, "--socket=x11"):
			sockets.X11 = true
		}
	}
	return sockets
}

// manifest is the subset of a flatpak manifest the classifier reads.
type manifest struct {
	FinishArgs []string `json:"finish-args"`
}

// ParseManifest extracts socket permissions from a manifest JSON document and
// classifies it together with the full manifest text. A manifest that fails
// to parse degrades to no declared sockets, never an error.
func ParseManifest(manifestJSON []byte) WaylandCompatibility {
	var m manifest
	_ = json.Unmarshal(manifestJSON, &m)
	return Classify(SocketsFromPermissions(m.FinishArgs), string(manifestJSON))
}

// Classify maps declared display sockets plus the manifest text to a
// compatibility classification. The function is total: every combination of
// inputs yields exactly one result.
func Classify(sockets Sockets, manifestText string) WaylandCompatibility {
	framework := DetectFramework(manifestText)

	var support Support
	switch {
	case sockets.Wayland && !sockets.X11 && !sockets.FallbackX11:
		support = SupportNative
	case sockets.Wayland && (sockets.X11 || sockets.FallbackX11):
		support = SupportFallback
	case sockets.X11 && !sockets.Wayland:
		support = SupportX11Only
	default:
		support = SupportUnknown
	}

	return WaylandCompatibility{
		Support:   support,
		Framework: framework,
		RiskLevel: riskLevel(support, framework),
	}
}

// DetectFramework guesses the UI toolkit by case-insensitive substring search
// over the manifest text. The first matching pattern wins; web-embedding
// frameworks are checked before their base toolkits.
func DetectFramework(manifestText string) Framework {
	text := strings.ToLower(manifestText)
	switch {
	case strings.Contains(text, "qtwebengine"):
		return FrameworkQtWebEngine
	case strings.Contains(text, "electron"):
		return FrameworkElectron
	case strings.Contains(text, "qt6"), strings.Contains(text, "kde6"):
		return FrameworkQt6
	case strings.Contains(text, "qt5"), strings.Contains(text, "kde5"):
		return FrameworkQt5
	case strings.Contains(text, "gtk-4"), strings.Contains(text, "gnome-4"):
		return FrameworkGTK4
	case strings.Contains(text, "gtk-3"), strings.Contains(text, "gnome-3"):
		return FrameworkGTK3
	default:
		return FrameworkNative
	}
}

// riskLevel is a fixed precedence table over support and framework. It must
// stay total over the whole support x framework space.
func riskLevel(support Support, framework Framework) RiskLevel {
	switch {
	case support == SupportX11Only:
		return RiskCritical
	case framework == FrameworkQtWebEngine, framework == FrameworkElectron:
		return RiskHigh
	case support == SupportNative && framework == FrameworkQt6:
		return RiskMedium
	case support == SupportFallback:
		return RiskMedium
	case support == SupportNative && framework == FrameworkQt5:
		return RiskMedium
	case support == SupportNative &&
		(framework == FrameworkGTK3 || framework == FrameworkGTK4 || framework == FrameworkNative):
		return RiskLow
	default:
		return RiskMedium
	}
}
