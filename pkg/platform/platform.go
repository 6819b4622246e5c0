// Package platform detects the running OS release and architecture. The
// release codename feeds origin filtering; the architecture selects which
// flatpak catalog variant to read.
package platform

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"
)

var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// OSRelease holds the fields of os-release(5) the application cares about.
type OSRelease struct {
	ID              string
	Name            string
	VersionID       string
	VersionCodename string
}

// Codename returns the release codename, empty when the distribution does
// not publish one.
func (o OSRelease) Codename() string {
	return o.VersionCodename
}

// Detect reads the system os-release file. A missing or unreadable file
// yields the zero value; callers treat an empty codename as "no filtering".
func Detect() OSRelease {
	for _, path := range osReleasePaths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		release := ParseOSRelease(f)
		f.Close()
		return release
	}
	return OSRelease{}
}

// ParseOSRelease parses os-release content: KEY=value lines, values
// optionally quoted, comments and malformed lines skipped.
func ParseOSRelease(r io.Reader) OSRelease {
	var release OSRelease
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			release.ID = value
		case "NAME":
			release.Name = value
		case "VERSION_ID":
			release.VersionID = value
		case "VERSION_CODENAME":
			release.VersionCodename = value
		}
	}
	return release
}

// FlatpakArch maps the Go architecture name to the identifier flatpak uses
// in catalog paths.
func FlatpakArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i386"
	default:
		return runtime.GOARCH
	}
}
