package flatpak

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mwelte/appgrid/pkg/appid"
)

// Ref is one installed flatpak deployment: the parsed ref with the remote it
// was installed from and the deployed version.
type Ref struct {
	Kind    string // "app" or "runtime"
	ID      appid.AppId
	Arch    string
	Branch  string
	Remote  string
	Version string
}

// ParseRefs reads a refs listing: one deployment per line as
// "<kind>/<id>/<arch>/<branch>\t<remote>\t<version>". Blank lines and
// comments are skipped; a malformed line is dropped rather than failing the
// whole listing.
func ParseRefs(r io.Reader) []Ref {
	var refs []Ref
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		parts := strings.Split(fields[0], "/")
		if len(parts) != 4 || parts[1] == "" {
			continue
		}
		ref := Ref{
			Kind:   parts[0],
			ID:     appid.New(parts[1]),
			Arch:   parts[2],
			Branch: parts[3],
		}
		if len(fields) > 1 {
			ref.Remote = fields[1]
		}
		if len(fields) > 2 {
			ref.Version = fields[2]
		}
		refs = append(refs, ref)
	}
	return refs
}

// ParseRefsFile reads a refs listing from disk. A missing file means nothing
// is installed.
func ParseRefsFile(path string) ([]Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseRefs(f), nil
}
