package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOSRelease(t *testing.T) {
	content := `# Ubuntu release info
NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
VERSION_CODENAME=noble
PRETTY_NAME="Ubuntu 24.04 LTS"
malformed line without equals
`
	release := ParseOSRelease(strings.NewReader(content))

	assert.Equal(t, "ubuntu", release.ID)
	assert.Equal(t, "Ubuntu", release.Name)
	assert.Equal(t, "24.04", release.VersionID)
	assert.Equal(t, "noble", release.Codename())
}

func TestParseOSRelease_NoCodename(t *testing.T) {
	content := "ID=fedora\nNAME='Fedora Linux'\nVERSION_ID=41\n"
	release := ParseOSRelease(strings.NewReader(content))

	assert.Equal(t, "fedora", release.ID)
	assert.Equal(t, "Fedora Linux", release.Name)
	assert.Empty(t, release.Codename())
}

func TestParseOSRelease_Empty(t *testing.T) {
	assert.Equal(t, OSRelease{}, ParseOSRelease(strings.NewReader("")))
}

func TestFlatpakArch(t *testing.T) {
	assert.NotEmpty(t, FlatpakArch())
}
