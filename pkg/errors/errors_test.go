package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrDownloadFailed, "fetching stats")
	assert.ErrorIs(t, wrapped, ErrDownloadFailed)
	assert.Equal(t, "fetching stats: download failed", wrapped.Error())
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "anything"))
	assert.NoError(t, Wrapf(nil, "anything %d", 1))
}

func TestWrapf(t *testing.T) {
	base := stderrors.New("boom")
	wrapped := Wrapf(base, "loading catalog %q", "flathub")
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, `loading catalog "flathub": boom`, wrapped.Error())
}
