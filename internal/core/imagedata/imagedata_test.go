package imagedata

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/timetable-import/internal/common"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02")

func TestFromBytes(t *testing.T) {
	img, err := FromBytes(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, "png", img.Ext())

	_, err = FromBytes(nil)
	require.ErrorIs(t, err, common.ErrEmptyImage)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = FromBytes([]byte("just some text, not an image"))
	require.ErrorIs(t, err, common.ErrNotImage)
	assert.True(t, common.IsInvalidInput(err))
}

func TestFromDataURIRoundTrip(t *testing.T) {
	img, err := FromBytes(pngHeader)
	require.NoError(t, err)

	back, err := FromDataURI(img.DataURL())
	require.NoError(t, err)
	assert.Equal(t, img.Data, back.Data)
	assert.Equal(t, "image/png", back.MIME)
}

func TestFromDataURIRejectsNonImage(t *testing.T) {
	uri := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world"))
	_, err := FromDataURI(uri)
	require.ErrorIs(t, err, common.ErrNotImage)

	_, err = FromDataURI("data:image/png,notbase64")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = FromDataURI("   ")
	require.ErrorIs(t, err, common.ErrEmptyImage)
}

func TestParseBareBase64(t *testing.T) {
	img, err := Parse(base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, img.Data)

	_, err = Parse("%%%")
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Parse("")
	require.ErrorIs(t, err, common.ErrEmptyImage)
}
