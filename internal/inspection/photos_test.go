package inspection

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake png bytes"))

	photo, err := decodeDataURL(payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.contentType)
	assert.Equal(t, "png", photo.ext)
	assert.Equal(t, []byte("fake png bytes"), photo.data)
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not a data url": "http://example.com/photo.jpg",
		"missing comma":  "data:image/png;base64",
		"not base64 tag": "data:image/png,rawdata",
		"invalid base64": "data:image/png;base64,!!!not-base64!!!",
		"missing type":   "data:;base64,aGVsbG8=",
		"empty payload":  "data:image/png;base64,",
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeDataURL(payload)
			assert.Error(t, err)
		})
	}
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "jpg", extensionFor("image/jpeg"))
	assert.Equal(t, "png", extensionFor("image/png"))
	assert.Equal(t, "webp", extensionFor("image/webp"))
	assert.Equal(t, "bin", extensionFor("application/octet-stream"))
}
