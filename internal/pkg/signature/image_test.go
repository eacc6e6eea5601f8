package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeWidth(t *testing.T, dataURL string) int {
	t.Helper()
	raw := strings.TrimPrefix(dataURL, dataURLPrefix)
	decoded, err := base64.StdEncoding.DecodeString(raw)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
	return img.Bounds().Dx()
}

func TestNormalize_KeepsSmallImages(t *testing.T) {
	in := pngDataURL(t, 300, 120)
	out, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, 300, decodeWidth(t, out))
}

func TestNormalize_DownscalesWideImages(t *testing.T) {
	in := pngDataURL(t, 1200, 400)
	out, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, maxWidth, decodeWidth(t, out))
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not a data url",
		"data:image/jpeg;base64,abcd",
		dataURLPrefix + "%%%not-base64%%%",
		dataURLPrefix + base64.StdEncoding.EncodeToString([]byte("not a png")),
	}
	for _, in := range cases {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalidPayload, "input %q", in)
	}
}
