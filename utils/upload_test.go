package utils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formFile(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDiskImagesSave(t *testing.T) {
	dir := t.TempDir()
	images := &DiskImages{Dir: dir, BaseURL: "/uploads"}

	url, err := images.Save(context.Background(), "menu", formFile(t, "dish.PNG", pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/menu/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), stored)
}

func TestPrepareImageRejects(t *testing.T) {
	_, err := prepareImage(formFile(t, "anim.gif", []byte("GIF89a")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := formFile(t, "big.jpg", []byte("x"))
	big.Size = MaxImageSize + 1
	_, err = prepareImage(big)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
