package faces

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/creative-compliance/internal/llm"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURL(t *testing.T) {
	raw := pngBytes(t, 4, 4)

	data, err := DecodeDataURL(dataURL("image/png", raw))
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	_, err = DecodeDataURL("https://cdn.example.com/model.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = DecodeDataURL("/uploads/model.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	var imgErr *ImageError
	_, err = DecodeDataURL("data:image/png;base64")
	assert.True(t, errors.As(err, &imgErr))

	_, err = DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	assert.True(t, errors.As(err, &imgErr))

	_, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.True(t, errors.As(err, &imgErr))
}

func TestPrepare_SmallImagePassesThrough(t *testing.T) {
	raw := pngBytes(t, 100, 50)

	prepared, err := Prepare(raw, MaxDimension)
	require.NoError(t, err)
	assert.Equal(t, "png", prepared.Image.Format)
	assert.Equal(t, raw, prepared.Image.Data)
	assert.Equal(t, 1.0, prepared.Scale)
}

func TestPrepare_LargeImageIsDownscaled(t *testing.T) {
	raw := pngBytes(t, 400, 200)

	prepared, err := Prepare(raw, 100)
	require.NoError(t, err)
	assert.Equal(t, 4.0, prepared.Scale)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(prepared.Image.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPrepare_GIFIsReencoded(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 8, 8), palette), nil))

	prepared, err := Prepare(buf.Bytes(), MaxDimension)
	require.NoError(t, err)
	assert.Equal(t, "png", prepared.Image.Format)
}

func TestPrepare_Invalid(t *testing.T) {
	_, err := Prepare(nil, MaxDimension)
	assert.Error(t, err)

	_, err = Prepare([]byte("definitely not an image"), MaxDimension)
	var imgErr *ImageError
	assert.True(t, errors.As(err, &imgErr))
}

// oversizedPNG returns a tiny PNG whose header declares w x h pixels
func oversizedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngBytes(t, 1, 1)
	// IHDR data follows the 8-byte signature, 4-byte length and 4-byte type
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestPrepare_RejectsOversizedImages(t *testing.T) {
	var loads int
	cache := NewCache(func(_ context.Context) (Detector, error) {
		loads++
		return &stubDetector{}, nil
	})

	data := oversizedPNG(t, 100_000, 100_000)
	_, err := Prepare(data, MaxDimension)
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Contains(t, err.Error(), "100000x100000")

	_, err = DetectFaces(context.Background(), cache, dataURL("image/png", data))
	require.ErrorAs(t, err, &imgErr)
	assert.Zero(t, loads, "the detector is not loaded for rejected images")
}

func TestDetectFaces_RescalesToSource(t *testing.T) {
	detector := &stubDetector{faces: []Face{{X: 10, Y: 10, Width: 20, Height: 20, Confidence: 0.9}}}
	cache := NewCache(func(_ context.Context) (Detector, error) { return detector, nil })

	src := dataURL("image/png", pngBytes(t, 2048, 1024))
	found, err := DetectFaces(context.Background(), cache, src)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, Face{X: 20, Y: 20, Width: 40, Height: 40, Confidence: 0.9}, found[0])
}

func TestDetectFaces_Errors(t *testing.T) {
	failing := NewCache(func(_ context.Context) (Detector, error) {
		return DetectorFunc(func(_ context.Context, _ llm.Image) ([]Face, error) {
			return nil, errors.New("inference failed")
		}), nil
	})

	_, err := DetectFaces(context.Background(), failing, "/uploads/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = DetectFaces(context.Background(), failing, dataURL("image/png", pngBytes(t, 8, 8)))
	var detErr *DetectionError
	assert.True(t, errors.As(err, &detErr))
}

func TestLoadSource(t *testing.T) {
	remote := pngBytes(t, 4, 4)
	var fetched []string
	fetcher := ImageFetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		fetched = append(fetched, url)
		if url == "https://cdn.example.com/missing.png" {
			return nil, errors.New("HTTP status 404")
		}
		return remote, nil
	})

	data, err := LoadSource(context.Background(), "https://cdn.example.com/a.png", fetcher)
	require.NoError(t, err)
	assert.Equal(t, remote, data)

	_, err = LoadSource(context.Background(), "https://cdn.example.com/missing.png", fetcher)
	var imgErr *ImageError
	assert.ErrorAs(t, err, &imgErr)

	_, err = LoadSource(context.Background(), "http://cdn.example.com/a.png", nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = LoadSource(context.Background(), "/uploads/a.png", fetcher)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	inline := pngBytes(t, 2, 2)
	data, err = LoadSource(context.Background(), dataURL("image/png", inline), fetcher)
	require.NoError(t, err)
	assert.Equal(t, inline, data)

	assert.Equal(t, []string{"https://cdn.example.com/a.png", "https://cdn.example.com/missing.png"}, fetched)
}
