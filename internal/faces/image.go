package faces

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/url"
	"strings"

	// Register decoders for formats the editor embeds.
	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/jonathan/creative-compliance/internal/llm"
)

// MaxDimension bounds the longest side of images sent to the detector
const MaxDimension = 1024

// MaxPixels bounds the declared size of an image we are willing to decode
const MaxPixels = 40_000_000

// Prepared is an image ready for the detector
type Prepared struct {
	Image llm.Image
	// Scale converts detector pixels back to source pixels
	Scale float64
}

// DecodeDataURL returns the payload of a data: URL. Remote and relative
// sources are not fetched.
func DecodeDataURL(src string) ([]byte, error) {
	if !strings.HasPrefix(src, "data:") {
		return nil, ErrUnsupportedSource
	}

	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, &ImageError{Message: "malformed data URL"}
	}
	if !strings.HasPrefix(meta, "image/") {
		return nil, &ImageError{Message: fmt.Sprintf("data URL is not an image: %q", meta)}
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, &ImageError{Message: "invalid base64 payload", Cause: err}
		}
		return data, nil
	}

	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, &ImageError{Message: "invalid percent-encoded payload", Cause: err}
	}
	return []byte(unescaped), nil
}

// Prepare sniffs the image format and downsizes images whose longest side
// exceeds maxDim. Formats the detector cannot read are re-encoded as PNG.
func Prepare(data []byte, maxDim int) (Prepared, error) {
	if len(data) == 0 {
		return Prepared{}, &ImageError{Message: "empty image data"}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Prepared{}, &ImageError{Message: "unrecognised image", Cause: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Prepared{}, &ImageError{Message: fmt.Sprintf("image dimensions %dx%d out of range", cfg.Width, cfg.Height)}
	}

	longest := max(cfg.Width, cfg.Height)
	if longest <= maxDim && format != "gif" {
		return Prepared{Image: llm.Image{Format: format, Data: data}, Scale: 1}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Prepared{}, &ImageError{Message: fmt.Sprintf("failed to decode %s", format), Cause: err}
	}

	scale := 1.0
	if longest > maxDim {
		scale = float64(longest) / float64(maxDim)
		w := max(1, int(float64(cfg.Width)/scale))
		h := max(1, int(float64(cfg.Height)/scale))
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	outFormat := "png"
	if format == "jpeg" {
		outFormat = "jpeg"
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return Prepared{}, &ImageError{Message: fmt.Sprintf("failed to encode %s", outFormat), Cause: err}
	}

	return Prepared{Image: llm.Image{Format: outFormat, Data: buf.Bytes()}, Scale: scale}, nil
}
