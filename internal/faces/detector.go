// Package faces provides the face-detection capability used for the people-detected advisory.
package faces

import (
	"context"
	"strings"

	"github.com/jonathan/creative-compliance/internal/llm"
)

// Face is one detected face in source-image pixels
type Face struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Detector finds faces in an encoded image
type Detector interface {
	Detect(ctx context.Context, img llm.Image) ([]Face, error)
}

// DetectorFunc adapts a function to Detector
type DetectorFunc func(ctx context.Context, img llm.Image) ([]Face, error)

// Detect implements Detector
func (f DetectorFunc) Detect(ctx context.Context, img llm.Image) ([]Face, error) {
	return f(ctx, img)
}

// Loader produces a ready detector. It is called at most once per successful load.
type Loader func(ctx context.Context) (Detector, error)

// ImageFetcher downloads remote image sources
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// ImageFetcherFunc adapts a function to ImageFetcher
type ImageFetcherFunc func(ctx context.Context, url string) ([]byte, error)

// FetchImage implements ImageFetcher
func (f ImageFetcherFunc) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// LoadSource returns the encoded bytes behind an element image source. http and https
// sources are downloaded only when fetcher is non-nil.
func LoadSource(ctx context.Context, src string, fetcher ImageFetcher) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		if fetcher == nil {
			return nil, ErrUnsupportedSource
		}
		data, err := fetcher.FetchImage(ctx, src)
		if err != nil {
			return nil, &ImageError{Message: "failed to fetch remote image", Cause: err}
		}
		return data, nil
	}
	return DecodeDataURL(src)
}

// DetectFaces decodes an inline element image source, runs the cached detector and
// returns faces in source-image pixels.
func DetectFaces(ctx context.Context, cache *Cache, src string) ([]Face, error) {
	return DetectFacesFrom(ctx, cache, nil, src)
}

// DetectFacesFrom is DetectFaces with remote sources resolved through fetcher.
func DetectFacesFrom(ctx context.Context, cache *Cache, fetcher ImageFetcher, src string) ([]Face, error) {
	data, err := LoadSource(ctx, src, fetcher)
	if err != nil {
		return nil, err
	}
	prepared, err := Prepare(data, MaxDimension)
	if err != nil {
		return nil, err
	}

	detector, err := cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	found, err := detector.Detect(ctx, prepared.Image)
	if err != nil {
		return nil, &DetectionError{Message: "detection failed", Cause: err}
	}

	if prepared.Scale != 1 {
		for i := range found {
			found[i].X *= prepared.Scale
			found[i].Y *= prepared.Scale
			found[i].Width *= prepared.Scale
			found[i].Height *= prepared.Scale
		}
	}
	return found, nil
}
