package slideshow

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
)

// Bounding box slides are fitted into
const (
	MaxWidth  = 900
	MaxHeight = 600
)

// MaxPixels caps the decoded size of a slide, the same limit PIL uses for
// decompression bombs
const MaxPixels = 89_478_485

var (
	errUnsupportedFormat = errors.New("unsupported image format")
	errImageTooLarge     = errors.New("image too large")
)

// ImageLoadError reports a slide that could not be opened or decoded.
// It is shown inline and never changes session state.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// Rendered is an encoded, resized slide ready to serve
type Rendered struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Renderer loads slides and fits them into a bounding box. Successful
// renders are cached by path.
type Renderer struct {
	maxWidth  int
	maxHeight int

	mu    sync.RWMutex
	cache map[string]*Rendered
	group singleflight.Group
}

// NewRenderer creates a Renderer for the given bounding box
func NewRenderer(maxWidth, maxHeight int) *Renderer {
	if maxWidth <= 0 {
		maxWidth = MaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = MaxHeight
	}
	return &Renderer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		cache:     make(map[string]*Rendered),
	}
}

// Render returns the resized image at path. Failures are *ImageLoadError.
func (r *Renderer) Render(path string) (*Rendered, error) {
	r.mu.RLock()
	cached, ok := r.cache[path]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(path, func() (v any, err error) {
		// A decoder panic on a hostile file is a load error like any other
		defer func() {
			if p := recover(); p != nil {
				v, err = nil, &ImageLoadError{Path: path, Err: fmt.Errorf("decode: %v", p)}
			}
		}()

		out, err := r.render(path)
		if err != nil {
			return nil, &ImageLoadError{Path: path, Err: err}
		}
		r.mu.Lock()
		r.cache[path] = out
		r.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Rendered), nil
}

func (r *Renderer) render(path string) (*Rendered, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(data)
	if !mtype.Is("image/png") && !mtype.Is("image/jpeg") {
		return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, mtype.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	w, h := Contain(src.Bounds().Dx(), src.Bounds().Dy(), r.maxWidth, r.maxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	contentType := "image/png"
	if mtype.Is("image/jpeg") {
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &Rendered{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       w,
		Height:      h,
	}, nil
}

// Contain returns the largest size with the source aspect ratio that fits
// in maxWidth x maxHeight. Small images are scaled up.
func Contain(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return maxWidth, maxHeight
	}

	srcRatio := float64(width) / float64(height)
	dstRatio := float64(maxWidth) / float64(maxHeight)

	w, h := maxWidth, maxHeight
	switch {
	case srcRatio > dstRatio:
		h = int(math.Round(float64(height) / float64(width) * float64(maxWidth)))
	case srcRatio < dstRatio:
		w = int(math.Round(float64(width) / float64(height) * float64(maxHeight)))
	}
	return max(w, 1), max(h, 1)
}
