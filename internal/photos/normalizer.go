package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"runtime"
	"time"

	"photolog/internal/metrics"
	"photolog/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/jaevor/go-nanoid"
	libjpeg "github.com/pixiv/go-libjpeg/jpeg"
	"go.uber.org/zap"
	_ "golang.org/x/image/tiff"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxDimension = 1600
	DefaultMaxPixels    = 100_000_000
	DefaultJPEGQuality  = 85

	// ContentType is the media type of every stored file.
	ContentType = "image/jpeg"

	nameLength   = 21
	nameRetries  = 10
	canonicalExt = ".jpg"
)

type Options struct {
	MaxDimension int
	MaxPixels    int
	JPEGQuality  int
	Workers      int
}

// Canonical describes a normalized file that has been written to storage.
type Canonical struct {
	Filename  string
	Width     int
	Height    int
	SizeBytes int64
}

// Normalizer decodes an upload, rotates it upright, drops alpha, bounds its
// size and stores it as a JPEG under a fresh random name.
type Normalizer struct {
	storage storage.Backend
	opts    Options
	sem     *semaphore.Weighted
	newID   func() string
	log     *zap.Logger
}

func NewNormalizer(backend storage.Backend, opts Options, log *zap.Logger) (*Normalizer, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = DefaultMaxPixels
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	generateID, err := nanoid.Standard(nameLength)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	return &Normalizer{
		storage: backend,
		opts:    opts,
		sem:     semaphore.NewWeighted(int64(opts.Workers)),
		newID:   generateID,
		log:     log,
	}, nil
}

// Process runs the pipeline for one upload. Waiting for a worker slot honours
// ctx; once a slot is held the work runs to completion.
func (n *Normalizer) Process(ctx context.Context, data []byte, declaredType string) (*Canonical, error) {
	if err := n.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer n.sem.Release(1)
	metrics.WorkersBusy.Inc()
	defer metrics.WorkersBusy.Dec()

	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	encoded, size, err := n.render(data, declaredType)
	metrics.NormalizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	name, err := n.uniqueName(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := n.storage.Save(ctx, name, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: failed to save %s: %w", ErrStorage, name, err)
	}

	n.log.Debug("stored canonical image",
		zap.String("filename", name),
		zap.Int("width", size.X),
		zap.Int("height", size.Y),
		zap.Int("bytes", len(encoded)),
	)

	return &Canonical{
		Filename:  name,
		Width:     size.X,
		Height:    size.Y,
		SizeBytes: int64(len(encoded)),
	}, nil
}

func (n *Normalizer) render(data []byte, declaredType string) ([]byte, image.Point, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}
	if want, ok := decoderFormats[normalizeMediaType(declaredType)]; ok && want != format {
		return nil, image.Point{}, fmt.Errorf("%w: declared %s but content is %s", ErrCorruptImage, declaredType, format)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(n.opts.MaxPixels) {
		return nil, image.Point{}, fmt.Errorf("%w: %dx%d pixels exceeds %d", ErrTooLarge, cfg.Width, cfg.Height, n.opts.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	img = applyOrientation(img, readOrientation(data, format))
	img = flatten(img)

	bounds := img.Bounds()
	if limit := n.opts.MaxDimension; bounds.Dx() > limit || bounds.Dy() > limit {
		img = imaging.Fit(img, limit, limit, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = libjpeg.Encode(&buf, toYCbCr(img), &libjpeg.EncoderOptions{
		Quality:         n.opts.JPEGQuality,
		OptimizeCoding:  true,
		ProgressiveMode: true,
	})
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("%w: failed to encode: %w", ErrStorage, err)
	}

	bounds = img.Bounds()
	return buf.Bytes(), image.Pt(bounds.Dx(), bounds.Dy()), nil
}

// flatten converts images that carry alpha or a palette into opaque NRGBA.
// Alpha is dropped, not composited onto a background.
func flatten(img image.Image) image.Image {
	_, paletted := img.(*image.Paletted)
	switch img.ColorModel() {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model, color.AlphaModel, color.Alpha16Model:
	default:
		if !paletted {
			return img
		}
	}

	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xFF
	}
	return dst
}

// toYCbCr converts img to full-resolution YCbCr, the layout libjpeg takes
// without a colour conversion pass of its own.
func toYCbCr(img image.Image) *image.YCbCr {
	src := imaging.Clone(img)
	bounds := src.Bounds()
	dst := image.NewYCbCr(bounds, image.YCbCrSubsampleRatio444)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := src.PixOffset(x, y)
			yy, cb, cr := color.RGBToYCbCr(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			dst.Y[dst.YOffset(x, y)] = yy
			c := dst.COffset(x, y)
			dst.Cb[c] = cb
			dst.Cr[c] = cr
		}
	}
	return dst
}

func (n *Normalizer) uniqueName(ctx context.Context) (string, error) {
	for i := 0; i < nameRetries; i++ {
		name := n.newID() + canonicalExt
		exists, err := n.storage.Exists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to check for file existence: %w", err)
		}
		if !exists {
			return name, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique filename after %d attempts", nameRetries)
}
