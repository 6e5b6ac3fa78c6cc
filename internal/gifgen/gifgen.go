// Package gifgen assembles a run's screenshots into an animated recap.
package gifgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/png"
	"os"
	"sort"
	"time"

	"github.com/nfnt/resize"
)

// Options configures recap generation
type Options struct {
	FrameDelay time.Duration // how long each screenshot is shown
	MaxWidth   uint          // frames are scaled to this width, keeping aspect ratio
}

// Generate writes a looping GIF with one frame per screenshot, in order.
// It returns the size of the written file.
func Generate(paths []string, outputPath string, opts Options) (int64, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("no screenshots to assemble")
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 800
	}
	if opts.FrameDelay <= 0 {
		opts.FrameDelay = 2 * time.Second
	}

	frames := make([]image.Image, 0, len(paths))
	for _, p := range paths {
		img, err := decodeFile(p)
		if err != nil {
			return 0, err
		}
		frames = append(frames, img)
	}

	// All frames share the first screenshot's output size
	bounds := frames[0].Bounds()
	width := opts.MaxWidth
	if uint(bounds.Dx()) < width {
		width = uint(bounds.Dx())
	}
	height := uint(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if height == 0 {
		height = 1
	}

	// GIF delays are in 100ths of a second
	delay := int(opts.FrameDelay / (10 * time.Millisecond))

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: 0, // Infinite loop
	}

	for i, frame := range frames {
		resized := resize.Resize(width, height, frame, resize.Lanczos3)
		paletted := image.NewPaletted(resized.Bounds(), generatePalette(resized))
		draw.FloydSteinberg.Draw(paletted, resized.Bounds(), resized, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = delay
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("create recap: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, g); err != nil {
		return 0, fmt.Errorf("encode recap: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// generatePalette picks the 256 most frequent colors of a sampled frame.
// Each screenshot is a different page, so every frame gets its own.
func generatePalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	counts := make(map[color.RGBA]int)

	step := 4 // Sample every 4th pixel for performance
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			counts[color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}]++
		}
	}

	colors := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		if counts[colors[i]] != counts[colors[j]] {
			return counts[colors[i]] > counts[colors[j]]
		}
		return rgbKey(colors[i]) < rgbKey(colors[j])
	})

	palette := make(color.Palette, 0, 256)
	for _, c := range colors {
		if len(palette) == 256 {
			break
		}
		palette = append(palette, c)
	}

	// Pad with grayscale so dithering has something to fall back on
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}

	return palette
}

func rgbKey(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
