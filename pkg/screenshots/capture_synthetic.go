package screenshots

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"time"
)

// syntheticProvider draws a gradient frame. Used on headless hosts and in tests.
type syntheticProvider struct {
	width, height int
}

func newSyntheticProvider() syntheticProvider {
	return syntheticProvider{width: 320, height: 200}
}

func (p syntheticProvider) Grab(ctx context.Context) (FrameCapture, error) {
	if err := ctx.Err(); err != nil {
		return FrameCapture{}, err
	}
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	hue := uint8(rand.IntN(200) + 40)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: hue, G: uint8(x % 255), B: uint8(y % 255), A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return FrameCapture{}, err
	}
	return FrameCapture{
		PNG: buf.Bytes(),
		Metadata: Metadata{
			CapturedAt:  time.Now(),
			Backend:     "synthetic",
			Width:       p.width,
			Height:      p.height,
			PixelFormat: "RGBA",
		},
	}, nil
}
