package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"fyne.io/fyne/v2"
)

// trayIcon renders the solid black square shown in the system tray.
func trayIcon() fyne.Resource {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil
	}
	return fyne.NewStaticResource("screenshotter-tray.png", buf.Bytes())
}
