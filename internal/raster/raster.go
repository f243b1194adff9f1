// seehuhn.de/go/pdfcompose - merge and split PDF documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package raster turns image files into PDF documents with one page per
// image frame.
//
// The resulting documents are held in memory.  They are read back with
// the ordinary PDF reader, so that pages from raster sources can be
// imported exactly like pages from PDF files.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // register the JPEG decoder
	_ "image/png"  // register the PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // register the BMP decoder
	_ "golang.org/x/image/tiff" // register the TIFF decoder
	_ "golang.org/x/image/webp" // register the WebP decoder

	"seehuhn.de/go/pdf"
)

// DefaultDPI is the resolution used for images which do not specify one.
const DefaultDPI = 72

// Picture is a decoded image file.
type Picture struct {
	// Format is the name of the image format, as registered with the
	// image package, e.g. "png" or "jpeg".
	Format string

	// Frames holds the images, one per output page.  Animated GIF frames
	// are composited, so that every frame shows what a viewer would
	// display at that point.
	Frames []image.Image

	// DPIX and DPIY give the resolution stored in the file.  They are 0 if
	// the file does not specify a resolution.
	DPIX, DPIY float64

	// jpeg holds the original data of baseline JPEG files, which can be
	// embedded without re-encoding.
	jpeg []byte
}

var errNoFrames = errors.New("image has no frames")

// Decode decodes an image file.
func Decode(data []byte) (*Picture, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	pic := &Picture{Format: format}
	switch format {
	case "gif":
		pic.Frames, err = decodeGIF(data)
	default:
		var img image.Image
		img, _, err = image.Decode(bytes.NewReader(data))
		pic.Frames = []image.Image{img}
	}
	if err != nil {
		return nil, err
	}
	if len(pic.Frames) == 0 {
		return nil, errNoFrames
	}

	switch format {
	case "png":
		pic.DPIX, pic.DPIY = pngResolution(data)
	case "jpeg":
		pic.DPIX, pic.DPIY = jpegResolution(data)
		if pic.Frames[0].ColorModel() != color.CMYKModel {
			pic.jpeg = data
		}
	}
	return pic, nil
}

// decodeGIF decodes all frames of a (possibly animated) GIF image.
func decodeGIF(data []byte) ([]image.Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	canvas := image.NewNRGBA(bounds)
	var frames []image.Image
	for i, frame := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, cloneNRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames, nil
}

func cloneNRGBA(img *image.NRGBA) *image.NRGBA {
	res := image.NewNRGBA(img.Rect)
	copy(res.Pix, img.Pix)
	return res
}

// Bytes converts an image file into a PDF document.
// If the image file does not specify a resolution, dpi is used.
func Bytes(data []byte, dpi float64) ([]byte, error) {
	pic, err := Decode(data)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	err = pic.Write(buf, dpi)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open reads the named image file and returns an in-memory PDF document
// with one page per image frame.
func Open(path string, dpi float64) (*pdf.Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	body, err := Bytes(data, dpi)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pdf.NewReader(bytes.NewReader(body), nil)
}
