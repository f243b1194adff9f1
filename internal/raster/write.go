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

package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
)

// Write writes the picture as a PDF document to w, with one page per
// frame.  The page size is the pixel size of the frame at the resolution
// of the image file, or at dpi if the file does not specify a resolution.
func (pic *Picture) Write(w io.Writer, dpi float64) error {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	dpiX, dpiY := pic.DPIX, pic.DPIY
	if dpiX <= 0 || dpiY <= 0 {
		dpiX, dpiY = dpi, dpi
	}

	out, err := pdf.NewWriter(w, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	pageRefs := make([]pdf.Reference, len(pic.Frames))
	for i := range pageRefs {
		pageRefs[i] = out.Alloc()
	}
	layout, err := pagetree.NewLayout(out, pageRefs)
	if err != nil {
		return err
	}

	for i, frame := range pic.Frames {
		var imRef pdf.Reference
		if pic.jpeg != nil {
			imRef, err = embedJPEG(out, pic.jpeg, frame)
		} else {
			imRef, err = embedImage(out, frame)
		}
		if err != nil {
			return err
		}

		b := frame.Bounds()
		box := rect.Rect{
			URx: float64(b.Dx()) * 72 / dpiX,
			URy: float64(b.Dy()) * 72 / dpiY,
		}
		// The image occupies the unit square in image space.
		m := matrix.Scale(box.Dx(), box.Dy())

		contentRef := out.Alloc()
		stm, err := out.OpenStream(contentRef, nil, pdf.FilterCompress{})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stm, "q %s cm /Im0 Do Q\n", formatMatrix(m))
		if err != nil {
			return err
		}
		err = stm.Close()
		if err != nil {
			return err
		}

		ref := pageRefs[i]
		err = out.Put(ref, pdf.Dict{
			"Type":     pdf.Name("Page"),
			"Parent":   layout.Parent(ref),
			"MediaBox": boxArray(box),
			"Resources": pdf.Dict{
				"XObject": pdf.Dict{"Im0": imRef},
			},
			"Contents": contentRef,
		})
		if err != nil {
			return err
		}
	}

	err = layout.Close()
	if err != nil {
		return err
	}
	out.GetMeta().Catalog = &pdf.Catalog{Pages: layout.Root}
	return out.Close()
}

// embedJPEG embeds the original JPEG data without re-encoding.
func embedJPEG(w *pdf.Writer, data []byte, img image.Image) (pdf.Reference, error) {
	ref := w.Alloc()

	cs := pdf.Name("DeviceRGB")
	if isGray(img) {
		cs = "DeviceGray"
	}
	b := img.Bounds()
	stm, err := w.OpenStream(ref, pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(b.Dx()),
		"Height":           pdf.Integer(b.Dy()),
		"ColorSpace":       cs,
		"BitsPerComponent": pdf.Integer(8),
		"Filter":           pdf.Name("DCTDecode"),
	})
	if err != nil {
		return 0, err
	}
	_, err = stm.Write(data)
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return ref, nil
}

// embedImage embeds an image losslessly, using a representation very
// similar to the PNG format.  A soft mask is only written if the image is
// not fully opaque.
func embedImage(w *pdf.Writer, img image.Image) (pdf.Reference, error) {
	ref := w.Alloc()
	b := img.Bounds()
	width := b.Dx()
	height := b.Dy()

	gray := isGray(img)
	cs := pdf.Name("DeviceRGB")
	colors := 3
	if gray {
		cs = "DeviceGray"
		colors = 1
	}

	// see Table 87 of ISO 32000-2:2020
	imDict := pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(width),
		"Height":           pdf.Integer(height),
		"ColorSpace":       cs,
		"BitsPerComponent": pdf.Integer(8),
	}
	var maskRef pdf.Reference
	var alpha []byte
	if !gray && needsAlphaChannel(img) {
		maskRef = w.Alloc()
		imDict["SMask"] = maskRef
		alpha = make([]byte, 0, width*height)
	}

	filter := pdf.FilterCompress{
		"Columns":   pdf.Integer(width),
		"Colors":    pdf.Integer(colors),
		"Predictor": pdf.Integer(15),
	}
	stm, err := w.OpenStream(ref, imDict, filter)
	if err != nil {
		return 0, err
	}
	row := make([]byte, 0, colors*width)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row = row[:0]
		for x := b.Min.X; x < b.Max.X; x++ {
			if gray {
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				row = append(row, g.Y)
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row = append(row, c.R, c.G, c.B)
			if alpha != nil {
				alpha = append(alpha, c.A)
			}
		}
		_, err = stm.Write(row)
		if err != nil {
			return 0, err
		}
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}

	if maskRef == 0 {
		return ref, nil
	}

	stm, err = w.OpenStream(maskRef, pdf.Dict{
		"Type":             pdf.Name("XObject"),
		"Subtype":          pdf.Name("Image"),
		"Width":            pdf.Integer(width),
		"Height":           pdf.Integer(height),
		"ColorSpace":       pdf.Name("DeviceGray"),
		"BitsPerComponent": pdf.Integer(8),
	}, pdf.FilterCompress{
		"Columns":   pdf.Integer(width),
		"Predictor": pdf.Integer(15),
	})
	if err != nil {
		return 0, err
	}
	_, err = stm.Write(alpha)
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return ref, nil
}

func isGray(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	default:
		return false
	}
}

func needsAlphaChannel(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model, color.CMYKModel, color.YCbCrModel:
		return false

	case color.AlphaModel, color.Alpha16Model:
		return true

	default:
		// check all pixels to see whether the alpha channel is actually used
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a != 0xffff {
					return true
				}
			}
		}
		return false
	}
}

func boxArray(box rect.Rect) pdf.Array {
	return pdf.Array{
		pdf.Number(box.LLx), pdf.Number(box.LLy),
		pdf.Number(box.URx), pdf.Number(box.URy),
	}
}

func formatMatrix(m matrix.Matrix) string {
	parts := make([]string, len(m))
	for i, x := range m {
		parts[i] = strconv.FormatFloat(math.Round(x*1e4)/1e4, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}
