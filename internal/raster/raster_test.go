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
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// withPHYs inserts a pHYs chunk directly after the IHDR chunk of a PNG file.
func withPHYs(t *testing.T, data []byte, ppm uint32) []byte {
	t.Helper()

	ihdrEnd := 8 + 4 + 4 + 13 + 4
	if string(data[12:16]) != "IHDR" {
		t.Fatal("unexpected PNG layout")
	}

	body := make([]byte, 9)
	binary.BigEndian.PutUint32(body[0:], ppm)
	binary.BigEndian.PutUint32(body[4:], ppm)
	body[8] = 1

	chunk := make([]byte, 0, 21)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(body)))
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, body...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	res := append([]byte{}, data[:ihdrEnd]...)
	res = append(res, chunk...)
	res = append(res, data[ihdrEnd:]...)
	return res
}

// mediaBoxes converts data and returns the media box widths and heights of
// all pages.
func mediaBoxes(t *testing.T, data []byte, dpi float64) [][2]float64 {
	t.Helper()

	body, err := Bytes(data, dpi)
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(body), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pagetree.Collect(r)
	if err != nil {
		t.Fatal(err)
	}

	var res [][2]float64
	for _, p := range pages {
		box, err := pdf.GetArray(r, p.Dict["MediaBox"])
		if err != nil {
			t.Fatal(err)
		}
		if len(box) != 4 {
			t.Fatalf("malformed media box %v", box)
		}
		var v [4]float64
		for i, x := range box {
			n, err := pdf.GetNumber(r, x)
			if err != nil {
				t.Fatal(err)
			}
			v[i] = float64(n)
		}
		res = append(res, [2]float64{v[2] - v[0], v[3] - v[1]})
	}
	return res
}

func round(boxes [][2]float64) [][2]float64 {
	for i := range boxes {
		for j := range boxes[i] {
			boxes[i][j] = math.Round(boxes[i][j]*100) / 100
		}
	}
	return boxes
}

func TestPNGDefaultResolution(t *testing.T) {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, testImage(144, 72))
	if err != nil {
		t.Fatal(err)
	}

	got := round(mediaBoxes(t, buf.Bytes(), 0))
	want := [][2]float64{{144, 72}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("page size (-want +got):\n%s", d)
	}

	got = round(mediaBoxes(t, buf.Bytes(), 144))
	want = [][2]float64{{72, 36}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("page size at 144 dpi (-want +got):\n%s", d)
	}
}

func TestPNGStoredResolution(t *testing.T) {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, testImage(300, 150))
	if err != nil {
		t.Fatal(err)
	}
	// 11811 pixels per metre is 300 dpi
	data := withPHYs(t, buf.Bytes(), 11811)

	x, y := pngResolution(data)
	if math.Abs(x-300) > 0.1 || math.Abs(y-300) > 0.1 {
		t.Errorf("resolution = %g x %g, want 300 x 300", x, y)
	}

	got := round(mediaBoxes(t, data, 72))
	want := [][2]float64{{72, 36}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("page size (-want +got):\n%s", d)
	}
}

func TestJPEGPassThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	err := jpeg.Encode(buf, testImage(50, 40), nil)
	if err != nil {
		t.Fatal(err)
	}

	pic, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if pic.Format != "jpeg" {
		t.Fatalf("format = %q", pic.Format)
	}
	if !bytes.Equal(pic.jpeg, buf.Bytes()) {
		t.Error("JPEG data is not passed through")
	}

	body := &bytes.Buffer{}
	err = pic.Write(body, 72)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(body.Bytes(), []byte("/DCTDecode")) {
		t.Error("image is not stored with /DCTDecode")
	}
}

func TestJFIFDensity(t *testing.T) {
	// SOI, APP0 with 2 dots per cm, EOI
	data := []byte{
		0xFF, 0xD8,
		0xFF, 0xE0, 0x00, 0x10,
		'J', 'F', 'I', 'F', 0x00, 0x01, 0x01,
		0x02, 0x00, 0x64, 0x00, 0xC8,
		0x00, 0x00,
		0xFF, 0xD9,
	}
	x, y := jpegResolution(data)
	if math.Abs(x-254) > 1e-6 || math.Abs(y-508) > 1e-6 {
		t.Errorf("resolution = %g x %g, want 254 x 508", x, y)
	}
}

func TestGIFFrames(t *testing.T) {
	g := &gif.GIF{}
	for i := range 3 {
		frame := image.NewPaletted(image.Rect(0, 0, 20, 10), palette.Plan9)
		for x := range 20 {
			frame.SetColorIndex(x, i, uint8(10*i+1))
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	buf := &bytes.Buffer{}
	err := gif.EncodeAll(buf, g)
	if err != nil {
		t.Fatal(err)
	}

	got := round(mediaBoxes(t, buf.Bytes(), 72))
	want := [][2]float64{{20, 10}, {20, 10}, {20, 10}}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("pages (-want +got):\n%s", d)
	}
}

func TestTransparentImageHasMask(t *testing.T) {
	img := testImage(8, 8)
	img.Set(3, 3, color.NRGBA{A: 0})
	buf := &bytes.Buffer{}
	err := png.Encode(buf, img)
	if err != nil {
		t.Fatal(err)
	}

	body, err := Bytes(buf.Bytes(), 72)
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(body), nil)
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pagetree.Collect(r)
	if err != nil {
		t.Fatal(err)
	}
	res, err := pdf.GetDict(r, pages[0].Dict["Resources"])
	if err != nil {
		t.Fatal(err)
	}
	xobj, err := pdf.GetDict(r, res["XObject"])
	if err != nil {
		t.Fatal(err)
	}
	stm, err := pdf.GetStream(r, xobj["Im0"])
	if err != nil {
		t.Fatal(err)
	}
	if stm == nil || stm.Dict["SMask"] == nil {
		t.Error("soft mask missing")
	}
}

func TestOpenFile(t *testing.T) {
	buf := &bytes.Buffer{}
	err := png.Encode(buf, testImage(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	fname := filepath.Join(t.TempDir(), "test.png")
	err = os.WriteFile(fname, buf.Bytes(), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	r, err := Open(fname, 72)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	pages, err := pagetree.Collect(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 {
		t.Errorf("got %d pages, want 1", len(pages))
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	if err == nil {
		t.Error("garbage decoded without error")
	}
}
