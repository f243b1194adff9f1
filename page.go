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

package pdfcompose

import (
	"seehuhn.de/go/pdfcompose/binder"
)

// Page describes one page of an output document.
type Page struct {
	// Source is the document the page is taken from.
	Source binder.Source

	// Number is the 1-based page number within the source.  For raster
	// sources this selects the image frame.
	Number int

	// Rotate is the rotation in degrees, applied clockwise on top of the
	// rotation stored in the source page.  The value is rounded to the
	// nearest multiple of 90.
	Rotate int
}

// VectorPage returns a Page taken from a PDF file.
func VectorPage(path, password string, number, rotate int) Page {
	return Page{
		Source: binder.Source{Path: path, Password: password, Kind: binder.Vector},
		Number: number,
		Rotate: rotate,
	}
}

// RasterPage returns a Page showing one frame of an image file.
func RasterPage(path string, frame, rotate int) Page {
	return Page{
		Source: binder.Source{Path: path, Kind: binder.Raster},
		Number: frame,
		Rotate: rotate,
	}
}

// NormalizeRotation rounds a rotation angle to the nearest multiple of 90
// degrees and reduces it to the range [0, 360).
func NormalizeRotation(deg int) int {
	q := deg / 90
	switch r := deg % 90; {
	case r >= 45:
		q++
	case r <= -45:
		q--
	}
	q %= 4
	if q < 0 {
		q += 4
	}
	return q * 90
}

// AllPages returns one Page for every page of the source document, in
// order and without additional rotation.
func AllPages(src binder.Source) ([]Page, error) {
	b := binder.New(nil)
	defer b.Release()

	h, err := b.Bind(src)
	if err != nil {
		return nil, err
	}
	n, err := h.NumPages()
	if err != nil {
		return nil, err
	}
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Source: src, Number: i + 1}
	}
	return pages, nil
}
