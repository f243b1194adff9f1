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

package binder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind describes how the pages of a source document are obtained.
type Kind int

const (
	// Vector sources are PDF files.  Their pages are copied as they are.
	Vector Kind = iota

	// Raster sources are image files.  Every image frame becomes one page.
	Raster
)

func (k Kind) String() string {
	switch k {
	case Vector:
		return "vector"
	case Raster:
		return "raster"
	default:
		return fmt.Sprintf("binder.Kind(%d)", int(k))
	}
}

var rasterExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// DetectKind guesses the kind of a source document from its file name.
// Files with a known image extension are [Raster] sources, everything
// else is treated as PDF.
func DetectKind(path string) Kind {
	if rasterExt[strings.ToLower(filepath.Ext(path))] {
		return Raster
	}
	return Vector
}

// Source identifies a source document, together with the credentials
// needed to open it.
type Source struct {
	Path     string
	Password string
	Kind     Kind
}

// NewSource returns a Source for path, with the kind derived from the
// file name.
func NewSource(path, password string) Source {
	return Source{
		Path:     path,
		Password: password,
		Kind:     DetectKind(path),
	}
}
