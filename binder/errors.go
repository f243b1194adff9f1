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
)

// OpenError is returned when a source document cannot be opened.
// The underlying cause is available via errors.Unwrap; for encrypted
// documents opened with the wrong password this is a
// *pdf.AuthenticationError.
type OpenError struct {
	Path string
	Err  error
}

func (err *OpenError) Error() string {
	return fmt.Sprintf("cannot open %q: %v", err.Path, err.Err)
}

func (err *OpenError) Unwrap() error {
	return err.Err
}

// PageError is returned when a page number is out of range for a source
// document.
type PageError struct {
	Path     string
	Page     int
	NumPages int
}

func (err *PageError) Error() string {
	return fmt.Sprintf("%s: page %d out of range [1, %d]",
		err.Path, err.Page, err.NumPages)
}
