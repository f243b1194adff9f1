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
	"github.com/go-playground/validator/v10"

	"seehuhn.de/go/pdfcompose/internal/raster"
	"seehuhn.de/go/pdfcompose/logger"
	"seehuhn.de/go/pdfcompose/naming"
)

// Options control the behaviour of a [Composer] or [Splitter].
type Options struct {
	// Log receives diagnostic messages.  If this is nil, messages are
	// discarded.
	Log logger.Func

	// StrictCredentials makes Save fail if a source document is used with
	// two different passwords.  Otherwise the first password is used.
	StrictCredentials bool

	// KeepAttachments copies the embedded files of the source documents
	// into the output.
	KeepAttachments bool

	// KeepOutlines copies the bookmarks of the source documents which point
	// to imported pages.  This only applies to the Composer.
	KeepOutlines bool

	// HumanReadable writes the output without object streams, in a form
	// which is easier to inspect.
	HumanReadable bool

	// DPI is the resolution used for raster images which do not specify
	// their own resolution.
	DPI float64 `validate:"gt=0,lte=10000"`

	// BaseName is the prefix of the file names written by the Splitter.
	// If this is empty, the name of the source file of each page is used.
	BaseName string `validate:"max=200"`

	// MaxNameTries is the number of counter suffixes the Splitter tries
	// for a taken file name, before falling back to a random name.
	MaxNameTries int `validate:"min=1,max=100000"`
}

// NewDefaultOptions returns the default options.
func NewDefaultOptions() *Options {
	return &Options{
		KeepAttachments: true,
		KeepOutlines:    true,
		DPI:             raster.DefaultDPI,
		MaxNameTries:    naming.DefaultMaxTries,
	}
}

// Validate checks that all option values are in range.
func (opt *Options) Validate() error {
	return validate.Struct(opt)
}

var validate = validator.New()
