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
	"errors"
	"fmt"

	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/internal/pagetree"
)

// SourceOpenError is returned when a source document cannot be opened,
// for example because the file is missing, the password is wrong or the
// file is not a valid PDF or image file.
type SourceOpenError = binder.OpenError

// ErrNoPages is returned by Save if no pages have been added.
// No output file is created in this case.
var ErrNoPages = pagetree.ErrNoPages

// ErrBusy is returned if Save is called while a previous call to Save on the
// same object is still running.
var ErrBusy = errors.New("save already in progress")

// PageResolutionError is returned when a page descriptor does not refer to
// an existing page of its source document.
type PageResolutionError struct {
	// Index is the 0-based position of the page in the output.
	Index int
	Page  Page
	Err   error
}

func (err *PageResolutionError) Error() string {
	return fmt.Sprintf("output page %d (%s, page %d): %v",
		err.Index+1, err.Page.Source.Path, err.Page.Number, err.Err)
}

func (err *PageResolutionError) Unwrap() error {
	return err.Err
}

// EncryptionConfigError is returned when the encryption settings cannot be
// used.
type EncryptionConfigError struct {
	Reason string
	Err    error
}

func (err *EncryptionConfigError) Error() string {
	if err.Err != nil {
		return "invalid encryption settings: " + err.Reason + ": " + err.Err.Error()
	}
	return "invalid encryption settings: " + err.Reason
}

func (err *EncryptionConfigError) Unwrap() error {
	return err.Err
}

// WriteError is returned when the output cannot be written.
type WriteError struct {
	// Path is the output file, or empty when writing to an io.Writer.
	Path string
	Err  error
}

func (err *WriteError) Error() string {
	if err.Path == "" {
		return "cannot write output: " + err.Err.Error()
	}
	return fmt.Sprintf("cannot write %q: %v", err.Path, err.Err)
}

func (err *WriteError) Unwrap() error {
	return err.Err
}

// AttachmentError is returned when an attachment file cannot be read.
type AttachmentError struct {
	Path string
	Err  error
}

func (err *AttachmentError) Error() string {
	return fmt.Sprintf("cannot attach %q: %v", err.Path, err.Err)
}

func (err *AttachmentError) Unwrap() error {
	return err.Err
}
