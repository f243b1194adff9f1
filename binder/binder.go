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

// Package binder keeps track of the source documents which contribute pages
// to an output file.
//
// A [Binder] opens every source document at most once, no matter how many
// of its pages are used, and closes all of them again when the output has
// been written.  Sources are keyed by their canonical absolute path.
package binder

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
	"seehuhn.de/go/pdfcompose/internal/raster"
	"seehuhn.de/go/pdfcompose/logger"
)

// Document is an open source document.
type Document interface {
	pdf.Getter
	Close() error
}

// OpenFunc opens the document at path, using password if the document is
// encrypted.
type OpenFunc func(path, password string) (Document, error)

// ErrCredentialMismatch is returned in strict mode, when a source is bound
// a second time with a different password.
var ErrCredentialMismatch = errors.New("source already bound with a different password")

// A Binder owns the open source documents of one output operation.
// Binders are not safe for concurrent use.
type Binder struct {
	// Open maps each source kind to the function used to open it.
	Open map[Kind]OpenFunc

	// StrictCredentials makes Bind fail if a source is bound again with a
	// different password.  By default the password of the first binding is
	// kept, and a warning is logged.
	StrictCredentials bool

	// Log receives diagnostic messages.
	Log logger.Func

	handles map[string]*Handle
	order   []*Handle
}

// New returns a Binder which opens PDF files with [OpenPDF] and raster
// images with [RasterOpener], at the default resolution.
func New(log logger.Func) *Binder {
	return &Binder{
		Open: map[Kind]OpenFunc{
			Vector: OpenPDF,
			Raster: RasterOpener(raster.DefaultDPI),
		},
		Log:     logger.OrDiscard(log),
		handles: make(map[string]*Handle),
	}
}

// Bind returns the handle for the given source, opening the source if
// needed.  Every call increments the reference count of the handle.
//
// If opening the source fails, the returned error is an *OpenError and no
// binding is registered.
func (b *Binder) Bind(src Source) (*Handle, error) {
	key, err := Canonical(src.Path)
	if err != nil {
		return nil, &OpenError{Path: src.Path, Err: err}
	}

	if h, ok := b.handles[key]; ok {
		if h.password != src.Password {
			if b.StrictCredentials {
				return nil, &OpenError{Path: src.Path, Err: ErrCredentialMismatch}
			}
			b.log(logger.Warn, "source already bound with a different password",
				"path", key)
		}
		h.refs++
		return h, nil
	}

	open := b.Open[src.Kind]
	if open == nil {
		return nil, &OpenError{
			Path: src.Path,
			Err:  fmt.Errorf("no opener for %s sources", src.Kind),
		}
	}
	doc, err := open(key, src.Password)
	if err != nil {
		return nil, &OpenError{Path: src.Path, Err: err}
	}

	h := &Handle{
		Path:     key,
		Kind:     src.Kind,
		Doc:      doc,
		password: src.Password,
		refs:     1,
	}
	if b.handles == nil {
		b.handles = make(map[string]*Handle)
	}
	b.handles[key] = h
	b.order = append(b.order, h)
	b.log(logger.Debug, "source bound", "path", key, "kind", src.Kind)
	return h, nil
}

// IsBound reports whether the source at path is currently bound.
func (b *Binder) IsBound(path string) bool {
	key, err := Canonical(path)
	if err != nil {
		return false
	}
	_, ok := b.handles[key]
	return ok
}

// Len returns the number of bound sources.
func (b *Binder) Len() int {
	return len(b.handles)
}

// Handles returns the bound sources, in the order they were first bound.
func (b *Binder) Handles() []*Handle {
	return slices.Clone(b.order)
}

// Release closes all bound sources, in reverse bind order, and forgets
// them.  Errors from closing individual sources are joined.
// It is safe to call Release more than once.
func (b *Binder) Release() error {
	var errs []error
	for _, h := range slices.Backward(b.order) {
		err := h.Doc.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing %q: %w", h.Path, err))
		}
	}
	if len(b.order) > 0 {
		b.log(logger.Debug, "sources released", "count", len(b.order))
	}
	clear(b.handles)
	b.order = nil
	return errors.Join(errs...)
}

func (b *Binder) log(level logger.Level, msg string, keyvals ...any) {
	if b.Log != nil {
		b.Log(level, msg, keyvals...)
	}
}

// Canonical returns the canonical absolute form of path, with symbolic
// links resolved.  Two paths refer to the same bound source if and only
// if their canonical forms are equal.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	res, err := filepath.EvalSymlinks(abs)
	if errors.Is(err, fs.ErrNotExist) {
		// Let the opener report missing files.
		return abs, nil
	} else if err != nil {
		return "", err
	}
	return res, nil
}

// A Handle is a bound source document.
type Handle struct {
	// Path is the canonical path of the source.
	Path string
	Kind Kind
	Doc  Document

	password string
	refs     int
	pages    []pagetree.Page
}

// Refs returns the number of times the source has been bound.
func (h *Handle) Refs() int {
	return h.refs
}

func (h *Handle) loadPages() error {
	if h.pages != nil {
		return nil
	}
	pages, err := pagetree.Collect(h.Doc)
	if err != nil {
		return fmt.Errorf("%s: %w", h.Path, err)
	}
	h.pages = pages
	return nil
}

// NumPages returns the number of pages in the source document.
func (h *Handle) NumPages() (int, error) {
	err := h.loadPages()
	if err != nil {
		return 0, err
	}
	return len(h.pages), nil
}

// Page returns the page with the given 1-based number.  The returned
// dictionary has all inherited page attributes filled in.  If the page
// number is out of range, a *PageError is returned.
func (h *Handle) Page(n int) (pdf.Reference, pdf.Dict, error) {
	err := h.loadPages()
	if err != nil {
		return 0, nil, err
	}
	if n < 1 || n > len(h.pages) {
		return 0, nil, &PageError{Path: h.Path, Page: n, NumPages: len(h.pages)}
	}
	p := h.pages[n-1]
	return p.Ref, p.Dict, nil
}

// OpenPDF opens a PDF file.
func OpenPDF(path, password string) (Document, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	opt := &pdf.ReaderOptions{
		ReadPassword: func(_ []byte, try int) string {
			if try == 0 {
				return password
			}
			return ""
		},
	}
	r, err := pdf.NewReader(fd, opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	f := &pdfFile{Reader: r, fd: fd}
	err = checkAccess(r)
	if err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// checkAccess reads the start of the first page content stream of an
// encrypted document, so that a wrong password is detected when the
// document is opened rather than when its pages are copied.
func checkAccess(r pdf.Getter) error {
	if r.GetMeta().Trailer["Encrypt"] == nil {
		return nil
	}
	pages, err := pagetree.Collect(r)
	if err != nil {
		return err
	}
	for _, p := range pages {
		contents, err := pdf.Resolve(r, p.Dict["Contents"])
		if err != nil {
			return err
		}
		if arr, ok := contents.(pdf.Array); ok && len(arr) > 0 {
			contents, err = pdf.Resolve(r, arr[0])
			if err != nil {
				return err
			}
		}
		stm, ok := contents.(*pdf.Stream)
		if !ok {
			continue
		}
		body, err := pdf.GetStreamReader(r, stm)
		if err == nil {
			var buf [1]byte
			_, err = io.ReadFull(body, buf[:])
			body.Close()
		}
		var authErr *pdf.AuthenticationError
		if errors.As(err, &authErr) {
			return err
		}
		return nil
	}
	return nil
}

type pdfFile struct {
	*pdf.Reader
	fd *os.File
}

func (f *pdfFile) Close() error {
	err := f.Reader.Close()
	err2 := f.fd.Close()
	if err == nil && !errors.Is(err2, os.ErrClosed) {
		err = err2
	}
	return err
}

// RasterOpener returns an OpenFunc which converts image files into
// in-memory PDF documents, with one page per image frame.  Images which do
// not specify their resolution are placed at dpi dots per inch.
// The password is ignored.
func RasterOpener(dpi float64) OpenFunc {
	return func(path, _ string) (Document, error) {
		r, err := raster.Open(path, dpi)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}
