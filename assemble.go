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
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/internal/embedded"
	"seehuhn.de/go/pdfcompose/internal/objcopy"
	"seehuhn.de/go/pdfcompose/internal/outline"
	"seehuhn.de/go/pdfcompose/internal/pagetree"
	"seehuhn.de/go/pdfcompose/logger"
)

// newBinder returns the binder used by a Composer or Splitter.
func newBinder(opt *Options) *binder.Binder {
	b := binder.New(opt.Log)
	b.StrictCredentials = opt.StrictCredentials
	b.Open[binder.Raster] = binder.RasterOpener(opt.DPI)
	return b
}

// source is a page which has been located in its bound source document.
type source struct {
	h      *binder.Handle
	ref    pdf.Reference
	dict   pdf.Dict
	rotate int
}

// resolve binds the sources of all pages and locates the pages.
func resolve(b *binder.Binder, pages []Page) ([]source, error) {
	res := make([]source, len(pages))
	for i, p := range pages {
		h, err := b.Bind(p.Source)
		if err != nil {
			return nil, err
		}
		ref, dict, err := h.Page(p.Number)
		if err != nil {
			return nil, &PageResolutionError{Index: i, Page: p, Err: err}
		}
		orig, err := pagetree.Rotation(h.Doc, dict)
		if err != nil {
			return nil, &PageResolutionError{Index: i, Page: p, Err: err}
		}
		res[i] = source{
			h:      h,
			ref:    ref,
			dict:   dict,
			rotate: NormalizeRotation(orig + p.Rotate),
		}
	}
	return res, nil
}

// job holds the settings for writing one output file.
type job struct {
	meta        *Metadata
	enc         *Encryption
	attachments *attachmentSet

	keepOutlines    bool
	keepAttachments bool
	humanReadable   bool

	log logger.Func
}

// check validates the metadata and encryption settings.
func (j *job) check() error {
	err := j.meta.Validate()
	if err != nil {
		return err
	}
	return j.enc.check()
}

// version returns the PDF version of the output, taking the encryption
// method into account.
func (j *job) version() pdf.Version {
	v := j.meta.version()
	if !j.enc.active() {
		return v
	}
	clamped := j.enc.clampVersion(v)
	if clamped != v {
		j.log(logger.Warn, "PDF version adjusted for encryption method",
			"method", j.enc.Method, "requested", v, "used", clamped)
	}
	return clamped
}

// write writes the given pages as a new PDF document to w.
func (j *job) write(w io.Writer, pages []source) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	if j.enc.Enabled && !j.enc.active() {
		j.log(logger.Warn, "encryption enabled without owner password, output is not encrypted")
	}
	if j.enc.active() && !j.enc.Permissions.Extract {
		j.log(logger.Warn, "text extraction for accessibility cannot be forbidden")
	}

	v := j.version()
	out, err := pdf.NewWriter(w, v, j.enc.writerOptions(j.humanReadable))
	if err != nil {
		return err
	}

	pageRefs := make([]pdf.Reference, len(pages))
	for i := range pageRefs {
		pageRefs[i] = out.Alloc()
	}
	layout, err := pagetree.NewLayout(out, pageRefs)
	if err != nil {
		return err
	}

	// One copier per source document.  Imported pages are redirected to
	// their new location, all other pages of the sources are dropped.
	copiers := make(map[*binder.Handle]*objcopy.Copier)
	var used []*binder.Handle
	for i, p := range pages {
		c, ok := copiers[p.h]
		if !ok {
			c = objcopy.New(out, p.h.Doc)
			copiers[p.h] = c
			used = append(used, p.h)
		}
		if p.ref == 0 {
			continue
		}
		if _, seen := c.Lookup(p.ref); !seen {
			c.Redirect(p.ref, pageRefs[i])
		}
	}
	for _, h := range used {
		n, err := h.NumPages()
		if err != nil {
			return err
		}
		c := copiers[h]
		for k := 1; k <= n; k++ {
			ref, _, err := h.Page(k)
			if err != nil {
				return err
			}
			if ref != 0 {
				c.Drop(ref)
			}
		}
	}

	for i, p := range pages {
		ref := pageRefs[i]
		err := copiers[p.h].CopyPage(ref, p.dict, layout.Parent(ref), p.rotate)
		if err != nil {
			return err
		}
	}
	err = layout.Close()
	if err != nil {
		return err
	}

	catalog := &pdf.Catalog{
		Pages: layout.Root,
	}

	if j.keepOutlines {
		var items []*outline.Item
		for _, h := range used {
			srcItems, err := outline.Read(h.Doc)
			if err != nil {
				j.log(logger.Warn, "cannot read outline", "path", h.Path, "error", err)
				continue
			}
			c := copiers[h]
			items = append(items, outline.Remap(srcItems, c.Lookup)...)
		}
		outlineRef, err := outline.Write(out, items)
		if err != nil {
			return err
		}
		catalog.Outlines = outlineRef
	}

	files := j.attachments.clone()
	if j.keepAttachments {
		for _, h := range used {
			srcFiles, err := embedded.Read(h.Doc)
			if err != nil {
				j.log(logger.Warn, "cannot read attachments", "path", h.Path, "error", err)
				continue
			}
			for _, f := range srcFiles {
				files.add(attachmentFromFile(f))
			}
		}
	}
	if len(files.list) > 0 {
		if v < pdf.V1_3 {
			j.log(logger.Warn, "attachments need PDF 1.3, skipped", "count", len(files.list))
		} else {
			tree, err := embedded.Write(out, files.files())
			if err != nil {
				return err
			}
			catalog.Names = pdf.Dict{"EmbeddedFiles": tree}
		}
	}

	info := j.meta.info(time.Now())
	out.GetMeta().Info = info
	for _, msg := range j.meta.applyCatalog(catalog, v) {
		j.log(logger.Warn, msg)
	}
	if v >= pdf.V1_4 {
		packet, err := j.meta.xmpPacket(info, v)
		if err != nil {
			return err
		}
		catalog.Metadata, err = writeXMP(out, packet, j.humanReadable)
		if err != nil {
			return err
		}
	}

	out.GetMeta().Catalog = catalog
	return out.Close()
}

// writeFileAtomic writes a file via a temporary file in the same directory,
// which is renamed to path once the contents are complete.  On failure the
// temporary file is removed and path is left untouched.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	buf := bufio.NewWriter(tmp)
	err = write(buf)
	if err != nil {
		return wrapWriteError(path, err)
	}
	err = buf.Flush()
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	err = tmp.Chmod(0o644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	err = tmp.Close()
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		os.Remove(tmp.Name())
		done = true
		return &WriteError{Path: path, Err: err}
	}
	done = true
	return nil
}

// wrapWriteError wraps err in a *WriteError, unless it already has one of
// the more specific error types of this package.
func wrapWriteError(path string, err error) error {
	var (
		openErr *SourceOpenError
		pageErr *PageResolutionError
		encErr  *EncryptionConfigError
		wErr    *WriteError
	)
	switch {
	case errors.Is(err, ErrNoPages),
		errors.As(err, &openErr),
		errors.As(err, &pageErr),
		errors.As(err, &encErr),
		errors.As(err, &wErr):
		return err
	default:
		return &WriteError{Path: path, Err: err}
	}
}
