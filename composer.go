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
	"io"
	"slices"
	"sync/atomic"

	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/logger"
)

// A Composer collects pages from PDF files and images and writes them into
// a single output document.
//
// Pages, attachments and settings accumulate until [Composer.Save] or
// [Composer.Reset] is called.  The source files are opened only while
// the output is written.
type Composer struct {
	opt *Options
	log logger.Func
	b   *binder.Binder

	pages       []Page
	attachments attachmentSet
	meta        Metadata
	enc         Encryption

	saving atomic.Bool
}

// NewComposer returns a new Composer.  If opt is nil, the values from
// [NewDefaultOptions] are used.
func NewComposer(opt *Options) *Composer {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Composer{
		opt: opt,
		log: logger.OrDiscard(opt.Log),
		b:   newBinder(opt),
	}
}

// Add appends pages to the output document.
func (c *Composer) Add(pages ...Page) {
	c.pages = append(c.pages, pages...)
}

// Pages returns the pages added so far.
func (c *Composer) Pages() []Page {
	return slices.Clone(c.pages)
}

// Attach adds an embedded file to the output document.  Attachments with
// the same name and contents as an earlier one are ignored.
// Attach reports whether a was added.
func (c *Composer) Attach(a *Attachment) bool {
	added := c.attachments.add(a)
	if !added {
		c.log(logger.Debug, "duplicate attachment ignored", "name", a.Name)
	}
	return added
}

// AttachFile reads the named file and adds it as an attachment.
func (c *Composer) AttachFile(path string) error {
	a, err := LoadAttachment(path)
	if err != nil {
		return err
	}
	c.Attach(a)
	return nil
}

// SetMetadata sets the document information and viewer options.
func (c *Composer) SetMetadata(m Metadata) {
	c.meta = m
}

// SetEncryption sets the password protection of the output document.
func (c *Composer) SetEncryption(e Encryption) {
	c.enc = e
}

// Save writes the output document to the named file.
//
// The file is written via a temporary file in the same directory, so
// that an existing file at path is only replaced once the new document is
// complete.  All source documents are closed before Save returns, whether
// or not an error occurred.
func (c *Composer) Save(path string) error {
	return c.run(path, func(write func(io.Writer) error) error {
		return writeFileAtomic(path, write)
	})
}

// Write writes the output document to w.  The source documents are closed
// before Write returns.
func (c *Composer) Write(w io.Writer) error {
	return c.run("", func(write func(io.Writer) error) error {
		err := write(w)
		if err != nil {
			return wrapWriteError("", err)
		}
		return nil
	})
}

func (c *Composer) run(path string, emit func(func(io.Writer) error) error) error {
	if !c.saving.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.saving.Store(false)
	defer c.release()

	if len(c.pages) == 0 {
		return ErrNoPages
	}
	err := c.opt.Validate()
	if err != nil {
		return err
	}
	j := c.job()
	err = j.check()
	if err != nil {
		return err
	}

	sources, err := resolve(c.b, c.pages)
	if err != nil {
		return err
	}

	err = emit(func(w io.Writer) error {
		return j.write(w, sources)
	})
	if err != nil {
		return err
	}
	c.log(logger.Info, "document written",
		"path", path, "pages", len(c.pages), "sources", c.b.Len())
	return nil
}

func (c *Composer) job() *job {
	return &job{
		meta:            &c.meta,
		enc:             &c.enc,
		attachments:     &c.attachments,
		keepOutlines:    c.opt.KeepOutlines,
		keepAttachments: c.opt.KeepAttachments,
		humanReadable:   c.opt.HumanReadable,
		log:             c.log,
	}
}

func (c *Composer) release() {
	err := c.b.Release()
	if err != nil {
		c.log(logger.Warn, "cannot close source", "error", err)
	}
}

// Reset removes all pages and attachments and restores the default
// metadata and encryption settings.
func (c *Composer) Reset() {
	c.release()
	c.pages = nil
	c.attachments = attachmentSet{}
	c.meta = Metadata{}
	c.enc = Encryption{}
}
