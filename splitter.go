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
	"io/fs"
	"os"
	"slices"
	"sync/atomic"

	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/logger"
	"seehuhn.de/go/pdfcompose/naming"
)

// A Splitter writes every page it is given into a separate single-page PDF
// file.
//
// Output files are named "<base>-<n>.pdf", where n is the number of the
// page within its source and the base is [Options.BaseName] or, if that is
// empty, the name of the source file.  The number is zero-padded to the
// width of the page count of the source.  Existing files are never
// overwritten; if a name is taken, a different name is chosen.
type Splitter struct {
	opt *Options
	log logger.Func
	b   *binder.Binder

	pages       []Page
	attachments attachmentSet
	meta        Metadata
	enc         Encryption

	results []string
	saving  atomic.Bool
}

// NewSplitter returns a new Splitter.  If opt is nil, the values from
// [NewDefaultOptions] are used.
func NewSplitter(opt *Options) *Splitter {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Splitter{
		opt: opt,
		log: logger.OrDiscard(opt.Log),
		b:   newBinder(opt),
	}
}

// Add appends pages to the list of pages to split.
func (s *Splitter) Add(pages ...Page) {
	s.pages = append(s.pages, pages...)
}

// Attach adds an embedded file to every output file.  Attachments with the
// same name and contents as an earlier one are ignored.
// Attach reports whether a was added.
func (s *Splitter) Attach(a *Attachment) bool {
	added := s.attachments.add(a)
	if !added {
		s.log(logger.Debug, "duplicate attachment ignored", "name", a.Name)
	}
	return added
}

// AttachFile reads the named file and adds it as an attachment.
func (s *Splitter) AttachFile(path string) error {
	a, err := LoadAttachment(path)
	if err != nil {
		return err
	}
	s.Attach(a)
	return nil
}

// SetMetadata sets the document information used for every output file.
func (s *Splitter) SetMetadata(m Metadata) {
	s.meta = m
}

// SetEncryption sets the password protection used for every output file.
func (s *Splitter) SetEncryption(e Encryption) {
	s.enc = e
}

// Results returns the paths of the files written by the last call to
// Save, in the order of the pages.
func (s *Splitter) Results() []string {
	return slices.Clone(s.results)
}

// Save writes one file per page into dir, creating the directory if
// needed.
//
// All pages are located before the first file is written, so that missing
// sources or pages do not leave partial output behind.  If writing a file
// fails, this file is removed, while the files written before are kept
// and listed in Results.
func (s *Splitter) Save(dir string) error {
	if !s.saving.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.saving.Store(false)
	defer s.release()

	s.results = nil
	if len(s.pages) == 0 {
		return ErrNoPages
	}
	err := s.opt.Validate()
	if err != nil {
		return err
	}
	j := &job{
		meta:          &s.meta,
		enc:           &s.enc,
		attachments:   &s.attachments,
		humanReadable: s.opt.HumanReadable,
		log:           s.log,
	}
	err = j.check()
	if err != nil {
		return err
	}

	sources, err := resolve(s.b, s.pages)
	if err != nil {
		return err
	}

	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return &WriteError{Path: dir, Err: err}
	}

	namers := make(map[string]*naming.Namer)
	for i, p := range s.pages {
		base := s.opt.BaseName
		if base == "" {
			base = naming.Stem(p.Source.Path)
		}
		total, err := sources[i].h.NumPages()
		if err != nil {
			return &PageResolutionError{Index: i, Page: p, Err: err}
		}
		namer, ok := namers[base]
		if !ok {
			namer = naming.New(dir, base, total)
			namer.MaxTries = s.opt.MaxNameTries
			namers[base] = namer
		}
		// sources sharing a base name may differ in length
		namer.Total = total

		path, err := s.writePage(namer, p.Number, j, sources[i:i+1])
		if err != nil {
			return err
		}
		s.results = append(s.results, path)
		s.log(logger.Debug, "page written", "path", path)
	}
	s.log(logger.Info, "document split", "dir", dir, "files", len(s.results))
	return nil
}

// writePage creates a new file for one page and writes the page into it.
func (s *Splitter) writePage(namer *naming.Namer, index int, j *job, page []source) (string, error) {
	var path string
	var fd *os.File
	for {
		var err error
		path, err = namer.Next(index)
		if err != nil {
			return "", &WriteError{Path: namer.Dir, Err: err}
		}
		fd, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			// created by somebody else since Next checked
			continue
		} else if err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
		break
	}

	buf := bufio.NewWriter(fd)
	err := j.write(buf, page)
	if err == nil {
		err = buf.Flush()
	}
	err2 := fd.Close()
	if err == nil {
		err = err2
	}
	if err != nil {
		os.Remove(path)
		return "", wrapWriteError(path, err)
	}
	return path, nil
}

func (s *Splitter) release() {
	err := s.b.Release()
	if err != nil {
		s.log(logger.Warn, "cannot close source", "error", err)
	}
}

// Reset removes all pages, attachments and results and restores the
// default metadata and encryption settings.
func (s *Splitter) Reset() {
	s.release()
	s.pages = nil
	s.attachments = attachmentSet{}
	s.results = nil
	s.meta = Metadata{}
	s.enc = Encryption{}
}
