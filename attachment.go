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
	"crypto/md5"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/blake2b"

	"seehuhn.de/go/pdfcompose/internal/embedded"
)

// Attachment is a file which is embedded into the output document.
type Attachment struct {
	// Name is the file name shown to the user.
	Name string

	Data []byte

	// MimeType is the MIME media type of the file, without parameters.
	MimeType string

	// ModTime is the modification time of the file, or the zero time.
	ModTime time.Time

	Description string
}

// NewAttachment returns an attachment with the given name and contents.
// The MIME type is detected from the contents.
func NewAttachment(name string, data []byte) *Attachment {
	return &Attachment{
		Name:     name,
		Data:     data,
		MimeType: detectMimeType(data),
	}
}

// LoadAttachment reads the named file into an attachment.
// If the file cannot be read, an *AttachmentError is returned.
func LoadAttachment(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AttachmentError{Path: path, Err: err}
	}
	a := NewAttachment(filepath.Base(path), data)
	if fi, err := os.Stat(path); err == nil {
		a.ModTime = fi.ModTime()
	}
	return a, nil
}

func detectMimeType(data []byte) string {
	m := mimetype.Detect(data).String()
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}

// Len returns the size of the attachment in bytes.
func (a *Attachment) Len() int {
	return len(a.Data)
}

// Checksum returns the MD5 digest of the contents, as stored in the
// /CheckSum entry of the embedded file stream.
func (a *Attachment) Checksum() [md5.Size]byte {
	return md5.Sum(a.Data)
}

// attachmentKey identifies attachments with the same name and contents.
type attachmentKey struct {
	name string
	sum  [blake2b.Size256]byte
}

func (a *Attachment) key() attachmentKey {
	return attachmentKey{name: a.Name, sum: blake2b.Sum256(a.Data)}
}

func (a *Attachment) file() *embedded.File {
	return &embedded.File{
		Name:        a.Name,
		Data:        a.Data,
		MimeType:    a.MimeType,
		Description: a.Description,
		ModTime:     a.ModTime,
	}
}

func attachmentFromFile(f *embedded.File) *Attachment {
	return &Attachment{
		Name:        f.Name,
		Data:        f.Data,
		MimeType:    f.MimeType,
		Description: f.Description,
		ModTime:     f.ModTime,
	}
}

// attachmentSet is an ordered set of attachments, without duplicates.
type attachmentSet struct {
	list []*Attachment
	seen map[attachmentKey]bool
}

// add adds a to the set and reports whether it was new.
func (s *attachmentSet) add(a *Attachment) bool {
	if s.seen == nil {
		s.seen = make(map[attachmentKey]bool)
	}
	k := a.key()
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.list = append(s.list, a)
	return true
}

func (s *attachmentSet) clone() *attachmentSet {
	res := &attachmentSet{}
	for _, a := range s.list {
		res.add(a)
	}
	return res
}

func (s *attachmentSet) files() []*embedded.File {
	res := make([]*embedded.File, len(s.list))
	for i, a := range s.list {
		res[i] = a.file()
	}
	return res
}
