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

// Package embedded reads and writes the embedded files (attachments) of
// PDF documents.
package embedded

import (
	"crypto/md5"
	"errors"
	"io"
	"strconv"
	"time"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/file"
	"seehuhn.de/go/pdf/nametree"
)

// PDF 2.0 sections: 7.11.3 7.11.4

// File is an embedded file.
type File struct {
	// Name is the file name shown to the user.
	Name string

	Data []byte

	// MimeType is the MIME media type of the file, or empty.
	MimeType string

	// Description is an optional text describing the file.
	Description string

	// ModTime is the modification time of the file, or the zero time.
	ModTime time.Time
}

// maxSize limits the size of embedded files read from source documents.
const maxSize = 1 << 30

var errTooLarge = errors.New("embedded file too large")

// Read returns the files stored in the /EmbeddedFiles name tree of r, in
// the order of the name tree keys.
// Entries which are not file specifications with an embedded file stream,
// for example references to external files, are skipped.
func Read(r pdf.Getter) ([]*File, error) {
	catalog := r.GetMeta().Catalog
	if catalog == nil || catalog.Names == nil {
		return nil, nil
	}
	names, err := pdf.GetDict(r, catalog.Names)
	if err != nil || names == nil {
		return nil, err
	}
	tree, err := nametree.ExtractInMemory(r, names["EmbeddedFiles"])
	if err != nil {
		return nil, err
	}

	x := pdf.NewExtractor(r)
	var res []*File
	for key, obj := range tree.All() {
		spec, err := pdf.ExtractorGetOptional(x, obj, file.ExtractSpecification)
		if err != nil {
			return nil, err
		} else if spec == nil {
			continue
		}
		f, err := readFile(string(key), spec)
		if err != nil {
			return nil, err
		}
		if f != nil {
			res = append(res, f)
		}
	}
	return res, nil
}

func readFile(key string, spec *file.Specification) (*File, error) {
	stm := spec.EmbeddedFiles["UF"]
	if stm == nil {
		stm = spec.EmbeddedFiles["F"]
	}
	if stm == nil {
		return nil, nil
	}

	f := &File{
		Name:        key,
		MimeType:    stm.MimeType,
		Description: spec.Description,
		ModTime:     stm.ModDate,
	}
	if spec.FileNameUnicode != "" {
		f.Name = spec.FileNameUnicode
	} else if spec.FileName != "" {
		f.Name = spec.FileName
	}

	buf := &limitedBuffer{data: []byte{}, limit: maxSize}
	err := stm.WriteData(buf)
	if err != nil {
		return nil, err
	}
	f.Data = buf.data
	return f, nil
}

// limitedBuffer collects at most limit bytes.
type limitedBuffer struct {
	data  []byte
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if len(b.data)+len(p) > b.limit {
		return 0, errTooLarge
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

// Write embeds the files into w and returns the reference of the
// /EmbeddedFiles name tree.  Attachments may share a file name; the name
// tree keys are made unique by appending a counter.  If files is empty,
// nothing is written and 0 is returned.
//
// Embedded files need PDF 1.3 or newer.
func Write(w *pdf.Writer, files []*File) (pdf.Reference, error) {
	if len(files) == 0 {
		return 0, nil
	}

	rm := pdf.NewResourceManager(w)
	unicode := w.GetMeta().Version >= pdf.V1_7

	data := make(map[pdf.Name]pdf.Object, len(files))
	used := make(map[string]bool)
	for _, f := range files {
		spec := fileSpec(f, unicode)
		obj, err := rm.Embed(spec)
		if err != nil {
			return 0, err
		}
		data[pdf.Name(uniqueKey(used, f.Name))] = obj
	}
	err := rm.Close()
	if err != nil {
		return 0, err
	}
	return nametree.WriteMap(w, data)
}

// fileSpec returns the file specification for f.  The /UF entries are
// only used if unicode is set, since they need PDF 1.7.
func fileSpec(f *File, unicode bool) *file.Specification {
	sum := md5.Sum(f.Data)
	stm := &file.Stream{
		MimeType: f.MimeType,
		Size:     int64(len(f.Data)),
		ModDate:  f.ModTime,
		CheckSum: sum[:],
		WriteData: func(w io.Writer) error {
			_, err := w.Write(f.Data)
			return err
		},
	}
	spec := &file.Specification{
		FileName:      f.Name,
		Description:   f.Description,
		EmbeddedFiles: map[string]*file.Stream{"F": stm},
	}
	if unicode {
		spec.FileNameUnicode = f.Name
		spec.EmbeddedFiles["UF"] = stm
	}
	return spec
}

func uniqueKey(used map[string]bool, name string) string {
	key := name
	for i := 2; used[key]; i++ {
		key = name + " (" + strconv.Itoa(i) + ")"
	}
	used[key] = true
	return key
}
