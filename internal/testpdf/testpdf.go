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

// Package testpdf generates small PDF files for use in unit tests, and
// inspects the files produced by the composition engine.
//
// Every generated page carries a /TestID entry of the form "<label>.<n>",
// so that tests can check which source page ended up where.
package testpdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
)

// Options control the generated test file.
type Options struct {
	// Label is used to build the /TestID of each page.
	Label string

	// Rotate gives the /Rotate value of individual pages.  Missing entries
	// leave the page rotation unset.
	Rotate []int

	// InheritedRotate, if non-zero, is stored in the root of the page tree
	// instead of in the pages.
	InheritedRotate int

	// Attachments are stored in the /EmbeddedFiles name tree.
	Attachments []Attachment

	// Outline adds one bookmark per page.
	Outline bool

	// OwnerPassword and UserPassword encrypt the file, if set.
	OwnerPassword string
	UserPassword  string
}

// Attachment is an embedded file in a generated document.
type Attachment struct {
	Name string
	Data []byte
}

// Write writes a test document with numPages pages to w.
func Write(w io.Writer, numPages int, opt *Options) error {
	if opt == nil {
		opt = &Options{}
	}
	label := opt.Label
	if label == "" {
		label = "P"
	}

	wOpt := &pdf.WriterOptions{
		OwnerPassword: opt.OwnerPassword,
		UserPassword:  opt.UserPassword,
	}
	out, err := pdf.NewWriter(w, pdf.V1_7, wOpt)
	if err != nil {
		return err
	}

	rootRef := out.Alloc()
	pageRefs := make([]pdf.Reference, numPages)
	for i := range pageRefs {
		pageRefs[i] = out.Alloc()
	}

	for i, ref := range pageRefs {
		contentRef := out.Alloc()
		stm, err := out.OpenStream(contentRef, nil, pdf.FilterFlate{})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stm, "%% %s.%d\n0 0 m 10 10 l S\n", label, i+1)
		if err != nil {
			return err
		}
		err = stm.Close()
		if err != nil {
			return err
		}

		page := pdf.Dict{
			"Type":     pdf.Name("Page"),
			"Parent":   rootRef,
			"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200 + i), pdf.Integer(300)},
			"Contents": contentRef,
			"TestID":   pdf.String(fmt.Sprintf("%s.%d", label, i+1)),
		}
		if i < len(opt.Rotate) {
			page["Rotate"] = pdf.Integer(opt.Rotate[i])
		}
		err = out.Put(ref, page)
		if err != nil {
			return err
		}
	}

	kids := make(pdf.Array, numPages)
	for i, ref := range pageRefs {
		kids[i] = ref
	}
	root := pdf.Dict{
		"Type":      pdf.Name("Pages"),
		"Kids":      kids,
		"Count":     pdf.Integer(numPages),
		"Resources": pdf.Dict{},
	}
	if opt.InheritedRotate != 0 {
		root["Rotate"] = pdf.Integer(opt.InheritedRotate)
	}
	err = out.Put(rootRef, root)
	if err != nil {
		return err
	}

	catalog := &pdf.Catalog{
		Pages: rootRef,
	}

	if len(opt.Attachments) > 0 {
		names, err := writeAttachments(out, opt.Attachments)
		if err != nil {
			return err
		}
		catalog.Names = pdf.Dict{"EmbeddedFiles": names}
	}

	if opt.Outline && numPages > 0 {
		outlineRef, err := writeOutline(out, pageRefs)
		if err != nil {
			return err
		}
		catalog.Outlines = outlineRef
	}

	out.GetMeta().Catalog = catalog
	return out.Close()
}

// Bytes returns a test document with numPages pages.
func Bytes(numPages int, opt *Options) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := Write(buf, numPages, opt)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes a test document with numPages pages to the named file.
func WriteFile(fname string, numPages int, opt *Options) error {
	data, err := Bytes(numPages, opt)
	if err != nil {
		return err
	}
	return os.WriteFile(fname, data, 0o644)
}

func writeAttachments(out *pdf.Writer, files []Attachment) (pdf.Reference, error) {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b Attachment) int {
		return bytes.Compare([]byte(a.Name), []byte(b.Name))
	})

	var names pdf.Array
	for _, f := range sorted {
		stmRef := out.Alloc()
		stm, err := out.OpenStream(stmRef, pdf.Dict{
			"Type":   pdf.Name("EmbeddedFile"),
			"Params": pdf.Dict{"Size": pdf.Integer(len(f.Data))},
		})
		if err != nil {
			return 0, err
		}
		_, err = stm.Write(f.Data)
		if err != nil {
			return 0, err
		}
		err = stm.Close()
		if err != nil {
			return 0, err
		}

		specRef := out.Alloc()
		err = out.Put(specRef, pdf.Dict{
			"Type": pdf.Name("Filespec"),
			"F":    pdf.String(f.Name),
			"UF":   pdf.TextString(f.Name),
			"EF":   pdf.Dict{"F": stmRef},
		})
		if err != nil {
			return 0, err
		}
		names = append(names, pdf.String(f.Name), specRef)
	}

	treeRef := out.Alloc()
	err := out.Put(treeRef, pdf.Dict{"Names": names})
	return treeRef, err
}

func writeOutline(out *pdf.Writer, pages []pdf.Reference) (pdf.Reference, error) {
	rootRef := out.Alloc()
	itemRefs := make([]pdf.Reference, len(pages))
	for i := range itemRefs {
		itemRefs[i] = out.Alloc()
	}
	for i, ref := range itemRefs {
		item := pdf.Dict{
			"Title":  pdf.TextString(fmt.Sprintf("Page %d", i+1)),
			"Parent": rootRef,
			"Dest":   pdf.Array{pages[i], pdf.Name("Fit")},
		}
		if i > 0 {
			item["Prev"] = itemRefs[i-1]
		}
		if i+1 < len(itemRefs) {
			item["Next"] = itemRefs[i+1]
		}
		err := out.Put(ref, item)
		if err != nil {
			return 0, err
		}
	}
	err := out.Put(rootRef, pdf.Dict{
		"Type":  pdf.Name("Outlines"),
		"First": itemRefs[0],
		"Last":  itemRefs[len(itemRefs)-1],
		"Count": pdf.Integer(len(itemRefs)),
	})
	return rootRef, err
}

// Open reads a PDF document from memory, using password if the document is
// encrypted.
func Open(data []byte, password string) (*pdf.Reader, error) {
	opt := &pdf.ReaderOptions{
		ReadPassword: func(_ []byte, try int) string {
			if try == 0 {
				return password
			}
			return ""
		},
	}
	return pdf.NewReader(bytes.NewReader(data), opt)
}

// PageInfo summarises one page of a document under test.
type PageInfo struct {
	ID     string
	Rotate int
}

// Pages lists the pages of a document together with their /TestID and
// effective rotation.
func Pages(r pdf.Getter) ([]PageInfo, error) {
	pages, err := pagetree.Collect(r)
	if err != nil {
		return nil, err
	}
	res := make([]PageInfo, len(pages))
	for i, p := range pages {
		id, err := pdf.Optional(pdf.GetString(r, p.Dict["TestID"]))
		if err != nil {
			return nil, err
		}
		rot, err := pagetree.Rotation(r, p.Dict)
		if err != nil {
			return nil, err
		}
		res[i] = PageInfo{ID: string(id), Rotate: rot}
	}
	return res, nil
}
