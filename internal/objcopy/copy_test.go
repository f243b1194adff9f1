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

package objcopy

import (
	"bytes"
	"io"
	"testing"

	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
	"seehuhn.de/go/pdfcompose/internal/testpdf"
)

// writeLinked writes a two-page document where page 1 carries a link
// annotation which points to page 2.
func writeLinked(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	rootRef := w.Alloc()
	p1 := w.Alloc()
	p2 := w.Alloc()
	annot := w.Alloc()

	err = w.Put(annot, pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Link"),
		"Rect":    pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(10), pdf.Integer(10)},
		"P":       p1,
		"Dest":    pdf.Array{p2, pdf.Name("Fit")},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, ref := range []pdf.Reference{p1, p2} {
		page := pdf.Dict{
			"Type":          pdf.Name("Page"),
			"Parent":        rootRef,
			"MediaBox":      pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(100), pdf.Integer(100)},
			"StructParents": pdf.Integer(i),
			"TestID":        pdf.String([]string{"L.1", "L.2"}[i]),
		}
		if i == 0 {
			page["Annots"] = pdf.Array{annot}
			page["Rotate"] = pdf.Integer(90)
		}
		err = w.Put(ref, page)
		if err != nil {
			t.Fatal(err)
		}
	}
	err = w.Put(rootRef, pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  pdf.Array{p1, p2},
		"Count": pdf.Integer(2),
	})
	if err != nil {
		t.Fatal(err)
	}
	w.GetMeta().Catalog = &pdf.Catalog{Pages: rootRef}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCopyPageDropsOtherPages(t *testing.T) {
	src, err := testpdf.Open(writeLinked(t), "")
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pagetree.Collect(src)
	if err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	newRef := w.Alloc()
	layout, err := pagetree.NewLayout(w, []pdf.Reference{newRef})
	if err != nil {
		t.Fatal(err)
	}

	c := New(w, src)
	c.Redirect(pages[0].Ref, newRef)
	c.Drop(pages[1].Ref)
	err = c.CopyPage(newRef, pages[0].Dict, layout.Parent(newRef), 270)
	if err != nil {
		t.Fatal(err)
	}
	err = layout.Close()
	if err != nil {
		t.Fatal(err)
	}
	w.GetMeta().Catalog = &pdf.Catalog{Pages: layout.Root}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}

	out, err := testpdf.Open(buf.Bytes(), "")
	if err != nil {
		t.Fatal(err)
	}
	outPages, err := pagetree.Collect(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(outPages) != 1 {
		t.Fatalf("got %d pages, want 1", len(outPages))
	}
	page := outPages[0]

	rot, err := pagetree.Rotation(out, page.Dict)
	if err != nil {
		t.Fatal(err)
	}
	if rot != 270 {
		t.Errorf("rotation = %d, want 270", rot)
	}
	if _, ok := page.Dict["StructParents"]; ok {
		t.Error("/StructParents was copied")
	}

	annots, err := pdf.GetArray(out, page.Dict["Annots"])
	if err != nil {
		t.Fatal(err)
	}
	if len(annots) != 1 {
		t.Fatalf("got %d annotations, want 1", len(annots))
	}
	annot, err := pdf.GetDict(out, annots[0])
	if err != nil {
		t.Fatal(err)
	}
	if annot["P"] != page.Ref {
		t.Errorf("annotation /P = %v, want %v", annot["P"], page.Ref)
	}
	dest, err := pdf.GetArray(out, annot["Dest"])
	if err != nil {
		t.Fatal(err)
	}
	if len(dest) != 2 || dest[0] != nil {
		t.Errorf("destination to dropped page was not cleared: %v", dest)
	}
}

func TestCopyReferenceOnce(t *testing.T) {
	src, err := testpdf.Open(writeLinked(t), "")
	if err != nil {
		t.Fatal(err)
	}
	pages, err := pagetree.Collect(src)
	if err != nil {
		t.Fatal(err)
	}
	annots, err := pdf.GetArray(src, pages[0].Dict["Annots"])
	if err != nil {
		t.Fatal(err)
	}
	annotRef := annots[0].(pdf.Reference)

	w, err := pdf.NewWriter(&bytes.Buffer{}, pdf.V1_7, nil)
	if err != nil {
		t.Fatal(err)
	}
	c := New(w, src)
	c.Drop(pages[0].Ref)
	c.Drop(pages[1].Ref)

	a, err := c.CopyReference(annotRef)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.CopyReference(annotRef)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("object copied twice: %v != %v", a, b)
	}
	if got, ok := c.Lookup(annotRef); !ok || got != a {
		t.Errorf("Lookup() = %v, %t", got, ok)
	}
}

// TestCopyEncryptedStream copies a page from an AES-encrypted file into an
// AES-encrypted output.  The stream data changes size on re-encryption, so
// /Length must not be carried over from the source.
func TestCopyEncryptedStream(t *testing.T) {
	for _, srcPW := range []string{"", "secret"} {
		data, err := testpdf.Bytes(1, &testpdf.Options{
			Label:         "E",
			OwnerPassword: srcPW,
			UserPassword:  srcPW,
		})
		if err != nil {
			t.Fatal(err)
		}
		src, err := testpdf.Open(data, srcPW)
		if err != nil {
			t.Fatal(err)
		}
		pages, err := pagetree.Collect(src)
		if err != nil {
			t.Fatal(err)
		}

		buf := &bytes.Buffer{}
		w, err := pdf.NewWriter(buf, pdf.V2_0, &pdf.WriterOptions{
			OwnerPassword: "owner",
			UserPassword:  "user",
		})
		if err != nil {
			t.Fatal(err)
		}
		newRef := w.Alloc()
		layout, err := pagetree.NewLayout(w, []pdf.Reference{newRef})
		if err != nil {
			t.Fatal(err)
		}
		c := New(w, src)
		c.Redirect(pages[0].Ref, newRef)
		err = c.CopyPage(newRef, pages[0].Dict, layout.Parent(newRef), 0)
		if err != nil {
			t.Fatal(err)
		}
		err = layout.Close()
		if err != nil {
			t.Fatal(err)
		}
		w.GetMeta().Catalog = &pdf.Catalog{Pages: layout.Root}
		err = w.Close()
		if err != nil {
			t.Fatalf("source password %q: %v", srcPW, err)
		}

		out, err := testpdf.Open(buf.Bytes(), "user")
		if err != nil {
			t.Fatal(err)
		}
		outPages, err := pagetree.Collect(out)
		if err != nil {
			t.Fatal(err)
		}
		stm, err := pdf.GetStream(out, outPages[0].Dict["Contents"])
		if err != nil {
			t.Fatal(err)
		}
		body, err := pdf.GetStreamReader(out, stm)
		if err != nil {
			t.Fatal(err)
		}
		content, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(content, []byte("% E.1")) {
			t.Errorf("source password %q: content = %q", srcPW, content)
		}
	}
}
