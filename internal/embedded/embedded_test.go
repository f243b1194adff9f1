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

package embedded

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose/internal/pagetree"
	"seehuhn.de/go/pdfcompose/internal/testpdf"
)

func TestReadTestFile(t *testing.T) {
	data, err := testpdf.Bytes(1, &testpdf.Options{
		Attachments: []testpdf.Attachment{
			{Name: "b.txt", Data: []byte("bbb")},
			{Name: "a.txt", Data: []byte("aaaa")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := testpdf.Open(data, "")
	if err != nil {
		t.Fatal(err)
	}

	files, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	want := []*File{
		{Name: "a.txt", Data: []byte("aaaa")},
		{Name: "b.txt", Data: []byte("bbb")},
	}
	if d := cmp.Diff(want, files); d != "" {
		t.Errorf("attachments (-want +got):\n%s", d)
	}
}

func TestReadNone(t *testing.T) {
	data, err := testpdf.Bytes(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	r, err := testpdf.Open(data, "")
	if err != nil {
		t.Fatal(err)
	}
	files, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("got %d attachments, want 0", len(files))
	}
}

// writeFiles writes a one-page document with the given attachments.
func writeFiles(t *testing.T, v pdf.Version, files []*File) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := pdf.NewWriter(buf, v, nil)
	if err != nil {
		t.Fatal(err)
	}
	pageRef := w.Alloc()
	layout, err := pagetree.NewLayout(w, []pdf.Reference{pageRef})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Put(pageRef, pdf.Dict{
		"Type":     pdf.Name("Page"),
		"Parent":   layout.Parent(pageRef),
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(10), pdf.Integer(10)},
	})
	if err != nil {
		t.Fatal(err)
	}
	err = layout.Close()
	if err != nil {
		t.Fatal(err)
	}
	tree, err := Write(w, files)
	if err != nil {
		t.Fatal(err)
	}
	w.GetMeta().Catalog = &pdf.Catalog{
		Pages: layout.Root,
		Names: pdf.Dict{"EmbeddedFiles": tree},
	}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriteRead(t *testing.T) {
	mod := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	in := []*File{
		{Name: "notes.txt", Data: []byte("hello"), MimeType: "text/plain",
			Description: "some notes", ModTime: mod},
		{Name: "notes.txt", Data: []byte("other")},
		{Name: "empty.bin", Data: []byte{}},
	}

	r, err := testpdf.Open(writeFiles(t, pdf.V1_7, in), "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}

	// name tree order: "empty.bin", "notes.txt", "notes.txt (2)"
	want := []*File{in[2], in[0], in[1]}
	opt := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	if d := cmp.Diff(want, got, opt); d != "" {
		t.Errorf("attachments (-want +got):\n%s", d)
	}
}

func TestWriteOldVersion(t *testing.T) {
	in := []*File{{Name: "data.csv", Data: []byte("1,2\n")}}

	r, err := testpdf.Open(writeFiles(t, pdf.V1_4, in), "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Read(r)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(in, got); d != "" {
		t.Errorf("attachments (-want +got):\n%s", d)
	}

	names, err := pdf.GetDict(r, r.GetMeta().Catalog.Names)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := pdf.GetDict(r, names["EmbeddedFiles"])
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := pdf.GetArray(r, tree["Names"])
	if err != nil {
		t.Fatal(err)
	}
	if len(leaf) != 2 {
		t.Fatalf("name tree has %d entries, want 2", len(leaf))
	}
	spec, err := pdf.GetDict(r, leaf[1])
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := spec["UF"]; ok {
		t.Error("/UF written for PDF 1.4")
	}
}

func TestUniqueKey(t *testing.T) {
	used := map[string]bool{}
	var got []string
	for _, name := range []string{"a", "a", "b", "a"} {
		got = append(got, uniqueKey(used, name))
	}
	want := []string{"a", "a (2)", "b", "a (3)"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("keys (-want +got):\n%s", d)
	}
}
