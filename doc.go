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

// Package pdfcompose assembles new PDF documents from the pages of existing
// PDF files and raster images.
//
// Pages are described by [Page] values, which name a source document, a
// page number and an additional rotation.  A [Composer] writes all pages it
// has been given into one output file:
//
//	c := pdfcompose.NewComposer(nil)
//	c.Add(pdfcompose.VectorPage("a.pdf", "", 2, 0))
//	c.Add(pdfcompose.VectorPage("b.pdf", "secret", 1, 90))
//	c.SetMetadata(pdfcompose.Metadata{Title: "Merged"})
//	err := c.Save("out.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A [Splitter] writes every page into a file of its own:
//
//	s := pdfcompose.NewSplitter(nil)
//	pages, err := pdfcompose.AllPages(binder.NewSource("in.pdf", ""))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s.Add(pages...)
//	err = s.Save("out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.Results())
//
// Source documents are opened lazily while an output file is written, and
// are closed again before Save returns.  Every source is opened only once,
// no matter how many of its pages are used.
//
// Both types can set the document information, viewer options and
// encryption of the output, and the Composer can embed file attachments.
// Bookmarks and attachments of the source documents are carried over
// unless this is disabled in the [Options].
package pdfcompose
