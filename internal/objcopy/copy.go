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

// Package objcopy copies objects and pages from one PDF file into another.
package objcopy

import (
	"seehuhn.de/go/pdf"
)

// A Copier copies objects from one source file into the output file.
// Every indirect object is copied at most once, and references are
// translated to the object numbers of the output file.
//
// References can be redirected to objects which have been written by other
// means, or dropped.  This is used for page dictionaries: pages which are
// imported are redirected to their new location, all other pages of the
// source file are dropped so that annotations and link destinations do not
// drag unrelated pages (and, via /Parent, the whole source page tree) into
// the output.
type Copier struct {
	trans   map[pdf.Reference]pdf.Reference
	dropped map[pdf.Reference]bool
	r       pdf.Getter
	w       *pdf.Writer
}

// New creates a new Copier which reads from r and writes to w.
func New(w *pdf.Writer, r pdf.Getter) *Copier {
	return &Copier{
		trans:   make(map[pdf.Reference]pdf.Reference),
		dropped: make(map[pdf.Reference]bool),
		w:       w,
		r:       r,
	}
}

// Copy copies an object from the source file to the output, recursively.
//
// The returned object has the same type as the input object, except that
// references to dropped objects are replaced by null.
func (c *Copier) Copy(obj pdf.Native) (pdf.Native, error) {
	switch x := obj.(type) {
	case pdf.Dict:
		return c.CopyDict(x)
	case pdf.Array:
		return c.CopyArray(x)
	case *pdf.Stream:
		dict, err := c.CopyDict(x.Dict)
		if err != nil {
			return nil, err
		}
		// The writer fills in /Length.  It differs from the source value
		// when either file is encrypted.
		delete(dict, "Length")
		res := &pdf.Stream{
			Dict: dict,
			R:    x.R,
		}
		return res, nil
	case pdf.Reference:
		if c.dropped[x] {
			return nil, nil
		}
		return c.CopyReference(x)
	default:
		return obj, nil
	}
}

// CopyDict copies a dictionary from the source file to the output.
// Entries which become null are omitted.
func (c *Copier) CopyDict(obj pdf.Dict) (pdf.Dict, error) {
	res := pdf.Dict{}
	for key, val := range obj {
		if val == nil {
			continue
		}
		repl, err := c.Copy(val.AsPDF(c.w.GetOptions()))
		if err != nil {
			return nil, err
		}
		if repl != nil {
			res[key] = repl
		}
	}
	return res, nil
}

// CopyArray copies an array from the source file to the output.
func (c *Copier) CopyArray(obj pdf.Array) (pdf.Array, error) {
	res := make(pdf.Array, 0, len(obj))
	for _, val := range obj {
		var repl pdf.Native
		if val != nil {
			var err error
			repl, err = c.Copy(val.AsPDF(c.w.GetOptions()))
			if err != nil {
				return nil, err
			}
		}
		res = append(res, repl)
	}
	return res, nil
}

// CopyReference copies an indirect object from the source file to the
// output and returns the reference of the copy.
//
// Chains of indirect references are shortened, the returned reference
// always points to a direct object.
func (c *Copier) CopyReference(obj pdf.Reference) (pdf.Reference, error) {
	newRef, ok := c.trans[obj]
	if ok {
		return newRef, nil
	}
	newRef = c.w.Alloc()
	c.trans[obj] = newRef

	val, err := pdf.Resolve(c.r, obj)
	if err != nil {
		return 0, err
	}
	trans, err := c.Copy(val)
	if err != nil {
		return 0, err
	}
	err = c.w.Put(newRef, trans)
	if err != nil {
		return 0, err
	}

	return newRef, nil
}

// Redirect makes all references to origRef in the source file point to
// newRef in the output.  The object at newRef must be written by the caller.
func (c *Copier) Redirect(origRef, newRef pdf.Reference) {
	delete(c.dropped, origRef)
	c.trans[origRef] = newRef
}

// Lookup returns the output reference for origRef, if the object has
// already been copied or redirected.
func (c *Copier) Lookup(origRef pdf.Reference) (pdf.Reference, bool) {
	ref, ok := c.trans[origRef]
	return ref, ok
}

// Drop makes all references to origRef in the source file be replaced by
// null, unless the reference is redirected later.
func (c *Copier) Drop(origRef pdf.Reference) {
	if _, ok := c.trans[origRef]; ok {
		return
	}
	c.dropped[origRef] = true
}

// pageSkip lists the page dictionary entries which are not carried over
// into the output.  /Parent is replaced, /B and /StructParents refer to
// document structures (article threads and the structure tree) which are
// not copied.
var pageSkip = map[pdf.Name]bool{
	"Parent":        true,
	"B":             true,
	"StructParents": true,
	"Rotate":        true,
}

// CopyPage writes a copy of the source page dictionary dict to the output,
// at ref.  The page is attached to the page tree node parent, and
// its /Rotate entry is set to rotate degrees.
//
// The caller must already have called [Copier.Redirect] for the source
// reference of the page (if any), so that annotations which point back to
// the page are translated correctly.
func (c *Copier) CopyPage(ref pdf.Reference, dict pdf.Dict, parent pdf.Reference, rotate int) error {
	res := pdf.Dict{}
	for key, val := range dict {
		if pageSkip[key] || val == nil {
			continue
		}
		repl, err := c.Copy(val.AsPDF(c.w.GetOptions()))
		if err != nil {
			return err
		}
		if repl != nil {
			res[key] = repl
		}
	}
	res["Type"] = pdf.Name("Page")
	res["Parent"] = parent
	if rotate != 0 {
		res["Rotate"] = pdf.Integer(rotate)
	}
	return c.w.Put(ref, res)
}
