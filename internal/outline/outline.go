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

// Package outline reads document outlines (bookmarks) from source files,
// remaps their page destinations, and writes them to the output file.
//
// Only destinations which point to pages of the same document are
// represented.  Items with other actions keep their place in the tree if
// they have children, but lose their action.
package outline

import (
	"errors"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/nametree"
)

// PDF 2.0 sections: 12.3.2 12.3.3

// Item is a node of the outline tree.
type Item struct {
	Title string

	// Open indicates whether the children of the item are shown when the
	// document is opened.
	Open bool

	// Color is the RGB color of the title, or nil for the default.
	Color []float64

	// Flags holds the style flags (1 = italic, 2 = bold).
	Flags int

	// Page is the page dictionary the item points to, or 0 if the item
	// has no page destination.
	Page pdf.Reference

	// View holds the remaining elements of the destination array, e.g.
	// the name /XYZ followed by left, top and zoom.
	View pdf.Array

	Children []*Item
}

const (
	maxItems     = 65536
	maxDestDepth = 8
)

var errLoop = &pdf.MalformedFileError{
	Err: errors.New("outline tree contains a loop"),
}

// Read reads the document outline of r.
// It returns nil if the document has no outline.
func Read(r pdf.Getter) ([]*Item, error) {
	catalog := r.GetMeta().Catalog
	if catalog == nil || catalog.Outlines == 0 {
		return nil, nil
	}

	rd := &reader{
		r:    r,
		seen: map[pdf.Reference]bool{catalog.Outlines: true},
	}
	root, err := pdf.GetDict(r, catalog.Outlines)
	if err != nil {
		return nil, err
	}
	return rd.readList(root["First"])
}

type reader struct {
	r    pdf.Getter
	seen map[pdf.Reference]bool

	namesLoaded bool
	names       map[string]pdf.Object
}

func (rd *reader) readList(obj pdf.Object) ([]*Item, error) {
	var res []*Item
	for obj != nil {
		ref, ok := obj.(pdf.Reference)
		if !ok {
			break
		}
		if rd.seen[ref] {
			return nil, errLoop
		}
		rd.seen[ref] = true
		if len(rd.seen) > maxItems {
			return nil, errors.New("outline too large")
		}

		dict, err := pdf.GetDict(rd.r, ref)
		if err != nil {
			return nil, err
		} else if dict == nil {
			break
		}

		item, err := rd.readItem(dict)
		if err != nil {
			return nil, err
		}
		res = append(res, item)

		obj = dict["Next"]
	}
	return res, nil
}

func (rd *reader) readItem(dict pdf.Dict) (*Item, error) {
	item := &Item{}

	title, err := pdf.Optional(pdf.GetTextString(rd.r, dict["Title"]))
	if err != nil {
		return nil, err
	}
	item.Title = string(title)

	count, _ := pdf.Optional(pdf.GetInteger(rd.r, dict["Count"]))
	item.Open = count > 0

	if c, _ := pdf.Optional(pdf.GetArray(rd.r, dict["C"])); len(c) == 3 {
		var rgb []float64
		for _, x := range c {
			v, err := pdf.GetNumber(rd.r, x)
			if err != nil || v < 0 || v > 1 {
				rgb = nil
				break
			}
			rgb = append(rgb, float64(v))
		}
		item.Color = rgb
	}
	if f, _ := pdf.Optional(pdf.GetInteger(rd.r, dict["F"])); f > 0 {
		item.Flags = int(f) & 3
	}

	// Broken destinations only cost the item its link target.
	if dict["Dest"] != nil {
		item.Page, item.View = rd.destination(dict["Dest"], 0)
	} else if dict["A"] != nil {
		item.Page, item.View = rd.action(dict["A"])
	}

	children, err := rd.readList(dict["First"])
	if err != nil {
		return nil, err
	}
	item.Children = children

	return item, nil
}

// action extracts the destination of a GoTo action.
func (rd *reader) action(obj pdf.Object) (pdf.Reference, pdf.Array) {
	a, err := pdf.GetDict(rd.r, obj)
	if err != nil || a == nil {
		return 0, nil
	}
	if s, _ := pdf.GetName(rd.r, a["S"]); s != "GoTo" {
		return 0, nil
	}
	return rd.destination(a["D"], 0)
}

// destination resolves an explicit or named destination to the target page
// and the view parameters.
func (rd *reader) destination(obj pdf.Object, depth int) (pdf.Reference, pdf.Array) {
	if depth > maxDestDepth {
		return 0, nil
	}

	if ref, ok := obj.(pdf.Reference); ok {
		var err error
		obj, err = pdf.Resolve(rd.r, ref)
		if err != nil {
			return 0, nil
		}
	}

	switch x := obj.(type) {
	case pdf.Array:
		if len(x) == 0 {
			return 0, nil
		}
		page, ok := x[0].(pdf.Reference)
		if !ok {
			// page numbers are only used for remote destinations
			return 0, nil
		}
		var view pdf.Array
		for _, v := range x[1:] {
			v, err := pdf.Resolve(rd.r, v)
			if err != nil {
				return 0, nil
			}
			switch v.(type) {
			case pdf.Name, pdf.Integer, pdf.Real, nil:
				view = append(view, v)
			default:
				return page, nil
			}
		}
		return page, view
	case pdf.Dict:
		return rd.destination(x["D"], depth+1)
	case pdf.Name:
		return rd.destination(rd.named(string(x)), depth+1)
	case pdf.String:
		return rd.destination(rd.named(string(x)), depth+1)
	default:
		return 0, nil
	}
}

// named looks up a named destination, first in the /Dests name tree and
// then in the /Dests dictionary of the catalog.
func (rd *reader) named(name string) pdf.Object {
	if !rd.namesLoaded {
		rd.namesLoaded = true
		rd.names = make(map[string]pdf.Object)

		catalog := rd.r.GetMeta().Catalog
		if dests, _ := pdf.GetDict(rd.r, catalog.Dests); dests != nil {
			for key, val := range dests {
				rd.names[string(key)] = val
			}
		}
		if names, _ := pdf.GetDict(rd.r, catalog.Names); names != nil {
			tree, _ := nametree.ExtractInMemory(rd.r, names["Dests"])
			for key, val := range tree.All() {
				rd.names[string(key)] = val
			}
		}
	}
	return rd.names[name]
}

// Remap translates the page destinations of items using the function
// pages.  Items whose page is not mapped are removed, unless they have
// children which survive.  Such items are kept without a destination.
func Remap(items []*Item, pages func(pdf.Reference) (pdf.Reference, bool)) []*Item {
	var res []*Item
	for _, item := range items {
		children := Remap(item.Children, pages)

		var newPage pdf.Reference
		ok := false
		if item.Page != 0 {
			newPage, ok = pages(item.Page)
		}
		if !ok && len(children) == 0 {
			continue
		}

		clone := *item
		clone.Children = children
		if ok {
			clone.Page = newPage
		} else {
			clone.Page = 0
			clone.View = nil
		}
		res = append(res, &clone)
	}
	return res
}

// Write writes an outline tree containing items to w and returns the
// reference of the outline dictionary.  If items is empty, nothing is
// written and 0 is returned.
//
// The page references in the items must be references in the output file.
func Write(w *pdf.Writer, items []*Item) (pdf.Reference, error) {
	if len(items) == 0 {
		return 0, nil
	}

	rootRef := w.Alloc()
	first, last, visible, err := writeList(w, rootRef, items)
	if err != nil {
		return 0, err
	}
	root := pdf.Dict{
		"Type":  pdf.Name("Outlines"),
		"First": first,
		"Last":  last,
	}
	if visible > 0 {
		root["Count"] = pdf.Integer(visible)
	}
	err = w.Put(rootRef, root)
	if err != nil {
		return 0, err
	}
	return rootRef, nil
}

// writeList writes a list of sibling items.  The returned count is the
// number of items which are visible when the parent is open.
func writeList(w *pdf.Writer, parent pdf.Reference, items []*Item) (first, last pdf.Reference, visible int, err error) {
	refs := make([]pdf.Reference, len(items))
	for i := range refs {
		refs[i] = w.Alloc()
	}

	for i, item := range items {
		dict := pdf.Dict{
			"Title":  pdf.TextString(item.Title),
			"Parent": parent,
		}
		if i > 0 {
			dict["Prev"] = refs[i-1]
		}
		if i+1 < len(refs) {
			dict["Next"] = refs[i+1]
		}

		if item.Page != 0 {
			dest := pdf.Array{item.Page}
			if len(item.View) > 0 {
				dest = append(dest, item.View...)
			} else {
				dest = append(dest, pdf.Name("Fit"))
			}
			dict["Dest"] = dest
		}
		if len(item.Color) == 3 {
			dict["C"] = pdf.Array{
				pdf.Number(item.Color[0]),
				pdf.Number(item.Color[1]),
				pdf.Number(item.Color[2]),
			}
		}
		if item.Flags != 0 {
			dict["F"] = pdf.Integer(item.Flags)
		}

		visible++
		if len(item.Children) > 0 {
			cFirst, cLast, cVisible, err := writeList(w, refs[i], item.Children)
			if err != nil {
				return 0, 0, 0, err
			}
			dict["First"] = cFirst
			dict["Last"] = cLast
			if item.Open {
				dict["Count"] = pdf.Integer(cVisible)
				visible += cVisible
			} else {
				dict["Count"] = pdf.Integer(-cVisible)
			}
		}

		err := w.Put(refs[i], dict)
		if err != nil {
			return 0, 0, 0, err
		}
	}

	return refs[0], refs[len(refs)-1], visible, nil
}
