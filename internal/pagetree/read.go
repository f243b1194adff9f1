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

// Package pagetree reads and writes the page trees of PDF documents.
//
// Pages are read into a flat list, with the inheritable page attributes of
// the ancestors copied into each page dictionary.  This allows pages to be
// moved into a different page tree without losing their resources or page
// boxes.
package pagetree

import (
	"errors"
	"maps"

	"seehuhn.de/go/pdf"
)

// PDF 2.0 sections: 7.7.3

// Page is a leaf of a page tree.
type Page struct {
	// Ref is the reference of the page dictionary in the source file.
	// This is 0 if the page dictionary is stored as a direct object.
	Ref pdf.Reference

	// Dict is a shallow copy of the page dictionary, with all inherited
	// attributes filled in.
	Dict pdf.Dict
}

// inheritable lists the page attributes which can be inherited from the
// page tree nodes.
var inheritable = []pdf.Name{"Resources", "MediaBox", "CropBox", "Rotate"}

// maxDepth limits the nesting of page tree nodes.
const maxDepth = 64

// Collect returns all pages of the document, in page order.
func Collect(r pdf.Getter) ([]Page, error) {
	catalog := r.GetMeta().Catalog
	if catalog == nil || catalog.Pages == 0 {
		return nil, errInvalidPageTree
	}

	c := &collector{
		r:    r,
		seen: make(map[pdf.Reference]bool),
	}
	err := c.walk(catalog.Pages, pdf.Dict{}, 0)
	if err != nil {
		return nil, err
	}
	return c.pages, nil
}

type collector struct {
	r     pdf.Getter
	seen  map[pdf.Reference]bool
	pages []Page
}

func (c *collector) walk(obj pdf.Object, inherited pdf.Dict, depth int) error {
	if depth > maxDepth {
		return errInvalidPageTree
	}

	ref, isRef := obj.(pdf.Reference)
	if isRef {
		if c.seen[ref] {
			return errInvalidPageTree
		}
		c.seen[ref] = true
	}

	node, err := pdf.GetDict(c.r, obj)
	if err != nil {
		return err
	} else if node == nil {
		return errInvalidPageTree
	}

	tp, err := pdf.Optional(pdf.GetName(c.r, node["Type"]))
	if err != nil {
		return err
	}
	if tp == "Page" || tp != "Pages" && node["Kids"] == nil {
		dict := maps.Clone(node)
		for _, key := range inheritable {
			if _, present := dict[key]; present {
				continue
			}
			if val, ok := inherited[key]; ok {
				dict[key] = val
			}
		}
		c.pages = append(c.pages, Page{Ref: ref, Dict: dict})
		return nil
	}

	next := inherited
	cloned := false
	for _, key := range inheritable {
		val, ok := node[key]
		if !ok {
			continue
		}
		if !cloned {
			next = maps.Clone(inherited)
			cloned = true
		}
		next[key] = val
	}

	kids, err := pdf.GetArray(c.r, node["Kids"])
	if err != nil {
		return err
	}
	for _, kid := range kids {
		err := c.walk(kid, next, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// Rotation returns the value of the /Rotate entry of a page dictionary,
// in degrees.  Missing or malformed entries are treated as 0.
func Rotation(r pdf.Getter, dict pdf.Dict) (int, error) {
	rot, err := pdf.Optional(pdf.GetInteger(r, dict["Rotate"]))
	if err != nil {
		return 0, err
	}
	return int(rot), nil
}

var errInvalidPageTree = errors.New("invalid page tree")
