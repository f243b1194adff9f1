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

package pagetree

import (
	"errors"

	"seehuhn.de/go/pdf"
)

// maxDegree is the maximum number of children of a page tree node.
const maxDegree = 16

// Layout is a balanced page tree for a known list of page references.
//
// The layout is fixed when it is created, so that the /Parent entry of every
// page is known before the page dictionaries are written.  After all pages
// have been written, [Layout.Close] writes the intermediate nodes.
type Layout struct {
	// Root is the reference of the root node of the page tree.
	Root pdf.Reference

	w      *pdf.Writer
	parent map[pdf.Reference]pdf.Reference
	nodes  []*node
	closed bool
}

type node struct {
	ref   pdf.Reference
	kids  pdf.Array
	count int
}

// NewLayout allocates the intermediate nodes of a page tree which holds the
// given pages, in order.
func NewLayout(w *pdf.Writer, pages []pdf.Reference) (*Layout, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	l := &Layout{
		w:      w,
		parent: make(map[pdf.Reference]pdf.Reference),
	}

	type item struct {
		ref   pdf.Reference
		count int
	}
	level := make([]item, len(pages))
	for i, ref := range pages {
		level[i] = item{ref: ref, count: 1}
	}

	// The root is always an intermediate node, even for a single page.
	for {
		var next []item
		for start := 0; start < len(level); start += maxDegree {
			end := min(start+maxDegree, len(level))
			n := &node{ref: w.Alloc()}
			for _, it := range level[start:end] {
				n.kids = append(n.kids, it.ref)
				n.count += it.count
				l.parent[it.ref] = n.ref
			}
			l.nodes = append(l.nodes, n)
			next = append(next, item{ref: n.ref, count: n.count})
		}
		level = next
		if len(level) == 1 {
			break
		}
	}
	l.Root = level[0].ref

	return l, nil
}

// Parent returns the reference of the parent node for the given page.
func (l *Layout) Parent(page pdf.Reference) pdf.Reference {
	return l.parent[page]
}

// Close writes the intermediate nodes of the page tree.
func (l *Layout) Close() error {
	if l.closed {
		return errors.New("page tree is closed")
	}
	l.closed = true

	for _, n := range l.nodes {
		dict := pdf.Dict{
			"Type":  pdf.Name("Pages"),
			"Kids":  n.kids,
			"Count": pdf.Integer(n.count),
		}
		if parent, ok := l.parent[n.ref]; ok {
			dict["Parent"] = parent
		}
		err := l.w.Put(n.ref, dict)
		if err != nil {
			return err
		}
	}
	return nil
}

// ErrNoPages is returned when a page tree without pages is requested.
var ErrNoPages = errors.New("no pages in document")
