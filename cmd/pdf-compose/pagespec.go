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

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// pageSpec selects pages from one input file.  The command line syntax is
//
//	file.pdf[:ranges][@rotation]
//
// where ranges is a comma separated list of page numbers and ranges like
// "3-5", "7-" (to the end) or "5-3" (in reverse order).
type pageSpec struct {
	Path   string
	Ranges []pageRange
	Rotate int
}

// pageRange is an inclusive range of 1-based page numbers.  A zero Last
// means the last page of the document.
type pageRange struct {
	First, Last int
}

var errEmptyRange = errors.New("empty page range")

func parsePageSpec(arg string) (*pageSpec, error) {
	spec := &pageSpec{}

	if i := strings.LastIndexByte(arg, '@'); i >= 0 {
		rot, err := strconv.Atoi(arg[i+1:])
		if err == nil {
			spec.Rotate = rot
			arg = arg[:i]
		}
	}

	if i := strings.LastIndexByte(arg, ':'); i >= 0 && isRangeList(arg[i+1:]) {
		for _, part := range strings.Split(arg[i+1:], ",") {
			r, err := parseRange(part)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", arg, err)
			}
			spec.Ranges = append(spec.Ranges, r)
		}
		arg = arg[:i]
	}

	if arg == "" {
		return nil, errors.New("missing file name")
	}
	spec.Path = arg
	return spec, nil
}

func isRangeList(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c == '-' || c == ',') {
			return false
		}
	}
	return true
}

func parseRange(s string) (pageRange, error) {
	if s == "" {
		return pageRange{}, errEmptyRange
	}
	first, last, isRange := strings.Cut(s, "-")
	if !isRange {
		n, err := parsePageNumber(s)
		return pageRange{First: n, Last: n}, err
	}

	r := pageRange{First: 1}
	var err error
	if first != "" {
		r.First, err = parsePageNumber(first)
		if err != nil {
			return pageRange{}, err
		}
	}
	if last != "" {
		r.Last, err = parsePageNumber(last)
		if err != nil {
			return pageRange{}, err
		}
	}
	if first == "" && last == "" {
		return pageRange{}, errEmptyRange
	}
	return r, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	return n, nil
}

// Pages returns the selected page numbers for a document with numPages
// pages.  Without ranges, all pages are selected.
func (spec *pageSpec) Pages(numPages int) ([]int, error) {
	if len(spec.Ranges) == 0 {
		res := make([]int, numPages)
		for i := range res {
			res[i] = i + 1
		}
		return res, nil
	}

	var res []int
	for _, r := range spec.Ranges {
		last := r.Last
		if last == 0 {
			last = numPages
		}
		if r.First > numPages || last > numPages {
			return nil, fmt.Errorf("%s: page range %d-%d exceeds %d pages",
				spec.Path, r.First, last, numPages)
		}
		if r.First <= last {
			for p := r.First; p <= last; p++ {
				res = append(res, p)
			}
		} else {
			for p := r.First; p >= last; p-- {
				res = append(res, p)
			}
		}
	}
	return res, nil
}
