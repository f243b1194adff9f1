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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePageSpec(t *testing.T) {
	cases := []struct {
		in   string
		want *pageSpec
	}{
		{"a.pdf", &pageSpec{Path: "a.pdf"}},
		{"a.pdf@90", &pageSpec{Path: "a.pdf", Rotate: 90}},
		{"a.pdf:1-3,7@-90", &pageSpec{
			Path:   "a.pdf",
			Ranges: []pageRange{{1, 3}, {7, 7}},
			Rotate: -90,
		}},
		{"dir/b.pdf:5-", &pageSpec{Path: "dir/b.pdf", Ranges: []pageRange{{5, 0}}}},
		{"b.pdf:-2", &pageSpec{Path: "b.pdf", Ranges: []pageRange{{1, 2}}}},
		{"user@host.pdf", &pageSpec{Path: "user@host.pdf"}},
		{"scan:v2.png", &pageSpec{Path: "scan:v2.png"}},
	}
	for _, c := range cases {
		got, err := parsePageSpec(c.in)
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if d := cmp.Diff(c.want, got); d != "" {
			t.Errorf("%q (-want +got):\n%s", c.in, d)
		}
	}
}

func TestParsePageSpecErrors(t *testing.T) {
	for _, in := range []string{"", ":1", "a.pdf:0", "a.pdf:1,,2", "a.pdf:-", "a.pdf:1-2-3"} {
		_, err := parsePageSpec(in)
		if err == nil {
			t.Errorf("%q: missing error", in)
		}
	}
}

func TestPageSpecPages(t *testing.T) {
	spec := &pageSpec{Path: "x.pdf"}
	got, err := spec.Pages(3)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int{1, 2, 3}, got); d != "" {
		t.Errorf("all pages (-want +got):\n%s", d)
	}

	spec.Ranges = []pageRange{{2, 0}, {5, 4}, {1, 1}}
	got, err = spec.Pages(5)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]int{2, 3, 4, 5, 5, 4, 1}, got); d != "" {
		t.Errorf("ranges (-want +got):\n%s", d)
	}

	_, err = spec.Pages(4)
	if err == nil {
		t.Error("out of range page not detected")
	}
}
