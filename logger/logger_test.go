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

package logger

import (
	"bytes"
	"log"
	"testing"
)

func TestFormat(t *testing.T) {
	type testCase struct {
		level   Level
		msg     string
		keyvals []any
		want    string
	}
	cases := []testCase{
		{Debug, "hello", nil, "debug: hello"},
		{Warn, "mismatch", []any{"path", "/a.pdf"}, "warn: mismatch path=/a.pdf"},
		{Error, "odd", []any{"a", 1, "b"}, "error: odd a=1 b=<missing>"},
		{Level(9), "x", nil, "logger.Level(9): x"},
	}
	for _, tc := range cases {
		got := Format(tc.level, tc.msg, tc.keyvals...)
		if got != tc.want {
			t.Errorf("Format() = %q, want %q", got, tc.want)
		}
	}
}

func TestStdFiltersLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	f := Std(log.New(buf, "", 0), Warn)

	f(Debug, "hidden")
	f(Info, "hidden")
	f(Warn, "shown", "k", "v")

	if got, want := buf.String(), "warn: shown k=v\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOrDiscard(t *testing.T) {
	f := OrDiscard(nil)
	f(Error, "must not panic")

	called := false
	g := OrDiscard(func(Level, string, ...any) { called = true })
	g(Debug, "x")
	if !called {
		t.Error("OrDiscard replaced a non-nil function")
	}
}
