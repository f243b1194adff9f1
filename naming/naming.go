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

// Package naming generates file names for the pages of a split document.
//
// The names are of the form "<base>-<index>.pdf".  If a name is already
// taken, either by an existing file or by an earlier call on the same
// [Namer], a counter is appended, and as a last resort a random suffix is
// used.
package naming

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxTries is the number of counter suffixes tried before a random
// name is used.
const DefaultMaxTries = 999

// A Namer hands out distinct file names in a directory.
// Namers are not safe for concurrent use.
type Namer struct {
	// Dir is the directory the files are created in.
	Dir string

	// Base is the common prefix of all names.
	Base string

	// Total is the number of names which will be requested.  It determines
	// the number of digits of the index.
	Total int

	// MaxTries is the number of counter suffixes tried for a taken name.
	// If this is zero, DefaultMaxTries is used.
	MaxTries int

	taken map[string]bool
}

// New returns a Namer for total files in dir.
func New(dir, base string, total int) *Namer {
	return &Namer{
		Dir:   dir,
		Base:  base,
		Total: total,
	}
}

// Next returns the path for the file with the given 1-based index.
// The returned path does not name an existing file, and is different from
// all paths returned earlier by the same Namer.
func (n *Namer) Next(index int) (string, error) {
	if n.taken == nil {
		n.taken = make(map[string]bool)
	}

	base := CleanBase(n.Base)
	width := max(len(strconv.Itoa(n.Total)), 2)
	stem := fmt.Sprintf("%s-%0*d", base, width, index)

	path := filepath.Join(n.Dir, stem+".pdf")
	ok, err := n.free(path)
	if err != nil {
		return "", err
	} else if ok {
		return n.claim(path), nil
	}

	maxTries := n.MaxTries
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	for k := 1; k <= maxTries; k++ {
		path := filepath.Join(n.Dir, fmt.Sprintf("%s (%d).pdf", stem, k))
		ok, err := n.free(path)
		if err != nil {
			return "", err
		} else if ok {
			return n.claim(path), nil
		}
	}

	for range 16 {
		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		path := filepath.Join(n.Dir, base+"-"+suffix+".pdf")
		ok, err := n.free(path)
		if err != nil {
			return "", err
		} else if ok {
			return n.claim(path), nil
		}
	}
	return "", ErrExhausted
}

// ErrExhausted is returned if no free file name can be found.
var ErrExhausted = errors.New("no free file name found")

func (n *Namer) free(path string) (bool, error) {
	if n.taken[path] {
		return false, nil
	}
	_, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return false, nil
}

func (n *Namer) claim(path string) string {
	n.taken[path] = true
	return path
}

func randomSuffix() (string, error) {
	var buf [6]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// CleanBase normalises a base name to Unicode NFC and replaces characters
// which cannot be used in file names.  An empty result is replaced by
// "page".
func CleanBase(base string) string {
	base = norm.NFC.String(base)
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, base)
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." {
		return "page"
	}
	return base
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
