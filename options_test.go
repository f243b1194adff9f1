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

package pdfcompose

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/pdf"
)

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, NewDefaultOptions().Validate())

	opt := NewDefaultOptions()
	opt.DPI = 0
	assert.Error(t, opt.Validate())

	opt = NewDefaultOptions()
	opt.MaxNameTries = 0
	assert.Error(t, opt.Validate())

	opt = NewDefaultOptions()
	opt.DPI = 300
	opt.BaseName = "scan"
	assert.NoError(t, opt.Validate())
}

func TestMetadataValidate(t *testing.T) {
	good := []Metadata{
		{},
		{Title: "x", Version: pdf.V1_4, Language: "de-CH"},
		{Layout: LayoutTwoPageRight, Mode: ModeUseAttachments},
	}
	for _, m := range good {
		assert.NoError(t, m.Validate(), "%+v", m)
	}

	bad := []Metadata{
		{Version: pdf.Version(42)},
		{Layout: PageLayout(7)},
		{Mode: PageMode(-1)},
		{Language: "?"},
	}
	for _, m := range bad {
		assert.Error(t, m.Validate(), "%+v", m)
	}
}

func TestApplyCatalog(t *testing.T) {
	m := &Metadata{
		Layout:   LayoutTwoPageLeft,
		Mode:     ModeUseAttachments,
		Language: "fr",
	}

	cat := &pdf.Catalog{}
	warnings := m.applyCatalog(cat, pdf.V1_4)
	assert.Len(t, warnings, 2)
	assert.Equal(t, pdf.Name(""), cat.PageLayout)
	assert.Equal(t, pdf.Name(""), cat.PageMode)
	assert.Equal(t, "fr", cat.Lang.String())

	cat = &pdf.Catalog{}
	warnings = m.applyCatalog(cat, pdf.V1_7)
	assert.Empty(t, warnings)
	assert.Equal(t, pdf.Name("TwoPageLeft"), cat.PageLayout)
	assert.Equal(t, pdf.Name("UseAttachments"), cat.PageMode)
}

func TestMetadataInfo(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)
	m := &Metadata{Title: "T", Producer: "my tool"}
	info := m.info(now)
	assert.Equal(t, pdf.TextString("T"), info.Title)
	assert.Equal(t, pdf.TextString("my tool"), info.Producer)
	assert.True(t, time.Time(info.CreationDate).Equal(now))

	info = (&Metadata{}).info(now)
	assert.Equal(t, pdf.TextString(producer), info.Producer)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "default", LayoutDefault.String())
	assert.Equal(t, "OneColumn", LayoutOneColumn.String())
	assert.Equal(t, "PageLayout(9)", PageLayout(9).String())
	assert.Equal(t, "UseThumbs", ModeUseThumbs.String())
	assert.Equal(t, "AES-128", AES128.String())
}

func TestNewAttachment(t *testing.T) {
	a := NewAttachment("notes.txt", []byte("plain text\n"))
	assert.Equal(t, "text/plain", a.MimeType)
	assert.Equal(t, 11, a.Len())

	b := NewAttachment("pic.png", testPNG(t, 2, 2))
	assert.Equal(t, "image/png", b.MimeType)

	assert.NotEqual(t, a.key(), b.key())
	c := NewAttachment("notes.txt", []byte("plain text\n"))
	assert.Equal(t, a.key(), c.key())
	assert.Equal(t, a.Checksum(), c.Checksum())
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	a, err := LoadAttachment(path)
	require.NoError(t, err)
	assert.Equal(t, "data.json", a.Name)
	assert.Equal(t, "application/json", a.MimeType)
	assert.False(t, a.ModTime.IsZero())

	_, err = LoadAttachment(filepath.Join(dir, "missing"))
	var attErr *AttachmentError
	require.True(t, errors.As(err, &attErr))
	assert.ErrorIs(t, err, os.ErrNotExist)

	c := NewComposer(nil)
	assert.Error(t, c.AttachFile(filepath.Join(dir, "missing")))
	assert.NoError(t, c.AttachFile(path))
	assert.NoError(t, c.AttachFile(path))
	assert.Len(t, c.attachments.list, 1)
}
