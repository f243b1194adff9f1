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
	"fmt"
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/pdf"
)

// PageLayout is the page layout a viewer uses when the document is opened.
type PageLayout int

// These are the supported page layouts.
const (
	LayoutDefault PageLayout = iota
	LayoutSinglePage
	LayoutOneColumn
	LayoutTwoColumnLeft
	LayoutTwoColumnRight
	LayoutTwoPageLeft  // PDF 1.5
	LayoutTwoPageRight // PDF 1.5
)

var layoutNames = []pdf.Name{
	"", "SinglePage", "OneColumn", "TwoColumnLeft", "TwoColumnRight",
	"TwoPageLeft", "TwoPageRight",
}

func (l PageLayout) String() string {
	if l == LayoutDefault {
		return "default"
	}
	if l > 0 && int(l) < len(layoutNames) {
		return string(layoutNames[l])
	}
	return fmt.Sprintf("PageLayout(%d)", int(l))
}

// PageMode selects which panel a viewer shows when the document is opened.
type PageMode int

// These are the supported page modes.
const (
	ModeDefault PageMode = iota
	ModeUseNone
	ModeUseOutlines
	ModeUseThumbs
	ModeFullScreen
	ModeUseOC          // PDF 1.5
	ModeUseAttachments // PDF 1.6
)

var modeNames = []pdf.Name{
	"", "UseNone", "UseOutlines", "UseThumbs", "FullScreen", "UseOC",
	"UseAttachments",
}

func (m PageMode) String() string {
	if m == ModeDefault {
		return "default"
	}
	if m > 0 && int(m) < len(modeNames) {
		return string(modeNames[m])
	}
	return fmt.Sprintf("PageMode(%d)", int(m))
}

// DefaultVersion is the PDF version of output files, unless a different
// version is set in the metadata.
const DefaultVersion = pdf.V1_7

// Metadata describes the document information and viewer options of an
// output file.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string

	// Version is the PDF version of the output.  If this is zero,
	// DefaultVersion is used.  Encryption may raise or lower the version,
	// see [Method].
	Version pdf.Version

	Layout PageLayout `validate:"min=0,max=6"`
	Mode   PageMode   `validate:"min=0,max=6"`

	// Language is the natural language of the document, as a BCP 47 tag.
	Language string `validate:"omitempty,bcp47_language_tag"`
}

// Validate checks the metadata for invalid values.
func (m *Metadata) Validate() error {
	if m.Version != 0 && (m.Version < pdf.V1_0 || m.Version > pdf.V2_0) {
		return fmt.Errorf("unsupported PDF version %d", int(m.Version))
	}
	return validate.Struct(m)
}

func (m *Metadata) version() pdf.Version {
	if m.Version == 0 {
		return DefaultVersion
	}
	return m.Version
}

// producer is used if the metadata does not name a producer.
const producer = "seehuhn.de/go/pdfcompose"

// info returns the document information dictionary.
func (m *Metadata) info(now time.Time) *pdf.Info {
	info := &pdf.Info{
		Title:        pdf.TextString(m.Title),
		Author:       pdf.TextString(m.Author),
		Subject:      pdf.TextString(m.Subject),
		Keywords:     pdf.TextString(m.Keywords),
		Creator:      pdf.TextString(m.Creator),
		Producer:     pdf.TextString(m.Producer),
		CreationDate: pdf.Date(now),
		ModDate:      pdf.Date(now),
	}
	if info.Producer == "" {
		info.Producer = producer
	}
	return info
}

// applyCatalog sets the viewer options and the document language.
// Options which need a later PDF version than v are skipped and reported
// via the returned warnings.
func (m *Metadata) applyCatalog(cat *pdf.Catalog, v pdf.Version) []string {
	var warnings []string

	switch {
	case m.Layout == LayoutDefault:
	case m.Layout >= LayoutTwoPageLeft && v < pdf.V1_5:
		warnings = append(warnings, "page layout "+m.Layout.String()+" needs PDF 1.5")
	default:
		cat.PageLayout = layoutNames[m.Layout]
	}

	switch {
	case m.Mode == ModeDefault:
	case m.Mode == ModeUseOC && v < pdf.V1_5:
		warnings = append(warnings, "page mode UseOC needs PDF 1.5")
	case m.Mode == ModeUseAttachments && v < pdf.V1_6:
		warnings = append(warnings, "page mode UseAttachments needs PDF 1.6")
	default:
		cat.PageMode = modeNames[m.Mode]
	}

	if m.Language != "" {
		tag, err := language.Parse(m.Language)
		if err == nil {
			cat.Lang = tag
		} else {
			warnings = append(warnings, "invalid language tag "+m.Language)
		}
	}
	return warnings
}
