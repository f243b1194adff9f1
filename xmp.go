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
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/xmp"
)

// PDF 2.0 sections: 14.3.2

// xmpPDF is the XMP namespace for PDF specific properties.
type xmpPDF struct {
	_          xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_          xmp.Prefix    `xmp:"pdf"`
	Keywords   xmp.Text
	PDFVersion xmp.Text
	Producer   xmp.AgentName
}

// xmpPacket returns an XMP packet which mirrors the document information
// dictionary.
func (m *Metadata) xmpPacket(info *pdf.Info, v pdf.Version) (*xmp.Packet, error) {
	dc := &xmp.DublinCore{}
	if info.Title != "" {
		dc.Title.Set(language.MustParse("x-default"), string(info.Title))
		if tag, err := language.Parse(m.Language); m.Language != "" && err == nil {
			dc.Title.Set(tag, string(info.Title))
		}
	}
	if info.Author != "" {
		dc.Creator.Append(xmp.NewProperName(string(info.Author)))
	}
	if info.Subject != "" {
		dc.Description.Set(language.MustParse("x-default"), string(info.Subject))
	}

	basic := &xmp.Basic{}
	basic.CreateDate = xmp.NewDate(time.Time(info.CreationDate))
	basic.ModifyDate = xmp.NewDate(time.Time(info.ModDate))

	pdfInfo := &xmpPDF{}
	if info.Keywords != "" {
		pdfInfo.Keywords = xmp.NewText(string(info.Keywords))
	}
	pdfInfo.PDFVersion = xmp.NewText(v.String())
	pdfInfo.Producer = xmp.NewAgentName(string(info.Producer))

	packet := xmp.NewPacket()
	err := packet.Set(dc, basic, pdfInfo)
	if err != nil {
		return nil, err
	}
	return packet, nil
}

// writeXMP writes an XMP metadata stream and returns its reference.
func writeXMP(w *pdf.Writer, packet *xmp.Packet, pretty bool) (pdf.Reference, error) {
	ref := w.Alloc()
	dict := pdf.Dict{
		"Type":    pdf.Name("Metadata"),
		"Subtype": pdf.Name("XML"),
	}
	// Metadata streams are left uncompressed, so that tools which do not
	// understand PDF can find them.
	stm, err := w.OpenStream(ref, dict)
	if err != nil {
		return 0, err
	}
	err = packet.Write(stm, &xmp.PacketOptions{Pretty: pretty})
	if err != nil {
		return 0, err
	}
	err = stm.Close()
	if err != nil {
		return 0, err
	}
	return ref, nil
}
