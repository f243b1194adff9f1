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

package raster

import (
	"bytes"
	"encoding/binary"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngResolution reads the resolution from the pHYs chunk of a PNG file.
// It returns zero values if the file does not specify a physical
// resolution.
func pngResolution(data []byte) (float64, float64) {
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, 0
	}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos:]))
		tp := string(data[pos+4 : pos+8])
		body := pos + 8
		if length < 0 || body+length > len(data) {
			return 0, 0
		}
		switch tp {
		case "pHYs":
			if length < 9 || data[body+8] != 1 { // unit 1 is the metre
				return 0, 0
			}
			x := float64(binary.BigEndian.Uint32(data[body:]))
			y := float64(binary.BigEndian.Uint32(data[body+4:]))
			return x * 0.0254, y * 0.0254
		case "IDAT", "IEND":
			// pHYs must precede the image data
			return 0, 0
		}
		pos = body + length + 4 // skip the CRC
	}
	return 0, 0
}

// jpegResolution reads the pixel density from the JFIF APP0 segment of a
// JPEG file.  It returns zero values if the file does not specify a
// physical resolution.
func jpegResolution(data []byte) (float64, float64) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return 0, 0
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0, 0
		}
		marker := data[pos+1]
		if marker == 0xFF { // fill byte
			pos++
			continue
		}
		if marker == 0xDA || marker == 0xD9 { // start of scan, end of image
			return 0, 0
		}
		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		seg := pos + 4
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return 0, 0
		}
		if marker == 0xE0 && end-seg >= 12 && string(data[seg:seg+5]) == "JFIF\x00" {
			units := data[seg+7]
			x := float64(binary.BigEndian.Uint16(data[seg+8:]))
			y := float64(binary.BigEndian.Uint16(data[seg+10:]))
			switch units {
			case 1: // dots per inch
				return x, y
			case 2: // dots per cm
				return x * 2.54, y * 2.54
			default: // aspect ratio only
				return 0, 0
			}
		}
		pos = end
	}
	return 0, 0
}
