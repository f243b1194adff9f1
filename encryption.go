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

	"github.com/xdg-go/stringprep"
	"seehuhn.de/go/pdf"
)

// PDF 2.0 sections: 7.6.4

// Method selects the encryption algorithm of the standard security handler.
//
// The algorithm is tied to the PDF version of the output: when encryption
// is used, the version is moved into the range given for the method.
type Method int

// These are the supported encryption methods.
const (
	// AES256 uses AES with 256-bit keys (security handler revision 6).
	// Output files use PDF 2.0.
	AES256 Method = iota

	// AES128 uses AES with 128-bit keys.  Output files use PDF 1.6 or 1.7.
	AES128

	// RC4With128Bits uses RC4 with 128-bit keys.  Output files use PDF 1.4
	// or 1.5.
	RC4With128Bits

	// RC4With40Bits uses RC4 with 40-bit keys.  Output files use PDF 1.1
	// to 1.3.
	RC4With40Bits
)

func (m Method) String() string {
	switch m {
	case AES256:
		return "AES-256"
	case AES128:
		return "AES-128"
	case RC4With128Bits:
		return "RC4-128"
	case RC4With40Bits:
		return "RC4-40"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// versions returns the range of PDF versions which select this method.
func (m Method) versions() (lo, hi pdf.Version) {
	switch m {
	case RC4With40Bits:
		return pdf.V1_1, pdf.V1_3
	case RC4With128Bits:
		return pdf.V1_4, pdf.V1_5
	case AES128:
		return pdf.V1_6, pdf.V1_7
	default:
		return pdf.V2_0, pdf.V2_0
	}
}

// Permissions lists the operations a user who opened the document with the
// user password may perform.
type Permissions struct {
	// Print allows printing, possibly at degraded quality.
	Print bool

	// PrintHighRes allows printing at full quality.  This implies Print.
	PrintHighRes bool

	// Copy allows copying text and graphics.
	Copy bool

	// Modify allows changing the document contents.
	Modify bool

	// Assemble allows inserting, rotating and deleting pages.
	Assemble bool

	// Annotate allows adding annotations and filling in forms.
	Annotate bool

	// FillForms allows filling in existing form fields.
	FillForms bool

	// Extract allows text extraction for accessibility.  Readers always
	// grant this permission, so Extract=false is not enforced.
	Extract bool
}

// AllowAll returns the permissions which allow every operation.
func AllowAll() Permissions {
	return Permissions{
		Print:        true,
		PrintHighRes: true,
		Copy:         true,
		Modify:       true,
		Assemble:     true,
		Annotate:     true,
		FillForms:    true,
		Extract:      true,
	}
}

func (p Permissions) perm() pdf.Perm {
	var perm pdf.Perm
	if p.Print || p.PrintHighRes {
		perm |= pdf.PermPrintDegraded
	}
	if p.PrintHighRes {
		perm |= pdf.PermPrint
	}
	if p.Copy {
		perm |= pdf.PermCopy
	}
	if p.Modify {
		perm |= pdf.PermModify
	}
	if p.Assemble {
		perm |= pdf.PermAssemble
	}
	if p.Annotate {
		perm |= pdf.PermAnnotate
	}
	if p.FillForms {
		perm |= pdf.PermForms
	}
	return perm
}

// Encryption describes the password protection of an output file.
type Encryption struct {
	Enabled bool

	// OwnerPassword grants full access to the document.  If this is empty,
	// the output is not encrypted.
	OwnerPassword string `validate:"max=127"`

	// UserPassword is needed to open the document, if OpenWithPassword is
	// set.
	UserPassword string `validate:"max=127"`

	// OpenWithPassword requires a password to open the document.  If no
	// user password is given, the owner password is used instead.
	OpenWithPassword bool

	Method Method `validate:"min=0,max=3"`

	// Permissions restrict what users who opened the document without the
	// owner password may do.
	Permissions Permissions
}

// active reports whether the settings lead to an encrypted output file.
func (e *Encryption) active() bool {
	return e.Enabled && e.OwnerPassword != ""
}

// EffectiveUserPassword returns the password needed to open the document.
// An empty string means that the document opens without a password.
func (e *Encryption) EffectiveUserPassword() string {
	if !e.OpenWithPassword {
		return ""
	}
	if e.UserPassword != "" {
		return e.UserPassword
	}
	return e.OwnerPassword
}

// check verifies that the passwords can be represented by the chosen
// method.  Disabled settings are not checked.
func (e *Encryption) check() error {
	if !e.active() {
		return nil
	}
	err := validate.Struct(e)
	if err != nil {
		return &EncryptionConfigError{Reason: "invalid settings", Err: err}
	}

	for _, pw := range []struct {
		role, value string
	}{
		{"owner password", e.OwnerPassword},
		{"user password", e.EffectiveUserPassword()},
	} {
		if e.Method == AES256 {
			_, err := stringprep.SASLprep.Prepare(pw.value)
			if err != nil {
				return &EncryptionConfigError{Reason: pw.role, Err: err}
			}
		} else if !isPDFDocPassword(pw.value) {
			return &EncryptionConfigError{
				Reason: pw.role + " contains characters not supported by " + e.Method.String(),
			}
		}
	}
	return nil
}

// isPDFDocPassword reports whether s only uses characters which are
// encoded identically in Latin-1 and PDFDocEncoding.
func isPDFDocPassword(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x20 && r <= 0x7e:
		case r >= 0xa1 && r <= 0xff && r != 0xad:
		default:
			return false
		}
	}
	return true
}

// clampVersion moves v into the version range of the encryption method.
func (e *Encryption) clampVersion(v pdf.Version) pdf.Version {
	lo, hi := e.Method.versions()
	return min(max(v, lo), hi)
}

// writerOptions returns the options for the PDF writer.
func (e *Encryption) writerOptions(humanReadable bool) *pdf.WriterOptions {
	opt := &pdf.WriterOptions{
		HumanReadable: humanReadable,
	}
	if e.active() {
		opt.OwnerPassword = e.OwnerPassword
		opt.UserPassword = e.EffectiveUserPassword()
		opt.UserPermissions = e.Permissions.perm()
	}
	return opt
}
