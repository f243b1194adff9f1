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

// Pdf-compose combines pages from PDF files and images into a new PDF file.
//
// Usage:
//
//	pdf-compose [options] input...
//
// Every input is a file name, optionally followed by a page selection and
// a rotation, for example "report.pdf:1-3,7@90" or "scan.jpg@-90".
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pdfcompose"
	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/logger"
)

func main() {
	out := flag.String("o", "out.pdf", "output file name")
	force := flag.Bool("f", false, "overwrite output file if it exists")
	verbose := flag.Bool("v", false, "print progress messages")
	srcPasswd := flag.String("p", "", "password for encrypted input files")

	title := flag.String("title", "", "document title")
	author := flag.String("author", "", "document author")
	subject := flag.String("subject", "", "document subject")
	keywords := flag.String("keywords", "", "document keywords")
	lang := flag.String("lang", "", "document language, e.g. \"en-GB\"")
	version := flag.String("version", "", "PDF version of the output, e.g. \"1.7\"")
	layout := flag.String("layout", "", "page layout (SinglePage, OneColumn, TwoColumnLeft, ...)")
	mode := flag.String("mode", "", "page mode (UseNone, UseOutlines, UseThumbs, ...)")

	ownerPasswd := flag.String("owner-password", "", "encrypt the output using this owner password")
	userPasswd := flag.String("user-password", "", "password required to open the output")
	askPasswd := flag.Bool("ask-password", false, "read the owner password from the terminal")
	method := flag.String("method", "aes256", "encryption method (aes256, aes128, rc4-128, rc4-40)")
	perms := flag.String("allow", "all", "comma separated list of permissions (print, print-hq, copy, modify, assemble, annotate, forms)")

	dpi := flag.Float64("dpi", 72, "resolution for images without resolution information")
	strict := flag.Bool("strict", false, "fail if an input file is used with different passwords")
	noOutlines := flag.Bool("no-outlines", false, "do not copy bookmarks")
	noAttachments := flag.Bool("no-attachments", false, "do not copy embedded files")
	var attach []string
	flag.Func("attach", "embed the given file (can be repeated)", func(s string) error {
		attach = append(attach, s)
		return nil
	})
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: no input files given")
		flag.Usage()
		os.Exit(1)
	}
	if !*force {
		if _, err := os.Stat(*out); !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "error: output file %q already exists\n", *out)
			os.Exit(1)
		}
	}

	minLevel := logger.Warn
	if *verbose {
		minLevel = logger.Info
	}
	opt := pdfcompose.NewDefaultOptions()
	opt.Log = logger.Std(log.New(os.Stderr, "", 0), minLevel)
	opt.StrictCredentials = *strict
	opt.KeepOutlines = !*noOutlines
	opt.KeepAttachments = !*noAttachments
	opt.DPI = *dpi

	meta := pdfcompose.Metadata{
		Title:    *title,
		Author:   *author,
		Subject:  *subject,
		Keywords: *keywords,
		Creator:  "pdf-compose",
		Language: *lang,
	}
	var err error
	meta.Version, err = parseVersion(*version)
	if err == nil {
		meta.Layout, err = parseLayout(*layout)
	}
	if err == nil {
		meta.Mode, err = parseMode(*mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *askPasswd {
		*ownerPasswd, err = readPassword("owner password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}
	var enc pdfcompose.Encryption
	if *ownerPasswd != "" {
		enc = pdfcompose.Encryption{
			Enabled:          true,
			OwnerPassword:    *ownerPasswd,
			UserPassword:     *userPasswd,
			OpenWithPassword: *userPasswd != "",
		}
		enc.Method, err = parseMethod(*method)
		if err == nil {
			enc.Permissions, err = parsePermissions(*perms)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	c := pdfcompose.NewComposer(opt)
	c.SetMetadata(meta)
	c.SetEncryption(enc)
	for _, fname := range attach {
		err := c.AttachFile(fname)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	for _, arg := range flag.Args() {
		err := addPages(c, arg, *srcPasswd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	err = c.Save(*out)
	if err != nil {
		var authErr *pdf.AuthenticationError
		if errors.As(err, &authErr) {
			fmt.Fprintln(os.Stderr, "error: wrong password for input file (use -p)")
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addPages adds the pages selected by one command line argument.
func addPages(c *pdfcompose.Composer, arg, password string) error {
	spec, err := parsePageSpec(arg)
	if err != nil {
		return err
	}

	src := binder.NewSource(spec.Path, password)
	all, err := pdfcompose.AllPages(src)
	if err != nil {
		return err
	}
	numbers, err := spec.Pages(len(all))
	if err != nil {
		return err
	}
	for _, n := range numbers {
		c.Add(pdfcompose.Page{Source: src, Number: n, Rotate: spec.Rotate})
	}
	return nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	passwd, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(passwd), nil
}

func parseVersion(s string) (pdf.Version, error) {
	if s == "" {
		return 0, nil
	}
	for v := pdf.V1_0; v <= pdf.V2_0; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown PDF version %q", s)
}

func parseLayout(s string) (pdfcompose.PageLayout, error) {
	if s == "" {
		return pdfcompose.LayoutDefault, nil
	}
	for l := pdfcompose.LayoutSinglePage; l <= pdfcompose.LayoutTwoPageRight; l++ {
		if strings.EqualFold(l.String(), s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown page layout %q", s)
}

func parseMode(s string) (pdfcompose.PageMode, error) {
	if s == "" {
		return pdfcompose.ModeDefault, nil
	}
	for m := pdfcompose.ModeUseNone; m <= pdfcompose.ModeUseAttachments; m++ {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown page mode %q", s)
}

func parseMethod(s string) (pdfcompose.Method, error) {
	switch strings.ToLower(s) {
	case "aes256", "aes-256":
		return pdfcompose.AES256, nil
	case "aes128", "aes-128":
		return pdfcompose.AES128, nil
	case "rc4-128", "rc4":
		return pdfcompose.RC4With128Bits, nil
	case "rc4-40":
		return pdfcompose.RC4With40Bits, nil
	default:
		return 0, fmt.Errorf("unknown encryption method %q", s)
	}
}

func parsePermissions(s string) (pdfcompose.Permissions, error) {
	if s == "all" {
		return pdfcompose.AllowAll(), nil
	}
	p := pdfcompose.Permissions{Extract: true}
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "", "none":
		case "print":
			p.Print = true
		case "print-hq":
			p.PrintHighRes = true
		case "copy":
			p.Copy = true
		case "modify":
			p.Modify = true
		case "assemble":
			p.Assemble = true
		case "annotate":
			p.Annotate = true
		case "forms":
			p.FillForms = true
		default:
			return p, fmt.Errorf("unknown permission %q", name)
		}
	}
	return p, nil
}
