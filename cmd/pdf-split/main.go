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

// Pdf-split writes every page of the given PDF files and images into a
// separate PDF file.
//
// Usage:
//
//	pdf-split [options] input...
//
// The output files are named after the input files, for example
// "report-01.pdf", "report-02.pdf" and so on, numbered by the page number
// within the input file.  Existing files are never
// overwritten.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/pdfcompose"
	"seehuhn.de/go/pdfcompose/binder"
	"seehuhn.de/go/pdfcompose/logger"
)

func main() {
	outDir := flag.String("o", ".", "output directory")
	base := flag.String("base", "", "base name of the output files (default: input file name)")
	passwd := flag.String("p", "", "password for encrypted input files")
	jobs := flag.Int("j", runtime.NumCPU(), "number of files to split in parallel")
	dpi := flag.Float64("dpi", 72, "resolution for images without resolution information")
	verbose := flag.Bool("v", false, "list the files written")
	var attach []string
	flag.Func("attach", "embed the given file into every output file (can be repeated)", func(s string) error {
		attach = append(attach, s)
		return nil
	})
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "error: no input files given")
		flag.Usage()
		os.Exit(1)
	}

	minLevel := logger.Warn
	if *verbose {
		minLevel = logger.Info
	}
	logFunc := logger.Std(log.New(os.Stderr, "", 0), minLevel)

	g := &errgroup.Group{}
	g.SetLimit(max(*jobs, 1))
	for _, fname := range flag.Args() {
		g.Go(func() error {
			opt := pdfcompose.NewDefaultOptions()
			opt.Log = logFunc
			opt.BaseName = *base
			opt.DPI = *dpi

			files, err := splitFile(opt, fname, *passwd, *outDir, attach)
			if err != nil {
				return fmt.Errorf("%s: %w", fname, err)
			}
			if *verbose {
				for _, f := range files {
					fmt.Println(f)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func splitFile(opt *pdfcompose.Options, fname, passwd, outDir string, attach []string) ([]string, error) {
	pages, err := pdfcompose.AllPages(binder.NewSource(fname, passwd))
	if err != nil {
		return nil, err
	}

	s := pdfcompose.NewSplitter(opt)
	s.Add(pages...)
	for _, a := range attach {
		err := s.AttachFile(a)
		if err != nil {
			return nil, err
		}
	}
	s.SetMetadata(pdfcompose.Metadata{Creator: "pdf-split"})
	err = s.Save(outDir)
	return s.Results(), err
}
