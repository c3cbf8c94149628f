//
// Copyright (C) 2025 The lib-x authors
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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// mobidump prints the container header, metadata and optionally the
// text of a Mobipocket/KF8 file.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/rodaine/table"

	"github.com/lib-x/mobi"
)

func main() {
	fulltext := flag.Bool("fulltext", false, "dump the whole book text")
	asJSON := flag.Bool("json", false, "print a JSON document summary instead of tables")
	verbose := flag.Bool("v", false, "enable parser debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.mobi>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := logging.WARNING
	if *verbose {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "default")

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		color.Red("open failed: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	doc := mobi.Open(f)

	if *asJSON {
		data, err := mobi.NewDocumentInfo(doc).Serialize()
		if err != nil {
			color.Red("serialize failed: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printHeader(doc)
	printMetadata(doc)

	if !doc.IsValid() {
		color.Red("document is not valid")
		os.Exit(1)
	}
	if doc.HasDRM() {
		color.Yellow("document is DRM protected, text is unavailable")
	} else if *fulltext {
		fmt.Println()
		fmt.Println(doc.Text(-1))
	}
}

func printHeader(doc *mobi.Document) {
	h := doc.PDBHeader()
	color.Cyan("Container")
	tbl := table.New("Field", "Value")
	tbl.AddRow("Name", h.Name)
	tbl.AddRow("Type", h.DatabaseType)
	tbl.AddRow("Creator", h.Creator)
	tbl.AddRow("Version", fmt.Sprintf("%d", h.Version))
	tbl.AddRow("Created", h.CreationTime.Format(time.RFC3339))
	tbl.AddRow("Modified", h.ModificationTime.Format(time.RFC3339))
	tbl.AddRow("Records", fmt.Sprintf("%d", h.RecordCount))
	tbl.AddRow("Images", fmt.Sprintf("%d", doc.ImageCount()))
	tbl.Print()
}

func printMetadata(doc *mobi.Document) {
	meta := doc.Metadata()
	keys := make([]mobi.MetaKey, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	fmt.Println()
	color.Cyan("Metadata")
	tbl := table.New("Key", "Value")
	for _, k := range keys {
		tbl.AddRow(k.String(), meta[k].String())
	}
	tbl.Print()
}
