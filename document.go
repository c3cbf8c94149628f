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

package mobi

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
)

// Image is one embedded resource record that decoded as a picture.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

func decodeImage(data []byte) *Image {
	if len(data) == 0 {
		return nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}
}

type docBase struct {
	pdb        *PDB
	pdh        palmDocHeader
	mh         mobiHeader
	meta       map[MetaKey]MetaValue
	dec        decompressor
	extraFlags uint32
	drm        bool
	valid      bool

	// firstImage is the record index of the first decodable image,
	// -1 until located.
	firstImage int
}

// Document is a Mobipocket or KF8 book read from a PDB container.
// Construction never fails; a malformed file yields a document whose
// IsValid reports false and whose accessors return empty values.
type Document struct {
	*docBase
}

// Open reads a book from device. The reader must stay open for the
// lifetime of the document; records are fetched on demand.
func Open(device io.ReadSeeker) *Document {
	d := &Document{&docBase{
		meta:       map[MetaKey]MetaValue{},
		firstImage: -1,
	}}
	d.init(device)
	return d
}

func (d *docBase) init(device io.ReadSeeker) {
	d.pdb = NewPDB(device)
	if !d.pdb.IsValid() {
		return
	}
	dbType := d.pdb.Header().DatabaseType
	if dbType != "BOOK" && dbType != "TEXt" {
		log.Errorf("not a mobipocket database: type '%s'", dbType)
		return
	}
	rec0 := d.pdb.Record(0)
	if len(rec0) < 16 {
		log.Errorf("record 0 too short: %d bytes", len(rec0))
		return
	}

	d.pdh = decodePalmDocHeader(rec0)
	d.drm = d.pdh.encryption != 0
	if d.drm {
		log.Warningf("document is drm protected, text is unavailable")
	}

	d.mh = decodeMobiHeader(rec0)
	if name := d.mh.fullName(rec0, d.mh.textEncoding); name != "" {
		d.meta[MetaTitle] = stringValue(name)
	}
	if d.mh.exthFlags&0x40 != 0 {
		decodeExth(rec0, d.mh.textEncoding, d.meta)
	}
	if flags, ok := decodeExtraFlags(rec0); ok {
		d.extraFlags = uint32(flags)
	}

	var aux [][]byte
	if byte(d.pdh.compression) == 'H' {
		aux = d.huffRecords()
	}
	d.dec = newDecompressor(byte(d.pdh.compression), aux)
	if d.dec == nil {
		return
	}
	d.valid = d.mh.magicOK

	if len(d.meta) < 2 && !d.drm {
		d.scrapeFirstRecord()
	}
}

// huffRecords collects the HUFF record and its CDIC records for the
// Huffdic codec. A single missing record discards the whole set; a
// partial dictionary must never be handed to the codec.
func (d *docBase) huffRecords() [][]byte {
	first := int(d.mh.huffRecIndex)
	count := int(d.mh.huffRecCount)
	log.Debugf("huffdic dictionaries: %d records from %d", count, first)
	aux := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		rec := d.pdb.Record(first + i)
		if rec == nil {
			log.Errorf("huffdic dictionary record %d missing", first+i)
			return nil
		}
		aux = append(aux, rec)
	}
	return aux
}

// scrapeFirstRecord runs the Dublin Core fallback over the first text
// record when the headers yielded almost no metadata.
func (d *docBase) scrapeFirstRecord() {
	if !d.dec.isValid() {
		return
	}
	rec := d.pdb.Record(1)
	if rec == nil {
		return
	}
	chunk := d.dec.decompress(stripTrailing(rec, d.extraFlags))
	if !d.dec.isValid() {
		d.valid = false
		return
	}
	scrapeHTMLMetadata(decodeText(chunk, d.mh.textEncoding), d.meta)
}

// IsValid reports whether the document parsed well enough to be read.
// A Huffdic decode failure discovered later also clears it.
func (d *Document) IsValid() bool {
	return d.valid
}

// HasDRM reports whether the text records are encrypted. Metadata and
// images stay readable on protected books.
func (d *Document) HasDRM() bool {
	return d.drm
}

// PDBHeader returns the container header.
func (d *Document) PDBHeader() PDBHeader {
	return d.pdb.Header()
}

// Metadata returns a snapshot of the parsed metadata.
func (d *Document) Metadata() map[MetaKey]MetaValue {
	out := make(map[MetaKey]MetaValue, len(d.meta))
	for k, v := range d.meta {
		out[k] = v
	}
	return out
}

// Text decompresses and decodes the book text. Decoding stops once at
// least limit bytes are produced; pass a negative limit for the whole
// book. Returns empty for invalid or DRM protected documents.
func (d *Document) Text(limit int) string {
	if !d.valid || d.drm {
		return ""
	}
	var whole []byte
	for i := 1; i <= int(d.pdh.textRecords); i++ {
		rec := d.pdb.Record(i)
		chunk := d.dec.decompress(stripTrailing(rec, d.extraFlags))
		if !d.dec.isValid() {
			log.Errorf("text record %d failed to decompress", i)
			d.valid = false
			return ""
		}
		if d.pdh.recordSize > 0 && len(chunk) > int(d.pdh.recordSize) {
			chunk = chunk[:d.pdh.recordSize]
		}
		whole = append(whole, chunk...)
		if limit >= 0 && len(whole) > limit {
			break
		}
	}
	return decodeText(whole, d.mh.textEncoding)
}

// locateFirstImage finds the first record that decodes as an image,
// starting at the header's image index when it is usable.
func (d *docBase) locateFirstImage() {
	if d.firstImage >= 0 {
		return
	}
	n := d.pdb.RecordCount()
	i := int(d.mh.imageIndex)
	if i <= 0 || i >= n {
		i = int(d.pdh.textRecords) + 1
	}
	for i < n && decodeImage(d.pdb.Record(i)) == nil {
		i++
	}
	log.Debugf("first image record: %d", i)
	d.firstImage = i
}

// ImageCount returns an upper bound on the number of embedded images.
// Non-image filler records between text and images are included, so
// some indexes below the count return no image.
func (d *Document) ImageCount() int {
	n := d.pdb.RecordCount() - int(d.pdh.textRecords)
	if n < 0 {
		return 0
	}
	return n
}

// Image returns embedded image i, counted from the first record that
// decodes as a picture, or nil when there is no such image.
func (d *Document) Image(i int) *Image {
	if i < 0 || i > 0xffff {
		return nil
	}
	d.locateFirstImage()
	rec := d.firstImage + i
	if rec >= d.pdb.RecordCount() {
		return nil
	}
	return decodeImage(d.pdb.Record(rec))
}

// Thumbnail returns the cover thumbnail. The metadata's thumbnail
// offset is tried first, then image 0.
func (d *Document) Thumbnail() *Image {
	idx := d.meta[MetaThumbnailOffset].Int()
	img := d.Image(idx)
	if img == nil && idx != 0 {
		log.Debugf("thumbnail offset %d yielded nothing, retrying image 0", idx)
		img = d.Image(0)
	}
	return img
}
