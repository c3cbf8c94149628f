package mobi

import (
	"bytes"
	"encoding/binary"
)

// In-memory PDB container builder for tests. Layout follows the
// standard writer convention: header, record table, two pad bytes,
// then the record payloads back to back.
type pdbFixture struct {
	name     string
	dbType   string
	creator  string
	ctimeRaw uint32
	mtimeRaw uint32
	btimeRaw uint32
	records  [][]byte
}

func newPdbFixture(name string) *pdbFixture {
	return &pdbFixture{name: name, dbType: "BOOK", creator: "MOBI"}
}

func (f *pdbFixture) add(rec []byte) *pdbFixture {
	f.records = append(f.records, rec)
	return f
}

func (f *pdbFixture) build() []byte {
	n := len(f.records)
	var buf bytes.Buffer

	name := make([]byte, 32)
	copy(name, f.name)
	buf.Write(name)
	writeU16(&buf, 0)           // attributes
	writeU16(&buf, 1)           // version
	writeU32(&buf, f.ctimeRaw)  // creation time
	writeU32(&buf, f.mtimeRaw)  // modification time
	writeU32(&buf, f.btimeRaw)  // backup time
	writeU32(&buf, 0)           // modification number
	writeU32(&buf, 0)           // appinfo offset
	writeU32(&buf, 0)           // sortinfo offset
	buf.WriteString((f.dbType + "    ")[:4])
	buf.WriteString((f.creator + "    ")[:4])
	writeU32(&buf, 0x123) // uid seed
	writeU32(&buf, 0)     // next record list
	writeU16(&buf, uint16(n))

	offset := uint32(pdbHeaderLen + 8*n + 2)
	for i, rec := range f.records {
		writeU32(&buf, offset)
		buf.WriteByte(0)
		buf.WriteByte(0)
		writeU16(&buf, uint16(i))
		offset += uint32(len(rec))
	}
	buf.Write([]byte{0, 0})
	for _, rec := range f.records {
		buf.Write(rec)
	}
	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

type exthFixtureEntry struct {
	tag     uint32
	payload []byte
}

// Record 0 builder: PalmDoc header, MOBI header, optional EXTH block
// and full name.
type record0Fixture struct {
	compression  uint16
	textLength   uint32
	textRecords  uint16
	recordSize   uint16
	encryption   uint16
	headerLength uint32
	fileVersion  uint32
	encoding     uint32
	imageIndex   uint32
	huffRecIndex uint32
	huffRecCount uint32
	extraFlags   uint16
	fullName     string
	exth         []exthFixtureEntry
	noMagic      bool
	kf8Fields    [5]uint32 // fdstIndex, fdstSectionCount, fragment, skeleton, guide
}

func newRecord0Fixture() *record0Fixture {
	return &record0Fixture{
		compression:  CompressionNone,
		recordSize:   4096,
		headerLength: 232,
		fileVersion:  6,
		encoding:     EncodingUTF8,
	}
}

func (f *record0Fixture) addExth(tag uint32, payload []byte) *record0Fixture {
	f.exth = append(f.exth, exthFixtureEntry{tag, payload})
	return f
}

func (f *record0Fixture) build() []byte {
	rec := make([]byte, 16+int(f.headerLength))
	binary.BigEndian.PutUint16(rec[0:], f.compression)
	binary.BigEndian.PutUint32(rec[4:], f.textLength)
	binary.BigEndian.PutUint16(rec[8:], f.textRecords)
	binary.BigEndian.PutUint16(rec[10:], f.recordSize)
	binary.BigEndian.PutUint16(rec[12:], f.encryption)

	if !f.noMagic {
		copy(rec[16:], "MOBI")
	}
	binary.BigEndian.PutUint32(rec[20:], f.headerLength)
	binary.BigEndian.PutUint32(rec[24:], TypeMobipocket)
	binary.BigEndian.PutUint32(rec[28:], f.encoding)
	binary.BigEndian.PutUint32(rec[32:], 0xbeef)
	binary.BigEndian.PutUint32(rec[36:], f.fileVersion)
	put32 := func(off int, v uint32) {
		if off+4 <= len(rec) {
			binary.BigEndian.PutUint32(rec[off:], v)
		}
	}
	put32(108, f.imageIndex)
	put32(112, f.huffRecIndex)
	put32(116, f.huffRecCount)
	if len(f.exth) > 0 {
		put32(128, 0x40)
	}
	if f.fileVersion == 8 {
		put32(192, f.kf8Fields[0])
		put32(196, f.kf8Fields[1])
		put32(248, f.kf8Fields[2])
		put32(252, f.kf8Fields[3])
		put32(260, f.kf8Fields[4])
	}
	if len(rec) >= 244 {
		binary.BigEndian.PutUint16(rec[242:], f.extraFlags)
	}

	if len(f.exth) > 0 {
		var exth bytes.Buffer
		exth.WriteString("EXTH")
		total := 12
		for _, e := range f.exth {
			total += 8 + len(e.payload)
		}
		writeU32(&exth, uint32(total))
		writeU32(&exth, uint32(len(f.exth)))
		for _, e := range f.exth {
			writeU32(&exth, e.tag)
			writeU32(&exth, uint32(8+len(e.payload)))
			exth.Write(e.payload)
		}
		rec = append(rec, exth.Bytes()...)
	}
	if f.fullName != "" {
		binary.BigEndian.PutUint32(rec[84:], uint32(len(rec)))
		binary.BigEndian.PutUint32(rec[88:], uint32(len(f.fullName)))
		rec = append(rec, f.fullName...)
	}
	return rec
}

func exthU32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// 1x1 images small enough to inline: a complete GIF and a PNG cut
// after the IHDR chunk, which is all DecodeConfig needs.
var tinyGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, // GIF89a
	0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}
