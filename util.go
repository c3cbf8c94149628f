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
	"encoding/binary"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/text/encoding/charmap"
)

var log = logging.MustGetLogger("default")

func beBinToU16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func beBinToU32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

// u16at reads a big-endian uint16 at off, or 0 if it falls outside b.
func u16at(b []byte, off int) uint16 {
	if off < 0 || off+2 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint16(b[off:])
}

// u32at reads a big-endian uint32 at off, or 0 if it falls outside b.
func u32at(b []byte, off int) uint32 {
	if off < 0 || off+4 > len(b) {
		return 0
	}
	return binary.BigEndian.Uint32(b[off:])
}

// readU32 reads a big-endian uint32 at off and reports whether the field
// was actually present.
func readU32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint32(b[off:]), true
}

// readU16 reads a big-endian uint16 at off and reports whether the field
// was actually present.
func readU16(b []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(b) {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[off:]), true
}

// Timestamps straddling 1996-01-01 in the Palm epoch were written by
// little-endian tools; anything below this Unix value with the high bit
// clear is assumed byte-swapped.
const pdbLittleEndianCutoff = 820454400

// Seconds between the Mac epoch (1904-01-01) and the Unix epoch.
const macToUnixEpochDelta = 2082844800

// fromPdbTime normalizes the three timestamp conventions found in PDB
// headers (big-endian Mac epoch, big-endian Unix epoch, little-endian
// Unix epoch) to UTC.
func fromPdbTime(raw uint32) time.Time {
	if raw < pdbLittleEndianCutoff && raw > 0 {
		raw = raw<<24 | raw<<8&0xff0000 | raw>>8&0xff00 | raw>>24
	}
	if raw&0x80000000 != 0 {
		raw -= macToUnixEpochDelta
	}
	return time.Unix(int64(raw), 0).UTC()
}

// decodeText converts record bytes to a string using the document's
// declared encoding. UTF-8 passes through; everything else is treated
// as Windows-1252 with a Latin-1 fallback.
func decodeText(data []byte, textEncoding uint32) string {
	if textEncoding == EncodingUTF8 {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		log.Warningf("cp1252 decode failed, falling back to latin-1: %v", err)
		out, _ = charmap.ISO8859_1.NewDecoder().Bytes(data)
	}
	return string(out)
}

// trimAtNul returns the prefix of b up to the first NUL byte.
func trimAtNul(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
