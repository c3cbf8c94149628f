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

// bitReader exposes a byte slice as an MSB-first bit stream. Reads past
// the end of the data see zero bits, so read() never fails; only eat()
// tracks exhaustion.
type bitReader struct {
	data []byte
	pos  int
	len  int
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data, len: len(data) * 8}
}

// read returns the next 32 bits without consuming them, zero-extended
// past the end of the data.
func (r *bitReader) read() uint32 {
	g := 0
	var v uint64
	for g < 32 {
		idx := (r.pos + g) >> 3
		var b byte
		if idx >= 0 && idx < len(r.data) {
			b = r.data[idx]
		}
		v = v<<8 | uint64(b)
		g += 8 - ((r.pos + g) & 7)
	}
	return uint32(v >> (uint(g) - 32))
}

// eat consumes n bits and reports whether any bits remain.
func (r *bitReader) eat(n int) bool {
	r.pos += n
	return r.pos <= r.len
}

// left returns the number of unconsumed bits.
func (r *bitReader) left() int {
	return r.len - r.pos
}
