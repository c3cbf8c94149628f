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

// trailingStrippedSize returns the number of leading bytes of a text
// record that remain after removing the trailing entries selected by
// flags. Bits 31..1 each strip a backward base-128 varint sized block;
// bit 0 strips the multibyte overlap whose length sits in the low two
// bits of the last byte, plus that byte itself.
func trailingStrippedSize(data []byte, flags uint32) int {
	size := len(data)
	for bit := 31; bit > 0; bit-- {
		if flags&(1<<uint(bit)) == 0 {
			continue
		}
		chop := 0
		for j := 0; j < 4; j++ {
			if j+1 > size {
				return 0
			}
			l := data[size-(j+1)]
			chop |= int(l&0x7f) << (7 * j)
			if l&0x80 != 0 {
				break
			}
		}
		if chop > size {
			chop = size
		}
		size -= chop
	}
	if flags&0x1 != 0 && size > 0 {
		n := int(data[size-1]&0x3) + 1
		if n > size {
			n = size
		}
		size -= n
	}
	return size
}

// stripTrailing cuts the trailing entries selected by flags off a text
// record before decompression.
func stripTrailing(data []byte, flags uint32) []byte {
	if flags == 0 {
		return data
	}
	return data[:trailingStrippedSize(data, flags)]
}
