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

// decompressor turns one compressed text record into plain bytes. A
// decompressor that hits a structural error flips invalid and stays
// invalid; callers must check isValid after use.
type decompressor interface {
	decompress(data []byte) []byte
	isValid() bool
}

// newDecompressor selects a codec by the low byte of the PalmDoc
// compression field. aux carries the HUFF and CDIC records for the
// Huffdic codec and is ignored by the others. Returns nil for unknown
// codecs.
func newDecompressor(codec byte, aux [][]byte) decompressor {
	switch codec {
	case 1:
		return &noopDecompressor{}
	case 2:
		return &rleDecompressor{}
	case 'H':
		h := &huffdicDecompressor{}
		h.setup(aux)
		return h
	default:
		log.Errorf("unknown compression codec 0x%02x", codec)
		return nil
	}
}

type noopDecompressor struct{}

func (noopDecompressor) decompress(data []byte) []byte { return data }
func (noopDecompressor) isValid() bool                 { return true }

// rleTokenClass maps a PalmDoc token byte to its handling class:
// 0 verbatim, 1 literal run, 2 space+char pair, 3 back reference.
var rleTokenClass [256]byte

func init() {
	for t := 0x01; t <= 0x08; t++ {
		rleTokenClass[t] = 1
	}
	for t := 0x80; t <= 0xbf; t++ {
		rleTokenClass[t] = 3
	}
	for t := 0xc0; t <= 0xff; t++ {
		rleTokenClass[t] = 2
	}
}

// rleDecompressor implements PalmDoc LZ77/RLE. Truncated input stops
// the decode and returns what was produced so far; it never poisons
// the codec.
type rleDecompressor struct{}

func (rleDecompressor) isValid() bool { return true }

func (rleDecompressor) decompress(data []byte) []byte {
	out := make([]byte, 0, 4*len(data)+16)
	for i := 0; i < len(data); {
		token := data[i]
		i++
		switch rleTokenClass[token] {
		case 1:
			n := int(token)
			if i+n > len(data) {
				return out
			}
			out = append(out, data[i:i+n]...)
			i += n
		case 2:
			out = append(out, ' ', token^0x80)
		case 3:
			if i >= len(data) {
				return out
			}
			n := int(token)<<8 | int(data[i])
			i++
			length := n&7 + 3
			shift := n & 0x3fff >> 3
			if shift < 1 || shift > len(out) {
				return out
			}
			// The window may overlap the bytes being written.
			pos := len(out) - shift
			for j := 0; j < length; j++ {
				out = append(out, out[pos+j])
			}
		default:
			out = append(out, token)
		}
	}
	return out
}

const (
	huffMaxDepth  = 32
	huffMaxOutput = 16 << 20
)

// huffdicDecompressor implements the MOBI Huffman+CDIC codec. dict1 is
// indexed by the top byte of the bit window; dict2 holds per-codelength
// (min code, base value) pairs for non-terminal entries.
type huffdicDecompressor struct {
	valid     bool
	entryBits uint32
	dict1     [256]uint32
	dict2     [64]uint32
	dicts     [][]byte
}

func (h *huffdicDecompressor) isValid() bool { return h.valid }

func (h *huffdicDecompressor) setup(aux [][]byte) {
	if len(aux) < 2 {
		log.Errorf("huffdic: need HUFF and at least one CDIC record, got %d", len(aux))
		return
	}
	huff := aux[0]
	if len(huff) < 24 || string(huff[0:4]) != "HUFF" {
		log.Errorf("huffdic: malformed HUFF record")
		return
	}
	off1 := int(beBinToU32(huff[16:]))
	off2 := int(beBinToU32(huff[20:]))
	if off1 < 0 || off1+256*4 > len(huff) || off2 < 0 || off2+64*4 > len(huff) {
		log.Errorf("huffdic: dictionary tables outside HUFF record")
		return
	}
	for i := 0; i < 256; i++ {
		h.dict1[i] = beBinToU32(huff[off1+i*4:])
	}
	for i := 0; i < 64; i++ {
		h.dict2[i] = beBinToU32(huff[off2+i*4:])
	}

	cdic := aux[1]
	if len(cdic) < 18 || string(cdic[0:4]) != "CDIC" {
		log.Errorf("huffdic: malformed CDIC record")
		return
	}
	h.entryBits = beBinToU32(cdic[12:])
	if h.entryBits > 32 {
		log.Errorf("huffdic: entry bits %d out of range", h.entryBits)
		return
	}
	h.dicts = aux[1:]
	h.valid = true
}

func (h *huffdicDecompressor) decompress(data []byte) []byte {
	if !h.valid {
		return nil
	}
	var buf []byte
	if !h.unpack(&buf, newBitReader(data), 0) {
		log.Errorf("huffdic: decode failed, codec poisoned")
		h.valid = false
	}
	return buf
}

func (h *huffdicDecompressor) unpack(buf *[]byte, reader *bitReader, depth int) bool {
	if depth > huffMaxDepth {
		return false
	}
	for reader.left() > 0 {
		if len(*buf) > huffMaxOutput {
			return false
		}
		word := reader.read()
		v := h.dict1[word>>24]
		codelen := v & 0x1f
		if codelen == 0 {
			return false
		}
		code := word >> (32 - codelen)
		value := v >> 8
		if v&0x80 == 0 {
			for codelen < 32 && code < h.dict2[(codelen-1)*2] {
				codelen++
				code = word >> (32 - codelen)
			}
			value = h.dict2[(codelen-1)*2+1]
		}
		value -= code
		if !reader.eat(int(codelen)) {
			return true
		}
		dictNo := uint64(value) >> h.entryBits
		if dictNo >= uint64(len(h.dicts)) {
			return false
		}
		dict := h.dicts[dictNo]
		slot := int(uint64(value) & (uint64(1)<<h.entryBits - 1))
		off1 := 16 + slot*2
		if off1+2 > len(dict) {
			return false
		}
		off2 := 16 + int(beBinToU16(dict[off1:]))
		if off2+2 > len(dict) {
			return false
		}
		blen := beBinToU16(dict[off2:])
		n := int(blen & 0x7fff)
		if off2+2+n > len(dict) {
			n = len(dict) - off2 - 2
		}
		slice := dict[off2+2 : off2+2+n]
		if blen&0x8000 != 0 {
			*buf = append(*buf, slice...)
		} else if !h.unpack(buf, newBitReader(slice), depth+1) {
			return false
		}
	}
	return true
}
