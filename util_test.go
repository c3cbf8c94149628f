package mobi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndianHelpers(t *testing.T) {
	b := []byte{0x12, 0x34, 0x56, 0x78}
	assert.Equal(t, uint16(0x1234), beBinToU16(b))
	assert.Equal(t, uint32(0x12345678), beBinToU32(b))

	assert.Equal(t, uint16(0x3456), u16at(b, 1))
	assert.Equal(t, uint16(0), u16at(b, 3))
	assert.Equal(t, uint32(0x12345678), u32at(b, 0))
	assert.Equal(t, uint32(0), u32at(b, 1))
	assert.Equal(t, uint32(0), u32at(b, -1))

	_, ok := readU32(b, 2)
	assert.False(t, ok)
	v, ok := readU16(b, 2)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x5678), v)
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "héllo", decodeText([]byte("héllo"), EncodingUTF8))

	// cp1252 curly quotes
	assert.Equal(t, "“q”", decodeText([]byte{0x93, 'q', 0x94}, EncodingCP1252))

	// cp1252 accented byte
	assert.Equal(t, "é", decodeText([]byte{0xe9}, EncodingCP1252))
}

func TestTrimAtNul(t *testing.T) {
	assert.Equal(t, "BOOK", trimAtNul([]byte("BOOK")))
	assert.Equal(t, "ab", trimAtNul([]byte{'a', 'b', 0, 'c'}))
	assert.Equal(t, "", trimAtNul([]byte{0}))
}
