package mobi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrailingStrippedSize(t *testing.T) {
	cases := []struct {
		name  string
		data  string
		flags uint32
		want  int
	}{
		{"no flags", "abcdef", 0x0, 6},
		{"three entries", "abc\x00\x81\x81", 0x7, 3},
		{"two varint entries", "abc\x81\x80\x02", 0x6, 3},
		{"one varint entry", "abc\x01\x7f\x82", 0x2, 4},
		{"varint then multibyte", "abc\x01\x7f\x82", 0x3, 2},
		{"varint eats most of record", "abcd\x85", 0x2, 0},
		{"single byte varint", "abcd\x81", 0x2, 4},
		{"two byte varint", "abc\x01\x80\x02", 0x2, 4},
		{"multibyte zero", "0\x00", 0x1, 1},
		{"multibyte one", "0\x01", 0x1, 0},
		{"multibyte three", "abcd\x03", 0x1, 1},
		{"empty record", "", 0x2, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, trailingStrippedSize([]byte(tc.data), tc.flags))
		})
	}
}

func TestStripTrailing(t *testing.T) {
	assert.Equal(t, []byte("abc"), stripTrailing([]byte("abc\x00\x81\x81"), 0x7))

	// flag word zero must pass the record through untouched
	rec := []byte("abc\x81")
	assert.Equal(t, rec, stripTrailing(rec, 0))

	assert.Len(t, stripTrailing(nil, 0x3), 0)
}
