package mobi

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPDBHeaderFields(t *testing.T) {
	fix := newPdbFixture("The_First_Men_in_the_Moon")
	fix.ctimeRaw = uint32(time.Date(2025, 5, 1, 23, 10, 25, 0, time.UTC).Unix() + macToUnixEpochDelta)
	fix.mtimeRaw = uint32(time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC).Unix() + macToUnixEpochDelta)
	fix.add([]byte("record zero")).add([]byte("record one"))

	p := NewPDB(bytes.NewReader(fix.build()))
	assert.True(t, p.IsValid())

	h := p.Header()
	assert.Equal(t, "The_First_Men_in_the_Moon", h.Name)
	assert.Equal(t, "BOOK", h.DatabaseType)
	assert.Equal(t, "MOBI", h.Creator)
	assert.Equal(t, uint16(1), h.Version)
	assert.Equal(t, uint32(0x123), h.UniqueIDSeed)
	assert.Equal(t, uint16(2), h.RecordCount)
	assert.Equal(t, time.Date(2025, 5, 1, 23, 10, 25, 0, time.UTC), h.CreationTime)
	assert.Equal(t, time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC), h.ModificationTime)
}

func TestFromPdbTime(t *testing.T) {
	// big-endian Mac epoch (high bit set)
	unix := int64(1746141025)
	assert.Equal(t, time.Unix(unix, 0).UTC(), fromPdbTime(uint32(unix+macToUnixEpochDelta)))

	// big-endian Unix epoch
	assert.Equal(t, time.Unix(1136073600, 0).UTC(), fromPdbTime(1136073600))

	// little-endian Unix epoch, stored byte-swapped
	assert.Equal(t, time.Unix(0x43b4ec10, 0).UTC(), fromPdbTime(0x10ecb443))
}

func TestPDBRecordSpans(t *testing.T) {
	fix := newPdbFixture("spans")
	fix.add([]byte("aaaa")).add([]byte("bb")).add([]byte("cccccc"))
	p := NewPDB(bytes.NewReader(fix.build()))

	assert.Equal(t, 3, p.RecordCount())
	assert.Equal(t, []byte("aaaa"), p.Record(0))
	assert.Equal(t, []byte("bb"), p.Record(1))
	// last record runs to end of file
	assert.Equal(t, []byte("cccccc"), p.Record(2))
	assert.Nil(t, p.Record(3))
	assert.Nil(t, p.Record(-1))
}

func TestPDBRejectsDecreasingOffsets(t *testing.T) {
	fix := newPdbFixture("bad")
	fix.add([]byte("aaaa")).add([]byte("bb"))
	data := fix.build()
	// second table entry points before the first
	binary.BigEndian.PutUint32(data[pdbHeaderLen+8:], pdbHeaderLen)

	p := NewPDB(bytes.NewReader(data))
	assert.False(t, p.IsValid())
	assert.Nil(t, p.Record(0))
}

func TestPDBRejectsOffsetInsideHeader(t *testing.T) {
	fix := newPdbFixture("bad")
	fix.add([]byte("aaaa")).add([]byte("bb"))
	data := fix.build()
	// first record claims to start inside the header area
	binary.BigEndian.PutUint32(data[pdbHeaderLen:], 10)

	p := NewPDB(bytes.NewReader(data))
	assert.False(t, p.IsValid())
}

func TestPDBRejectsZeroRecords(t *testing.T) {
	fix := newPdbFixture("empty")
	fix.add([]byte("x"))
	data := fix.build()
	binary.BigEndian.PutUint16(data[76:], 0)

	assert.False(t, NewPDB(bytes.NewReader(data)).IsValid())
}

func TestPDBRejectsShortHeader(t *testing.T) {
	assert.False(t, NewPDB(bytes.NewReader([]byte("BOOKMOBI"))).IsValid())
	assert.False(t, NewPDB(bytes.NewReader(nil)).IsValid())
}

func TestPDBTruncatedTableIsSoft(t *testing.T) {
	fix := newPdbFixture("trunc")
	fix.add(bytes.Repeat([]byte("a"), 100))
	fix.add(bytes.Repeat([]byte("b"), 100))
	fix.add(bytes.Repeat([]byte("c"), 100))
	data := fix.build()

	// cut the file inside the second record: the third offset now
	// points past the end, the container stays valid without it
	cut := len(data) - 150
	p := NewPDB(bytes.NewReader(data[:cut]))
	assert.True(t, p.IsValid())
	assert.Equal(t, 2, p.RecordCount())
	assert.Equal(t, bytes.Repeat([]byte("a"), 100), p.Record(0))
	// the surviving record is short, what is present comes back
	assert.Equal(t, 50, len(p.Record(1)))
	assert.Nil(t, p.Record(2))
}
