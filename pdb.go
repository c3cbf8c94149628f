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
	"fmt"
	"io"
	"time"
)

const (
	pdbHeaderLen      = 0x4e
	pdbRecordEntryLen = 8
)

// PDBHeader is the decoded 78-byte Palm Database header.
type PDBHeader struct {
	Name               string
	Attributes         uint16
	Version            uint16
	CreationTime       time.Time
	ModificationTime   time.Time
	BackupTime         time.Time
	ModificationNumber uint32
	AppInfoOffset      uint32
	SortInfoOffset     uint32
	DatabaseType       string
	Creator            string
	UniqueIDSeed       uint32
	NextRecordList     uint32
	RecordCount        uint16
}

type pdbRecordEntry struct {
	offset     uint32
	attributes uint8
	uid        uint32
}

// PDB reads records out of a Palm Database container. A malformed
// header or record table leaves the container invalid; Record then
// returns nil for every index and nothing panics.
type PDB struct {
	device  io.ReadSeeker
	size    int64
	header  PDBHeader
	records []pdbRecordEntry
	valid   bool
}

// NewPDB parses the PDB header and record table from device. The
// returned container is never nil; check IsValid.
func NewPDB(device io.ReadSeeker) *PDB {
	p := &PDB{device: device}
	if err := p.init(); err != nil {
		log.Warningf("pdb container rejected: %v", err)
		p.valid = false
	}
	return p
}

func (p *PDB) init() error {
	size, err := p.device.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("seek to end failed: %w", err)
	}
	p.size = size

	raw, err := p.readAt(0, pdbHeaderLen)
	if err != nil {
		return fmt.Errorf("read pdb header failed: %w", err)
	}
	if len(raw) < pdbHeaderLen {
		return fmt.Errorf("pdb header truncated: %d bytes", len(raw))
	}
	p.decodeHeader(raw)

	if p.header.RecordCount < 1 {
		return fmt.Errorf("pdb record count is zero")
	}
	if err := p.readRecordTable(); err != nil {
		return fmt.Errorf("read pdb record table failed: %w", err)
	}
	p.valid = true
	return nil
}

func (p *PDB) decodeHeader(raw []byte) {
	p.header = PDBHeader{
		Name:               trimAtNul(raw[0:32]),
		Attributes:         beBinToU16(raw[32:]),
		Version:            beBinToU16(raw[34:]),
		CreationTime:       fromPdbTime(beBinToU32(raw[36:])),
		ModificationTime:   fromPdbTime(beBinToU32(raw[40:])),
		BackupTime:         fromPdbTime(beBinToU32(raw[44:])),
		ModificationNumber: beBinToU32(raw[48:]),
		AppInfoOffset:      beBinToU32(raw[52:]),
		SortInfoOffset:     beBinToU32(raw[56:]),
		DatabaseType:       trimAtNul(raw[60:64]),
		Creator:            trimAtNul(raw[64:68]),
		UniqueIDSeed:       beBinToU32(raw[68:]),
		NextRecordList:     beBinToU32(raw[72:]),
		RecordCount:        beBinToU16(raw[76:]),
	}
	log.Debugf("pdb header: name='%s' type='%s' creator='%s' records=%d",
		p.header.Name, p.header.DatabaseType, p.header.Creator, p.header.RecordCount)
}

func (p *PDB) readRecordTable() error {
	n := int(p.header.RecordCount)
	raw, err := p.readAt(pdbHeaderLen, n*pdbRecordEntryLen)
	if err != nil {
		return err
	}
	if len(raw) < n*pdbRecordEntryLen {
		return fmt.Errorf("record table truncated: %d of %d entries",
			len(raw)/pdbRecordEntryLen, n)
	}

	lastOffset := uint32(pdbHeaderLen + n*pdbRecordEntryLen)
	p.records = make([]pdbRecordEntry, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i*pdbRecordEntryLen:]
		offset := beBinToU32(e)
		if offset < lastOffset {
			return fmt.Errorf("record %d offset %d below previous %d", i, offset, lastOffset)
		}
		if int64(offset) > p.size {
			log.Warningf("record table cut at %d of %d: offset %d past file size %d",
				i, n, offset, p.size)
			break
		}
		lastOffset = offset
		p.records = append(p.records, pdbRecordEntry{
			offset:     offset,
			attributes: e[4],
			uid:        uint32(e[5])<<16 | uint32(beBinToU16(e[6:])),
		})
	}
	return nil
}

func (p *PDB) readAt(offset int64, length int) ([]byte, error) {
	if _, err := p.device.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to %d failed: %w", offset, err)
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(p.device, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read %d bytes at %d failed: %w", length, offset, err)
	}
	return buf[:n], nil
}

// IsValid reports whether the header and record table parsed cleanly.
func (p *PDB) IsValid() bool {
	return p.valid
}

// Header returns the decoded PDB header.
func (p *PDB) Header() PDBHeader {
	return p.header
}

// RecordCount returns the number of addressable records. This can be
// lower than the header count when the record table was cut at the end
// of a truncated file.
func (p *PDB) RecordCount() int {
	return len(p.records)
}

// Record returns the payload of record i, or nil when the container is
// invalid or i is out of range. A record cut short by file truncation
// returns the bytes that are present.
func (p *PDB) Record(i int) []byte {
	if !p.valid || i < 0 || i >= len(p.records) {
		return nil
	}
	start := int64(p.records[i].offset)
	end := p.size
	if i+1 < len(p.records) {
		end = int64(p.records[i+1].offset)
	}
	data, err := p.readAt(start, int(end-start))
	if err != nil {
		log.Warningf("record %d read failed: %v", i, err)
		return nil
	}
	return data
}
