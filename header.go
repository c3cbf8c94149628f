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
	"strings"
	"time"
)

// palmDocHeader is the 16-byte compression header at the start of
// record 0.
type palmDocHeader struct {
	compression uint16
	textLength  uint32
	textRecords uint16
	recordSize  uint16
	encryption  uint16
}

func decodePalmDocHeader(rec []byte) palmDocHeader {
	h := palmDocHeader{
		compression: u16at(rec, 0),
		textLength:  u32at(rec, 4),
		textRecords: u16at(rec, 8),
		recordSize:  u16at(rec, 10),
		encryption:  u16at(rec, 12),
	}
	log.Debugf("palmdoc header: compression=%d textLength=%d textRecords=%d encryption=%d",
		h.compression, h.textLength, h.textRecords, h.encryption)
	return h
}

// mobiHeader is the variable-length MOBI header following the PalmDoc
// header in record 0. Fields past the declared header length read as
// zero. The four KF8 fields are only meaningful when kf8 is set; in
// that layout offsets 192/194 hold the FDST index and section count
// instead of the first/last text record numbers.
type mobiHeader struct {
	magicOK       bool
	headerLength  uint32
	mobiType      uint32
	textEncoding  uint32
	uid           uint32
	fileVersion   uint32
	nonTextIndex  uint32
	fullNameOff   uint32
	fullNameLen   uint32
	locale        uint32
	minVersion    uint32
	imageIndex    uint32
	huffRecIndex  uint32
	huffRecCount  uint32
	exthFlags     uint32
	drmOffset     uint32
	drmCount      uint32
	drmSize       uint32
	drmFlags      uint32
	firstText     uint16
	lastText      uint16
	fcisIndex     uint32
	flisIndex     uint32
	extraFlags    uint16
	hasExtraFlags bool
	ncxIndex      uint32

	kf8              bool
	fdstIndex        uint32
	fdstSectionCount uint32
	fragmentIndex    uint32
	skeletonIndex    uint32
	guideIndex       uint32
}

// kf8HeaderLength is the minimum MOBI header length that carries the
// KF8 index fields.
const kf8HeaderLength = 0xe4

func decodeMobiHeader(rec []byte) mobiHeader {
	h := mobiHeader{
		magicOK:      len(rec) >= 20 && string(rec[16:20]) == "MOBI",
		headerLength: u32at(rec, 20),
		mobiType:     u32at(rec, 24),
		textEncoding: u32at(rec, 28),
		uid:          u32at(rec, 32),
		fileVersion:  u32at(rec, 36),
		nonTextIndex: u32at(rec, 80),
		fullNameOff:  u32at(rec, 84),
		fullNameLen:  u32at(rec, 88),
		locale:       u32at(rec, 92),
		minVersion:   u32at(rec, 104),
		imageIndex:   u32at(rec, 108),
		huffRecIndex: u32at(rec, 112),
		huffRecCount: u32at(rec, 116),
		exthFlags:    u32at(rec, 128),
		drmOffset:    u32at(rec, 168),
		drmCount:     u32at(rec, 172),
		drmSize:      u32at(rec, 176),
		drmFlags:     u32at(rec, 180),
		fcisIndex:    u32at(rec, 200),
		flisIndex:    u32at(rec, 208),
		ncxIndex:     u32at(rec, 244),
	}
	if !h.magicOK {
		log.Warningf("mobi magic not found in record 0")
	}

	h.kf8 = h.fileVersion == 8 && h.headerLength >= kf8HeaderLength
	if h.kf8 {
		h.fdstIndex = u32at(rec, 192)
		h.fdstSectionCount = u32at(rec, 196)
		h.fragmentIndex = u32at(rec, 248)
		h.skeletonIndex = u32at(rec, 252)
		h.guideIndex = u32at(rec, 260)
	} else {
		h.firstText = u16at(rec, 192)
		h.lastText = u16at(rec, 194)
	}
	return h
}

// fullName extracts the book title addressed by the full-name fields.
// The length is clamped to 1024 and the range must lie inside record 0.
func (h *mobiHeader) fullName(rec []byte, textEncoding uint32) string {
	off := int(h.fullNameOff)
	length := int(h.fullNameLen)
	if length > 1024 {
		length = 1024
	}
	if length < 1 || off < 0 || off+length > len(rec) {
		return ""
	}
	return decodeText(rec[off:off+length], textEncoding)
}

type exthValueKind int

const (
	exthString exthValueKind = iota
	exthNumeric
	exthDateTime
)

type exthTagInfo struct {
	key  MetaKey
	kind exthValueKind
}

var exthTagTable = map[uint32]exthTagInfo{
	100: {MetaAuthor, exthString},
	101: {MetaPublisher, exthString},
	102: {MetaImprint, exthString},
	103: {MetaDescription, exthString},
	104: {MetaISBN, exthString},
	105: {MetaSubject, exthString},
	106: {MetaPublishingDate, exthDateTime},
	107: {MetaReview, exthString},
	108: {MetaContributor, exthString},
	109: {MetaCopyright, exthString},
	110: {MetaSubjectCode, exthString},
	112: {MetaSource, exthString},
	113: {MetaASIN, exthString},
	116: {MetaStartReading, exthNumeric},
	121: {MetaKF8BoundaryOffset, exthNumeric},
	125: {MetaCountResources, exthNumeric},
	129: {MetaKF8CoverURI, exthString},
	131: {MetaRESCOffset, exthNumeric},
	201: {MetaCoverOffset, exthNumeric},
	202: {MetaThumbnailOffset, exthNumeric},
	203: {MetaHasFakeCover, exthNumeric},
	204: {MetaCreatorSoftware, exthNumeric},
	205: {MetaCreatorMajorVersion, exthNumeric},
	206: {MetaCreatorMinorVersion, exthNumeric},
	207: {MetaCreatorBuildNumber, exthNumeric},
	501: {MetaDoctype, exthString},
	502: {MetaLastUpdateTime, exthString},
	503: {MetaUpdatedTitle, exthString},
	524: {MetaLanguage, exthString},
	535: {MetaCreatorBuildRevision, exthString},
	538: {MetaOverrideKindleFonts, exthString},
}

// exthDateLayouts covers the timestamp spellings kindlegen and its
// descendants have been seen to write.
var exthDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.000-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02",
}

func parseExthDate(s string) (time.Time, bool) {
	for _, layout := range exthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// decodeExth walks the EXTH block inside record 0 and fills meta.
// The block sits 16 bytes past the declared MOBI header length; a
// missing or malformed block leaves meta untouched.
func decodeExth(rec []byte, textEncoding uint32, meta map[MetaKey]MetaValue) {
	base := int(u32at(rec, 20)) + 16
	if base < 0 || base+12 > len(rec) || string(rec[base:base+4]) != "EXTH" {
		log.Debugf("no exth block at offset %d", base)
		return
	}
	count := int(u32at(rec, base+8))
	pos := base + 12
	for i := 0; i < count; i++ {
		tag, ok := readU32(rec, pos)
		if !ok {
			break
		}
		length, ok := readU32(rec, pos+4)
		if !ok || length < 8 || pos+int(length) > len(rec) {
			log.Warningf("exth entry %d malformed, stopping walk", i)
			break
		}
		payload := rec[pos+8 : pos+int(length)]
		pos += int(length)

		info, known := exthTagTable[tag]
		if !known {
			meta[MetaUnknown(tag)] = binaryValue(payload)
			continue
		}
		switch info.kind {
		case exthNumeric:
			if len(payload) >= 4 {
				meta[info.key] = numericValue(beBinToU32(payload))
			} else {
				meta[info.key] = binaryValue(payload)
			}
		case exthDateTime:
			s := strings.TrimSpace(decodeText(payload, textEncoding))
			if t, ok := parseExthDate(s); ok {
				meta[info.key] = dateTimeValue(t)
			} else {
				meta[info.key] = stringValue(s)
			}
		default:
			meta[info.key] = stringValue(decodeText(payload, textEncoding))
		}
	}
}

// decodeExtraFlags reads the trailing-data flag word. The field only
// exists when record 0 reaches past it and the EXTH block does not
// start before it.
func decodeExtraFlags(rec []byte) (uint16, bool) {
	exthBase := int(u32at(rec, 20)) + 16
	if len(rec) >= 244 && exthBase > 244 {
		return u16at(rec, 242), true
	}
	return 0, false
}
