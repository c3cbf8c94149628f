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
	"time"
)

const (
	// CompressionNone indicates uncompressed text records.
	CompressionNone = 1
	// CompressionPalmDoc indicates PalmDoc RLE/LZ77 compression.
	CompressionPalmDoc = 2
	// CompressionHuffdic indicates Huffman+CDIC dictionary compression.
	// The value is 'H'<<8|'D'... historically 17480; decoder selection
	// keys off the low byte 'H' (0x48).
	CompressionHuffdic = 17480

	// EncodingCP1252 is the MOBI text encoding code for Windows-1252.
	EncodingCP1252 = 1252
	// EncodingUTF8 is the MOBI text encoding code for UTF-8.
	EncodingUTF8 = 65001
)

// MOBI file types found at offset 24 of the MOBI header.
const (
	TypeMobipocket   = 2
	TypePalmDoc      = 3
	TypeAudio        = 4
	TypeKindlegen    = 232
	TypeKF8          = 248
	TypeNews         = 257
	TypeNewsFeed     = 258
	TypeNewsMagazine = 259
)

// MetaKey identifies a single metadata entry of a Document.
type MetaKey int

const (
	MetaTitle MetaKey = iota
	MetaAuthor
	MetaPublisher
	MetaImprint
	MetaDescription
	MetaISBN
	MetaSubject
	MetaPublishingDate
	MetaReview
	MetaContributor
	MetaCopyright
	MetaSubjectCode
	MetaSource
	MetaASIN
	MetaStartReading
	MetaKF8BoundaryOffset
	MetaCountResources
	MetaKF8CoverURI
	MetaRESCOffset
	MetaCoverOffset
	MetaThumbnailOffset
	MetaHasFakeCover
	MetaCreatorSoftware
	MetaCreatorMajorVersion
	MetaCreatorMinorVersion
	MetaCreatorBuildNumber
	MetaDoctype
	MetaLastUpdateTime
	MetaUpdatedTitle
	MetaLanguage
	MetaCreatorBuildRevision
	MetaOverrideKindleFonts
)

// metaUnknownBase offsets unrecognized EXTH tenant tags so they never
// collide with the named keys above.
const metaUnknownBase MetaKey = 0x10000

// MetaUnknown returns the key under which an unrecognized EXTH tag is stored.
func MetaUnknown(tag uint32) MetaKey {
	return metaUnknownBase + MetaKey(tag)
}

var metaKeyNames = map[MetaKey]string{
	MetaTitle:                "Title",
	MetaAuthor:               "Author",
	MetaPublisher:            "Publisher",
	MetaImprint:              "Imprint",
	MetaDescription:          "Description",
	MetaISBN:                 "ISBN",
	MetaSubject:              "Subject",
	MetaPublishingDate:       "PublishingDate",
	MetaReview:               "Review",
	MetaContributor:          "Contributor",
	MetaCopyright:            "Copyright",
	MetaSubjectCode:          "SubjectCode",
	MetaSource:               "Source",
	MetaASIN:                 "ASIN",
	MetaStartReading:         "StartReading",
	MetaKF8BoundaryOffset:    "KF8BoundaryOffset",
	MetaCountResources:       "CountResources",
	MetaKF8CoverURI:          "KF8CoverURI",
	MetaRESCOffset:           "RESCOffset",
	MetaCoverOffset:          "CoverOffset",
	MetaThumbnailOffset:      "ThumbnailOffset",
	MetaHasFakeCover:         "HasFakeCover",
	MetaCreatorSoftware:      "CreatorSoftware",
	MetaCreatorMajorVersion:  "CreatorMajorVersion",
	MetaCreatorMinorVersion:  "CreatorMinorVersion",
	MetaCreatorBuildNumber:   "CreatorBuildNumber",
	MetaDoctype:              "Doctype",
	MetaLastUpdateTime:       "LastUpdateTime",
	MetaUpdatedTitle:         "UpdatedTitle",
	MetaLanguage:             "Language",
	MetaCreatorBuildRevision: "CreatorBuildRevision",
	MetaOverrideKindleFonts:  "OverrideKindleFonts",
}

func (k MetaKey) String() string {
	if name, ok := metaKeyNames[k]; ok {
		return name
	}
	if k >= metaUnknownBase {
		return fmt.Sprintf("Unknown(%d)", int(k-metaUnknownBase))
	}
	return fmt.Sprintf("MetaKey(%d)", int(k))
}

// MetaKind discriminates the value stored in a MetaValue.
type MetaKind int

const (
	// MetaString is a text value decoded with the document encoding.
	MetaString MetaKind = iota
	// MetaNumeric is a 32-bit big-endian unsigned integer value.
	MetaNumeric
	// MetaDateTime is a timestamp value.
	MetaDateTime
	// MetaBinary is an uninterpreted byte payload.
	MetaBinary
)

// MetaValue is the tagged value of one metadata entry.
type MetaValue struct {
	Kind MetaKind
	Str  string
	Num  uint32
	Time time.Time
	Raw  []byte
}

// String renders the value for display. Numeric and date-time values are
// formatted; binary payloads render as a byte count.
func (v MetaValue) String() string {
	switch v.Kind {
	case MetaNumeric:
		return fmt.Sprintf("%d", v.Num)
	case MetaDateTime:
		return v.Time.UTC().Format(time.RFC3339Nano)
	case MetaBinary:
		return fmt.Sprintf("<%d bytes>", len(v.Raw))
	default:
		return v.Str
	}
}

// Int returns the numeric value, or 0 for non-numeric kinds.
func (v MetaValue) Int() int {
	if v.Kind != MetaNumeric {
		return 0
	}
	return int(v.Num)
}

// DateTime returns the timestamp value, or the zero time for other kinds.
func (v MetaValue) DateTime() time.Time {
	if v.Kind != MetaDateTime {
		return time.Time{}
	}
	return v.Time
}

func stringValue(s string) MetaValue  { return MetaValue{Kind: MetaString, Str: s} }
func numericValue(n uint32) MetaValue { return MetaValue{Kind: MetaNumeric, Num: n} }
func binaryValue(b []byte) MetaValue  { return MetaValue{Kind: MetaBinary, Raw: b} }
func dateTimeValue(t time.Time) MetaValue {
	return MetaValue{Kind: MetaDateTime, Time: t}
}
