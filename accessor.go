package mobi

import "encoding/json"

// DocumentInfo is a serializable summary of a Document, suitable for
// JSON output and remote access.
type DocumentInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Language    string `json:"language"`
	Valid       bool   `json:"valid"`
	DRM         bool   `json:"drm"`
	Records     int    `json:"records"`
	TextRecords int    `json:"text_records"`
	ImageCount  int    `json:"image_count"`
}

// NewDocumentInfo creates a DocumentInfo from a Document instance.
func NewDocumentInfo(doc *Document) *DocumentInfo {
	meta := doc.Metadata()
	return &DocumentInfo{
		Name:        doc.PDBHeader().Name,
		Title:       meta[MetaTitle].Str,
		Author:      meta[MetaAuthor].Str,
		Language:    meta[MetaLanguage].Str,
		Valid:       doc.IsValid(),
		DRM:         doc.HasDRM(),
		Records:     doc.pdb.RecordCount(),
		TextRecords: int(doc.pdh.textRecords),
		ImageCount:  doc.ImageCount(),
	}
}

// NewDocumentInfoFromJSON creates a DocumentInfo from a JSON byte slice.
func NewDocumentInfoFromJSON(data []byte) (*DocumentInfo, error) {
	info := new(DocumentInfo)
	err := json.Unmarshal(data, info)
	return info, err
}

// Serialize converts the DocumentInfo to its JSON representation.
func (info *DocumentInfo) Serialize() ([]byte, error) {
	return json.Marshal(info)
}
