package mobi

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// ImageFS wraps a Document to expose its embedded images through the
// io/fs.FS interface, for example for an HTTP file server. Images are
// named by index ("0000.jpg", "0001.png", ...) and the cover thumbnail
// is "thumbnail.<ext>".
type ImageFS struct {
	doc *Document
}

// NewImageFS creates a new ImageFS instance.
func NewImageFS(doc *Document) *ImageFS {
	if doc == nil {
		panic("ImageFS: Document instance cannot be nil")
	}
	return &ImageFS{doc: doc}
}

func imageExt(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

func imageFileName(i int, format string) string {
	return fmt.Sprintf("%04d.%s", i, imageExt(format))
}

// Open opens an image by its listing name, or the root directory ".".
func (ifs *ImageFS) Open(name string) (fs.File, error) {
	log.Debugf("ImageFS: Open called with name: '%s'", name)

	if name == "." || name == "" || strings.HasSuffix(name, "/") {
		name = "."
	}
	modTime := ifs.doc.PDBHeader().ModificationTime

	if name == "." {
		rootInfo := &imageFileInfo{name: ".", isDir: true, modTime: modTime}
		return &imageFile{fs: ifs, name: ".", isDir: true, fileInfo: rootInfo}, nil
	}

	img, err := ifs.lookup(name)
	if err != nil {
		return nil, err
	}

	fileInfo := &imageFileInfo{
		name:    name,
		size:    int64(len(img.Data)),
		modTime: modTime,
	}
	return &imageFile{
		fs:       ifs,
		name:     name,
		content:  img.Data,
		reader:   bytes.NewReader(img.Data),
		fileInfo: fileInfo,
	}, nil
}

func (ifs *ImageFS) lookup(name string) (*Image, error) {
	stem, ext, found := strings.Cut(name, ".")
	if !found {
		return nil, fs.ErrNotExist
	}
	var img *Image
	if stem == "thumbnail" {
		img = ifs.doc.Thumbnail()
	} else {
		i, err := strconv.Atoi(stem)
		if err != nil || i < 0 {
			return nil, fs.ErrNotExist
		}
		img = ifs.doc.Image(i)
	}
	if img == nil || imageExt(img.Format) != ext {
		log.Debugf("ImageFS: no image for '%s'", name)
		return nil, fs.ErrNotExist
	}
	return img, nil
}

// imageFile implements the fs.File interface.
type imageFile struct {
	fs       *ImageFS
	name     string
	isDir    bool
	reader   *bytes.Reader
	content  []byte
	fileInfo fs.FileInfo
}

// Stat returns the FileInfo for the file.
func (f *imageFile) Stat() (fs.FileInfo, error) {
	return f.fileInfo, nil
}

// Read reads up to len(b) bytes from the file.
func (f *imageFile) Read(b []byte) (int, error) {
	if f.isDir {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: errors.New("is a directory")}
	}
	if f.reader == nil {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: fs.ErrClosed}
	}
	return f.reader.Read(b)
}

// Seek sets the offset for the next Read on the file.
func (f *imageFile) Seek(offset int64, whence int) (int64, error) {
	if f.isDir {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: errors.New("is a directory")}
	}
	if f.reader == nil {
		return 0, &fs.PathError{Op: "seek", Path: f.name, Err: fs.ErrClosed}
	}
	return f.reader.Seek(offset, whence)
}

// Close closes the file.
func (f *imageFile) Close() error {
	f.reader = nil
	f.content = nil
	return nil
}

// ReadDir lists the document's images. Only the root directory is
// listable.
func (f *imageFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !f.isDir || f.name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: f.name, Err: errors.New("not a directory")}
	}

	doc := f.fs.doc
	modTime := doc.PDBHeader().ModificationTime
	count := doc.ImageCount()
	entries := make([]fs.DirEntry, 0, count+1)
	for i := 0; i < count; i++ {
		img := doc.Image(i)
		if img == nil {
			continue
		}
		entries = append(entries, &imageFileInfo{
			name:    imageFileName(i, img.Format),
			size:    int64(len(img.Data)),
			modTime: modTime,
		})
	}
	if thumb := doc.Thumbnail(); thumb != nil {
		entries = append(entries, &imageFileInfo{
			name:    "thumbnail." + imageExt(thumb.Format),
			size:    int64(len(thumb.Data)),
			modTime: modTime,
		})
	}

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	log.Debugf("ImageFS: ReadDir for '%s' returning %d entries", f.name, len(entries))
	return entries, nil
}

// imageFileInfo implements the fs.FileInfo and fs.DirEntry interfaces.
type imageFileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
}

// Name returns the base name of the file.
func (fi *imageFileInfo) Name() string { return fi.name }

// Size returns the length in bytes for regular files.
func (fi *imageFileInfo) Size() int64 { return fi.size }

// IsDir reports whether fi describes a directory.
func (fi *imageFileInfo) IsDir() bool { return fi.isDir }

// ModTime returns the modification time.
func (fi *imageFileInfo) ModTime() time.Time { return fi.modTime }

// Sys returns underlying data source (can be nil).
func (fi *imageFileInfo) Sys() interface{} { return nil }

// Info returns the FileInfo for the file.
func (fi *imageFileInfo) Info() (fs.FileInfo, error) { return fi, nil }

// Type returns the file's type.
func (fi *imageFileInfo) Type() fs.FileMode { return fi.Mode().Type() }

// Mode returns the file mode bits.
func (fi *imageFileInfo) Mode() fs.FileMode {
	if fi.isDir {
		return fs.ModeDir | 0555
	}
	return 0444
}

var _ fs.File = (*imageFile)(nil)
var _ fs.ReadDirFile = (*imageFile)(nil)
var _ fs.FS = (*ImageFS)(nil)
