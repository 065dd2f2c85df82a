package filesystem

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/trussfs/internal/shared/fserr"
	"github.com/GriffinCanCode/trussfs/internal/shared/paths"
)

// Format identifies an archive container.
type Format string

const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarGzip Format = "tar.gz"
	FormatTarZstd Format = "tar.zst"
)

// Archive is a mounted, read-only archive. The index is built once by
// OpenArchive and never changes, so every method is safe for concurrent use.
type Archive struct {
	path    string
	format  Format
	file    *os.File
	size    int64
	zr      *zip.Reader
	entries []ArchiveEntry
	byName  map[string]int
}

// OpenArchive opens path, detects its container format from content and
// indexes every entry.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fserr.IO("archive_mount", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fserr.IO("archive_mount", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fserr.Malformed("archive_mount", path, errors.New("is a directory"))
	}

	a := &Archive{path: path, file: f, size: info.Size()}
	if err := a.index(); err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) index() error {
	format, err := detectFormat(io.NewSectionReader(a.file, 0, a.size))
	if err != nil {
		return fserr.Malformed("archive_mount", a.path, err)
	}
	a.format = format

	if format == FormatZip {
		err = a.indexZip()
	} else {
		err = a.indexTar()
	}
	if err != nil {
		return fserr.Malformed("archive_mount", a.path, err)
	}

	// Duplicate names: the later entry owns the name.
	a.byName = make(map[string]int, len(a.entries))
	for i, e := range a.entries {
		a.byName[e.Name] = i
	}
	return nil
}

// detectFormat sniffs the container type, walking up the MIME hierarchy so
// zip-based formats (jar, docx, ...) count as zip.
func detectFormat(r io.Reader) (Format, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/zip"):
			return FormatZip, nil
		case m.Is("application/x-tar"):
			return FormatTar, nil
		case m.Is("application/gzip"):
			return FormatTarGzip, nil
		case m.Is("application/zstd"):
			return FormatTarZstd, nil
		}
	}
	return "", fmt.Errorf("unrecognized container %s", mt.String())
}

func (a *Archive) indexZip() error {
	zr, err := zip.NewReader(a.file, a.size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return err
	}
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	zr.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())
	a.zr = zr

	a.entries = make([]ArchiveEntry, 0, len(zr.File))
	for i, f := range zr.File {
		kind := KindOther
		switch {
		case f.FileInfo().IsDir():
			kind = KindDir
		case f.Mode().IsRegular():
			kind = KindFile
		}
		if !paths.IsEnclosed(f.Name) {
			kind = KindUnsafe
		}
		a.entries = append(a.entries, ArchiveEntry{
			Name:   f.Name,
			Index:  i,
			Size:   f.UncompressedSize64,
			Kind:   kind,
			offset: -1,
		})
	}
	return nil
}

func (a *Archive) indexTar() error {
	r, done, err := a.stream()
	if err != nil {
		return err
	}
	defer done()

	cr := &countingReader{r: r}
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return err
		}

		e := ArchiveEntry{
			Name:   hdr.Name,
			Index:  len(a.entries),
			Kind:   tarKind(hdr),
			offset: -1,
		}
		if hdr.Size > 0 {
			e.Size = uint64(hdr.Size)
		}
		// Plain regular members are stored contiguously right after their header.
		if a.format == FormatTar && hdr.Typeflag == tar.TypeReg && !isSparse(hdr) {
			e.offset = cr.n
		}
		if !paths.IsEnclosed(hdr.Name) {
			e.Kind = KindUnsafe
		}
		a.entries = append(a.entries, e)
	}
}

func tarKind(hdr *tar.Header) EntryKind {
	switch hdr.Typeflag {
	case tar.TypeReg, tar.TypeGNUSparse:
		return KindFile
	case tar.TypeDir:
		return KindDir
	default:
		return KindOther
	}
}

func isSparse(hdr *tar.Header) bool {
	for k := range hdr.PAXRecords {
		if strings.HasPrefix(k, "GNU.sparse.") {
			return true
		}
	}
	return false
}

// stream returns a fresh decompressed view of a tar-family archive and the
// function that releases it.
func (a *Archive) stream() (io.Reader, func(), error) {
	src := io.NewSectionReader(a.file, 0, a.size)
	switch a.format {
	case FormatTar:
		return src, func() {}, nil
	case FormatTarGzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case FormatTarZstd:
		zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	return nil, nil, fmt.Errorf("%s is not a tar stream", a.format)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Path returns the path the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Format returns the detected container format.
func (a *Archive) Format() Format { return a.format }

// Len returns the number of entries.
func (a *Archive) Len() int { return len(a.entries) }

// Entries returns a copy of the index in container order.
func (a *Archive) Entries() []ArchiveEntry {
	out := make([]ArchiveEntry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Names returns entry names in container order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the ordinal of the entry named name. Matching is exact.
func (a *Archive) Lookup(name string) (int, bool) {
	i, ok := a.byName[name]
	return i, ok
}

// Entry returns the entry at ordinal i.
func (a *Archive) Entry(i int) (ArchiveEntry, bool) {
	if i < 0 || i >= len(a.entries) {
		return ArchiveEntry{}, false
	}
	return a.entries[i], true
}

// EntryByName returns the entry named name.
func (a *Archive) EntryByName(name string) (ArchiveEntry, error) {
	i, ok := a.byName[name]
	if !ok {
		return ArchiveEntry{}, fserr.NotFound("archive_entry", name)
	}
	return a.entries[i], nil
}

// Glob returns the entries whose name matches a doublestar pattern, in
// container order. Directory names match without their trailing slash.
func (a *Archive) Glob(pattern string) ([]ArchiveEntry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fserr.Malformed("archive_glob", pattern, doublestar.ErrBadPattern)
	}
	out := []ArchiveEntry{}
	for _, e := range a.entries {
		if ok, _ := doublestar.Match(pattern, strings.TrimSuffix(e.Name, "/")); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadInto copies the full content of entry i into dst and returns the
// number of bytes written. dst is left untouched on any failure, including
// when it is smaller than the entry.
func (a *Archive) ReadInto(i int, dst []byte) (int, error) {
	e, ok := a.Entry(i)
	if !ok {
		return 0, fserr.NotFound("archive_read", fmt.Sprintf("#%d", i))
	}
	if uint64(len(dst)) < e.Size {
		return 0, fserr.Capacity("archive_read", e.Name, e.Size, uint64(len(dst)))
	}
	data, err := a.read(e)
	if err != nil {
		return 0, err
	}
	return copy(dst, data), nil
}

// ReadAll returns the content of entry i, refusing entries larger than limit.
func (a *Archive) ReadAll(i int, limit int64) ([]byte, error) {
	e, ok := a.Entry(i)
	if !ok {
		return nil, fserr.NotFound("archive_read", fmt.Sprintf("#%d", i))
	}
	if limit >= 0 && e.Size > uint64(limit) {
		return nil, fserr.Capacity("archive_read", e.Name, e.Size, uint64(limit))
	}
	return a.read(e)
}

// read decompresses e into a scratch buffer sized from the index.
func (a *Archive) read(e ArchiveEntry) ([]byte, error) {
	buf := make([]byte, int(e.Size))

	var err error
	switch {
	case a.zr != nil:
		err = readZip(a.zr.File[e.Index], buf)
	case e.offset >= 0:
		_, err = io.ReadFull(io.NewSectionReader(a.file, e.offset, int64(e.Size)), buf)
	default:
		err = a.readStream(e.Index, buf)
	}
	if err != nil {
		if isCorrupt(err) {
			return nil, fserr.Malformed("archive_read", e.Name, err)
		}
		return nil, fserr.IO("archive_read", e.Name, err)
	}
	return buf, nil
}

func readZip(f *zip.File, buf []byte) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if _, err := io.ReadFull(rc, buf); err != nil {
		return err
	}
	// Reading through EOF makes the zip reader verify the CRC.
	var probe [1]byte
	n, err := io.ReadFull(rc, probe[:])
	if n > 0 {
		return fmt.Errorf("%w: entry longer than its declared %d bytes", zip.ErrFormat, len(buf))
	}
	if err != io.EOF {
		return err
	}
	return nil
}

func (a *Archive) readStream(index int, buf []byte) error {
	r, done, err := a.stream()
	if err != nil {
		return err
	}
	defer done()

	tr := tar.NewReader(r)
	for i := 0; i <= index; i++ {
		if _, err := tr.Next(); err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	_, err = io.ReadFull(tr, buf)
	return err
}

func isCorrupt(err error) bool {
	return errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrAlgorithm) ||
		errors.Is(err, tar.ErrHeader) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, gzip.ErrChecksum) ||
		errors.Is(err, gzip.ErrHeader)
}

// Close releases the backing file.
func (a *Archive) Close() error {
	return a.file.Close()
}
