// Package testutil provides fixtures and mocks shared by trussfs tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// File is one archive member. Dir members carry no body.
type File struct {
	Name   string
	Body   []byte
	Dir    bool
	Method uint16 // zip only: zip.Store, zip.Deflate or zstd.ZipMethodWinZip
}

// Compression selects the tar stream wrapper.
type Compression string

const (
	NoCompression Compression = ""
	Gzip          Compression = "gzip"
	Zstd          Compression = "zstd"
)

// SampleFiles is the two-entry archive used across tests.
func SampleFiles() []File {
	return []File{
		{Name: "a.txt", Body: []byte("abc"), Method: zip.Deflate},
		{Name: "b.bin", Body: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, Method: zip.Store},
	}
}

// WriteZip writes a zip archive under dir and returns its path.
func WriteZip(t *testing.T, dir, name string, files ...File) string {
	t.Helper()

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestSpeed)
	})
	zw.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	for _, f := range files {
		hdr := &zip.FileHeader{Name: f.Name, Method: f.Method, Modified: time.Unix(1700000000, 0)}
		if f.Dir {
			hdr.Method = zip.Store
			hdr.SetMode(os.ModeDir | 0o755)
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if !f.Dir {
			_, err = w.Write(f.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return path
}

// WriteTar writes a tar archive, optionally compressed, and returns its path.
func WriteTar(t *testing.T, dir, name string, c Compression, files ...File) string {
	t.Helper()

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()

	var (
		sink  io.Writer = out
		finish func() error
	)
	switch c {
	case Gzip:
		gz := gzip.NewWriter(out)
		sink, finish = gz, gz.Close
	case Zstd:
		zw, err := zstd.NewWriter(out)
		require.NoError(t, err)
		sink, finish = zw, zw.Close
	}

	tw := tar.NewWriter(sink)
	for _, f := range files {
		hdr := &tar.Header{
			Name:    f.Name,
			Mode:    0o644,
			Size:    int64(len(f.Body)),
			ModTime: time.Unix(1700000000, 0),
		}
		if f.Dir {
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !f.Dir {
			_, err := tw.Write(f.Body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	if finish != nil {
		require.NoError(t, finish())
	}
	return path
}

// WriteFile writes body to path, creating parent directories.
func WriteFile(t *testing.T, path string, body []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, body, 0o644))
}

// MockPrompter is a mock line reader.
type MockPrompter struct {
	mock.Mock
}

// ReadLine mocks the ReadLine method.
func (m *MockPrompter) ReadLine(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}
