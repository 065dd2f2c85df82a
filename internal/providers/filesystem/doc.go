// Package filesystem provides the real-filesystem and archive primitives
// behind a trussfs context.
//
// This package is organized into specialized modules:
//   - directory: immediate directory listing, recursive makedir, subdirectory walks
//   - archives: eager archive index (zip, tar, tar.gz, tar.zst) and all-or-nothing reads
//   - formats: the text encodings of directory and archive entries, plus
//     JSON/YAML/TOML export of entry slices
//   - metadata: content sniffing
//
// Nothing here knows about handles. Callers own the returned values and
// release archives with Close.
//
// Example Usage:
//
//	a, err := filesystem.OpenArchive("assets.zip")
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	e, err := a.EntryByName("a.txt")
//	buf := make([]byte, e.Size)
//	n, err := a.ReadInto(e.Index, buf)
package filesystem
