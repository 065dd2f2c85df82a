package filesystem

import "github.com/gabriel-vasile/mimetype"

// ContentType sniffs the MIME type of entry content.
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsText reports whether data sniffs as a text/* type.
func IsText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
