//go:build notesseract

package engines

// TesseractLinked reports whether this binary was built with libtesseract
const TesseractLinked = false

// newTessClient is nil so the fast backend reports itself unavailable
var newTessClient func() tessClient

// TesseractVersion returns an empty string without libtesseract
func TesseractVersion() string {
	return ""
}
