//go:build !notesseract

package engines

import (
	"github.com/otiai10/gosseract/v2"
)

// TesseractLinked reports whether this binary was built with libtesseract
const TesseractLinked = true

func newTessClient() tessClient {
	return gosseract.NewClient()
}

// TesseractVersion returns the version of the linked library
func TesseractVersion() string {
	return gosseract.Version()
}
