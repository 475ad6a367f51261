package raster

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// PDFPageCounter reads the page tree with ledongthuc/pdf
type PDFPageCounter struct{}

// CountPages returns the number of pages in the PDF at path.
// The parser panics on some malformed files; that is reported as an error.
func (PDFPageCounter) CountPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return r.NumPage(), nil
}
