package interfaces

import (
	"context"

	"github.com/nodewee/ocr-skill/pkg/types"
)

// Rasterizer turns a PDF into page images
type Rasterizer interface {
	// Open inspects the PDF and returns its pages without rendering them.
	// Rendered files are written below workDir.
	Open(ctx context.Context, pdfPath, workDir string) (PageSequence, error)
}

// PageSequence is a finite, restartable sequence of PDF pages.
// Pages are rendered on demand, so iterating again renders again.
type PageSequence interface {
	// Len returns the number of pages
	Len() int

	// Page renders page n (1-based)
	Page(ctx context.Context, n int) (types.ImagePayload, error)
}
