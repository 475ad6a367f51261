package interfaces

import (
	"context"

	"github.com/nodewee/ocr-skill/pkg/types"
)

// Recognizer is one OCR backend. Implementations never retry.
type Recognizer interface {
	// Name returns the backend identifier reported in results
	Name() types.Backend

	// Recognize extracts text from a single image. The prompt may be ignored
	// by backends that cannot follow instructions.
	Recognize(ctx context.Context, payload types.ImagePayload, prompt string) (string, error)
}

// Preprocessor bounds image size before recognition
type Preprocessor interface {
	// Prepare returns the payload to send to a backend. Any temporary copy is
	// registered with tm and removed by its cleanup.
	Prepare(ctx context.Context, payload types.ImagePayload, tm TempFileManager) (types.ImagePayload, error)
}

// Processor runs one request end to end
type Processor interface {
	Process(ctx context.Context, req *types.OcrRequest) (*types.OcrResult, error)
}
