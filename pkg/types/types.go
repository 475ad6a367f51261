package types

// Backend identifies which OCR engine serves a request
type Backend string

const (
	BackendDefault Backend = "default" // vision-language model behind Ollama
	BackendFast    Backend = "fast"    // in-process Tesseract
)

// BackendFor maps the --fast flag to a backend
func BackendFor(fast bool) Backend {
	if fast {
		return BackendFast
	}
	return BackendDefault
}

// OutputFormat represents how a result is rendered
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// SourceKind tells images and PDFs apart
type SourceKind string

const (
	SourceKindImage SourceKind = "image"
	SourceKindPDF   SourceKind = "pdf"
)

// OcrRequest is built once per invocation from command line input
type OcrRequest struct {
	SourcePath string
	Kind       SourceKind
	Prompt     string
	Backend    Backend
	Format     OutputFormat
	OutputPath string
	Language   string
}

// ImagePayload is a single image on disk handed to a backend.
// Page is 1-based for PDF pages and 0 for standalone images.
type ImagePayload struct {
	Path string
	Page int
}

// OcrResult is the outcome of one request
type OcrResult struct {
	Text           string   `json:"text"`
	Backend        Backend  `json:"backend"`
	Pages          int      `json:"pages,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	PageTexts      []string `json:"page_texts,omitempty"`
}

// FileInfo contains basic information about a source file
type FileInfo struct {
	Path      string     `json:"path"`
	Extension string     `json:"extension"`
	Size      int64      `json:"size"`
	Kind      SourceKind `json:"kind"`
}
