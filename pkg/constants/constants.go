package constants

import "time"

// Application constants
const (
	AppName = "ocr"
	// AppDirName holds the user config file, relative to the home directory
	AppDirName = ".ocr-skill"
)

// File processing constants
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// PageHeaderFormat labels each page when a PDF is concatenated
	PageHeaderFormat = "=== Page %d ==="
	PageSeparator    = "\n\n"
)

// Image preprocessing
const (
	DefaultMaxImageDimension = 1536
	DefaultJPEGQuality       = 90
	DefaultRasterDPI         = 200
)

// Backend defaults
const (
	DefaultOllamaBaseURL  = "http://localhost:11434"
	DefaultOllamaModel    = "deepseek-ocr"
	DefaultPrompt         = "Extract all text from this image."
	DefaultLanguage       = "eng"
	DefaultRequestTimeout = 120 * time.Second
	DefaultFastTimeout    = 60 * time.Second
	ModelSourceTimeout    = 3 * time.Second

	// DefaultModelSourceURL is where Tesseract language data is published
	DefaultModelSourceURL = "https://github.com/tesseract-ocr/tessdata_fast"
)

// Supported source extensions, lower case without the dot
var (
	ImageExtensions = map[string]bool{
		"png":  true,
		"jpg":  true,
		"jpeg": true,
		"bmp":  true,
		"gif":  true,
		"webp": true,
		"tiff": true,
		"tif":  true,
	}

	PDFExtension = "pdf"
)

// SupportedExtensions returns every accepted extension in display order
func SupportedExtensions() []string {
	return []string{"pdf", "png", "jpg", "jpeg", "bmp", "gif", "webp", "tiff", "tif"}
}
