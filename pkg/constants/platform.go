package constants

import (
	"runtime"
)

// PlatformConfig lists where external tools usually live and how to install them
type PlatformConfig struct {
	PdftoppmPaths   []string
	TesseractPaths  []string
	PopplerHint     string
	TesseractHint   string
	OllamaStartHint string
}

// GetPlatformConfig returns platform-specific configuration
func GetPlatformConfig() *PlatformConfig {
	switch runtime.GOOS {
	case "windows":
		return &PlatformConfig{
			PdftoppmPaths: []string{
				"pdftoppm.exe",
				"C:\\Program Files\\poppler\\Library\\bin\\pdftoppm.exe",
				"C:\\ProgramData\\chocolatey\\bin\\pdftoppm.exe",
			},
			TesseractPaths: []string{
				"tesseract.exe",
				"C:\\Program Files\\Tesseract-OCR\\tesseract.exe",
			},
			PopplerHint:     "install poppler: choco install poppler",
			TesseractHint:   "install tesseract: choco install tesseract",
			OllamaStartHint: "start Ollama from the Start menu or run: ollama serve",
		}
	case "darwin":
		return &PlatformConfig{
			PdftoppmPaths: []string{
				"pdftoppm",
				"/opt/homebrew/bin/pdftoppm",
				"/usr/local/bin/pdftoppm",
			},
			TesseractPaths: []string{
				"tesseract",
				"/opt/homebrew/bin/tesseract",
				"/usr/local/bin/tesseract",
			},
			PopplerHint:     "install poppler: brew install poppler",
			TesseractHint:   "install tesseract: brew install tesseract tesseract-lang",
			OllamaStartHint: "start Ollama: brew services start ollama",
		}
	default:
		return &PlatformConfig{
			PdftoppmPaths: []string{
				"pdftoppm",
				"/usr/bin/pdftoppm",
				"/usr/local/bin/pdftoppm",
			},
			TesseractPaths: []string{
				"tesseract",
				"/usr/bin/tesseract",
				"/usr/local/bin/tesseract",
			},
			PopplerHint:     "install poppler: apt install poppler-utils",
			TesseractHint:   "install tesseract: apt install tesseract-ocr libtesseract-dev",
			OllamaStartHint: "start Ollama: ollama serve",
		}
	}
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
