package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/types"
)

// GetFileInfo checks that path names a supported image or PDF and describes it.
// It only reads file metadata.
func GetFileInfo(path string) (*types.FileInfo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, NewInputError("no input file given", nil)
	}

	absPath, err := filepath.Abs(ExpandPath(path))
	if err != nil {
		return nil, NewInputError("cannot resolve file path", err).WithContext("path", path)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewInputError(fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, NewInputError(fmt.Sprintf("cannot access file: %s", path), err)
	}
	if stat.IsDir() {
		return nil, NewInputError(fmt.Sprintf("not a file: %s", path), nil)
	}

	ext := FileExtension(absPath)
	kind, ok := SourceKindFor(ext)
	if !ok {
		return nil, NewInputError(fmt.Sprintf("unsupported file type: .%s", ext), nil).
			WithHint("supported: " + strings.Join(constants.SupportedExtensions(), ", "))
	}

	return &types.FileInfo{
		Path:      absPath,
		Extension: ext,
		Size:      stat.Size(),
		Kind:      kind,
	}, nil
}

// FileExtension returns the lower-case extension of path without the dot
func FileExtension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// SourceKindFor maps an extension to image or PDF
func SourceKindFor(ext string) (types.SourceKind, bool) {
	ext = strings.ToLower(ext)
	switch {
	case ext == constants.PDFExtension:
		return types.SourceKindPDF, true
	case constants.ImageExtensions[ext]:
		return types.SourceKindImage, true
	default:
		return "", false
	}
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// SanitizeFileName replaces characters that are not allowed in file names
func SanitizeFileName(filename string) string {
	sanitized := filename

	if constants.IsWindows() {
		for _, char := range []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"} {
			sanitized = strings.ReplaceAll(sanitized, char, "_")
		}
		sanitized = strings.TrimRight(sanitized, ". ")
	} else {
		sanitized = strings.ReplaceAll(sanitized, "/", "_")
		sanitized = strings.ReplaceAll(sanitized, "\x00", "_")
	}

	return strings.TrimSpace(sanitized)
}

// FindExecutable returns the first candidate that resolves to an executable.
// Bare names are looked up in PATH, absolute paths are checked directly.
func FindExecutable(candidates ...string) (string, bool) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if path, err := exec.LookPath(ExpandPath(candidate)); err == nil {
			return path, true
		}
	}
	return "", false
}
