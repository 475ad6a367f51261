// Package output renders results and writes them to stdout or a file.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// Render formats result as plain text or indented JSON
func Render(result *types.OcrResult, format types.OutputFormat) ([]byte, error) {
	switch format {
	case types.OutputFormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeInternal, "failed to encode result")
		}
		return buf.Bytes(), nil
	case types.OutputFormatText, "":
		return []byte(result.Text), nil
	default:
		return nil, utils.NewConfigError(fmt.Sprintf("unknown output format: %s", format), nil)
	}
}

// Emit writes the rendered result to outputPath, or to stdout when outputPath is empty.
// Stdout output always ends with a newline; files receive the rendered bytes as is.
func Emit(result *types.OcrResult, format types.OutputFormat, outputPath string, stdout io.Writer) error {
	data, err := Render(result, format)
	if err != nil {
		return err
	}

	if outputPath == "" {
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		if _, err := stdout.Write(data); err != nil {
			return utils.NewOutputWriteError("failed to write to stdout", err)
		}
		return nil
	}

	return WriteFileAtomic(utils.ExpandPath(outputPath), data)
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place.
// On any failure the temp file is removed and path is left untouched.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || strings.HasSuffix(path, string(filepath.Separator)) {
		return utils.NewOutputWriteError(fmt.Sprintf("output path is a directory: %s", path), nil)
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return utils.NewOutputWriteError(fmt.Sprintf("output path is a directory: %s", path), nil)
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot create %s", path), err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot write %s", path), err)
	}
	if err = tmp.Sync(); err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot flush %s", path), err)
	}
	if err = tmp.Close(); err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot close %s", path), err)
	}
	if err = os.Chmod(tmpPath, constants.DefaultFilePermission); err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot set permissions on %s", path), err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return utils.NewOutputWriteError(fmt.Sprintf("cannot move result into %s", path), errors.Wrap(err, tmpPath))
	}

	return nil
}
