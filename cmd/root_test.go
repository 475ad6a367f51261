package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

type fakeProcessor struct {
	req    *types.OcrRequest
	result *types.OcrResult
	err    error
}

func (p *fakeProcessor) Process(_ context.Context, req *types.OcrRequest) (*types.OcrResult, error) {
	p.req = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// resetFlags restores the package-level flag values after a test
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		prompt, fastMode, jsonOutput = "", false, false
		outputPath, language = "", ""
		verbose, showVersion = false, false
	})
}

func newTestHandler(stdout *bytes.Buffer, proc *fakeProcessor) *AppHandler {
	h := NewAppHandler(stdout)
	h.loadConfig = func() (*config.Config, error) { return config.NewConfig(), nil }
	h.newProcessor = func(*config.Config, *logger.Logger) interfaces.Processor { return proc }
	return h
}

func TestAppHandler_TextOutput(t *testing.T) {
	resetFlags(t)
	var stdout bytes.Buffer
	proc := &fakeProcessor{result: &types.OcrResult{Text: "hello world", Backend: types.BackendDefault}}

	require.NoError(t, newTestHandler(&stdout, proc).ProcessFile(context.Background(), "scan.png"))

	assert.Equal(t, "hello world\n", stdout.String())
	assert.Equal(t, "scan.png", proc.req.SourcePath)
	assert.Equal(t, types.BackendDefault, proc.req.Backend)
	assert.Equal(t, types.OutputFormatText, proc.req.Format)
	assert.Equal(t, "eng", proc.req.Language)
}

func TestAppHandler_BuildsRequestFromFlags(t *testing.T) {
	resetFlags(t)
	prompt = "Extract the table"
	fastMode = true
	language = "eng+deu"

	var stdout bytes.Buffer
	proc := &fakeProcessor{result: &types.OcrResult{Text: "x", Backend: types.BackendFast}}
	require.NoError(t, newTestHandler(&stdout, proc).ProcessFile(context.Background(), "scan.png"))

	assert.Equal(t, "Extract the table", proc.req.Prompt)
	assert.Equal(t, types.BackendFast, proc.req.Backend)
	assert.Equal(t, "eng+deu", proc.req.Language)
}

func TestAppHandler_JSONOutput(t *testing.T) {
	resetFlags(t)
	jsonOutput = true

	var stdout bytes.Buffer
	proc := &fakeProcessor{result: &types.OcrResult{Text: "a < b", Backend: types.BackendFast, ElapsedSeconds: 0.5}}
	require.NoError(t, newTestHandler(&stdout, proc).ProcessFile(context.Background(), "scan.png"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	assert.Equal(t, "a < b", decoded["text"])
	assert.Equal(t, "fast", decoded["backend"])
	assert.NotContains(t, decoded, "pages")
	assert.Contains(t, stdout.String(), "a < b")
}

func TestAppHandler_OutputFile(t *testing.T) {
	resetFlags(t)
	outputPath = filepath.Join(t.TempDir(), "result.txt")

	var stdout bytes.Buffer
	proc := &fakeProcessor{result: &types.OcrResult{Text: "saved", Backend: types.BackendDefault}}
	require.NoError(t, newTestHandler(&stdout, proc).ProcessFile(context.Background(), "scan.png"))

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}

func TestAppHandler_ProcessorErrorWritesNothing(t *testing.T) {
	resetFlags(t)
	outputPath = filepath.Join(t.TempDir(), "result.txt")

	var stdout bytes.Buffer
	proc := &fakeProcessor{err: utils.NewBackendTimeoutError("Ollama request timed out", context.DeadlineExceeded)}
	err := newTestHandler(&stdout, proc).ProcessFile(context.Background(), "scan.png")

	require.Error(t, err)
	assert.Equal(t, utils.ExitBackendTimeout, utils.ExitCode(err))
	assert.Empty(t, stdout.String())
	assert.NoFileExists(t, outputPath)
}

func TestAppHandler_InvalidConfig(t *testing.T) {
	resetFlags(t)

	var stdout bytes.Buffer
	h := newTestHandler(&stdout, &fakeProcessor{})
	h.loadConfig = func() (*config.Config, error) {
		cfg := config.NewConfig()
		cfg.RequestTimeout = 0
		return cfg, nil
	}

	err := h.ProcessFile(context.Background(), "scan.png")
	assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))
	assert.Equal(t, utils.ExitInternal, utils.ExitCode(err))
}

func TestAppHandler_MissingFileFailsBeforeBackend(t *testing.T) {
	resetFlags(t)

	var stdout bytes.Buffer
	h := NewAppHandler(&stdout)
	h.loadConfig = func() (*config.Config, error) {
		cfg := config.NewConfig()
		cfg.OllamaBaseURL = "http://127.0.0.1:1"
		return cfg, nil
	}

	err := h.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Equal(t, utils.ExitInput, utils.ExitCode(err))
	assert.Empty(t, stdout.String())
}

func TestRootCmd_NoArgs(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Equal(t, utils.ExitInput, utils.ExitCode(err))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRootCmd_VersionFlag(t *testing.T) {
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ocr "+version+"\n", out.String())
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	err := utils.NewRasterizationError("pdftoppm not found", nil).
		WithHint("install poppler (brew install poppler / apt install poppler-utils)")

	reportError(&buf, err)

	assert.Contains(t, buf.String(), "Error (rasterization): pdftoppm not found")
	assert.Contains(t, buf.String(), "Hint: install poppler")
	assert.NotContains(t, buf.String(), "cause:")

	buf.Reset()
	reportError(&buf, os.ErrPermission)
	assert.Equal(t, "Error: permission denied\n", buf.String())
}
