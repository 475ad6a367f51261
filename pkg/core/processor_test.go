package core

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/preprocess"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

type call struct {
	page   int
	prompt string
	width  int
	height int
}

type fakeRecognizer struct {
	backend types.Backend
	calls   []call
	failOn  int
	err     error
}

func (r *fakeRecognizer) Name() types.Backend { return r.backend }

func (r *fakeRecognizer) Recognize(_ context.Context, payload types.ImagePayload, prompt string) (string, error) {
	w, h, err := preprocess.Dimensions(payload.Path)
	if err != nil {
		return "", err
	}
	r.calls = append(r.calls, call{page: payload.Page, prompt: prompt, width: w, height: h})
	if r.err != nil && (r.failOn == 0 || r.failOn == payload.Page) {
		return "", r.err
	}
	if r.backend == types.BackendFast {
		return fmt.Sprintf("text of page %d", payload.Page), nil
	}
	return fmt.Sprintf("text of page %d [%s]", payload.Page, prompt), nil
}

type fakeSelector struct {
	recognizer *fakeRecognizer
	selected   []types.Backend
}

func (s *fakeSelector) Select(b types.Backend) (interfaces.Recognizer, error) {
	s.selected = append(s.selected, b)
	s.recognizer.backend = b
	return s.recognizer, nil
}

type fakeRasterizer struct {
	t      *testing.T
	pages  int
	width  int
	height int
	opened int
	err    error
}

func (r *fakeRasterizer) Open(_ context.Context, _ string, workDir string) (interfaces.PageSequence, error) {
	r.opened++
	if r.err != nil {
		return nil, r.err
	}
	return &fakePages{t: r.t, r: r, dir: workDir}, nil
}

type fakePages struct {
	t   *testing.T
	r   *fakeRasterizer
	dir string
}

func (p *fakePages) Len() int { return p.r.pages }

func (p *fakePages) Page(_ context.Context, n int) (types.ImagePayload, error) {
	path := filepath.Join(p.dir, fmt.Sprintf("page-%d.png", n))
	writePNG(p.t, path, p.r.width, p.r.height)
	return types.ImagePayload{Path: path, Page: n}, nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

type fixture struct {
	processor  *RequestProcessor
	selector   *fakeSelector
	rasterizer *fakeRasterizer
	tempRoot   string
	dir        string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		selector:   &fakeSelector{recognizer: &fakeRecognizer{}},
		rasterizer: &fakeRasterizer{t: t, pages: 3, width: 1700, height: 2200},
		tempRoot:   t.TempDir(),
		dir:        t.TempDir(),
	}

	cfg := config.NewConfig()
	cfg.TempDir = f.tempRoot
	log := logger.Discard()
	f.processor = NewRequestProcessor(cfg, log,
		WithSelector(f.selector),
		WithRasterizer(f.rasterizer),
	)
	return f
}

func (f *fixture) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func (f *fixture) file(t *testing.T, name string, w, h int) string {
	path := filepath.Join(f.dir, name)
	writePNG(t, path, w, h)
	return path
}

func TestProcess_Image(t *testing.T) {
	f := newFixture(t)
	src := f.file(t, "scan.png", 800, 600)

	result, err := f.processor.Process(context.Background(), &types.OcrRequest{
		SourcePath: src,
		Backend:    types.BackendDefault,
		Prompt:     "read it",
	})
	require.NoError(t, err)

	assert.Equal(t, "text of page 0 [read it]", result.Text)
	assert.Equal(t, types.BackendDefault, result.Backend)
	assert.Zero(t, result.Pages)
	assert.Equal(t, 0, f.rasterizer.opened)
	require.Len(t, f.selector.recognizer.calls, 1)
	assert.Equal(t, call{page: 0, prompt: "read it", width: 800, height: 600}, f.selector.recognizer.calls[0])
	f.assertNoTempFiles(t)
}

func TestProcess_OversizedImageIsDownscaledAndCleanedUp(t *testing.T) {
	f := newFixture(t)
	src := f.file(t, "big.png", 4000, 3000)

	_, err := f.processor.Process(context.Background(), &types.OcrRequest{SourcePath: src, Backend: types.BackendDefault})
	require.NoError(t, err)

	c := f.selector.recognizer.calls[0]
	assert.Equal(t, 1536, c.width)
	assert.Equal(t, 1152, c.height)
	assert.FileExists(t, src)
	f.assertNoTempFiles(t)
}

func TestProcess_PDFPagesInOrder(t *testing.T) {
	f := newFixture(t)
	src := f.file(t, "doc.pdf", 1, 1)

	result, err := f.processor.Process(context.Background(), &types.OcrRequest{
		SourcePath: src,
		Backend:    types.BackendDefault,
		Prompt:     "p",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t,
		"=== Page 1 ===\ntext of page 1 [p]\n\n=== Page 2 ===\ntext of page 2 [p]\n\n=== Page 3 ===\ntext of page 3 [p]",
		result.Text)
	assert.Equal(t, []string{"text of page 1 [p]", "text of page 2 [p]", "text of page 3 [p]"}, result.PageTexts)

	for i, c := range f.selector.recognizer.calls {
		assert.Equal(t, i+1, c.page)
		assert.LessOrEqual(t, c.width, 1536)
		assert.LessOrEqual(t, c.height, 1536)
	}
	f.assertNoTempFiles(t)
}

func TestProcess_FastBackendIgnoresPrompt(t *testing.T) {
	f := newFixture(t)
	src := f.file(t, "scan.png", 100, 100)

	var outputs []string
	for _, prompt := range []string{"a", "b", ""} {
		result, err := f.processor.Process(context.Background(), &types.OcrRequest{
			SourcePath: src,
			Backend:    types.BackendFast,
			Prompt:     prompt,
		})
		require.NoError(t, err)
		assert.Equal(t, types.BackendFast, result.Backend)
		outputs = append(outputs, result.Text)
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}

func TestProcess_MissingFileFailsBeforeBackend(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.Process(context.Background(), &types.OcrRequest{
		SourcePath: filepath.Join(f.dir, "missing.png"),
		Backend:    types.BackendDefault,
	})
	require.Error(t, err)
	assert.Equal(t, utils.ExitInput, utils.ExitCode(err))
	assert.Empty(t, f.selector.selected)
	assert.Empty(t, f.selector.recognizer.calls)
	assert.Equal(t, 0, f.rasterizer.opened)
}

func TestProcess_UnsupportedExtension(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.dir, "notes.docx")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := f.processor.Process(context.Background(), &types.OcrRequest{SourcePath: src})
	assert.True(t, utils.IsType(err, utils.ErrorTypeInput))
	assert.Empty(t, f.selector.selected)
}

func TestProcess_BackendFailureCleansUp(t *testing.T) {
	f := newFixture(t)
	f.selector.recognizer.err = utils.NewBackendTimeoutError("slow", nil)
	f.selector.recognizer.failOn = 2
	src := f.file(t, "doc.pdf", 1, 1)

	result, err := f.processor.Process(context.Background(), &types.OcrRequest{SourcePath: src, Backend: types.BackendDefault})
	assert.Nil(t, result)
	assert.Equal(t, utils.ExitBackendTimeout, utils.ExitCode(err))
	assert.Contains(t, err.Error(), "page 2")
	assert.Len(t, f.selector.recognizer.calls, 2)
	f.assertNoTempFiles(t)
}

func TestProcess_RasterizationFailure(t *testing.T) {
	f := newFixture(t)
	f.rasterizer.err = utils.NewRasterizationError("pdftoppm not found", errors.New("exec"))
	src := f.file(t, "doc.pdf", 1, 1)

	_, err := f.processor.Process(context.Background(), &types.OcrRequest{SourcePath: src, Backend: types.BackendDefault})
	assert.Equal(t, utils.ExitRasterization, utils.ExitCode(err))
	assert.Empty(t, f.selector.recognizer.calls)
	f.assertNoTempFiles(t)
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "=== Page 1 ===\nonly", JoinPages([]string{"only"}))
	assert.Equal(t, "", JoinPages(nil))
}
