// Package core runs a single OCR request from source file to result.
package core

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/ocr"
	"github.com/nodewee/ocr-skill/pkg/preprocess"
	"github.com/nodewee/ocr-skill/pkg/raster"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// RecognizerSelector picks the recognizer for a backend
type RecognizerSelector interface {
	Select(backend types.Backend) (interfaces.Recognizer, error)
}

// Option customizes a RequestProcessor
type Option func(*RequestProcessor)

// WithSelector replaces the backend selector
func WithSelector(s RecognizerSelector) Option {
	return func(p *RequestProcessor) { p.selector = s }
}

// WithRasterizer replaces the PDF rasterizer
func WithRasterizer(r interfaces.Rasterizer) Option {
	return func(p *RequestProcessor) { p.rasterizer = r }
}

// WithPreprocessor replaces the image preprocessor
func WithPreprocessor(pp interfaces.Preprocessor) Option {
	return func(p *RequestProcessor) { p.preprocessor = pp }
}

// WithTempManagerFactory replaces how per-request temp managers are created
func WithTempManagerFactory(fn func() interfaces.TempFileManager) Option {
	return func(p *RequestProcessor) { p.newTempManager = fn }
}

// RequestProcessor implements interfaces.Processor
type RequestProcessor struct {
	config         *config.Config
	logger         *logger.Logger
	selector       RecognizerSelector
	rasterizer     interfaces.Rasterizer
	preprocessor   interfaces.Preprocessor
	newTempManager func() interfaces.TempFileManager
	now            func() time.Time
}

var _ interfaces.Processor = (*RequestProcessor)(nil)

// NewRequestProcessor wires the production collaborators from cfg
func NewRequestProcessor(cfg *config.Config, log *logger.Logger, opts ...Option) *RequestProcessor {
	p := &RequestProcessor{
		config:       cfg,
		logger:       log,
		selector:     ocr.NewBackendSelector(cfg, log),
		rasterizer:   raster.NewPdftoppmRasterizer(cfg, log),
		preprocessor: preprocess.NewImagePreprocessor(cfg, log),
		newTempManager: func() interfaces.TempFileManager {
			return utils.NewSimpleTempManager(cfg.TempDir, log)
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates the source, runs every image through the selected backend
// and assembles one result. All temporary files are gone when it returns.
func (p *RequestProcessor) Process(ctx context.Context, req *types.OcrRequest) (*types.OcrResult, error) {
	start := p.now()

	info, err := utils.GetFileInfo(req.SourcePath)
	if err != nil {
		return nil, err
	}
	req.Kind = info.Kind

	recognizer, err := p.selector.Select(req.Backend)
	if err != nil {
		return nil, err
	}

	p.logger.Progress("📄", "Processing %s: %s", info.Kind, info.Path)
	p.logger.Progress("🔍", "Backend: %s", recognizer.Name())

	var texts []string
	tm := p.newTempManager()
	err = tm.WithCleanup(func() error {
		var procErr error
		if info.Kind == types.SourceKindPDF {
			texts, procErr = p.processPDF(ctx, info.Path, req.Prompt, recognizer, tm)
		} else {
			var text string
			text, procErr = p.recognizeOne(ctx, types.ImagePayload{Path: info.Path}, req.Prompt, recognizer, tm)
			texts = []string{text}
		}
		return procErr
	})
	if err != nil {
		return nil, err
	}

	result := &types.OcrResult{
		Backend:        recognizer.Name(),
		ElapsedSeconds: roundSeconds(p.now().Sub(start)),
	}
	if info.Kind == types.SourceKindPDF {
		result.Text = JoinPages(texts)
		result.Pages = len(texts)
		result.PageTexts = texts
	} else {
		result.Text = texts[0]
	}

	p.logger.Info("Extracted %d characters in %.2fs", len(result.Text), result.ElapsedSeconds)
	return result, nil
}

func (p *RequestProcessor) processPDF(ctx context.Context, path, prompt string, recognizer interfaces.Recognizer, tm interfaces.TempFileManager) ([]string, error) {
	workDir, err := tm.CreateTempDir("pages")
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeInternal, "cannot create page directory")
	}

	pages, err := p.rasterizer.Open(ctx, path, workDir)
	if err != nil {
		return nil, err
	}

	total := pages.Len()
	texts := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		page, err := pages.Page(ctx, n)
		if err != nil {
			return nil, err
		}

		p.logger.Progress("🔍", "OCR page %d/%d...", n, total)
		text, err := p.recognizeOne(ctx, page, prompt, recognizer, tm)
		os.Remove(page.Path)
		if err != nil {
			return nil, utils.WrapError(err, "", fmt.Sprintf("page %d", n))
		}
		texts = append(texts, text)
	}

	return texts, nil
}

func (p *RequestProcessor) recognizeOne(ctx context.Context, payload types.ImagePayload, prompt string, recognizer interfaces.Recognizer, tm interfaces.TempFileManager) (string, error) {
	prepared, err := p.preprocessor.Prepare(ctx, payload, tm)
	if err != nil {
		return "", err
	}
	return recognizer.Recognize(ctx, prepared, prompt)
}

// JoinPages labels each page and joins them in order
func JoinPages(texts []string) string {
	parts := make([]string, len(texts))
	for i, text := range texts {
		parts[i] = fmt.Sprintf(constants.PageHeaderFormat, i+1) + "\n" + text
	}
	return strings.Join(parts, constants.PageSeparator)
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
