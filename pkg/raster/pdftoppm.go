// Package raster renders PDF pages to PNG files with poppler's pdftoppm.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// CommandRunner runs an external program and returns its combined output
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// PageCounter reports how many pages a PDF has
type PageCounter interface {
	CountPages(path string) (int, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Option customizes a PdftoppmRasterizer
type Option func(*PdftoppmRasterizer)

// WithRunner replaces the process runner
func WithRunner(r CommandRunner) Option {
	return func(p *PdftoppmRasterizer) { p.runner = r }
}

// WithPageCounter replaces the page counter
func WithPageCounter(c PageCounter) Option {
	return func(p *PdftoppmRasterizer) { p.counter = c }
}

// WithLookPath replaces the binary lookup
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *PdftoppmRasterizer) { p.lookPath = fn }
}

// PdftoppmRasterizer implements interfaces.Rasterizer
type PdftoppmRasterizer struct {
	binary   string
	dpi      int
	hint     string
	runner   CommandRunner
	counter  PageCounter
	lookPath func(string) (string, error)
	logger   *logger.Logger
}

var _ interfaces.Rasterizer = (*PdftoppmRasterizer)(nil)

// NewPdftoppmRasterizer creates a rasterizer using the binary and DPI from cfg.
// The binary is resolved on Open through ResolveBinary.
func NewPdftoppmRasterizer(cfg *config.Config, log *logger.Logger, opts ...Option) *PdftoppmRasterizer {
	p := &PdftoppmRasterizer{
		binary:   cfg.PdftoppmPath,
		dpi:      cfg.RasterDPI,
		hint:     constants.GetPlatformConfig().PopplerHint,
		runner:   execRunner{},
		counter:  PDFPageCounter{},
		lookPath: exec.LookPath,
		logger:   log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BinaryCandidates lists where pdftoppm is looked up. A configured path other
// than the bare default is used alone; the default also tries the platform paths.
func BinaryCandidates(configured string) []string {
	if configured != "" && configured != config.DefaultPdftoppmPath {
		return []string{configured}
	}
	return constants.GetPlatformConfig().PdftoppmPaths
}

// ResolveBinary returns the first candidate for configured that lookPath accepts
func ResolveBinary(configured string, lookPath func(string) (string, error)) (string, error) {
	var lastErr error
	for _, candidate := range BinaryCandidates(configured) {
		path, err := lookPath(utils.ExpandPath(candidate))
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// Open resolves pdftoppm and counts the pages. Nothing is rendered yet.
func (p *PdftoppmRasterizer) Open(ctx context.Context, pdfPath, workDir string) (interfaces.PageSequence, error) {
	binary, err := ResolveBinary(p.binary, p.lookPath)
	if err != nil {
		return nil, utils.NewRasterizationError(fmt.Sprintf("PDF renderer %q not found", p.binary), err).
			WithHint(p.hint)
	}

	count, err := p.countPages(ctx, binary, pdfPath)
	if err != nil {
		return nil, utils.NewRasterizationError("cannot read PDF", err).
			WithContext("path", pdfPath)
	}
	if count < 1 {
		return nil, utils.NewRasterizationError("PDF has no pages", nil).WithContext("path", pdfPath)
	}

	p.logger.Debug("PDF %s has %d pages", pdfPath, count)
	return &pageSequence{
		rasterizer: p,
		binary:     binary,
		pdfPath:    pdfPath,
		workDir:    workDir,
		count:      count,
	}, nil
}

// countPages asks the PDF parser first and falls back to poppler's pdfinfo,
// which repairs damaged cross-reference tables the parser rejects.
func (p *PdftoppmRasterizer) countPages(ctx context.Context, binary, pdfPath string) (int, error) {
	count, parseErr := p.counter.CountPages(pdfPath)
	if parseErr == nil {
		return count, nil
	}
	p.logger.Debug("PDF parser failed on %s, asking pdfinfo: %v", pdfPath, parseErr)

	info := pdfinfoFor(binary)
	out, err := p.runner.Run(ctx, info, pdfPath)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		return 0, errors.Wrapf(parseErr, "%s also failed (%v: %s)", filepath.Base(info), err, msg)
	}

	count, err = parsePdfinfoPages(out)
	if err != nil {
		return 0, errors.Wrapf(parseErr, "%s output unusable (%v)", filepath.Base(info), err)
	}
	return count, nil
}

// pdfinfoFor returns the pdfinfo binary installed next to pdftoppm
func pdfinfoFor(pdftoppm string) string {
	name := "pdfinfo"
	if strings.HasSuffix(strings.ToLower(pdftoppm), ".exe") {
		name += ".exe"
	}
	dir := filepath.Dir(pdftoppm)
	if dir == "." {
		return name
	}
	return filepath.Join(dir, name)
}

// parsePdfinfoPages reads the "Pages:" line of pdfinfo output
func parsePdfinfoPages(out []byte) (int, error) {
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, errors.Wrap(err, "parse page count")
		}
		return n, nil
	}
	return 0, errors.New("no Pages line")
}

type pageSequence struct {
	rasterizer *PdftoppmRasterizer
	binary     string
	pdfPath    string
	workDir    string
	count      int
}

func (s *pageSequence) Len() int {
	return s.count
}

// Page renders page n to <workDir>/page-<n>.png
func (s *pageSequence) Page(ctx context.Context, n int) (types.ImagePayload, error) {
	if n < 1 || n > s.count {
		return types.ImagePayload{}, utils.NewRasterizationError(
			fmt.Sprintf("page %d out of range 1..%d", n, s.count), nil)
	}

	prefix := filepath.Join(s.workDir, fmt.Sprintf("page-%d", n))
	page := strconv.Itoa(n)
	args := []string{
		"-png",
		"-r", strconv.Itoa(s.rasterizer.dpi),
		"-f", page, "-l", page,
		"-singlefile",
		s.pdfPath, prefix,
	}

	out, err := s.rasterizer.runner.Run(ctx, s.binary, args...)
	if err != nil {
		if ctx.Err() != nil {
			return types.ImagePayload{}, utils.WrapError(ctx.Err(), utils.ErrorTypeRasterization, "PDF conversion interrupted")
		}
		msg := strings.TrimSpace(string(out))
		return types.ImagePayload{}, utils.NewRasterizationError(
			fmt.Sprintf("pdftoppm failed on page %d", n), errors.Wrap(err, msg)).
			WithHint("check that the PDF is not corrupt or password protected")
	}

	path := prefix + ".png"
	if _, err := os.Stat(path); err != nil {
		return types.ImagePayload{}, utils.NewRasterizationError(
			fmt.Sprintf("pdftoppm produced no image for page %d", n), err)
	}

	s.rasterizer.logger.Progress("🖼️", "Converted page %d/%d", n, s.count)
	return types.ImagePayload{Path: path, Page: n}, nil
}
