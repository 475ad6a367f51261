package engines

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// tessClient is the subset of *gosseract.Client the engine needs
type tessClient interface {
	SetImage(path string) error
	SetLanguage(langs ...string) error
	SetTessdataPrefix(prefix string) error
	Text() (string, error)
	Close() error
}

// TesseractEngine runs Tesseract in process. It cannot follow prompts.
type TesseractEngine struct {
	languages        []string
	tessdataPrefix   string
	timeout          time.Duration
	checkModelSource bool
	modelSourceURL   string
	httpClient       *http.Client
	clientFactory    func() tessClient
	logger           *logger.Logger

	promptOnce sync.Once
	sourceOnce sync.Once
}

var _ interfaces.Recognizer = (*TesseractEngine)(nil)

// NewTesseractEngine creates an engine from cfg using the linked Tesseract library
func NewTesseractEngine(cfg *config.Config, log *logger.Logger) *TesseractEngine {
	return &TesseractEngine{
		languages:        ParseLanguages(cfg.Language),
		tessdataPrefix:   cfg.TessdataPrefix,
		timeout:          cfg.FastTimeout,
		checkModelSource: !cfg.DisableModelSourceCheck,
		modelSourceURL:   cfg.ModelSourceURL,
		httpClient:       &http.Client{Timeout: constants.ModelSourceTimeout},
		clientFactory:    newTessClient,
		logger:           log,
	}
}

func (e *TesseractEngine) Name() types.Backend {
	return types.BackendFast
}

// Recognize extracts text from one image. A non-empty prompt is ignored with a warning.
func (e *TesseractEngine) Recognize(ctx context.Context, payload types.ImagePayload, prompt string) (string, error) {
	if strings.TrimSpace(prompt) != "" {
		e.promptOnce.Do(func() {
			e.logger.Warn("--prompt is ignored in fast mode; Tesseract extracts plain text only")
		})
	}

	if e.clientFactory == nil {
		return "", utils.NewBackendUnavailableError("this build has no Tesseract support", nil).
			WithHint("rebuild without the notesseract tag after installing libtesseract")
	}

	e.sourceOnce.Do(func() { e.verifyModelSource(ctx) })

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	// The cgo call cannot be interrupted; on timeout it finishes in the background.
	go func() {
		text, err := e.recognize(payload.Path)
		done <- outcome{text, err}
	}()

	select {
	case res := <-done:
		return strings.TrimSpace(res.text), res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return "", utils.NewBackendTimeoutError(
				fmt.Sprintf("Tesseract did not finish within %s", e.timeout), ctx.Err())
		}
		return "", utils.WrapError(ctx.Err(), utils.ErrorTypeInternal, "recognition interrupted")
	}
}

func (e *TesseractEngine) recognize(path string) (string, error) {
	client := e.clientFactory()
	defer client.Close()

	hint := constants.GetPlatformConfig().TesseractHint
	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", utils.NewBackendUnavailableError("invalid tessdata directory", err).WithHint(hint)
		}
	}
	if err := client.SetLanguage(e.languages...); err != nil {
		return "", utils.NewBackendUnavailableError("invalid Tesseract languages", err).WithHint(hint)
	}
	if err := client.SetImage(path); err != nil {
		return "", utils.NewInputError("Tesseract cannot load image", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", utils.NewBackendUnavailableError(
			fmt.Sprintf("Tesseract failed (languages %s)", strings.Join(e.languages, "+")), err).
			WithHint(hint + " and the language data for " + strings.Join(e.languages, ", "))
	}
	return text, nil
}

// verifyModelSource warns when the language data source is unreachable.
// It never fails the request; local data is used either way.
func (e *TesseractEngine) verifyModelSource(ctx context.Context) {
	if !e.checkModelSource || e.modelSourceURL == "" {
		return
	}

	if err := CheckModelSource(ctx, e.httpClient, e.modelSourceURL); err != nil {
		e.logger.Warn("Model source %s unreachable, using local language data only (set %s=1 to skip this check): %v",
			e.modelSourceURL, config.EnvDisableModelSourceCheck, err)
		return
	}
	e.logger.Debug("Model source %s reachable", e.modelSourceURL)
}

// CheckModelSource sends a HEAD request to url and expects a non-error status
func CheckModelSource(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

// ParseLanguages splits "eng+chi_sim" or "eng,deu" into Tesseract language codes
func ParseLanguages(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return []string{constants.DefaultLanguage}
	}
	return fields
}
