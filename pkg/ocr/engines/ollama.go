package engines

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// OllamaEngine sends images to a vision-language model served by Ollama
type OllamaEngine struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *logger.Logger
}

var _ interfaces.Recognizer = (*OllamaEngine)(nil)

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaEngine creates an engine for cfg.OllamaBaseURL and cfg.OllamaModel
func NewOllamaEngine(cfg *config.Config, log *logger.Logger) *OllamaEngine {
	return &OllamaEngine{
		baseURL: strings.TrimRight(cfg.OllamaBaseURL, "/"),
		model:   cfg.OllamaModel,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		logger:  log,
	}
}

func (e *OllamaEngine) Name() types.Backend {
	return types.BackendDefault
}

// Recognize posts one image to /api/chat. An empty prompt uses the default instruction.
func (e *OllamaEngine) Recognize(ctx context.Context, payload types.ImagePayload, prompt string) (string, error) {
	imageData, err := os.ReadFile(payload.Path)
	if err != nil {
		return "", utils.NewInputError("failed to read image", err)
	}

	if strings.TrimSpace(prompt) == "" {
		prompt = constants.DefaultPrompt
	}

	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(imageData)},
		}},
		Stream: false,
	})
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeInternal, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", utils.NewConfigError("invalid Ollama URL", err)
	}
	req.Header.Set("Content-Type", "application/json")

	e.logger.Debug("POST %s/api/chat model=%s image=%s (%d bytes)", e.baseURL, e.model, payload.Path, len(imageData))

	resp, err := e.client.Do(req)
	if err != nil {
		return "", e.transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", e.transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", e.statusError(resp.StatusCode, respBody)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", utils.NewBackendUnavailableError("unexpected response from Ollama", errors.Wrap(err, "decode /api/chat"))
	}
	if result.Error != "" {
		return "", utils.NewBackendUnavailableError("Ollama returned an error", errors.New(result.Error))
	}

	return result.Message.Content, nil
}

// ListModels returns the names of locally pulled models
func (e *OllamaEngine) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, utils.NewConfigError("invalid Ollama URL", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, e.transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, e.statusError(resp.StatusCode, body)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, utils.NewBackendUnavailableError("unexpected response from Ollama", errors.Wrap(err, "decode /api/tags"))
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether the configured model is among the pulled models.
// A name without a tag matches any tag.
func (e *OllamaEngine) HasModel(models []string) bool {
	for _, name := range models {
		if name == e.model || strings.SplitN(name, ":", 2)[0] == e.model {
			return true
		}
	}
	return false
}

// Model returns the configured model name
func (e *OllamaEngine) Model() string {
	return e.model
}

func (e *OllamaEngine) transportError(err error) error {
	if utils.IsType(err, utils.ErrorTypeBackendTimeout) {
		return utils.NewBackendTimeoutError(
			fmt.Sprintf("Ollama did not answer within %s", e.client.Timeout), err)
	}
	if errors.Is(err, context.Canceled) {
		return utils.WrapError(err, utils.ErrorTypeInternal, "request to Ollama interrupted")
	}
	return utils.NewBackendUnavailableError(
		fmt.Sprintf("cannot connect to Ollama at %s", e.baseURL), err).
		WithHint(constants.GetPlatformConfig().OllamaStartHint)
}

func (e *OllamaEngine) statusError(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	cause := fmt.Errorf("HTTP %d: %s", status, msg)
	if status == http.StatusNotFound || strings.Contains(msg, "not found") {
		return utils.NewBackendUnavailableError(fmt.Sprintf("model %q is not available", e.model), cause).
			WithHint("pull it with: ollama pull " + e.model)
	}
	return utils.NewBackendUnavailableError("Ollama rejected the request", cause)
}
