// Package ocr picks the recognizer that serves a request.
package ocr

import (
	"fmt"
	"sort"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/ocr/engines"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// EngineFactory builds a recognizer from configuration
type EngineFactory func(cfg *config.Config, log *logger.Logger) interfaces.Recognizer

// BackendSelector maps backends to engine factories
type BackendSelector struct {
	config    *config.Config
	logger    *logger.Logger
	factories map[types.Backend]EngineFactory
}

// NewBackendSelector creates a selector with the Ollama and Tesseract engines registered
func NewBackendSelector(cfg *config.Config, log *logger.Logger) *BackendSelector {
	s := &BackendSelector{
		config:    cfg,
		logger:    log,
		factories: make(map[types.Backend]EngineFactory),
	}

	s.Register(types.BackendDefault, func(cfg *config.Config, log *logger.Logger) interfaces.Recognizer {
		return engines.NewOllamaEngine(cfg, log)
	})
	s.Register(types.BackendFast, func(cfg *config.Config, log *logger.Logger) interfaces.Recognizer {
		return engines.NewTesseractEngine(cfg, log)
	})

	return s
}

// Register installs or replaces the factory for backend
func (s *BackendSelector) Register(backend types.Backend, factory EngineFactory) {
	s.factories[backend] = factory
}

// Select returns a fresh recognizer for backend
func (s *BackendSelector) Select(backend types.Backend) (interfaces.Recognizer, error) {
	factory, ok := s.factories[backend]
	if !ok {
		return nil, utils.NewConfigError(fmt.Sprintf("unknown backend: %s", backend), nil)
	}

	engine := factory(s.config, s.logger.WithField("backend", string(backend)))
	s.logger.Debug("Selected backend: %s", backend)
	return engine, nil
}

// Backends lists the registered backends
func (s *BackendSelector) Backends() []types.Backend {
	backends := make([]types.Backend, 0, len(s.factories))
	for b := range s.factories {
		backends = append(backends, b)
	}
	sort.Slice(backends, func(i, j int) bool { return backends[i] < backends[j] })
	return backends
}

// SelectRecognizer returns the recognizer for backend using the built-in engines
func SelectRecognizer(cfg *config.Config, backend types.Backend, log *logger.Logger) (interfaces.Recognizer, error) {
	return NewBackendSelector(cfg, log).Select(backend)
}
