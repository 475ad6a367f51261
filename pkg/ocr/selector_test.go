package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/ocr/engines"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

type stubRecognizer struct{ name types.Backend }

func (s stubRecognizer) Name() types.Backend { return s.name }
func (s stubRecognizer) Recognize(context.Context, types.ImagePayload, string) (string, error) {
	return "stub", nil
}

func TestBackendSelector_Defaults(t *testing.T) {
	s := NewBackendSelector(config.NewConfig(), logger.Discard())

	r, err := s.Select(types.BackendFor(false))
	require.NoError(t, err)
	assert.IsType(t, &engines.OllamaEngine{}, r)
	assert.Equal(t, types.BackendDefault, r.Name())

	r, err = s.Select(types.BackendFor(true))
	require.NoError(t, err)
	assert.IsType(t, &engines.TesseractEngine{}, r)
	assert.Equal(t, types.BackendFast, r.Name())

	assert.Equal(t, []types.Backend{types.BackendDefault, types.BackendFast}, s.Backends())
}

func TestBackendSelector_RegisterAndUnknown(t *testing.T) {
	s := NewBackendSelector(config.NewConfig(), logger.Discard())
	s.Register(types.BackendFast, func(*config.Config, *logger.Logger) interfaces.Recognizer {
		return stubRecognizer{name: types.BackendFast}
	})

	r, err := s.Select(types.BackendFast)
	require.NoError(t, err)
	assert.Equal(t, stubRecognizer{name: types.BackendFast}, r)

	_, err = s.Select("paddle")
	assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))
}

func TestSelectRecognizer(t *testing.T) {
	r, err := SelectRecognizer(config.NewConfig(), types.BackendFast, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, types.BackendFast, r.Name())

	_, err = SelectRecognizer(config.NewConfig(), types.Backend("surya"), logger.Discard())
	assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))
}
