package shared_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
)

type sampleRequest struct {
	CardID   int64  `json:"card_id"   validate:"required,gt=0"`
	DeviceID string `json:"device_id" validate:"max=4"`
	Internal string `json:"-"`
}

type selfValidating struct {
	called bool
}

func (s *selfValidating) Validate() error {
	s.called = true
	return errors.New("custom")
}

func TestDecodeJSON(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"card_id": 5, "extra": true}`))
		var got sampleRequest

		require.NoError(t, shared.DecodeJSON(httptest.NewRecorder(), req, &got))
		assert.Equal(t, int64(5), got.CardID)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var got sampleRequest

		assert.ErrorIs(t, shared.DecodeJSON(httptest.NewRecorder(), req, &got), shared.ErrEmptyBody)
	})

	t.Run("oversized body", func(t *testing.T) {
		big := `{"device_id": "` + strings.Repeat("a", shared.MaxRequestBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var got sampleRequest

		assert.Error(t, shared.DecodeJSON(httptest.NewRecorder(), req, &got))
	})
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, shared.ValidateRequest(&sampleRequest{CardID: 1, DeviceID: "ab"}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := shared.ValidateRequest(&sampleRequest{CardID: 0, DeviceID: "toolong"})

		require.ErrorIs(t, err, domain.ErrValidation)
		var fieldErrs domain.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs)
		fields := fieldErrs.Fields()
		assert.Equal(t, "this field is required", fields["card_id"])
		assert.Equal(t, "must be at most 4 characters", fields["device_id"])
		assert.Len(t, fields, 2)
	})

	t.Run("prefers Validate method", func(t *testing.T) {
		v := &selfValidating{}

		assert.EqualError(t, shared.ValidateRequest(v), "custom")
		assert.True(t, v.called)
	})
}
