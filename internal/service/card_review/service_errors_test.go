package card_review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	cause := errors.New("database unavailable")

	err := NewSubmitReviewError("failed to record review", cause)
	assert.Equal(t, "submit_review operation failed: failed to record review: database unavailable", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewGetNextCardError("no candidates", nil)
	assert.Equal(t, "get_next_card operation failed: no candidates", bare.Error())

	var se *ServiceError
	assert.True(t, errors.As(error(err), &se))
	assert.Equal(t, "submit_review", se.Operation)
}
