package companion_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emma-labs/emma-go/pkg/companion"
)

func TestCompanionErrorFormat(t *testing.T) {
	err := companion.NewCompanionError("ProcessTurn", companion.ErrGenerationFailed)
	assert.Equal(t, "emma: ProcessTurn: generation failed", err.Error())
}

func TestCompanionErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("%w: connection refused", companion.ErrGenerationFailed)
	err := companion.NewCompanionError("ProcessTurn", cause)

	assert.ErrorIs(t, err, companion.ErrGenerationFailed)

	var companionErr *companion.CompanionError
	require.ErrorAs(t, err, &companionErr)
	assert.Equal(t, "ProcessTurn", companionErr.Op)
}

func TestNewCompanionErrorNilIsNil(t *testing.T) {
	assert.NoError(t, companion.NewCompanionError("Poll", nil))
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		companion.ErrInvalidConfig,
		companion.ErrGenerationFailed,
		companion.ErrDuplicateMemory,
		companion.ErrRecordNotFound,
		companion.ErrJournalOperation,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b))
		}
	}
}
