package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("logging entry: %w", NewValidationError("quantity", "must be positive"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrUnsupportedUnit)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
	assert.Equal(t, "invalid quantity: must be positive", ve.Error())
}

func TestUnsupportedUnitError(t *testing.T) {
	err := &UnsupportedUnitError{Unit: "cup"}

	assert.ErrorIs(t, err, ErrUnsupportedUnit)
	assert.Equal(t, `unsupported unit "cup"`, err.Error())
}

func TestImportError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ImportError{Source: "openfoodfacts", Ref: "4600000000000", Err: cause}

	assert.ErrorIs(t, err, ErrImport)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "4600000000000")
	assert.Contains(t, err.Error(), "connection refused")

	noRef := &ImportError{Source: "openfoodfacts", Err: cause}
	assert.Equal(t, "import from openfoodfacts: connection refused", noRef.Error())
}
