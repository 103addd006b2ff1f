package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-pricing/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should format error without parent", func(t *testing.T) {
		assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=product not found", notFound.Error())
	})

	t.Run("Should keep predefined error untouched when wrapping parent", func(t *testing.T) {
		parent := errors.New("no rows")
		wrapped := notFound.WrapParent(parent)

		assert.Nil(t, notFound.Parent())
		assert.Equal(t, parent, wrapped.Parent())
		assert.ErrorIs(t, wrapped, parent)
		assert.Contains(t, wrapped.Error(), "Parent=(no rows)")
	})

	t.Run("Should match predefined error through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("service get product: %w", notFound.WithMsg("product %d not found", 7))

		assert.ErrorIs(t, err, notFound)

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "PRODUCT_NOT_FOUND", zErr.Code())
		assert.Equal(t, "product 7 not found", zErr.Msg())
	})

	t.Run("Should not match errors with a different code", func(t *testing.T) {
		other := zerror.NewNotFound("HISTORY_NOT_FOUND", "history not found")
		assert.NotErrorIs(t, other, notFound)
		assert.NotErrorIs(t, errors.New("plain"), notFound)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "VALIDATION_FAILED", zerror.StatusValidationFailed.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
