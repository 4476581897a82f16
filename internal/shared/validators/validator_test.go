package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	OrderStore struct {
		QueryTimeoutMs int `mapstructure:"query_timeout_ms" validate:"required"`
	} `mapstructure:"order_store"`
	Plain string `validate:"required"`
}

func TestNew_ReportsMapstructureKeys(t *testing.T) {
	t.Parallel()

	err := New().Struct(&sample{})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)

	var namespaces []string
	for _, fe := range ve {
		namespaces = append(namespaces, fe.Namespace())
	}
	assert.ElementsMatch(t, []string{"sample.order_store.query_timeout_ms", "sample.Plain"}, namespaces)
}
