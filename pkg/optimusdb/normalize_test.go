package optimusdb

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
)

// wrap JSON-encodes payload as a string n times over.
func wrap(t *testing.T, payload string, n int) []byte {
	t.Helper()
	out := []byte(payload)
	for i := 0; i < n; i++ {
		var err error
		out, err = json.Marshal(string(out))
		require.NoError(t, err)
	}
	return out
}

const nominalReply = `{"data": {"records": [{"name": "orders", "metadata_type": "sales"}]}}`

func TestNormalizeNominalReply(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	records, err := n.Normalize([]byte(nominalReply))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "orders", records[0].String("name"))
	assert.Equal(t, "sales", records[0].String("metadata_type"))
}

func TestNormalizeUnwrapIdempotence(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	plain, err := n.Normalize([]byte(nominalReply))
	require.NoError(t, err)

	for wraps := 1; wraps <= 5; wraps++ {
		got, err := n.Normalize(wrap(t, nominalReply, wraps))
		require.NoError(t, err, "wraps=%d", wraps)
		assert.Equal(t, plain, got, "wraps=%d", wraps)
	}
}

func TestNormalizeUnwrapBudgetExhausted(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	records, err := n.Normalize(wrap(t, nominalReply, 6))
	assert.True(t, errors.Is(err, apperrors.ErrMalformedPayload))
	assert.Empty(t, records)
	assert.NotNil(t, records, "must stay an empty set, never nil")
}

func TestNormalizeMalformedInputs(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not JSON at all", raw: "<html>502 Bad Gateway</html>"},
		{name: "string wrapping garbage", raw: `"not json either"`},
		{name: "array instead of object", raw: `[1, 2, 3]`},
		{name: "bare number", raw: `42`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := n.Normalize([]byte(tt.raw))
			assert.True(t, errors.Is(err, apperrors.ErrMalformedPayload))
			assert.Empty(t, records)
		})
	}
}

func TestNormalizeBackendErrorBody(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "error key", raw: `{"error": "table not found"}`, want: "table not found"},
		{name: "message key", raw: `{"message": "node syncing"}`, want: "node syncing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := n.Normalize([]byte(tt.raw))
			assert.Empty(t, records)

			var backendErr *BackendError
			require.True(t, errors.As(err, &backendErr))
			assert.Equal(t, tt.want, backendErr.Message)
		})
	}
}

func TestNormalizeMissingContainerIsNoData(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	records, err := n.Normalize([]byte(`{"status": "ok"}`))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalizeBareRecordsKey(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	records, err := n.Normalize([]byte(`{"records": [{"name": "users"}]}`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "users", records[0].String("name"))
}

func TestNormalizeDropsNonObjectRecords(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	raw := `{"data": {"records": [{"name": "a"}, "stray string", null, 7, {"name": "b"}]}}`
	records, err := n.Normalize([]byte(raw))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].String("name"))
	assert.Equal(t, "b", records[1].String("name"))
}

// The exact doubly-wrapped reply shape seen in production.
func TestNormalizeDoublyWrappedEndToEnd(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	raw := wrap(t, `{"data": {"records": [{"name": "orders", "metadata_type": "sales", "tags": "ecommerce,orders"}]}}`, 2)
	records, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "orders", records[0].String("name"))
	assert.Equal(t, "sales", records[0].String("metadata_type"))
	assert.Equal(t, "ecommerce,orders", records[0].String("tags"))
}
