package optimusdb

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
	"github.com/georgeGeorgakakos/optimusddc/pkg/jsonutil"
	"github.com/georgeGeorgakakos/optimusddc/pkg/metrics"
)

// maxUnwrapAttempts bounds how many times a string-wrapped reply is
// re-parsed. The backend has been observed wrapping JSON in a string two
// levels deep; five is headroom, not a promise to chase arbitrary nesting.
const maxUnwrapAttempts = 5

// payloadSampleLen caps how much of an offending payload is logged.
const payloadSampleLen = 500

// BackendError is a semantic error the backend reported in its reply body
// ({"error": ...} or {"message": ...}).
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Normalizer unwraps raw backend replies into record sets.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer returns a Normalizer logging through the given logger.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize parses raw reply bytes into a RecordSet. It never panics and
// never returns a nil RecordSet: parse failures and unwrap-budget exhaustion
// yield an empty set with ErrMalformedPayload, a structured error body yields
// an empty set with *BackendError, and elements that are not objects are
// dropped with a warning. A nil error with an empty set means the backend
// genuinely had no data.
func (n *Normalizer) Normalize(raw []byte) (RecordSet, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		n.malformed("reply is not JSON", raw, err)
		return RecordSet{}, apperrors.ErrMalformedPayload
	}

	// The backend sometimes returns JSON wrapped as a string, occasionally
	// more than once. Re-parse until a non-string value appears or the
	// budget runs out.
	attempts := 0
	for {
		s, isString := parsed.(string)
		if !isString {
			break
		}
		if attempts >= maxUnwrapAttempts {
			n.malformed(fmt.Sprintf("still a string after %d unwrap attempts", attempts), raw, nil)
			return RecordSet{}, apperrors.ErrMalformedPayload
		}
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			n.malformed("string-wrapped payload is not JSON", []byte(s), err)
			return RecordSet{}, apperrors.ErrMalformedPayload
		}
		attempts++
		metrics.PayloadUnwraps.Inc()
	}
	if attempts > 0 {
		n.logger.Debug("unwrapped string-wrapped reply", zap.Int("attempts", attempts))
	}

	envelope, ok := parsed.(map[string]any)
	if !ok {
		n.malformed(fmt.Sprintf("reply is %T, not an object", parsed), raw, nil)
		return RecordSet{}, apperrors.ErrMalformedPayload
	}

	rawRecords, found := recordsContainer(envelope)
	if !found {
		if msg := errorMessage(envelope); msg != "" {
			n.logger.Warn("backend returned error body", zap.String("message", msg))
			return RecordSet{}, &BackendError{Message: msg}
		}
		n.logger.Warn("reply has no records container", zap.Strings("keys", mapKeys(envelope)))
		return RecordSet{}, nil
	}

	records := make(RecordSet, 0, len(rawRecords))
	for i, el := range rawRecords {
		rec, isMap := el.(map[string]any)
		if !isMap {
			n.logger.Warn("dropping non-object record",
				zap.Int("index", i),
				zap.String("value", jsonutil.Truncate(jsonutil.FlexibleString(el), 100)))
			continue
		}
		records = append(records, Record(rec))
	}
	return records, nil
}

// recordsContainer locates the record list at data.records, falling back to a
// bare records key.
func recordsContainer(envelope map[string]any) ([]any, bool) {
	if data, ok := envelope["data"].(map[string]any); ok {
		if records, ok := data["records"].([]any); ok {
			return records, true
		}
	}
	if records, ok := envelope["records"].([]any); ok {
		return records, true
	}
	return nil, false
}

func errorMessage(envelope map[string]any) string {
	for _, key := range []string{"error", "message"} {
		if v, ok := envelope[key]; ok && v != nil {
			return jsonutil.FlexibleString(v)
		}
	}
	return ""
}

func (n *Normalizer) malformed(reason string, payload []byte, err error) {
	metrics.MalformedPayloads.Inc()
	n.logger.Error("malformed backend payload",
		zap.String("reason", reason),
		zap.Error(err),
		zap.String("sample", jsonutil.Truncate(string(payload), payloadSampleLen)))
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
