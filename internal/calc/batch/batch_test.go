package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*engine.Engine, schema.Request) {
	t.Helper()
	tables, err := curves.Default()
	require.NoError(t, err)
	eng, err := engine.New(engine.DefaultConfig(), tables)
	require.NoError(t, err)

	data, err := os.ReadFile("../engine/testdata/request.json")
	require.NoError(t, err)
	var req schema.Request
	require.NoError(t, json.Unmarshal(data, &req))
	return eng, req
}

func TestCalculate(t *testing.T) {
	eng, good := setup(t)
	var bad schema.Request
	require.NoError(t, json.Unmarshal(mustJSON(t, good), &bad))
	bad.CalculationRequest.Components = nil

	res, err := Calculate(context.Background(), eng, Input{Requests: []schema.Request{good, bad, good}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Responses, 3)
	assert.False(t, res.Responses[1].CalculationResponse.Status.Success)
}

func TestCalculateLimits(t *testing.T) {
	eng, req := setup(t)
	_, err := Calculate(context.Background(), eng, Input{}, 10)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Calculate(context.Background(), eng, Input{Requests: []schema.Request{req, req, req}}, 2)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	eng, req := setup(t)
	h := &Handler{Calc: &engine.Handler{Engine: eng}}

	body := mustJSON(t, Input{Requests: []schema.Request{req, req}})
	rec := httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 2, res.Succeeded)

	rec = httptest.NewRecorder()
	h.Batch(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"requests":[]}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
