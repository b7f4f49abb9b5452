package report

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

func setup(t *testing.T) (*engine.Engine, []byte) {
	t.Helper()
	tables, err := curves.Default()
	require.NoError(t, err)
	eng, err := engine.New(engine.DefaultConfig(), tables)
	require.NoError(t, err)
	data, err := os.ReadFile("../engine/testdata/request.json")
	require.NoError(t, err)
	return eng, data
}

func TestRender(t *testing.T) {
	eng, data := setup(t)
	var req schema.Request
	require.NoError(t, json.Unmarshal(data, &req))
	resp := eng.Run(context.Background(), req, nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, req.CalculationRequest, resp))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderFailedResponse(t *testing.T) {
	var buf bytes.Buffer
	resp := schema.Response{CalculationResponse: schema.CalculationResponse{
		Status: schema.Status{Errors: []string{"ValidationError: sand density must be > 0"}},
	}}
	require.NoError(t, Render(&buf, schema.CalculationRequest{}, resp))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestGenerate(t *testing.T) {
	eng, data := setup(t)
	h := &Handler{Calc: &engine.Handler{Engine: eng}}

	rec := httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = httptest.NewRecorder()
	h.Generate(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("nope"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
