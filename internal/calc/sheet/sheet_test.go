package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"Erosion/internal/calc/curves"
	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func loadRequest(t *testing.T) schema.Request {
	t.Helper()
	data, err := os.ReadFile("../engine/testdata/request.json")
	require.NoError(t, err)
	var req schema.Request
	require.NoError(t, json.Unmarshal(data, &req))
	return req
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	tables, err := curves.Default()
	require.NoError(t, err)
	eng, err := engine.New(engine.DefaultConfig(), tables)
	require.NoError(t, err)
	return eng
}

func workbook(t *testing.T, f *excelize.File) *bytes.Buffer {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestTemplateRoundTrip(t *testing.T) {
	orig := loadRequest(t)
	f, err := Template(orig)
	require.NoError(t, err)

	got, err := Import(workbook(t, f))
	require.NoError(t, err)
	in := got.CalculationRequest

	assert.Equal(t, "req_test_001", in.Metadata.RequestID)
	require.NotNil(t, in.SystemConditions.Pressure)
	assert.Equal(t, 50.0, in.SystemConditions.Pressure.Value)
	require.NotNil(t, in.FluidProperties.Gas)
	assert.Equal(t, 1000.0, in.FluidProperties.Gas.RateStd.Value)
	assert.Equal(t, 250.0, in.SandProperties.ParticleSize.D50.Value)
	assert.Equal(t, "quartz", in.SandProperties.Type)
	require.NotNil(t, in.CalculationOptions.TimePeriod)
	assert.Equal(t, 10.0, in.CalculationOptions.TimePeriod.Value)

	require.Len(t, in.Components, 6)
	bend := in.Components[0]
	assert.Equal(t, "bend_01", bend.ID)
	assert.Equal(t, "pipe_bend", bend.Type)
	assert.Equal(t, 2e-9, bend.Material.ErosionConstantK.Value)
	assert.Equal(t, 1.5, bend.Geometry["radius_of_curvature"].Value)
	assert.Equal(t, "pipe_diameters", bend.Geometry["radius_of_curvature"].Unit)
	assert.NotContains(t, bend.Geometry, "length")
	require.NotNil(t, bend.OperatingConditions)
	assert.Equal(t, 3.0, bend.OperatingConditions.AllowableWallLoss.Value)
	assert.Nil(t, in.Components[3].OperatingConditions)

	eng := newEngine(t)
	want := eng.Run(context.Background(), orig, nil).CalculationResponse
	have := eng.Run(context.Background(), got, nil).CalculationResponse
	require.True(t, have.Status.Success, have.Status.Errors)
	for i := range want.ComponentResults {
		assert.Equal(t, want.ComponentResults[i].ErosionResults.AnnualErosionRate, have.ComponentResults[i].ErosionResults.AnnualErosionRate)
	}
}

func TestImportErrors(t *testing.T) {
	_, err := Import(bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, ErrWorkbook)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", ConditionsSheet))
	require.NoError(t, f.SetSheetRow(ConditionsSheet, "A1", &[]any{"pressure", "high", "bar"}))
	_, err = Import(workbook(t, f))
	assert.ErrorIs(t, err, ErrWorkbook)

	f = excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", ConditionsSheet))
	require.NoError(t, f.SetSheetRow(ConditionsSheet, "A1", &[]any{"magic", 1}))
	_, err = Import(workbook(t, f))
	assert.ErrorContains(t, err, "unknown parameter")

	f = excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", ConditionsSheet))
	_, err = f.NewSheet(ComponentsSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(ComponentsSheet, "A1", &[]any{"id", "type"}))
	_, err = Import(workbook(t, f))
	assert.ErrorContains(t, err, "no component rows")
}

func TestExport(t *testing.T) {
	resp := newEngine(t).Run(context.Background(), loadRequest(t), nil)
	f, err := Export(resp)
	require.NoError(t, err)

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, "component_id", rows[0][0])
	assert.Equal(t, "bend_01", rows[1][0])
	assert.Equal(t, "success", rows[1][2])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"request_id", "req_test_001"}, summary[0])
}

func TestImportHandler(t *testing.T) {
	f, err := Template(loadRequest(t))
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "request.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook(t, f).Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	h := &Handler{Calc: &engine.Handler{Engine: newEngine(t)}}
	r := httptest.NewRequest(http.MethodPost, "/", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Import(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp schema.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.CalculationResponse.ComponentResults, 6)
}

func TestExportHandler(t *testing.T) {
	data, err := json.Marshal(loadRequest(t))
	require.NoError(t, err)

	h := &Handler{Calc: &engine.Handler{Engine: newEngine(t)}}
	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(data)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, f.GetSheetList(), "Results")
}
