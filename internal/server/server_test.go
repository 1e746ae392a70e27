package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/audit"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/auth"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/dashboard"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/inventory"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/patient"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/testutil"
)

type testServer struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		SessionTTL:  time.Hour,
		CORSOrigins: "http://localhost:5173",
		Location:    time.UTC,
		Catalog:     config.DefaultCatalog(),
	}
	clock := testutil.NewClock(time.Date(2025, 3, 14, 9, 27, 0, 0, time.UTC))
	app := New(Deps{Config: cfg, DB: testutil.NewDB(t), Log: zap.NewNop(), Now: clock.Now})

	s := &testServer{t: t, app: app}
	resp := s.do(http.MethodPost, "/api/auth/login", `{"code":"0210182550"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body auth.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	s.token = body.Token
	return s
}

func (s *testServer) do(method, path, body string) *http.Response {
	s.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[map[string]string](t, resp)["error"]
}

func qtyAt(g inventory.StockGridResponse, d, l string) int {
	for _, row := range g.Rows {
		if row.Diameter != d {
			continue
		}
		for _, c := range row.Cells {
			if c.Length == l {
				return c.Qty
			}
		}
	}
	return -1
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	resp := s.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	for _, path := range []string{"/api/catalog", "/api/stock", "/api/patients", "/api/logs", "/api/stock/export.csv"} {
		resp := s.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestLoginWrongCode(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(http.MethodPost, "/api/auth/login", `{"code":"1234567890"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Giriş kodu hatalı", errorOf(t, resp))
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cat := decode[inventory.CatalogResponse](t, resp)
	assert.Equal(t, []string{"Dentsun Menemen", "Dentsun Karşıyaka"}, cat.Branches)
	assert.Equal(t, []string{"3.5", "4", "4.5", "5", "5.5"}, cat.Diameters)
	assert.Equal(t, []string{"7", "8.5", "10", "11.5", "13"}, cat.Lengths)
}

func TestStockSaveAndAdjust(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPut, "/api/stock", `{"branch":"Dentsun Menemen","items":[
		{"diameter":3.5,"length":7,"qty":5},
		{"diameter":4,"length":8.5,"qty":-3}
	]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[struct {
		Changed int                         `json:"changed"`
		Stock   inventory.StockGridResponse `json:"stock"`
	}](t, resp)
	assert.Equal(t, 1, saved.Changed)
	assert.Equal(t, 5, qtyAt(saved.Stock, "3.5", "7"))
	assert.Equal(t, 0, qtyAt(saved.Stock, "4", "8.5"))

	resp = s.do(http.MethodPost, "/api/stock/adjust", `{"branch":"Dentsun Menemen","diameter":3.5,"length":7,"delta":-6}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/stock/adjust", `{"branch":"Dentsun Menemen","diameter":3.5,"length":7,"delta":-3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/stock?branch=Dentsun%20Menemen", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g := decode[inventory.StockGridResponse](t, resp)
	assert.Equal(t, 2, qtyAt(g, "3.5", "7"))
	assert.Equal(t, inventory.LevelLow, g.Rows[0].Cells[0].Level)
	assert.Equal(t, inventory.LevelZero, g.Rows[0].Cells[1].Level)
}

func TestStockValidationErrors(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/stock?branch=Bornova", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Şube bulunamadı", errorOf(t, resp))

	resp = s.do(http.MethodPost, "/api/stock/adjust", `{"branch":"Dentsun Menemen","diameter":3.7,"length":7,"delta":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Ölçü katalogda yok", errorOf(t, resp))

	resp = s.do(http.MethodPost, "/api/stock/adjust", `{"branch":"Dentsun Menemen","diameter":3.5,"length":7,"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/stock/adjust", `{"branch":"Dentsun Menemen","diameter":3.5,"length":7,"delta":9223372036854775807}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, resp), "aralığın dışında")
}

func TestPatientLifecycle(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPut, "/api/stock", `{"branch":"Dentsun Karşıyaka","items":[{"diameter":3.5,"length":7,"qty":5}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodPost, "/api/patients", `{"branch":"Dentsun Karşıyaka","name":"Ayşe","lines":[
		{"diameter":"3,5","length":"7","qty":"2"},
		{"diameter":"","length":"","qty":""}
	]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[patient.PatientResponse](t, resp)
	require.Len(t, created.Implants, 1)
	assert.Equal(t, "3.5", created.Implants[0].Diameter)

	resp = s.do(http.MethodGet, "/api/stock?branch=Dentsun%20Kar%C5%9F%C4%B1yaka", "")
	assert.Equal(t, 3, qtyAt(decode[inventory.StockGridResponse](t, resp), "3.5", "7"))

	resp = s.do(http.MethodGet, fmt.Sprintf("/api/patients/%d?branch=Dentsun%%20Kar%%C5%%9F%%C4%%B1yaka", created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ayşe", decode[patient.PatientResponse](t, resp).Name)

	// şube verilmezse varsayılan şube (Menemen) kullanılır; hasta orada yok
	resp = s.do(http.MethodGet, fmt.Sprintf("/api/patients/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPut, fmt.Sprintf("/api/patients/%d", created.ID), `{"branch":"Dentsun Karşıyaka","name":"Ayşe","lines":[{"diameter":3.5,"length":7,"qty":6}]}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodPut, fmt.Sprintf("/api/patients/%d", created.ID), `{"branch":"Dentsun Menemen","name":"Ayşe","lines":[]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/patients?branch=Dentsun%20Kar%C5%9F%C4%B1yaka", "")
	list := decode[[]patient.PatientResponse](t, resp)
	require.Len(t, list, 1)
	require.Len(t, list[0].Implants, 1)
	assert.Equal(t, 2, list[0].Implants[0].Qty)

	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/patients/%d?branch=Dentsun%%20Kar%%C5%%9F%%C4%%B1yaka", created.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/stock?branch=Dentsun%20Kar%C5%9F%C4%B1yaka", "")
	assert.Equal(t, 5, qtyAt(decode[inventory.StockGridResponse](t, resp), "3.5", "7"))

	resp = s.do(http.MethodGet, fmt.Sprintf("/api/patients/%d?branch=Dentsun%%20Kar%%C5%%9F%%C4%%B1yaka", created.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/logs?branch=Dentsun%20Kar%C5%9F%C4%B1yaka", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]audit.StockLogResponse](t, resp)
	require.Len(t, logs, 3)
	assert.Equal(t, "PATIENT_DELETE", string(logs[0].Action))
	assert.Equal(t, 2, logs[0].Qty)
	assert.Equal(t, "PATIENT_ADD", string(logs[1].Action))
	assert.Equal(t, -2, logs[1].Qty)
	assert.Equal(t, "MANUAL_EDIT", string(logs[2].Action))
	assert.Equal(t, "2025-03-14 09:27:00", logs[2].CreatedAt)
}

func TestPatientValidation(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/api/patients", `{"branch":"Dentsun Menemen","name":"  ","lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Hasta adı boş olamaz", errorOf(t, resp))

	resp = s.do(http.MethodGet, "/api/patients/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/api/patients/77", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/stock/export.csv?branch=Dentsun%20Kar%C5%9F%C4%B1yaka", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Dentsun_Stok_Dentsun_Karsiyaka.csv")

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Branch:,Dentsun Karşıyaka\n"))
	assert.Contains(t, string(b), "Date:,14.03.2025 09:27:00\n")
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/api/stock/export.xlsx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Dentsun_Stok_Dentsun_Menemen.xlsx")
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "PK"), "xlsx is a zip archive")
}

func TestDashboardUsage(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPut, "/api/stock", `{"branch":"Dentsun Menemen","items":[{"diameter":4,"length":10,"qty":3}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(http.MethodPost, "/api/patients", `{"name":"Kerem","lines":[{"diameter":4,"length":10,"qty":2}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/dashboard/usage?period=daily&count=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chart := decode[dashboard.UsageChart](t, resp)
	require.Len(t, chart.Points, 2)
	assert.Equal(t, "2025-03-14", chart.Points[1].Label)
	assert.Equal(t, 2, chart.Points[1].Used)
	assert.Equal(t, 3, chart.Points[1].Restocked)

	resp = s.do(http.MethodGet, "/api/dashboard/usage?period=yearly", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandler_HidesUnexpectedErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Beklenmeyen sunucu hatası", errorOf(t, resp))
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, "http://a.com,https://b.com", corsOrigins(" http://a.com , ,https://b.com"))
}
