package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/usecase"
	applogger "KPIPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubReader struct {
	rows []models.KPIRow
}

func (s *stubReader) ReadAll(ctx context.Context) ([]models.KPIRow, error) {
	return s.rows, nil
}

func (s *stubReader) Freshness(ctx context.Context) (models.Freshness, error) {
	fr := models.Freshness{TotalRecords: int64(len(s.rows))}
	if len(s.rows) > 0 {
		last := s.rows[len(s.rows)-1].Date
		fr.LastDataDate = &last
	}
	return fr, nil
}

func healthBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Status int                    `json:"status"`
		Data   map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func serveHealth(svc *usecase.Service, probe func() error) *httptest.ResponseRecorder {
	h := NewHandler(applogger.Nop(), svc, probe)
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsFreshness(t *testing.T) {
	rows := []models.KPIRow{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), TotalRevenue: 1000},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), TotalRevenue: 1200},
	}
	svc := usecase.NewService(
		&stubReader{rows: rows},
		nil, nil, nil, nil, nil, nil, applogger.Nop(), usecase.Options{},
	)

	rec := serveHealth(svc, func() error { return nil })
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := healthBody(t, rec)
	if data["status"] != "ok" {
		t.Fatalf("status field = %v, want ok", data["status"])
	}
	if data["last_data_date"] != "2024-01-02" {
		t.Fatalf("last_data_date = %v, want 2024-01-02", data["last_data_date"])
	}
	if data["total_records"] != float64(2) {
		t.Fatalf("total_records = %v, want 2", data["total_records"])
	}
}

func TestHealthEmptySourceOmitsDate(t *testing.T) {
	svc := usecase.NewService(
		&stubReader{},
		nil, nil, nil, nil, nil, nil, applogger.Nop(), usecase.Options{},
	)

	data := healthBody(t, serveHealth(svc, nil))
	if data["total_records"] != float64(0) {
		t.Fatalf("total_records = %v, want 0", data["total_records"])
	}
	if _, present := data["last_data_date"]; present {
		t.Fatal("last_data_date present for an empty source table")
	}
}

func TestHealthDegradedOnProbeFailure(t *testing.T) {
	svc := usecase.NewService(
		&stubReader{},
		nil, nil, nil, nil, nil, nil, applogger.Nop(), usecase.Options{},
	)

	data := healthBody(t, serveHealth(svc, func() error { return errors.New("connection refused") }))
	if data["status"] != "degraded" {
		t.Fatalf("status field = %v, want degraded", data["status"])
	}
	if data["database_connected"] != false {
		t.Fatalf("database_connected = %v, want false", data["database_connected"])
	}
}
