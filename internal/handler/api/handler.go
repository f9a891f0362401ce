package api

import (
	"errors"
	"time"

	"KPIPulse/internal/forecast"
	"KPIPulse/internal/timeseries"
	"KPIPulse/internal/usecase"
	xhttp "KPIPulse/pkg/http"
	xlogger "KPIPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler exposes the ML service over HTTP. It is a thin boundary:
// bind, validate, call the usecase, map errors.
type Handler struct {
	logger *xlogger.Logger
	svc    *usecase.Service
	health func() error
}

// NewHandler wires the API handler. health is called by the health
// endpoint and may be nil.
func NewHandler(l *xlogger.Logger, svc *usecase.Service, health func() error) *Handler {
	return &Handler{logger: l, svc: svc, health: health}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/v1")
	g.POST("/forecast", h.Forecast)
	g.POST("/anomalies/detect", h.DetectAnomalies)
	g.POST("/backtest", h.Backtest)
	g.POST("/train", h.Train)
	g.POST("/anomalies/:date/:metric/acknowledge", h.Acknowledge)
	g.GET("/forecasts/:metric", h.LatestForecasts)
	g.GET("/anomalies/:metric", h.LatestAnomalies)
	g.GET("/anomalies", h.ActiveAnomalies)
	g.GET("/model-runs", h.RecentRuns)
}

// Health reports service status plus source-data freshness, so a
// dashboard can show "last updated" next to the green light.
func (h *Handler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status":             "ok",
		"database_connected": true,
	}
	if h.health != nil {
		if err := h.health(); err != nil {
			status["status"] = "degraded"
			status["database_connected"] = false
			status["detail"] = err.Error()
			return xhttp.SuccessResponse(c, status)
		}
	}

	fresh, err := h.svc.Freshness(c.Request().Context())
	if err != nil {
		status["status"] = "degraded"
		status["detail"] = err.Error()
		return xhttp.SuccessResponse(c, status)
	}
	status["total_records"] = fresh.TotalRecords
	if fresh.LastDataDate != nil {
		status["last_data_date"] = fresh.LastDataDate.Format("2006-01-02")
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *Handler) Forecast(c echo.Context) error {
	req := &ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Forecast(c.Request().Context(), usecase.ForecastParams{
		Metric:  req.Metric,
		Horizon: req.HorizonDays,
		Model:   req.Model,
	})
	if err != nil {
		return h.fail(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) DetectAnomalies(c echo.Context) error {
	req := &AnomalyDetectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.svc.DetectAnomalies(c.Request().Context(), usecase.AnomalyParams{
		Metric:        req.Metric,
		LookbackDays:  req.LookbackDays,
		Contamination: req.Contamination,
	})
	if err != nil {
		return h.fail(c, "detect anomalies", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *Handler) Backtest(c echo.Context) error {
	req := &BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Backtest(c.Request().Context(), usecase.BacktestParams{
		Metric:      req.Metric,
		Model:       req.Model,
		HoldoutDays: req.HoldoutDays,
	})
	if err != nil {
		return h.fail(c, "backtest", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *Handler) Train(c echo.Context) error {
	req := &TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	summary, err := h.svc.TrainAll(c.Request().Context(), req.Metrics)
	if err != nil {
		return h.fail(c, "train", err)
	}
	return xhttp.SuccessResponse(c, summary)
}

func (h *Handler) Acknowledge(c echo.Context) error {
	req := &AcknowledgeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return xhttp.BadRequestResponse(c, "date must be YYYY-MM-DD")
	}

	n, err := h.svc.Acknowledge(c.Request().Context(), date, req.Metric, req.AcknowledgedBy)
	if err != nil {
		return h.fail(c, "acknowledge", err)
	}
	return xhttp.SuccessResponse(c, map[string]int64{"rows_affected": n})
}

func (h *Handler) LatestForecasts(c echo.Context) error {
	rows, err := h.svc.LatestForecasts(c.Request().Context(), c.Param("metric"))
	if err != nil {
		return h.fail(c, "latest forecasts", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *Handler) LatestAnomalies(c echo.Context) error {
	rows, err := h.svc.LatestAnomalies(c.Request().Context(), c.Param("metric"))
	if err != nil {
		return h.fail(c, "latest anomalies", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *Handler) ActiveAnomalies(c echo.Context) error {
	req := &ActiveAnomaliesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.svc.ActiveAnomalies(c.Request().Context(), req.MinSeverity)
	if err != nil {
		return h.fail(c, "active anomalies", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *Handler) RecentRuns(c echo.Context) error {
	req := &RunsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.svc.RecentRuns(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "model runs", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// fail maps usecase errors onto HTTP responses. Caller input errors
// are 400, missing data is 404, data-shape problems are 422.
func (h *Handler) fail(c echo.Context, op string, err error) error {
	var insufficient *timeseries.InsufficientDataError
	switch {
	case errors.Is(err, usecase.ErrInvalidMetric),
		errors.Is(err, forecast.ErrUnsupportedModel):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	case errors.As(err, &insufficient),
		errors.Is(err, forecast.ErrNoUsableModel):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()))
	default:
		h.logger.Error(op+" failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(err.Error()))
	}
}
