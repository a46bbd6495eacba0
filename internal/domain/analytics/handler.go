package analytics

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rcm/rcm/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/analytics", auth.RequireRole("admin", "billing"))
	g.GET("/rcm", h.GetRCMMetrics)
	g.GET("/pipeline", h.GetPipelineMetrics)
	g.GET("/stages", h.GetStageAnalytics)
}

func (h *Handler) GetRCMMetrics(c echo.Context) error {
	m, err := h.svc.RCMMetrics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetPipelineMetrics(c echo.Context) error {
	m, err := h.svc.PipelineMetrics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetStageAnalytics(c echo.Context) error {
	m, err := h.svc.StageAnalytics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}
