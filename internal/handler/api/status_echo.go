package api

import (
	"errors"
	"net/http"
	"time"

	models "TrafficLight/internal/domain/models"
	domrepo "TrafficLight/internal/domain/repository"
	"TrafficLight/internal/repository"
	xhttp "TrafficLight/pkg/http"
	xlogger "TrafficLight/pkg/logger"
	"TrafficLight/pkg/util"

	"github.com/labstack/echo/v4"
)

// StatusEchoHandler serves the latest loop snapshot and a health probe.
type StatusEchoHandler struct {
	logger *xlogger.Logger
	store  domrepo.StatusStore
	loc    *time.Location
}

// NewStatusEchoHandler creates the handler. loc is used when a request carries no tz.
func NewStatusEchoHandler(logger *xlogger.Logger, store domrepo.StatusStore, loc *time.Location) *StatusEchoHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StatusEchoHandler{logger: logger, store: store, loc: loc}
}

func (h *StatusEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/status", h.Status)
}

// Status returns the last snapshot with its instants rendered in the requested zone.
func (h *StatusEchoHandler) Status(c echo.Context) error {
	req := &models.StatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	loc := h.loc
	if req.TZ != "" {
		l, err := time.LoadLocation(req.TZ)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("unknown time zone").WithParam("tz", req.TZ))
		}
		loc = l
	}

	snap, err := h.store.Load(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoStatus) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no status reported yet"))
		}
		h.logger.Error("status load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("status unavailable").WithError(err))
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, viewOf(snap, loc))
}

// Health answers 200 while the loop is healthy and 503 when it is failing or has not reported.
func (h *StatusEchoHandler) Health(c echo.Context) error {
	snap, err := h.store.Load(c.Request().Context())
	if err != nil {
		if !errors.Is(err, repository.ErrNoStatus) {
			h.logger.Warn("health status load error", xlogger.Error(err))
		}
		return xhttp.StatusResponse(c, http.StatusServiceUnavailable, map[string]string{"phase": "UNKNOWN"})
	}

	body := map[string]string{"phase": string(snap.Phase)}
	if snap.Phase != models.PhaseHealthy || snap.InFailure {
		if snap.FailureReason != "" {
			body["reason"] = snap.FailureReason
		}
		return xhttp.StatusResponse(c, http.StatusServiceUnavailable, body)
	}
	return xhttp.StatusResponse(c, http.StatusOK, body)
}

func viewOf(snap models.StatusSnapshot, loc *time.Location) models.StatusView {
	v := models.StatusView{
		StatusSnapshot: snap,
		Timezone:       loc.String(),
		UpdatedAtLocal: util.FormatDisplay(snap.UpdatedAt, loc),
	}
	if snap.WindowStart != nil {
		v.WindowStartLocal = util.FormatDisplay(*snap.WindowStart, loc)
	}
	if snap.LastAppliedTo != nil {
		v.LastAppliedToLocal = util.FormatDisplay(*snap.LastAppliedTo, loc)
	}
	return v
}

var _ xhttp.Handler = (*StatusEchoHandler)(nil)
