package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasktrack/domain"
	"tasktrack/engine"
)

// Register wires up all routes on the provided Echo instance.
func Register(e *echo.Echo, eng Engine, enh Enhancer, sugg SuggestionSource, logger *log.Logger) {
	e.GET("/api/state", getState(eng))
	e.POST("/api/refresh", postRefresh(eng, logger))
	e.POST("/api/tasks", createTask(eng))
	e.PUT("/api/tasks/:id", updateTask(eng))
	e.POST("/api/tasks/:id/toggle", toggleTask(eng))
	e.POST("/api/tasks/:id/delete", requestDelete(eng))
	e.POST("/api/tasks/:id/edit", requestEdit(eng))
	e.POST("/api/pending/confirm", confirmPending(eng))
	e.POST("/api/pending/cancel", cancelPending(eng))
	e.POST("/api/ai/enhance", enhanceDraft(enh))
	e.GET("/api/ai/suggestions", getSuggestions(sugg))
	e.GET("/api/ai/insights", getInsights(enh))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getState(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, eng.Snapshot())
	}
}

func postRefresh(eng Engine, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRefreshMetrics(c.Request().Context(), logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		start := time.Now()
		refreshErr := eng.Refresh(ctx)
		metrics.ObserveRefresh(time.Since(start))
		if refreshErr != nil {
			metrics.SetErrorStage("refresh")
		}

		snap := eng.Snapshot()
		metrics.SetTasksReturned(len(snap.Tasks))
		// Refresh failures are non-fatal: the snapshot carries the stale
		// view plus its last_error marker.
		err = c.JSON(http.StatusOK, snap)
		return err
	}
}

func createTask(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		var draft domain.Draft
		if err := decodeBody(c, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := eng.SubmitDraft(c.Request().Context(), draft, nil); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, eng.Snapshot())
	}
}

func updateTask(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		existing, ok := taskFromParam(c, eng)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		}
		var draft domain.Draft
		if err := decodeBody(c, &draft); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := eng.SubmitDraft(c.Request().Context(), draft, &existing); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, eng.Snapshot())
	}
}

func toggleTask(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, ok := taskFromParam(c, eng)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		}
		if err := eng.RequestToggle(c.Request().Context(), task); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, eng.Snapshot())
	}
}

func requestDelete(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, ok := taskFromParam(c, eng)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		}
		return c.JSON(http.StatusOK, pendingResponse{Pending: eng.RequestDelete(task)})
	}
}

func requestEdit(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, ok := taskFromParam(c, eng)
		if !ok {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		}
		return c.JSON(http.StatusOK, pendingResponse{Pending: eng.RequestEdit(task)})
	}
}

func confirmPending(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		seed, err := eng.ConfirmPending(c.Request().Context())
		if err != nil {
			if errors.Is(err, engine.ErrNoPending) {
				return c.JSON(http.StatusConflict, errorResponse{Error: "no pending action"})
			}
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, confirmResponse{EditTask: seed})
	}
}

func cancelPending(eng Engine) echo.HandlerFunc {
	return func(c echo.Context) error {
		eng.CancelPending()
		return c.NoContent(http.StatusNoContent)
	}
}

func enhanceDraft(enh Enhancer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req enhanceRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		s, err := enh.Enhance(c.Request().Context(), req.Title, req.Description)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, s)
	}
}

func getSuggestions(sugg SuggestionSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		batch, err := sugg.Generate(c.Request().Context(), suggestionBatchMin, suggestionBatchMax)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, suggestionsResponse{Suggestions: batch})
	}
}

func getInsights(enh Enhancer) echo.HandlerFunc {
	return func(c echo.Context) error {
		insights, err := enh.Insights(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, insights)
	}
}

func taskFromParam(c echo.Context, eng Engine) (domain.Task, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return domain.Task{}, false
	}
	return eng.TaskByID(id)
}

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, requestMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// writeError maps the error taxonomy onto HTTP statuses: validation to
// 400, exhausted enhancement tiers to 503, everything reaching the
// remote resource to 502.
func writeError(c echo.Context, err error) error {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
	}
	var unavail EnhancementUnavailableError
	if errors.As(err, &unavail) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "enhancement unavailable"})
	}
	return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
}
