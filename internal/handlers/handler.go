package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dashkpis/internal/api"
	"dashkpis/internal/crud"
	"dashkpis/internal/middleware"
	"dashkpis/internal/validation"
	"dashkpis/internal/views"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler: HTTP-слой над workspace каждой сессии.
type Handler struct {
	backend views.Backend
	spaces  *workspace.Registry
	log     *zap.Logger
}

func New(b views.Backend, spaces *workspace.Registry, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{backend: b, spaces: spaces, log: log.Named("http")}
}

const healthTimeout = 3 * time.Second

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.backend.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": "ok", "sesiones": h.spaces.Len()})
}

func (h *Handler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	w, ok := middleware.WorkspaceFrom(c)
	if !ok {
		render(c, http.StatusUnauthorized, gin.H{"error": "no autenticado"})
	}
	return w, ok
}

// fail переводит ошибку вью в HTTP-ответ
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	if fe, ok := validation.AsFieldErrors(err); ok {
		render(c, http.StatusBadRequest, gin.H{"error": "datos no válidos", "campos": fe})
		return
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, crud.ErrBusy),
		errors.Is(err, crud.ErrFormClosed),
		errors.Is(err, crud.ErrNothingPending),
		errors.Is(err, crud.ErrNotPersisted):
		status = http.StatusConflict
	case errors.Is(err, crud.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, crud.ErrClosed):
		status = http.StatusGone
	case api.IsUnauthorized(err):
		status = http.StatusUnauthorized
	case errors.Is(err, context.Canceled):
		status = 499
	}
	render(c, status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	render(c, http.StatusBadRequest, gin.H{"error": msg})
}

func keyParam(c *gin.Context) (crud.Key, bool) {
	k, err := crud.ParseKey(c.Param("key"))
	if err != nil {
		badRequest(c, err.Error())
		return crud.Key{}, false
	}
	return k, true
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id no válido")
		return 0, false
	}
	return id, true
}

// scopeQuery читает ?id_proyecto=; пустое значение снимает фильтр.
// present=false, если параметра нет вовсе.
func scopeQuery(c *gin.Context) (scope *int64, present bool, err error) {
	raw, ok := c.GetQuery("id_proyecto")
	if !ok {
		return nil, false, nil
	}
	if raw == "" {
		return nil, true, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, true, errors.New("id_proyecto no válido")
	}
	return &id, true, nil
}
