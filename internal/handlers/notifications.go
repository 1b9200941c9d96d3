package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dashkpis/internal/crud"
	"dashkpis/internal/models"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
)

func inboxState(w *workspace.Workspace, items []models.Notification) gin.H {
	if items == nil {
		items = []models.Notification{}
	}
	return gin.H{
		"items":     items,
		"no_leidas": w.Inbox.Unread(),
		"banners":   w.Inbox.Banners.List(),
	}
}

// Notifications: ?leida=true|false, ?refrescar=1 опрашивает бэкенд сразу
func (h *Handler) Notifications(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}

	var read *bool
	if raw := c.Query("leida"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "leida no válida")
			return
		}
		read = &v
	}
	refresh := c.Query("refrescar") != ""
	if refresh || !w.Inbox.Store.Loaded() {
		err := w.Inbox.Poll(c.Request.Context())
		// ErrBusy значит, что опрос уже идёт: отдаём то, что есть
		if refresh && err != nil && !errors.Is(err, crud.ErrBusy) {
			h.fail(c, err)
			return
		}
	}
	render(c, http.StatusOK, inboxState(w, w.Inbox.List(read)))
}

type readBody struct {
	Read *bool `json:"leida"`
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	read := true
	var body readBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "datos no válidos")
			return
		}
		if body.Read != nil {
			read = *body.Read
		}
	}

	n, err := w.Inbox.MarkRead(c.Request.Context(), id, read)
	if err != nil {
		h.fail(c, err)
		return
	}
	state := inboxState(w, w.Inbox.List(nil))
	state["item"] = n
	render(c, http.StatusOK, state)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	n, err := w.Inbox.MarkAllRead(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	state := inboxState(w, w.Inbox.List(nil))
	state["marcadas"] = n
	render(c, http.StatusOK, state)
}

func (h *Handler) NotificationConfig(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	cfg, err := w.Inbox.Config(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"config": cfg})
}

func (h *Handler) UpdateNotificationConfig(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	var cfg []models.NotificationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		badRequest(c, "config no válida")
		return
	}
	for _, row := range cfg {
		if row.Type == "" {
			badRequest(c, "tipo es obligatorio")
			return
		}
	}

	saved, err := w.Inbox.UpdateConfig(c.Request.Context(), cfg)
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"config": saved})
}

func (h *Handler) DismissNotificationBanner(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "id no válido")
		return
	}
	if !w.Inbox.Banners.Dismiss(id) {
		render(c, http.StatusNotFound, gin.H{"error": "banner no encontrado"})
		return
	}
	render(c, http.StatusOK, inboxState(w, w.Inbox.List(nil)))
}
