package handlers

import (
	"net/http"
	"strconv"

	"dashkpis/internal/database"

	"github.com/gin-gonic/gin"
)

const maxAuditRows = 200

// ListAuditLogs: журнал изменений, только для PM (роль проверяет роутер)
func (h *Handler) ListAuditLogs(c *gin.Context) {
	limit := maxAuditRows
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit no válido")
			return
		}
		if n < limit {
			limit = n
		}
	}

	logs, err := database.ListAuditLogs(c.Query("entidad"), limit)
	if err != nil {
		render(c, http.StatusInternalServerError, gin.H{"error": "Error al cargar el registro de auditoría"})
		return
	}

	render(c, http.StatusOK, gin.H{
		"logs":   logs,
		"activo": database.Enabled(),
	})
}
