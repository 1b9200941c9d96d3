package server

import (
	"net/http"

	"dashkpis/internal/config"
	"dashkpis/internal/handlers"
	"dashkpis/internal/middleware"
	"dashkpis/internal/models"
	"dashkpis/internal/workspace"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionName = "dashkpis_session"
	// запомненный e-mail живёт дольше, чем workspace
	sessionMaxAge = 30 * 24 * 60 * 60
)

// mountEntity вешает одинаковый набор маршрутов CRUD-вью на prefix
func mountEntity(g *gin.RouterGroup, prefix string, e handlers.EntityRoutes) {
	eg := g.Group(prefix)

	eg.GET("", e.List)
	eg.POST("/refresh", e.Refresh)

	// форма
	eg.POST("/new", e.New)
	eg.POST("/:key/edit", e.Edit)
	eg.PATCH("/draft", e.Patch)
	eg.POST("/draft/save", e.Save)
	eg.POST("/draft/cancel", e.Cancel)

	// детали и удаление
	eg.POST("/:key/detail", e.Detail)
	eg.DELETE("/detail", e.CloseDetail)
	eg.POST("/:key/delete", e.RequestDelete)
	eg.POST("/delete/confirm", e.ConfirmDelete)
	eg.POST("/delete/cancel", e.CancelDelete)

	eg.DELETE("/banners/:id", e.DismissBanner)
}

func NewRouter(cfg *config.Config, h *handlers.Handler, spaces *workspace.Registry, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectUser())

	// HEALTHCHECK
	r.GET("/health", h.Health)

	// AUTH
	r.GET("/session", h.Session)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth(spaces))

	// ГЛАВНАЯ
	auth.GET("/dashboard", h.Dashboard)
	auth.GET("/reports/progress", h.ProgressReport)

	// KPI
	mountEntity(auth, "/kpis", h.KPIs())
	auth.PATCH("/kpis/:key/current", h.SetKPICurrent)
	auth.POST("/kpis/:key/progress", h.SaveKPIProgress)

	// ПРОЕКТЫ
	mountEntity(auth, "/projects", h.Projects())

	// ЗАДАЧИ
	mountEntity(auth, "/tasks", h.Tasks())
	auth.POST("/tasks/:key/done", h.ToggleTaskDone)
	auth.PATCH("/tasks/:key/progress", h.SetTaskProgress)
	auth.POST("/tasks/:key/progress", h.SaveTaskProgress)
	auth.POST("/tasks/:key/assign", h.AssignTask)
	auth.POST("/tasks/:key/due", h.ChangeTaskDue)
	auth.POST("/tasks/:key/time", h.LogTaskTime)
	auth.GET("/tasks/:key/time", h.TaskTimeLogs)

	// УВЕДОМЛЕНИЯ
	auth.GET("/notifications", h.Notifications)
	auth.POST("/notifications/:id/read", h.MarkNotificationRead)
	auth.POST("/notifications/read-all", h.MarkAllNotificationsRead)
	auth.GET("/notifications/config", h.NotificationConfig)
	auth.PUT("/notifications/config", h.UpdateNotificationConfig)
	auth.DELETE("/notifications/banners/:id", h.DismissNotificationBanner)

	// АУДИТ
	auth.GET("/audit",
		middleware.RequireRole(models.RolePM),
		h.ListAuditLogs,
	)

	return r
}
