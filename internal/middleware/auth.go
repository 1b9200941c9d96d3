package middleware

import (
	"net/http"

	"dashkpis/internal/models"
	"dashkpis/internal/workspace"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ключи cookie-сессии
const (
	SessionWorkspace = "workspace"
	SessionUserID    = "user_id"
	SessionEmail     = "email"
	SessionName      = "name"
	SessionRole      = "role"
	SessionRemember  = "remember_email"

	workspaceKey = "Workspace"
)

// RequireAuth пускает только сессии со смонтированным workspace.
// Если workspace уже выметен, сессия чистится и клиент логинится заново.
func RequireAuth(reg *workspace.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id, _ := sess.Get(SessionWorkspace).(string)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no autenticado"})
			return
		}
		w, ok := reg.Get(id)
		if !ok {
			ClearUser(sess)
			_ = sess.Save()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sesión expirada"})
			return
		}
		c.Set(workspaceKey, w)
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := map[models.UserRole]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := sessions.Default(c)
		roleStr, ok := sess.Get(SessionRole).(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no autenticado"})
			return
		}
		if _, ok := roleSet[models.UserRole(roleStr)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "acceso denegado"})
			return
		}
		c.Next()
	}
}

// WorkspaceFrom достаёт workspace, который положил RequireAuth.
func WorkspaceFrom(c *gin.Context) (*workspace.Workspace, bool) {
	v, ok := c.Get(workspaceKey)
	if !ok {
		return nil, false
	}
	w, ok := v.(*workspace.Workspace)
	return w, ok
}
