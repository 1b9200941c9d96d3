package middleware

import (
	"dashkpis/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const currentUserKey = "CurrentUser"

// InjectUser кладёт в контекст пользователя из сессии, без похода в бэкенд
func InjectUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := UserFromSession(sessions.Default(c)); ok {
			c.Set(currentUserKey, u)
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func UserFromSession(sess sessions.Session) (models.User, bool) {
	id, ok := sess.Get(SessionUserID).(int64)
	if !ok || id <= 0 {
		return models.User{}, false
	}
	email, _ := sess.Get(SessionEmail).(string)
	name, _ := sess.Get(SessionName).(string)
	role, _ := sess.Get(SessionRole).(string)
	return models.User{ID: id, Email: email, Name: name, Role: models.UserRole(role), Active: true}, true
}

// StoreUser пишет пользователя и id workspace в сессию. Сохранение за вызывающим.
func StoreUser(sess sessions.Session, u models.User, workspaceID string) {
	sess.Set(SessionUserID, u.ID)
	sess.Set(SessionEmail, u.Email)
	sess.Set(SessionName, u.DisplayName())
	sess.Set(SessionRole, string(u.Role))
	sess.Set(SessionWorkspace, workspaceID)
}

// ClearUser убирает всё кроме запомненного e-mail.
func ClearUser(sess sessions.Session) {
	for _, k := range []string{SessionUserID, SessionEmail, SessionName, SessionRole, SessionWorkspace} {
		sess.Delete(k)
	}
}
