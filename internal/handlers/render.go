package handlers

import (
	"dashkpis/internal/middleware"

	"github.com/gin-gonic/gin"
)

// render: обёртка над c.JSON, которая во все ответы прокидывает текущего пользователя.
func render(c *gin.Context, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	// пользователь, которого положил middleware.InjectUser
	if u, ok := middleware.CurrentUser(c); ok {
		data["usuario_actual"] = gin.H{
			"id_usuario": u.ID,
			"nombre":     u.DisplayName(),
			"rol":        u.Role,
		}
	}

	c.JSON(status, data)
}
