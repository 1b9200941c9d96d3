package handlers

import (
	"net/http"

	"dashkpis/internal/api"
	"dashkpis/internal/middleware"
	"dashkpis/internal/models"
	"dashkpis/internal/validation"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	prefix := string(runes[:atIdx])
	domain := string(runes[atIdx:])
	if len(prefix) <= 2 {
		return prefix + "***" + domain
	}
	return string(runes[0:2]) + "***" + domain
}

// Session отдаёт то, что клиент хранит между визитами: пользователя и запомненный e-mail
func (h *Handler) Session(c *gin.Context) {
	sess := sessions.Default(c)
	remembered, _ := sess.Get(middleware.SessionRemember).(string)

	body := gin.H{"usuario": nil, "email_recordado": remembered}
	if u, ok := middleware.UserFromSession(sess); ok {
		if id, _ := sess.Get(middleware.SessionWorkspace).(string); id != "" {
			if _, mounted := h.spaces.Get(id); mounted {
				body["usuario"] = u
			}
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) Login(c *gin.Context) {
	var form validation.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Datos no válidos")
		return
	}
	if err := form.Check(); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.backend.Login(c.Request.Context(), models.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.log.Info("login rejected", zap.String("email", maskEmail(form.Email)), zap.Error(err))
		if api.IsUnauthorized(err) || api.StatusOf(err) == http.StatusBadRequest {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
			return
		}
		h.fail(c, err)
		return
	}

	sess := sessions.Default(c)
	// повторный логин в той же сессии заменяет старый workspace
	if old, _ := sess.Get(middleware.SessionWorkspace).(string); old != "" {
		h.spaces.Unmount(old)
	}
	w := h.spaces.Mount(c.Request.Context(), user)
	middleware.StoreUser(sess, user, w.ID)
	if form.Remember {
		sess.Set(middleware.SessionRemember, form.Email)
	} else {
		sess.Delete(middleware.SessionRemember)
	}
	if err := sess.Save(); err != nil {
		h.spaces.Unmount(w.ID)
		render(c, http.StatusInternalServerError, gin.H{"error": "No se pudo guardar la sesión"})
		return
	}

	h.log.Info("login", zap.String("email", maskEmail(user.Email)), zap.String("workspace", w.ID))
	c.JSON(http.StatusOK, gin.H{"usuario": user})
}

func (h *Handler) Register(c *gin.Context) {
	var form validation.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Datos no válidos")
		return
	}
	if err := form.Check(); err != nil {
		h.fail(c, err)
		return
	}

	user, err := h.backend.Register(c.Request.Context(), form.Registration())
	if err != nil {
		if status := api.StatusOf(err); status == http.StatusBadRequest || status == http.StatusConflict {
			badRequest(c, err.Error())
			return
		}
		h.fail(c, err)
		return
	}

	h.log.Info("user registered", zap.String("email", maskEmail(user.Email)), zap.String("rol", string(user.Role)))
	c.JSON(http.StatusCreated, gin.H{"usuario": user})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	if id, _ := sess.Get(middleware.SessionWorkspace).(string); id != "" {
		h.spaces.Unmount(id)
	}
	middleware.ClearUser(sess)
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
