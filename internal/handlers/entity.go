package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"dashkpis/internal/crud"
	"dashkpis/internal/database"
	"dashkpis/internal/workspace"

	"github.com/gin-gonic/gin"
)

// entity описывает одну CRUD-вью для общих хендлеров ниже.
type entity[T any, F any] struct {
	name    string
	view    func(*workspace.Workspace) *crud.View[T, F]
	refresh func(context.Context, *workspace.Workspace) error
	key     func(T) crud.Key
	label   func(T) string
	row     func(*workspace.Workspace, T) any
	// scope необязателен: только у вью, которые фильтруются по проекту
	scope func(*workspace.Workspace, *int64)
	// prepare заполняет поля фильтра, которых нет в query string
	prepare func(*F)
}

// EntityRoutes: хендлеры одной сущности, монтирует их server.NewRouter.
type EntityRoutes struct {
	List          gin.HandlerFunc
	Refresh       gin.HandlerFunc
	New           gin.HandlerFunc
	Edit          gin.HandlerFunc
	Patch         gin.HandlerFunc
	Save          gin.HandlerFunc
	Cancel        gin.HandlerFunc
	Detail        gin.HandlerFunc
	CloseDetail   gin.HandlerFunc
	RequestDelete gin.HandlerFunc
	ConfirmDelete gin.HandlerFunc
	CancelDelete  gin.HandlerFunc
	DismissBanner gin.HandlerFunc
}

func entityRoutes[T any, F any](h *Handler, e entity[T, F]) EntityRoutes {
	return EntityRoutes{
		List:          e.withView(h, e.list),
		Refresh:       e.withView(h, e.reload),
		New:           e.withView(h, e.openCreate),
		Edit:          e.withView(h, e.openEdit),
		Patch:         e.withView(h, e.patch),
		Save:          e.withView(h, e.save),
		Cancel:        e.withView(h, e.cancel),
		Detail:        e.withView(h, e.openDetail),
		CloseDetail:   e.withView(h, e.closeDetail),
		RequestDelete: e.withView(h, e.requestDelete),
		ConfirmDelete: e.withView(h, e.confirmDelete),
		CancelDelete:  e.withView(h, e.cancelDelete),
		DismissBanner: e.withView(h, e.dismiss),
	}
}

type viewHandler func(h *Handler, c *gin.Context, w *workspace.Workspace)

func (e entity[T, F]) withView(h *Handler, fn viewHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, ok := h.workspace(c)
		if !ok {
			return
		}
		fn(h, c, w)
	}
}

// state: часть каждого ответа, описывающая вью вокруг списка.
func (e entity[T, F]) state(w *workspace.Workspace) gin.H {
	return gin.H{"vista": e.view(w).Snapshot()}
}

func (e entity[T, F]) rows(w *workspace.Workspace, items []T) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, e.row(w, it))
	}
	return out
}

func (e entity[T, F]) respond(c *gin.Context, w *workspace.Workspace, status int, extra gin.H) {
	body := e.state(w)
	for k, v := range extra {
		body[k] = v
	}
	render(c, status, body)
}

func (e entity[T, F]) audit(w *workspace.Workspace, action string, k crud.Key, item T) {
	id, ok := k.ID()
	if !ok {
		return
	}
	database.CreateAuditLog(w.User.ID, e.name, id, action, e.label(item))
}

// СПИСОК

func (e entity[T, F]) list(h *Handler, c *gin.Context, w *workspace.Workspace) {
	var f F
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, "filtro no válido: "+err.Error())
		return
	}
	if e.prepare != nil {
		e.prepare(&f)
	}

	v := e.view(w)
	if !v.Store.Loaded() {
		// первый заход: ошибка загрузки уже висит баннером
		_ = e.refresh(c.Request.Context(), w)
	}

	items := v.Filtered(f)
	e.respond(c, w, http.StatusOK, gin.H{
		"items": e.rows(w, items),
		"total": v.Store.Len(),
	})
}

func (e entity[T, F]) reload(h *Handler, c *gin.Context, w *workspace.Workspace) {
	if e.scope != nil {
		scope, present, err := scopeQuery(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		if present {
			e.scope(w, scope)
		}
	}
	if err := e.refresh(c.Request.Context(), w); err != nil {
		h.fail(c, err)
		return
	}
	e.respond(c, w, http.StatusOK, gin.H{"items": e.rows(w, e.view(w).Store.All())})
}

// ФОРМА

func (e entity[T, F]) openCreate(h *Handler, c *gin.Context, w *workspace.Workspace) {
	e.view(w).Form.OpenCreate()
	e.respond(c, w, http.StatusOK, nil)
}

func (e entity[T, F]) openEdit(h *Handler, c *gin.Context, w *workspace.Workspace) {
	k, ok := keyParam(c)
	if !ok {
		return
	}
	v := e.view(w)
	item, found := v.Store.Get(k)
	if !found {
		h.fail(c, crud.ErrNotFound)
		return
	}
	v.Form.OpenEdit(item)
	e.respond(c, w, http.StatusOK, nil)
}

// patch накладывает JSON-тело на открытый черновик. Отсутствующие поля не меняются.
func (e entity[T, F]) patch(h *Handler, c *gin.Context, w *workspace.Workspace) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		badRequest(c, "cuerpo vacío")
		return
	}
	var mergeErr error
	_, err = e.view(w).Form.Edit(func(v *T) {
		mergeErr = mergeJSON(v, raw)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if mergeErr != nil {
		badRequest(c, "datos no válidos: "+mergeErr.Error())
		return
	}
	e.respond(c, w, http.StatusOK, nil)
}

func mergeJSON[T any](dst *T, patch []byte) error {
	cur, err := json.Marshal(*dst)
	if err != nil {
		return err
	}
	// свежая копия, чтобы не писать через указатели старого значения
	var fresh T
	if err := json.Unmarshal(cur, &fresh); err != nil {
		return err
	}
	if err := json.Unmarshal(patch, &fresh); err != nil {
		return err
	}
	*dst = fresh
	return nil
}

func (e entity[T, F]) save(h *Handler, c *gin.Context, w *workspace.Workspace) {
	v := e.view(w)
	draft, open := v.Form.Draft()
	if !open {
		h.fail(c, crud.ErrFormClosed)
		return
	}

	saved, err := v.Save(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	action, status := "update", http.StatusOK
	if draft.Kind == crud.DraftCreate {
		action, status = "create", http.StatusCreated
	}
	e.audit(w, action, e.key(saved), saved)
	e.respond(c, w, status, gin.H{"item": e.row(w, saved)})
}

func (e entity[T, F]) cancel(h *Handler, c *gin.Context, w *workspace.Workspace) {
	e.view(w).Form.Cancel()
	e.respond(c, w, http.StatusOK, nil)
}

// ДЕТАЛИ И УДАЛЕНИЕ

func (e entity[T, F]) openDetail(h *Handler, c *gin.Context, w *workspace.Workspace) {
	k, ok := keyParam(c)
	if !ok {
		return
	}
	if _, err := e.view(w).Detail.Open(k); err != nil {
		h.fail(c, err)
		return
	}
	e.respond(c, w, http.StatusOK, nil)
}

func (e entity[T, F]) closeDetail(h *Handler, c *gin.Context, w *workspace.Workspace) {
	e.view(w).Detail.Close()
	e.respond(c, w, http.StatusOK, nil)
}

func (e entity[T, F]) requestDelete(h *Handler, c *gin.Context, w *workspace.Workspace) {
	k, ok := keyParam(c)
	if !ok {
		return
	}
	if _, err := e.view(w).Detail.RequestDelete(k); err != nil {
		h.fail(c, err)
		return
	}
	e.respond(c, w, http.StatusOK, nil)
}

func (e entity[T, F]) confirmDelete(h *Handler, c *gin.Context, w *workspace.Workspace) {
	v := e.view(w)
	pending, _ := v.Detail.Pending()

	k, err := v.ConfirmDelete(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	e.audit(w, "delete", k, pending)
	e.respond(c, w, http.StatusOK, gin.H{"eliminado": k})
}

func (e entity[T, F]) cancelDelete(h *Handler, c *gin.Context, w *workspace.Workspace) {
	e.view(w).Detail.CancelDelete()
	e.respond(c, w, http.StatusOK, nil)
}

func (e entity[T, F]) dismiss(h *Handler, c *gin.Context, w *workspace.Workspace) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "id no válido")
		return
	}
	if !e.view(w).Banners.Dismiss(id) {
		render(c, http.StatusNotFound, gin.H{"error": "banner no encontrado"})
		return
	}
	e.respond(c, w, http.StatusOK, nil)
}
