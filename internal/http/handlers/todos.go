package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/session"
	"github.com/geocoder89/todohub/internal/toast"
	"github.com/geocoder89/todohub/internal/utils"
)

// listAfterAction shows the session's list as updated in place, without a
// reload from the backend.
const listAfterAction = "/todos?local=1"

type TodosHandler struct {
	base
	pageSize int
}

func NewTodosHandler(opts Options) *TodosHandler {
	size := opts.PageSize
	if size <= 0 {
		size = 25
	}
	return &TodosHandler{base: newBase(opts), pageSize: size}
}

// List loads the first page, or the page after ?cursor, or with ?local=1
// renders the list already held by the session.
func (h *TodosHandler) List(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	status := http.StatusOK

	if ctx.Query("local") == "" || st.List.Get() == nil {
		if err := h.load(ctx, st, ctx.Query("cursor")); err != nil {
			toast.Danger(st.Toasts, errMessage(err, "Failed to load todos"))
			status = backendStatus(err)
		}
	}

	Render(ctx, status, "todos.html", gin.H{
		"Title":         "My Todos",
		"Todos":         st.List.Get(),
		"Total":         st.Total.Get(),
		"HideCompleted": st.HideCompleted.Get(),
		"NextCursor":    st.Cursor.Get(),
	})
}

func (h *TodosHandler) load(ctx *gin.Context, st *session.State, cursor string) error {
	filter := todo.ListFilter{
		HideCompleted: st.HideCompleted.Get(),
		Limit:         h.pageSize,
	}

	if cursor != "" {
		c, err := utils.DecodeTodoCursor(cursor)
		if err != nil {
			// a stale or hand-edited cursor restarts from the top
			cursor = ""
		} else {
			filter.AfterID = c.ID
		}
	}

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	page, err := st.Todos.GetTodos(cctx, filter)
	if err != nil {
		return err
	}

	if cursor == "" {
		st.List.Set(page.Items)
	} else {
		st.List.Update(func(cur []todo.Todo) []todo.Todo {
			out := make([]todo.Todo, 0, len(cur)+len(page.Items))
			out = append(out, cur...)
			return append(out, page.Items...)
		})
	}
	st.Total.Set(page.Total)

	next := ""
	if page.HasMore && len(page.Items) > 0 {
		last := page.Items[len(page.Items)-1]
		if enc, err := utils.EncodeTodoCursor(last.CreatedAt, last.ID); err == nil {
			next = enc
		}
	}
	st.Cursor.Set(next)

	return nil
}

func (h *TodosHandler) ToggleHideCompleted(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	st.HideCompleted.Update(func(v bool) bool { return !v })
	Redirect(ctx, "/todos")
}

func (h *TodosHandler) Toggle(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	if !h.begin(ctx, st, listAfterAction) {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	current, found := findTodo(st.List.Get(), id)
	if !found {
		t, err := st.Todos.GetTodo(cctx, id)
		if err != nil {
			h.failAction(ctx, st, err)
			return
		}
		current = t
	}

	completed := !current.Completed
	updated, err := st.Todos.UpdateTodo(cctx, id, todo.UpdateTodoRequest{Completed: &completed})
	if err != nil {
		h.failAction(ctx, st, err)
		return
	}

	st.List.Update(func(list []todo.Todo) []todo.Todo {
		return todo.ReplaceByID(list, updated)
	})

	msg := "Todo reopened!"
	if updated.Completed {
		msg = "Todo completed!"
	}
	toast.Success(st.Toasts, msg, toast.WithDuration(toast.ShortDuration), toast.WithPosition(toast.PositionBottom))

	Redirect(ctx, listAfterAction)
}

func (h *TodosHandler) DeletePage(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	t, found := findTodo(st.List.Get(), id)
	if !found {
		cctx, cancel := h.backendCtx(ctx)
		defer cancel()

		var err error
		if t, err = st.Todos.GetTodo(cctx, id); err != nil {
			h.failAction(ctx, st, err)
			return
		}
	}

	Render(ctx, http.StatusOK, "confirm.html", gin.H{
		"Title":       "Delete Todo",
		"Heading":     "Delete Todo",
		"Message":     `Are you sure you want to delete "` + t.Title + `"?`,
		"Action":      "/todos/" + t.ID + "/delete",
		"Confirm":     "Delete",
		"Destructive": true,
		"Cancel":      listAfterAction,
	})
}

func (h *TodosHandler) Delete(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	if !h.begin(ctx, st, listAfterAction) {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if err := st.Todos.DeleteTodo(cctx, id); err != nil {
		h.failAction(ctx, st, err)
		return
	}

	before := len(st.List.Get())
	after := st.List.Update(func(list []todo.Todo) []todo.Todo {
		return todo.RemoveByID(list, id)
	})
	if removed := before - len(after); removed > 0 {
		st.Total.Update(func(n int) int { return max(n-removed, 0) })
	}

	toast.Success(st.Toasts, "Todo deleted!")
	Redirect(ctx, listAfterAction)
}

// EditPage shows the create form, or with :id the edit form filled from the
// current row.
func (h *TodosHandler) EditPage(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	if id == "" {
		Render(ctx, http.StatusOK, "edit_todo.html", gin.H{
			"Title": "New Todo",
			"Back":  "/todos",
			"Form":  todoFormView{},
		})
		return
	}

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	t, err := st.Todos.GetTodo(cctx, id)
	if err != nil {
		h.failAction(ctx, st, err)
		return
	}

	Render(ctx, http.StatusOK, "edit_todo.html", gin.H{
		"Title":   "Edit Todo",
		"Back":    "/todos",
		"Editing": true,
		"TodoID":  t.ID,
		"Form":    viewFromTodo(t),
	})
}

func (h *TodosHandler) Save(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	editing := id != ""

	data := gin.H{"Back": "/todos", "Editing": editing, "TodoID": id, "Title": "New Todo"}
	if editing {
		data["Title"] = "Edit Todo"
	}

	var form todoForm
	errs, valid := BindForm(ctx, &form)
	if errs == nil {
		errs = FieldErrors{}
	}

	form.Title = strings.TrimSpace(form.Title)
	if valid && form.Title == "" {
		errs.Add("title", validationMessage("required", ""))
	}

	due, err := parseDueDate(form.DueDate)
	if err != nil {
		errs.Add("dueDate", err.Error())
	}

	data["Form"] = todoFormView(form)
	if len(errs) > 0 {
		data["Errors"] = errs
		Render(ctx, http.StatusUnprocessableEntity, "edit_todo.html", data)
		return
	}

	if !h.begin(ctx, st, ctx.Request.URL.Path) {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if editing {
		req := todo.UpdateTodoRequest{
			Title:        &form.Title,
			Description:  &form.Description,
			Completed:    &form.Completed,
			DueDate:      due,
			ClearDueDate: due == nil,
		}
		_, err = st.Todos.UpdateTodo(cctx, id, req)
	} else {
		req := todo.CreateTodoRequest{
			Title:       form.Title,
			Description: &form.Description,
			Completed:   &form.Completed,
			DueDate:     due,
		}
		_, err = st.Todos.CreateTodo(cctx, req)
	}

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "Todo not found")
			return
		}
		toast.Danger(st.Toasts, errMessage(err, "Failed to save todo"))
		Render(ctx, backendStatus(err), "edit_todo.html", data)
		return
	}

	if editing {
		toast.Success(st.Toasts, "Todo updated successfully!")
	} else {
		toast.Success(st.Toasts, "Todo created successfully!")
	}
	Redirect(ctx, "/todos")
}

// failAction reports a failed row operation. A missing row gets the 404
// page, anything else a danger toast back on the list.
func (h *TodosHandler) failAction(ctx *gin.Context, st *session.State, err error) {
	if errors.Is(err, todo.ErrNotFound) {
		st.List.Update(func(list []todo.Todo) []todo.Todo {
			return todo.RemoveByID(list, ctx.Param("id"))
		})
		RespondNotFound(ctx, "Todo not found")
		return
	}

	h.log.WarnContext(ctx.Request.Context(), "todo action failed", "route", ctx.FullPath(), "err", err)
	toast.Danger(st.Toasts, errMessage(err, "Something went wrong"))
	Redirect(ctx, listAfterAction)
}

// todoFormView is the edit form as the template sees it.
type todoFormView struct {
	Title       string
	Description string
	Completed   bool
	DueDate     string
}

func viewFromTodo(t todo.Todo) todoFormView {
	v := todoFormView{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.UTC().Format("2006-01-02")
	}
	return v
}

func findTodo(list []todo.Todo, id string) (todo.Todo, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return todo.Todo{}, false
}
