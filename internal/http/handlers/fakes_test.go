package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/http/views"
	"github.com/geocoder89/todohub/internal/session"
	"github.com/geocoder89/todohub/internal/signal"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	mu       sync.Mutex
	loggedIn bool
	user     *user.User
	init     *signal.Latch

	loginFn          func(ctx context.Context, req user.LoginRequest) (user.AuthData, error)
	registerFn       func(ctx context.Context, req user.RegisterRequest) (user.User, error)
	requestResetFn   func(ctx context.Context, email string) error
	updateRecoveryFn func(ctx context.Context, userID, secret, password string) error
	updateProfileFn  func(ctx context.Context, req user.UpdateProfileRequest) (user.User, error)

	logoutCalls int
}

func newFakeAuth(u *user.User) *fakeAuth {
	f := &fakeAuth{user: u, loggedIn: u != nil, init: signal.NewLatch()}
	f.init.Release()
	return f
}

func (f *fakeAuth) CheckAuth(ctx context.Context) { f.init.Release() }

func (f *fakeAuth) RefreshAuth(ctx context.Context) *user.AuthData {
	f.init.Release()
	return nil
}

func (f *fakeAuth) Login(ctx context.Context, req user.LoginRequest) (user.AuthData, error) {
	if f.loginFn != nil {
		data, err := f.loginFn(ctx, req)
		if err != nil {
			return data, err
		}
		f.setUser(&data.Record)
		return data, nil
	}
	u := user.User{ID: "u-1", Email: req.Email}
	f.setUser(&u)
	return user.AuthData{Token: "sess-1", Record: u}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return user.User{ID: "u-1", Email: req.Email, Name: req.Name}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	f.setUser(nil)
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	if f.requestResetFn != nil {
		return f.requestResetFn(ctx, email)
	}
	return nil
}

func (f *fakeAuth) UpdateRecovery(ctx context.Context, userID, secret, password string) error {
	if f.updateRecoveryFn != nil {
		return f.updateRecoveryFn(ctx, userID, secret, password)
	}
	return nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error) {
	if f.updateProfileFn != nil {
		u, err := f.updateProfileFn(ctx, req)
		if err == nil {
			f.setUser(&u)
		}
		return u, err
	}
	return *f.User(), nil
}

func (f *fakeAuth) WaitInitialized(ctx context.Context) error { return f.init.Wait(ctx) }

func (f *fakeAuth) LoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}

func (f *fakeAuth) User() *user.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeAuth) SessionSecret() string {
	if f.LoggedIn() {
		return "secret"
	}
	return ""
}

func (f *fakeAuth) setUser(u *user.User) {
	f.mu.Lock()
	f.user = u
	f.loggedIn = u != nil
	f.mu.Unlock()
}

type fakeTodos struct {
	getTodosFn func(ctx context.Context, filter todo.ListFilter) (todo.Page, error)
	createFn   func(ctx context.Context, req todo.CreateTodoRequest) (todo.Todo, error)
	updateFn   func(ctx context.Context, id string, req todo.UpdateTodoRequest) (todo.Todo, error)
	deleteFn   func(ctx context.Context, id string) error
	getFn      func(ctx context.Context, id string) (todo.Todo, error)
}

func (f *fakeTodos) GetTodos(ctx context.Context, filter todo.ListFilter) (todo.Page, error) {
	if f.getTodosFn != nil {
		return f.getTodosFn(ctx, filter)
	}
	return todo.Page{Items: []todo.Todo{}}, nil
}

func (f *fakeTodos) CreateTodo(ctx context.Context, req todo.CreateTodoRequest) (todo.Todo, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return todo.Todo{ID: "new", Title: req.Title}, nil
}

func (f *fakeTodos) UpdateTodo(ctx context.Context, id string, req todo.UpdateTodoRequest) (todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return todo.Todo{ID: id}, nil
}

func (f *fakeTodos) DeleteTodo(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeTodos) GetTodo(ctx context.Context, id string) (todo.Todo, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return todo.Todo{ID: id}, nil
}

var fixedNow = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

// setupRouter mounts handlers behind a middleware that attaches st, the way
// the session middleware does in the real router.
func setupRouter(st *session.State, mount func(r *gin.Engine)) *gin.Engine {
	r := gin.New()

	tmpl, err := views.LoadWithClock(func() time.Time { return fixedNow })
	if err != nil {
		panic(err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(func(c *gin.Context) {
		middlewares.SetSession(c, st)
		c.Next()
	})
	mount(r)

	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}
