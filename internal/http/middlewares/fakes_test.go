package middlewares_test

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/session"
	"github.com/geocoder89/todohub/internal/signal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubAuth only carries the login flag and the initial-check latch; the
// middlewares never call the backend operations.
type stubAuth struct {
	mu       sync.Mutex
	loggedIn bool
	init     *signal.Latch
}

func newStubAuth(loggedIn, initialized bool) *stubAuth {
	a := &stubAuth{loggedIn: loggedIn, init: signal.NewLatch()}
	if initialized {
		a.init.Release()
	}
	return a
}

func (a *stubAuth) finish(loggedIn bool) {
	a.mu.Lock()
	a.loggedIn = loggedIn
	a.mu.Unlock()
	a.init.Release()
}

func (a *stubAuth) CheckAuth(context.Context) {}
func (a *stubAuth) RefreshAuth(context.Context) *user.AuthData { return nil }
func (a *stubAuth) Logout(context.Context) {}
func (a *stubAuth) RequestPasswordReset(context.Context, string) error { return nil }
func (a *stubAuth) UpdateRecovery(context.Context, string, string, string) error {
	return nil
}

func (a *stubAuth) Login(context.Context, user.LoginRequest) (user.AuthData, error) {
	return user.AuthData{}, nil
}

func (a *stubAuth) Register(context.Context, user.RegisterRequest) (user.User, error) {
	return user.User{}, nil
}

func (a *stubAuth) UpdateProfile(context.Context, user.UpdateProfileRequest) (user.User, error) {
	return user.User{}, nil
}

func (a *stubAuth) WaitInitialized(ctx context.Context) error { return a.init.Wait(ctx) }

func (a *stubAuth) LoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loggedIn
}

func (a *stubAuth) User() *user.User {
	if a.LoggedIn() {
		return &user.User{ID: "u-1"}
	}
	return nil
}

func (a *stubAuth) SessionSecret() string { return "" }

type stubTodos struct{}

func (stubTodos) GetTodos(context.Context, todo.ListFilter) (todo.Page, error) {
	return todo.Page{}, nil
}

func (stubTodos) CreateTodo(context.Context, todo.CreateTodoRequest) (todo.Todo, error) {
	return todo.Todo{}, nil
}

func (stubTodos) UpdateTodo(context.Context, string, todo.UpdateTodoRequest) (todo.Todo, error) {
	return todo.Todo{}, nil
}

func (stubTodos) DeleteTodo(context.Context, string) error { return nil }

func (stubTodos) GetTodo(context.Context, string) (todo.Todo, error) {
	return todo.Todo{}, nil
}

func newState(id string, a *stubAuth) *session.State {
	return session.NewState(id, a, stubTodos{})
}
