// Package session keeps the per-browser state of the app: the auth and todo
// proxies bound to that browser's backend session, the page signals, and the
// toast queue.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/signal"
	"github.com/geocoder89/todohub/internal/toast"
)

// Auth is what page controllers and guards need from the auth proxy.
type Auth interface {
	CheckAuth(ctx context.Context)
	RefreshAuth(ctx context.Context) *user.AuthData
	Login(ctx context.Context, req user.LoginRequest) (user.AuthData, error)
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Logout(ctx context.Context)
	RequestPasswordReset(ctx context.Context, email string) error
	UpdateRecovery(ctx context.Context, userID, secret, password string) error
	UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error)
	WaitInitialized(ctx context.Context) error
	LoggedIn() bool
	User() *user.User
	SessionSecret() string
}

type Todos interface {
	GetTodos(ctx context.Context, filter todo.ListFilter) (todo.Page, error)
	CreateTodo(ctx context.Context, req todo.CreateTodoRequest) (todo.Todo, error)
	UpdateTodo(ctx context.Context, id string, req todo.UpdateTodoRequest) (todo.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	GetTodo(ctx context.Context, id string) (todo.Todo, error)
}

type State struct {
	ID        string
	CreatedAt time.Time

	Auth  Auth
	Todos Todos

	// todo list page
	HideCompleted *signal.Signal[bool]
	List          *signal.Signal[[]todo.Todo]
	Cursor        *signal.Signal[string]
	Total         *signal.Signal[int]

	// password reset request page
	EmailSent *signal.Signal[bool]

	Toasts *toast.Queue

	submitting atomic.Bool
	// set once the state was rekeyed; a retired state is never persisted
	retired atomic.Bool

	mu        sync.Mutex
	persisted Record
}

func NewState(id string, a Auth, t Todos) *State {
	st := &State{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		Auth:          a,
		Todos:         t,
		HideCompleted: signal.New(false),
		List:          signal.New[[]todo.Todo](nil),
		Cursor:        signal.New(""),
		Total:         signal.New(0),
		EmailSent:     signal.New(false),
		Toasts:        toast.NewQueue(),
	}

	// a different filter makes the old page cursor meaningless
	st.HideCompleted.Subscribe(func(bool) { st.Cursor.Set("") })

	return st
}

// BeginSubmit marks a form submit as running. It returns false when another
// submit from the same browser is still in flight.
func (s *State) BeginSubmit() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *State) EndSubmit() {
	s.submitting.Store(false)
}

func (s *State) Submitting() bool {
	return s.submitting.Load()
}

// ResetList drops the cached todo list, used on logout.
func (s *State) ResetList() {
	s.List.Set(nil)
	s.Cursor.Set("")
	s.Total.Set(0)
}

// rekey returns the same session under a new id. Signals, toasts and the
// proxies are shared; nothing has been persisted under the new id yet.
func (s *State) rekey(id string) *State {
	return &State{
		ID:            id,
		CreatedAt:     s.CreatedAt,
		Auth:          s.Auth,
		Todos:         s.Todos,
		HideCompleted: s.HideCompleted,
		List:          s.List,
		Cursor:        s.Cursor,
		Total:         s.Total,
		EmailSent:     s.EmailSent,
		Toasts:        s.Toasts,
	}
}

// snapshot is the persistable part of the state, minus the sealed secret.
func (s *State) snapshot() Record {
	return Record{
		CreatedAt:     s.CreatedAt,
		HideCompleted: s.HideCompleted.Get(),
	}
}

func (s *State) lastPersisted() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

func (s *State) markPersisted(r Record) {
	s.mu.Lock()
	s.persisted = r
	s.mu.Unlock()
}
