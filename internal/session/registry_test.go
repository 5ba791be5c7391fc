package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/geocoder89/todohub/internal/signal"
)

type fakeAuth struct {
	mu        sync.Mutex
	secret    string
	checked   int
	refreshed int
	valid     bool
	init      *signal.Latch
}

func newFakeAuth(secret string, valid bool) *fakeAuth {
	return &fakeAuth{secret: secret, valid: valid, init: signal.NewLatch()}
}

func (f *fakeAuth) CheckAuth(ctx context.Context) {
	f.mu.Lock()
	f.checked++
	f.mu.Unlock()
	f.init.Release()
}

func (f *fakeAuth) RefreshAuth(ctx context.Context) *user.AuthData {
	defer f.init.Release()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
	if !f.valid {
		f.secret = ""
		return nil
	}
	return &user.AuthData{Token: "sess-1"}
}

func (f *fakeAuth) Login(ctx context.Context, req user.LoginRequest) (user.AuthData, error) {
	f.mu.Lock()
	f.secret = "fresh-secret"
	f.mu.Unlock()
	return user.AuthData{}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	return user.User{}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) {
	f.mu.Lock()
	f.secret = ""
	f.mu.Unlock()
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (f *fakeAuth) UpdateRecovery(ctx context.Context, userID, secret, password string) error {
	return nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error) {
	return user.User{}, nil
}

func (f *fakeAuth) WaitInitialized(ctx context.Context) error { return f.init.Wait(ctx) }
func (f *fakeAuth) LoggedIn() bool                          { return f.SessionSecret() != "" }
func (f *fakeAuth) User() *user.User                        { return nil }

func (f *fakeAuth) SessionSecret() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secret
}

type nopTodos struct{}

func (nopTodos) GetTodos(ctx context.Context, filter todo.ListFilter) (todo.Page, error) {
	return todo.Page{}, nil
}
func (nopTodos) CreateTodo(ctx context.Context, req todo.CreateTodoRequest) (todo.Todo, error) {
	return todo.Todo{}, nil
}
func (nopTodos) UpdateTodo(ctx context.Context, id string, req todo.UpdateTodoRequest) (todo.Todo, error) {
	return todo.Todo{}, nil
}
func (nopTodos) DeleteTodo(ctx context.Context, id string) error { return nil }
func (nopTodos) GetTodo(ctx context.Context, id string) (todo.Todo, error) {
	return todo.Todo{}, nil
}

type builderSpy struct {
	mu      sync.Mutex
	secrets []string
	valid   bool
	last    *fakeAuth
}

func (b *builderSpy) build(secret string) (Auth, Todos) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.secrets = append(b.secrets, secret)
	b.last = newFakeAuth(secret, b.valid)
	return b.last, nopTodos{}
}

func newTestRegistry(t *testing.T, spy *builderSpy, store Store) *Registry {
	t.Helper()

	sealer, err := security.NewSealer("test-secret")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	return NewRegistry(spy.build, store, sealer, RegistryConfig{TTL: time.Hour, InitTimeout: time.Second})
}

func waitInit(t *testing.T, st *State) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := st.Auth.WaitInitialized(ctx); err != nil {
		t.Fatalf("auth never initialized: %v", err)
	}
}

func TestAcquireNewSessionRunsCheckAuth(t *testing.T) {
	spy := &builderSpy{}
	reg := newTestRegistry(t, spy, NewMemoryStore(time.Hour))

	st := reg.Acquire(context.Background(), "")
	if st.ID == "" {
		t.Fatalf("expected a generated session id")
	}
	waitInit(t, st)

	fa := st.Auth.(*fakeAuth)
	if fa.checked != 1 || fa.refreshed != 0 {
		t.Fatalf("got checked=%d refreshed=%d, want 1/0", fa.checked, fa.refreshed)
	}

	again := reg.Acquire(context.Background(), st.ID)
	if again != st {
		t.Fatalf("second acquire should return the live state")
	}
	if reg.Len() != 1 {
		t.Fatalf("got %d live sessions, want 1", reg.Len())
	}
}

func TestPersistAndRestore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	spy := &builderSpy{valid: true}
	reg := newTestRegistry(t, spy, store)

	st := reg.Acquire(ctx, "")
	waitInit(t, st)

	if _, err := st.Auth.Login(ctx, user.LoginRequest{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	st.HideCompleted.Set(true)

	if err := reg.Persist(ctx, st); err != nil {
		t.Fatalf("persist: %v", err)
	}

	rec, err := store.Load(ctx, st.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Sealed == "" || rec.Sealed == "fresh-secret" {
		t.Fatalf("secret must be stored sealed, got %q", rec.Sealed)
	}

	// a new process restores the session from the store
	spy2 := &builderSpy{valid: true}
	reg2 := newTestRegistry(t, spy2, store)

	restored := reg2.Acquire(ctx, st.ID)
	waitInit(t, restored)

	if spy2.secrets[0] != "fresh-secret" {
		t.Fatalf("got restored secret %q, want fresh-secret", spy2.secrets[0])
	}
	if !restored.HideCompleted.Get() {
		t.Fatalf("hide completed preference not restored")
	}
	if fa := restored.Auth.(*fakeAuth); fa.refreshed != 1 || fa.checked != 0 {
		t.Fatalf("restored session should refresh, got checked=%d refreshed=%d", fa.checked, fa.refreshed)
	}
}

func TestPersistDeletesAfterLogout(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	reg := newTestRegistry(t, &builderSpy{valid: true}, store)

	st := reg.Acquire(ctx, "")
	waitInit(t, st)
	_, _ = st.Auth.Login(ctx, user.LoginRequest{})
	if err := reg.Persist(ctx, st); err != nil {
		t.Fatalf("persist: %v", err)
	}

	st.Auth.Logout(ctx)
	if err := reg.Persist(ctx, st); err != nil {
		t.Fatalf("persist: %v", err)
	}

	if _, err := store.Load(ctx, st.ID); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound after logout", err)
	}
}

func TestRestoreWithTamperedSecretStartsFresh(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	_ = store.Save(ctx, "sid-1", Record{Sealed: "tampered"}, time.Hour)

	spy := &builderSpy{}
	reg := newTestRegistry(t, spy, store)

	st := reg.Acquire(ctx, "sid-1")
	waitInit(t, st)

	if spy.secrets[0] != "" {
		t.Fatalf("tampered secret must not be used, got %q", spy.secrets[0])
	}
	if fa := st.Auth.(*fakeAuth); fa.checked != 1 {
		t.Fatalf("expected a fresh auth check")
	}
}

func TestBeginSubmitDropsConcurrent(t *testing.T) {
	st := NewState("sid-1", newFakeAuth("", false), nopTodos{})

	if !st.BeginSubmit() {
		t.Fatalf("first submit should start")
	}
	if st.BeginSubmit() {
		t.Fatalf("second submit should be dropped while the first runs")
	}

	st.EndSubmit()
	if !st.BeginSubmit() {
		t.Fatalf("submit should start again after the first ends")
	}
}

func TestRotateMovesSessionToNewID(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	spy := &builderSpy{valid: true}
	reg := newTestRegistry(t, spy, store)

	st := reg.Acquire(ctx, "")
	waitInit(t, st)
	st.HideCompleted.Set(true)
	if err := reg.Persist(ctx, st); err != nil {
		t.Fatalf("persist: %v", err)
	}
	oldID := st.ID

	_, _ = st.Auth.Login(ctx, user.LoginRequest{})
	next := reg.Rotate(ctx, st)

	if next.ID == oldID || next.ID == "" {
		t.Fatalf("rotated id %q must differ from %q", next.ID, oldID)
	}
	if next.Auth != st.Auth || !next.HideCompleted.Get() || !next.CreatedAt.Equal(st.CreatedAt) {
		t.Fatalf("rotation must keep the session contents")
	}
	if _, err := store.Load(ctx, oldID); err != ErrNotFound {
		t.Fatalf("got %v, want old id dropped from the store", err)
	}

	// a late write through the old state must not resurrect the old id
	if err := reg.Persist(ctx, st); err != nil {
		t.Fatalf("persist retired: %v", err)
	}
	if _, err := store.Load(ctx, oldID); err != ErrNotFound {
		t.Fatalf("got %v, retired state was persisted", err)
	}

	if err := reg.Persist(ctx, next); err != nil {
		t.Fatalf("persist rotated: %v", err)
	}
	rec, err := store.Load(ctx, next.ID)
	if err != nil || rec.Sealed == "" {
		t.Fatalf("rotated session not stored: rec=%+v err=%v", rec, err)
	}

	if again := reg.Acquire(ctx, next.ID); again != next {
		t.Fatalf("new id should map to the rotated state")
	}

	stale := reg.Acquire(ctx, oldID)
	waitInit(t, stale)
	if stale == st || stale == next {
		t.Fatalf("old id must not reach the signed-in session")
	}
	if last := spy.secrets[len(spy.secrets)-1]; last != "" {
		t.Fatalf("old id restored secret %q, want a fresh session", last)
	}
	if stale.Auth.LoggedIn() {
		t.Fatalf("old id must start signed out")
	}
}
