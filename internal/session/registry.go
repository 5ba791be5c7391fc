package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geocoder89/todohub/internal/appwrite"
	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/cache"
	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/geocoder89/todohub/internal/todos"
)

// Builder creates the proxies for one browser session. secret is the
// backend session secret restored from the store, or "" for a new browser.
type Builder func(secret string) (Auth, Todos)

type BuilderConfig struct {
	RecoveryURL  string
	DatabaseID   string
	TodosTableID string
	Logger       *slog.Logger
}

// AppwriteBuilder binds each session to its own clone of the backend client.
func AppwriteBuilder(base *appwrite.Client, cfg BuilderConfig) Builder {
	return func(secret string) (Auth, Todos) {
		client := base.Clone()
		client.SetSession(secret)

		a := auth.NewSession(appwrite.NewAccount(client), client, auth.Options{
			RecoveryURL: cfg.RecoveryURL,
			Logger:      cfg.Logger,
		})
		t := todos.NewService(appwrite.NewTablesDB(client), a, cfg.DatabaseID, cfg.TodosTableID)

		return a, t
	}
}

type RegistryConfig struct {
	TTL time.Duration
	// InitTimeout bounds the background auth check of a new session.
	InitTimeout time.Duration
	Logger      *slog.Logger
}

// Registry owns the live states. A state missing from memory is restored
// from the store, so a restart does not sign anybody out.
type Registry struct {
	build       Builder
	store       Store
	sealer      *security.Sealer
	live        *cache.Cache[*State]
	ttl         time.Duration
	initTimeout time.Duration
	log         *slog.Logger

	mu sync.Mutex
}

func NewRegistry(build Builder, store Store, sealer *security.Sealer, cfg RegistryConfig) *Registry {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "session")

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	initTimeout := cfg.InitTimeout
	if initTimeout <= 0 {
		initTimeout = 5 * time.Second
	}

	r := &Registry{
		build:       build,
		store:       store,
		sealer:      sealer,
		ttl:         ttl,
		initTimeout: initTimeout,
		log:         log,
	}
	r.live = cache.New[*State](ttl, cache.WithOnEvict(func(id string, _ *State) {
		log.Debug("session expired", "session_id", id)
	}))
	return r
}

// Acquire returns the state for id, restoring or creating it. An empty id
// starts a new session with a fresh id.
func (r *Registry) Acquire(ctx context.Context, id string) *State {
	if id != "" {
		if st, ok := r.live.Get(id); ok {
			r.live.Touch(id)
			return st
		}
	} else {
		id = uuid.NewString()
	}

	rec := r.restore(ctx, id)

	a, t := r.build(rec.Secret)
	st := NewState(id, a, t)
	if !rec.CreatedAt.IsZero() {
		st.CreatedAt = rec.CreatedAt
	}
	st.HideCompleted.Set(rec.HideCompleted)
	st.markPersisted(rec)

	r.mu.Lock()
	if existing, ok := r.live.Get(id); ok {
		r.mu.Unlock()
		return existing
	}
	r.live.Set(id, st)
	r.mu.Unlock()

	r.initialize(st, rec.Secret != "")
	return st
}

// Rotate moves st to a fresh id and forgets the old one, both in memory and
// in the store. Called when the privilege of a session changes, so an id
// known before sign-in is worthless after it.
func (r *Registry) Rotate(ctx context.Context, st *State) *State {
	next := st.rekey(uuid.NewString())

	r.mu.Lock()
	st.retired.Store(true)
	r.live.Set(next.ID, next)
	r.live.Delete(st.ID)
	r.mu.Unlock()

	if err := r.store.Delete(ctx, st.ID); err != nil {
		r.log.WarnContext(ctx, "drop rotated session failed", "session_id", st.ID, "err", err)
	}

	r.log.DebugContext(ctx, "session rotated", "session_id", st.ID, "new_session_id", next.ID)
	return next
}

func (r *Registry) restore(ctx context.Context, id string) Record {
	rec, err := r.store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.WarnContext(ctx, "session store load failed", "session_id", id, "err", err)
		}
		return Record{}
	}

	if rec.Sealed != "" {
		secret, err := r.sealer.Open(rec.Sealed)
		if err != nil {
			r.log.WarnContext(ctx, "stored session secret rejected", "session_id", id, "err", err)
			return Record{CreatedAt: rec.CreatedAt, HideCompleted: rec.HideCompleted}
		}
		rec.Secret = secret
	}
	rec.Sealed = ""
	return rec
}

// initialize resolves the auth state off the request path. Guards wait on
// the auth-initialized latch for the result.
func (r *Registry) initialize(st *State, restored bool) {
	go func() {
		ctx, cancel := config.WithTimeout(r.initTimeout)
		defer cancel()

		if restored {
			if st.Auth.RefreshAuth(ctx) == nil {
				r.log.Info("restored session is no longer valid", "session_id", st.ID)
			}
			return
		}
		st.Auth.CheckAuth(ctx)
	}()
}

// Persist writes the state to the store when its secret or preferences
// changed since the last write, or when the stored copy is close to expiry.
func (r *Registry) Persist(ctx context.Context, st *State) error {
	if st.retired.Load() {
		return nil
	}

	cur := st.snapshot()
	cur.Secret = st.Auth.SessionSecret()
	prev := st.lastPersisted()

	if cur.same(prev) && time.Since(prev.savedAt) < r.ttl/2 {
		return nil
	}

	if cur.Secret == "" && !cur.HideCompleted {
		if prev.Secret == "" && !prev.HideCompleted {
			return nil
		}
		if err := r.store.Delete(ctx, st.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		st.markPersisted(cur)
		return nil
	}

	out := Record{CreatedAt: cur.CreatedAt, HideCompleted: cur.HideCompleted}
	if cur.Secret != "" {
		sealed, err := r.sealer.Seal(cur.Secret)
		if err != nil {
			return fmt.Errorf("seal session secret: %w", err)
		}
		out.Sealed = sealed
	}

	if err := r.store.Save(ctx, st.ID, out, r.ttl); err != nil {
		return err
	}

	cur.savedAt = time.Now()
	st.markPersisted(cur)
	return nil
}

func (r *Registry) Len() int {
	return r.live.Len()
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// RunJanitor evicts expired live states until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	r.live.RunJanitor(ctx, interval)
}
