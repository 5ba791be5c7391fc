// Package auth tracks who is signed in for one browser session and forwards
// every account operation to the backend.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/todohub/internal/appwrite"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/signal"
)

// AccountAPI is the slice of the backend account API this package needs.
type AccountAPI interface {
	CreateEmailPasswordSession(ctx context.Context, email, password string) (appwrite.Session, error)
	Get(ctx context.Context) (appwrite.User, error)
	Create(ctx context.Context, userID, email, password, name string) (appwrite.User, error)
	GetSession(ctx context.Context, sessionID string) (appwrite.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CreateRecovery(ctx context.Context, email, redirectURL string) (appwrite.Token, error)
	UpdateRecovery(ctx context.Context, userID, secret, password string) (appwrite.Token, error)
	UpdateName(ctx context.Context, name string) (appwrite.User, error)
	UpdateEmail(ctx context.Context, email, password string) (appwrite.User, error)
}

// Credentials holds the backend session secret used for user calls.
type Credentials interface {
	SetSession(secret string)
	SessionSecret() string
}

var ErrPasswordRequired = errors.New("Password is required when updating email")

const currentSession = "current"

type Options struct {
	// RecoveryURL is where the backend's reset email links to.
	RecoveryURL string
	Logger      *slog.Logger
}

type Session struct {
	IsLoggedIn      *signal.Signal[bool]
	CurrentUser     *signal.Signal[*user.User]
	AuthInitialized *signal.Latch

	account     AccountAPI
	creds       Credentials
	recoveryURL string
	log         *slog.Logger
}

func NewSession(account AccountAPI, creds Credentials, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		IsLoggedIn:      signal.New(false),
		CurrentUser:     signal.New[*user.User](nil),
		AuthInitialized: signal.NewLatch(),
		account:         account,
		creds:           creds,
		recoveryURL:     opts.RecoveryURL,
		log:             log.With("component", "auth"),
	}
}

// CheckAuth resolves the initial login state of a new session.
func (s *Session) CheckAuth(ctx context.Context) {
	defer s.AuthInitialized.Release()

	if s.creds.SessionSecret() == "" {
		s.setLoggedOut()
		return
	}

	u, err := s.account.Get(ctx)
	if err != nil {
		s.log.DebugContext(ctx, "session check failed", "err", err)
		s.setLoggedOut()
		return
	}

	s.setLoggedIn(mapUser(u))
}

// RefreshAuth re-validates a restored session. On any failure the session
// is logged out and nil is returned.
func (s *Session) RefreshAuth(ctx context.Context) *user.AuthData {
	defer s.AuthInitialized.Release()

	u, err := s.account.Get(ctx)
	if err != nil {
		s.log.DebugContext(ctx, "session refresh failed", "err", err)
		s.Logout(ctx)
		return nil
	}

	record := mapUser(u)
	s.setLoggedIn(record)

	sess, err := s.account.GetSession(ctx, currentSession)
	if err != nil {
		s.log.DebugContext(ctx, "session lookup failed", "err", err)
		s.Logout(ctx)
		return nil
	}

	return &user.AuthData{Token: sess.ID, Record: *record}
}

func (s *Session) Login(ctx context.Context, req user.LoginRequest) (user.AuthData, error) {
	sess, err := s.account.CreateEmailPasswordSession(ctx, req.Email, req.Password)
	if err != nil {
		return user.AuthData{}, appwrite.Normalize(err)
	}

	s.creds.SetSession(sess.Secret)

	u, err := s.account.Get(ctx)
	if err != nil {
		// the backend session exists even though we could not load the user
		if derr := s.account.DeleteSession(context.WithoutCancel(ctx), currentSession); derr != nil {
			s.log.DebugContext(ctx, "drop half-created session failed", "err", derr)
		}
		s.creds.SetSession("")
		return user.AuthData{}, appwrite.Normalize(err)
	}

	record := mapUser(u)
	s.setLoggedIn(record)

	s.log.InfoContext(ctx, "user logged in", "user_id", record.ID)

	return user.AuthData{Token: sess.ID, Record: *record}, nil
}

// Register creates the account and signs the new user in.
func (s *Session) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	u, err := s.account.Create(ctx, appwrite.UniqueID(), req.Email, req.Password, req.Name)
	if err != nil {
		return user.User{}, appwrite.Normalize(err)
	}

	if _, err := s.Login(ctx, user.LoginRequest{Email: req.Email, Password: req.Password}); err != nil {
		return user.User{}, err
	}

	return *mapUser(u), nil
}

// Logout ends the backend session. A failed remote delete is ignored; the
// local state is cleared either way.
func (s *Session) Logout(ctx context.Context) {
	if s.creds.SessionSecret() != "" {
		if err := s.account.DeleteSession(ctx, currentSession); err != nil {
			s.log.DebugContext(ctx, "remote logout failed", "err", err)
		}
	}

	s.creds.SetSession("")
	s.setLoggedOut()
}

func (s *Session) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := s.account.CreateRecovery(ctx, email, s.recoveryURL)

	return appwrite.Normalize(err)
}

func (s *Session) UpdateRecovery(ctx context.Context, userID, secret, password string) error {
	_, err := s.account.UpdateRecovery(ctx, userID, secret, password)

	return appwrite.Normalize(err)
}

func (s *Session) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error) {
	if req.Email != nil && req.Password == "" {
		return user.User{}, ErrPasswordRequired
	}

	var (
		u       appwrite.User
		fetched bool
		err     error
	)

	if req.Name != nil {
		u, err = s.account.UpdateName(ctx, *req.Name)
		if err != nil {
			return user.User{}, appwrite.Normalize(err)
		}
		fetched = true
	}

	if req.Email != nil {
		u, err = s.account.UpdateEmail(ctx, *req.Email, req.Password)
		if err != nil {
			return user.User{}, appwrite.Normalize(err)
		}
		fetched = true
	}

	if !fetched {
		u, err = s.account.Get(ctx)
		if err != nil {
			return user.User{}, appwrite.Normalize(err)
		}
	}

	record := mapUser(u)
	s.CurrentUser.Set(record)

	return *record, nil
}

// WaitInitialized blocks until the first session check has finished.
func (s *Session) WaitInitialized(ctx context.Context) error {
	return s.AuthInitialized.Wait(ctx)
}

func (s *Session) LoggedIn() bool {
	return s.IsLoggedIn.Get()
}

func (s *Session) User() *user.User {
	return s.CurrentUser.Get()
}

func (s *Session) CurrentUserID() string {
	if u := s.CurrentUser.Get(); u != nil {
		return u.ID
	}
	return ""
}

func (s *Session) SessionSecret() string {
	return s.creds.SessionSecret()
}

func (s *Session) setLoggedIn(u *user.User) {
	s.IsLoggedIn.Set(true)
	s.CurrentUser.Set(u)
}

func (s *Session) setLoggedOut() {
	s.IsLoggedIn.Set(false)
	s.CurrentUser.Set(nil)
}

func mapUser(u appwrite.User) *user.User {
	return &user.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
