package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// Account covers the /account endpoints. Calls run as the user whose
// session secret is set on the client, except session creation and
// sign-up which run with the API key.
type Account struct {
	c *Client
}

func NewAccount(c *Client) *Account {
	return &Account{c: c}
}

func (a *Account) CreateEmailPasswordSession(ctx context.Context, email, password string) (Session, error) {
	var s Session

	header, err := a.c.call(ctx, request{
		op:     "account.createEmailPasswordSession",
		method: http.MethodPost,
		path:   "/account/sessions/email",
		body:   map[string]string{"email": email, "password": password},
		admin:  true,
	}, &s)
	if err != nil {
		return Session{}, err
	}

	// without an API key the secret only comes back as a cookie
	if s.Secret == "" {
		resp := http.Response{Header: header}
		for _, ck := range resp.Cookies() {
			if ck.Name == "a_session_"+a.c.project && ck.Value != "" {
				s.Secret = ck.Value
				break
			}
		}
	}

	return s, nil
}

func (a *Account) Get(ctx context.Context) (User, error) {
	var u User

	_, err := a.c.call(ctx, request{op: "account.get", method: http.MethodGet, path: "/account"}, &u)

	return u, err
}

func (a *Account) Create(ctx context.Context, userID, email, password, name string) (User, error) {
	var u User

	body := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
	}
	if name != "" {
		body["name"] = name
	}

	_, err := a.c.call(ctx, request{
		op:     "account.create",
		method: http.MethodPost,
		path:   "/account",
		body:   body,
		admin:  true,
	}, &u)

	return u, err
}

// GetSession fetches a session by id; "current" means the client's own.
func (a *Account) GetSession(ctx context.Context, sessionID string) (Session, error) {
	var s Session

	_, err := a.c.call(ctx, request{
		op:     "account.getSession",
		method: http.MethodGet,
		path:   "/account/sessions/" + url.PathEscape(sessionID),
	}, &s)

	return s, err
}

func (a *Account) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := a.c.call(ctx, request{
		op:     "account.deleteSession",
		method: http.MethodDelete,
		path:   "/account/sessions/" + url.PathEscape(sessionID),
	}, nil)

	return err
}

func (a *Account) CreateRecovery(ctx context.Context, email, redirectURL string) (Token, error) {
	var t Token

	_, err := a.c.call(ctx, request{
		op:     "account.createRecovery",
		method: http.MethodPost,
		path:   "/account/recovery",
		body:   map[string]string{"email": email, "url": redirectURL},
	}, &t)

	return t, err
}

func (a *Account) UpdateRecovery(ctx context.Context, userID, secret, password string) (Token, error) {
	var t Token

	_, err := a.c.call(ctx, request{
		op:     "account.updateRecovery",
		method: http.MethodPut,
		path:   "/account/recovery",
		body:   map[string]string{"userId": userID, "secret": secret, "password": password},
	}, &t)

	return t, err
}

func (a *Account) UpdateName(ctx context.Context, name string) (User, error) {
	var u User

	_, err := a.c.call(ctx, request{
		op:     "account.updateName",
		method: http.MethodPatch,
		path:   "/account/name",
		body:   map[string]string{"name": name},
	}, &u)

	return u, err
}

func (a *Account) UpdateEmail(ctx context.Context, email, password string) (User, error) {
	var u User

	_, err := a.c.call(ctx, request{
		op:     "account.updateEmail",
		method: http.MethodPatch,
		path:   "/account/email",
		body:   map[string]string{"email": email, "password": password},
	}, &u)

	return u, err
}
