package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/toast"
)

// AuthHandler serves the pages around signing in and out: home, login,
// register, logout and the two password reset steps.
type AuthHandler struct {
	base
}

func NewAuthHandler(opts Options) *AuthHandler {
	return &AuthHandler{base: newBase(opts)}
}

func (h *AuthHandler) Home(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	// no wait on the initial check, the landing page is fine either way
	if st.Auth.LoggedIn() {
		ctx.Redirect(http.StatusFound, "/todos")
		return
	}

	Render(ctx, http.StatusOK, "home.html", gin.H{"Title": "Todos"})
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	Render(ctx, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Form":  user.LoginRequest{},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	var req user.LoginRequest
	if errs, ok := BindForm(ctx, &req); !ok {
		req.Password = ""
		Render(ctx, http.StatusUnprocessableEntity, "login.html", gin.H{"Title": "Login", "Form": req, "Errors": errs})
		return
	}

	if !h.begin(ctx, st, "/login") {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if _, err := st.Auth.Login(cctx, req); err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Login failed"))
		req.Password = ""
		Render(ctx, backendStatus(err), "login.html", gin.H{"Title": "Login", "Form": req})
		return
	}

	st = middlewares.RotateSession(ctx)
	st.ResetList()
	toast.Success(st.Toasts, "Login successful!")
	Redirect(ctx, "/todos")
}

func (h *AuthHandler) RegisterPage(ctx *gin.Context) {
	Render(ctx, http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Form":  user.RegisterRequest{},
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	var req user.RegisterRequest
	if errs, ok := BindForm(ctx, &req); !ok {
		req.Password, req.PasswordConfirm = "", ""
		Render(ctx, http.StatusUnprocessableEntity, "register.html", gin.H{"Title": "Register", "Form": req, "Errors": errs})
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	if !h.begin(ctx, st, "/register") {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if _, err := st.Auth.Register(cctx, req); err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Registration failed"))
		req.Password, req.PasswordConfirm = "", ""
		Render(ctx, backendStatus(err), "register.html", gin.H{"Title": "Register", "Form": req})
		return
	}

	st = middlewares.RotateSession(ctx)
	st.ResetList()
	toast.Success(st.Toasts, "Registration successful! You can now login.")
	Redirect(ctx, "/login")
}

func (h *AuthHandler) PasswordResetRequestPage(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}
	st.EmailSent.Set(false)

	Render(ctx, http.StatusOK, "password_reset_request.html", gin.H{
		"Title": "Reset Password",
		"Back":  "/login",
		"Form":  passwordResetRequestForm{},
	})
}

func (h *AuthHandler) PasswordResetRequest(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	data := gin.H{"Title": "Reset Password", "Back": "/login"}

	var form passwordResetRequestForm
	if errs, ok := BindForm(ctx, &form); !ok {
		data["Form"], data["Errors"] = form, errs
		Render(ctx, http.StatusUnprocessableEntity, "password_reset_request.html", data)
		return
	}
	data["Form"] = form

	if !h.begin(ctx, st, "/password-reset-request") {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if err := st.Auth.RequestPasswordReset(cctx, form.Email); err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Failed to send password reset email"))
		Render(ctx, backendStatus(err), "password_reset_request.html", data)
		return
	}

	st.EmailSent.Set(true)
	toast.Success(st.Toasts, "Password reset email sent! Check your inbox.")
	data["EmailSent"] = st.EmailSent.Get()
	Render(ctx, http.StatusOK, "password_reset_request.html", data)
}

// PasswordResetPage is where the recovery email links to, with userId and
// secret in the query.
func (h *AuthHandler) PasswordResetPage(ctx *gin.Context) {
	form := passwordResetForm{
		UserID: ctx.Query("userId"),
		Secret: ctx.Query("secret"),
	}

	Render(ctx, http.StatusOK, "password_reset.html", gin.H{
		"Title":       "New Password",
		"Form":        form,
		"InvalidLink": form.UserID == "" || form.Secret == "",
	})
}

func (h *AuthHandler) PasswordReset(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	var form passwordResetForm
	if errs, ok := BindForm(ctx, &form); !ok {
		invalidLink := errs.Has("userId") || errs.Has("secret")
		form.Password, form.ConfirmPassword = "", ""
		Render(ctx, http.StatusUnprocessableEntity, "password_reset.html", gin.H{
			"Title":       "New Password",
			"Form":        form,
			"Errors":      errs,
			"InvalidLink": invalidLink,
		})
		return
	}

	back := "/password-reset?" + url.Values{"userId": {form.UserID}, "secret": {form.Secret}}.Encode()
	if !h.begin(ctx, st, back) {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if err := st.Auth.UpdateRecovery(cctx, form.UserID, form.Secret, form.Password); err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Failed to reset password. Please try again later."))
		form.Password, form.ConfirmPassword = "", ""
		Render(ctx, backendStatus(err), "password_reset.html", gin.H{"Title": "New Password", "Form": form})
		return
	}

	toast.Success(st.Toasts, "Password reset successfully! You can now log in with your new password.")
	Redirect(ctx, "/login")
}

func (h *AuthHandler) LogoutPage(ctx *gin.Context) {
	Render(ctx, http.StatusOK, "confirm.html", gin.H{
		"Title":   "Logout",
		"Heading": "Logout",
		"Message": "Are you sure you want to logout?",
		"Action":  "/logout",
		"Confirm": "Logout",
		"Cancel":  "/todos",
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	// never fails; backend errors are swallowed by the proxy
	st.Auth.Logout(cctx)
	st.ResetList()
	st.HideCompleted.Set(false)

	Redirect(ctx, "/login")
}
