package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/toast"
)

type ProfileHandler struct {
	base
}

func NewProfileHandler(opts Options) *ProfileHandler {
	return &ProfileHandler{base: newBase(opts)}
}

func (h *ProfileHandler) Page(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	form := profileForm{}
	if u := st.Auth.User(); u != nil {
		form.Email, form.Name = u.Email, u.Name
	}

	Render(ctx, http.StatusOK, "profile.html", gin.H{
		"Title": "Profile",
		"Back":  "/todos",
		"Form":  form,
	})
}

// Update saves the name, and the email when it changed. Changing the email
// needs the current password.
func (h *ProfileHandler) Update(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	current := st.Auth.User()
	if current == nil {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	data := gin.H{"Title": "Profile", "Back": "/todos"}

	var form profileForm
	errs, valid := BindForm(ctx, &form)
	if errs == nil {
		errs = FieldErrors{}
	}

	form.Email = strings.TrimSpace(form.Email)
	emailChanged := valid && form.Email != current.Email
	if emailChanged && form.Password == "" {
		errs.Add("password", validationMessage("required", ""))
	}

	password := form.Password
	form.Password = ""
	data["Form"] = form
	if len(errs) > 0 {
		data["Errors"] = errs
		Render(ctx, http.StatusUnprocessableEntity, "profile.html", data)
		return
	}

	if !h.begin(ctx, st, "/profile") {
		return
	}
	defer st.EndSubmit()

	name := strings.TrimSpace(form.Name)
	req := user.UpdateProfileRequest{Name: &name}
	if emailChanged {
		req.Email = &form.Email
		req.Password = password
	}

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	updated, err := st.Auth.UpdateProfile(cctx, req)
	if err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Failed to update profile"))
		Render(ctx, backendStatus(err), "profile.html", data)
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "profile updated", "user_id", updated.ID, "email_changed", emailChanged)
	toast.Success(st.Toasts, "Profile updated successfully!")
	Redirect(ctx, "/profile")
}

func (h *ProfileHandler) PasswordResetPage(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	u := st.Auth.User()
	if u == nil {
		Redirect(ctx, "/profile")
		return
	}

	Render(ctx, http.StatusOK, "confirm.html", gin.H{
		"Title":   "Password Reset",
		"Heading": "Password Reset",
		"Message": "Send password reset email to " + u.Email + "?",
		"Action":  "/profile/password-reset",
		"Confirm": "Send",
		"Cancel":  "/profile",
	})
}

func (h *ProfileHandler) PasswordReset(ctx *gin.Context) {
	st, ok := stateOf(ctx)
	if !ok {
		return
	}

	u := st.Auth.User()
	if u == nil {
		Redirect(ctx, "/profile")
		return
	}

	if !h.begin(ctx, st, "/profile") {
		return
	}
	defer st.EndSubmit()

	cctx, cancel := h.backendCtx(ctx)
	defer cancel()

	if err := st.Auth.RequestPasswordReset(cctx, u.Email); err != nil {
		toast.Danger(st.Toasts, errMessage(err, "Failed to send password reset email"))
		Redirect(ctx, "/profile")
		return
	}

	toast.Success(st.Toasts, "Password reset email sent!")
	Redirect(ctx, "/profile")
}
