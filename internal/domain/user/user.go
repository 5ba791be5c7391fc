package user

import "time"

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// AuthData pairs the backend session id with the user it belongs to.
type AuthData struct {
	Token  string `json:"token"`
	Record User   `json:"record"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type RegisterRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`
	Name            string `json:"name" form:"name"`
	Password        string `json:"password" form:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" form:"passwordConfirm" binding:"required,eqfield=Password"`
}

// UpdateProfileRequest leaves a field untouched when its pointer is nil.
// Changing the email needs the current password.
type UpdateProfileRequest struct {
	Name     *string
	Email    *string
	Password string
}
