package model

// UserProfile is a row of the profiles table used by the login check.
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}
