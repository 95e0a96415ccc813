// Package models defines the payload types exchanged with the Cidade em Foco
// backend. Field names follow the backend's JSON contract, which mixes
// Portuguese and English identifiers.
package models

// User access levels as defined by the backend.
const (
	LevelCommon = 1
	LevelAdmin  = 2
)

// LevelLabel returns a human-readable name for a user level.
func LevelLabel(level int) string {
	switch level {
	case LevelAdmin:
		return "Administrator"
	default:
		return "Common user"
	}
}

// User is the backend-owned account record. The client holds a read-mostly
// cached copy; it is only replaced after a confirmed round-trip.
type User struct {
	ID           int64  `json:"idUser"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	Level        int    `json:"level"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// IsAdmin reports whether the user may access admin-only endpoints.
func (u *User) IsAdmin() bool {
	return u.Level == LevelAdmin
}

// NewUser is the registration request body for POST /auth/register.
type NewUser struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Level    int    `json:"level"`
}

// ProfileUpdate is a partial update for PUT /user/profile. Zero-valued fields
// are omitted from the request. ConfirmPassword never leaves the client; it
// exists only for local validation of NewPassword.
type ProfileUpdate struct {
	Name            string `json:"nome,omitempty"`
	Email           string `json:"email,omitempty"`
	CurrentPassword string `json:"senhaAtual,omitempty"`
	NewPassword     string `json:"novaSenha,omitempty"`
	ProfileImage    string `json:"profileImage,omitempty"`
	ConfirmPassword string `json:"-"`
}

// AuthResponse is the payload returned by POST /auth/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
