package model

// Operator is a clinic user (nutritionist) acting on patients. Every
// patient and consultation insert is attributed to one.
type Operator struct {
	Base
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string    `json:"token"`
	Operator *Operator `json:"operator"`
}
