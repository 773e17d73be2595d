package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Roles recognised by the route middleware.
const (
	RoleStudent = "student"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

type User struct {
	ID            int        `json:"id"`
	StudentNumber string     `json:"student_number,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email,omitempty"`
	Password      string     `json:"password,omitempty"`
	Course        string     `json:"course,omitempty"`
	YearLevel     int        `json:"year_level,omitempty"`
	Role          string     `json:"role"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Session struct {
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Course        string `json:"course"`
	YearLevel     int    `json:"year_level"`
}
