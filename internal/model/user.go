package model

import "time"

// 用户默认值
const (
	DefaultRole        = "software_engineer"
	DefaultSubCategory = "intern"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	SubCategory  string    `json:"sub_category"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the short user shape embedded in per-user listings.
type UserRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginUser is returned next to the token on login.
type LoginUser struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	SubCategory string `json:"sub_category"`
}

func (u *User) LoginView() LoginUser {
	return LoginUser{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		SubCategory: u.SubCategory,
	}
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}
