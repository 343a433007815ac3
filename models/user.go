package models

import "time"

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

type User struct {
	Id        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Nama      string    `json:"nama"`
	Email     string    `gorm:"uniqueIndex;size:191" json:"email"`
	Password  string    `json:"-"` // hash bcrypt, jangan pernah ikut response
	Role      string    `gorm:"size:16;default:EMPLOYEE" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
