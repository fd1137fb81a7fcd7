package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type Users struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name          string    `json:"name"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Username      string    `json:"username"`      // логин администратора
	Employee_code string    `json:"employee_code"` // табельный номер сотрудника, например EMP001
	Password_hash string    `json:"password_hash"`
	Role          Role      `json:"role" gorm:"type:text;not null"`
	Department    string    `json:"department"`
	Is_active     bool      `json:"is_active" gorm:"not null;default:true"`
	Created_at    time.Time `json:"created_at"`
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	jwt.RegisteredClaims
}
