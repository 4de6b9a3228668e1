package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          string    `json:"id" bson:"_id"`
	Email       string    `json:"email" bson:"email"`
	Name        string    `json:"name,omitempty" bson:"name,omitempty"`
	Role        string    `json:"role" bson:"role"`
	LastOrderID string    `json:"last_order_id,omitempty" bson:"last_order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Session es la identidad explícita que reciben los servicios en cada llamada
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
