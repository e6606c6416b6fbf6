package dto

import (
	"time"

	"voting/internal/domain"
)

type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	CPF        string    `json:"cpf"`
	Email      *string   `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		CPF:        u.CPF,
		Email:      u.Email,
		DateJoined: u.DateJoined,
	}
}
