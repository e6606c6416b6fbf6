package dto

type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,max=150"`
	CPF      string  `json:"cpf" validate:"required,len=11,numeric"`
	Password string  `json:"password" validate:"required,min=6"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}
