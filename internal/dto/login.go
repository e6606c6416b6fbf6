package dto

type LoginRequest struct {
	CPF      string `json:"cpf"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
	Refresh string       `json:"refresh"`
}
