package http

import (
	"net/http"

	"voting/internal/dto"
	"voting/internal/service"
	"voting/internal/validation"
)

type authHandlers struct {
	auth   service.AuthService
	tokens service.TokenService
}

func (h authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req, r.RemoteAddr, r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req, r.RemoteAddr, r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h authHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.Struct("invalid input", req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.tokens.Refresh(r.Context(), req.Refresh, r.RemoteAddr, r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h authHandlers) jwks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.JWKSResponse{Keys: h.tokens.JWKs()})
}
