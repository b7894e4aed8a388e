package http

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/http/middleware"
	"github.com/casecraft/casecraft-api/internal/service"
	"github.com/casecraft/casecraft-api/pkg/validator"
)

type authHandler struct {
	svc      *Service
	validate validator.Validator
	authSvc  service.AuthService
}

func newAuthHandler(svc *Service, validate validator.Validator, authSvc service.AuthService) *authHandler {
	return &authHandler{
		svc:      svc,
		validate: validate,
		authSvc:  authSvc,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" validate:"required"`
}

func (h *authHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validate.Validate(req); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	user, err := h.authSvc.Register(r.Context(), service.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusCreated, user)
}

type tokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *authHandler) token(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTokenRequest(r)
	if err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validate.Validate(req); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	credential, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, credential)
}

// decodeTokenRequest accepts both an OAuth2-style form body and plain JSON.
func decodeTokenRequest(r *http.Request) (tokenRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "application/x-www-form-urlencoded" || contentType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return tokenRequest{}, err
		}
		return tokenRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return tokenRequest{}, err
	}
	return req, nil
}

func (h *authHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.svc.respondError(w, r, apperr.InvalidTokenErr)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, principal)
}
