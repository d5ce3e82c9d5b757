package server

import (
	"net/http"

	"groovy/dto"
	"groovy/logger"
)

// RegisterHandler handles user registration requests
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.UserDto
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.Auth.Register(r.Context(), req)
	if err != nil {
		logger.Warn("[Register] 注册失败", logger.String("email", req.Email), logger.ErrorField(err))
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// LoginHandler handles user login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.svc.Auth.Login(r.Context(), req)
	if err != nil {
		logger.Warn("[Login] 登录失败", logger.String("email", req.Email))
		writeError(w, r, err)
		return
	}
	logger.Info("[Login] 登录成功", logger.Int64("userId", resp.User.ID))
	writeJSON(w, http.StatusOK, resp)
}
