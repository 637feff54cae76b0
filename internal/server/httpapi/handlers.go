package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	wire "github.com/emergqr/emergqr/internal/client/models"
	"github.com/gorilla/mux"
)

const (
	maxJSONBody    = 1 << 20
	maxAvatarBytes = 5 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req wire.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req wire.RegisterPayload
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req wire.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.ChangePassword(r.Context(), clientUUIDFrom(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Profile(r.Context(), clientUUIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(c))
}

func (h *handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+maxJSONBody)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	if len(data) > maxAvatarBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	c, err := h.svc.UploadAvatar(r.Context(), clientUUIDFrom(r.Context()), header.Filename, http.DetectContentType(data), data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfile(c))
}

func (h *handler) qr(w http.ResponseWriter, r *http.Request) {
	token, url, err := h.svc.QR(r.Context(), clientUUIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.QRCode{Token: token, URL: url})
}

func (h *handler) regenerateQR(w http.ResponseWriter, r *http.Request) {
	token, url, err := h.svc.RegenerateQR(r.Context(), clientUUIDFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.QRCode{Token: token, URL: url})
}

func (h *handler) emergency(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Emergency(r.Context(), mux.Vars(r)["qr_token"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emergencyResponse{Name: view.Name, Phone: view.Phone, AvatarURL: view.AvatarURL})
}
