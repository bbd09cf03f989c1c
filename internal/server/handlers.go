package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/interchat/interchat/internal/proto"
)

const tokenTTL = 30 * time.Minute

// demoPassword is accepted for every customer number. The stub issues real
// signed tokens so the client's credential handling is exercised, but it is
// not an authentication system.
const demoPassword = "demo"

func (s *Server) handleGetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "app": "interchat"})
}

func (s *Server) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var req proto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, proto.LoginResponse{Message: "Geçersiz istek."})
		return
	}
	if req.CustomerNo == "" || req.Password != demoPassword {
		writeJSON(w, http.StatusUnauthorized, proto.LoginResponse{Message: "Müşteri numarası veya şifre hatalı"})
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.CustomerNo,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, proto.LoginResponse{Message: "Token oluşturulamadı."})
		return
	}

	writeJSON(w, http.StatusOK, proto.LoginResponse{
		Success:    true,
		CustomerNo: req.CustomerNo,
		Token:      signed,
		Message:    "Giriş başarılı.",
	})
}

func (s *Server) handlePostLogout(w http.ResponseWriter, _ *http.Request) {
	// Tokens are stateless; the client discards its copy.
	writeJSON(w, http.StatusOK, map[string]string{"message": "Çıkış başarılı."})
}

func (s *Server) handleGetSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	writeJSON(w, http.StatusOK, s.store.listSessions(userID))
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	sessionID := r.PathValue("sessionID")
	records, ok := s.store.messages(userID, sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var req proto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "user_id and text are required", http.StatusBadRequest)
		return
	}

	reply, payload := synthesizeReply(req.Text)
	sess := s.store.record(req.UserID, req.SessionID, req.Text, reply, payload)

	writeJSON(w, http.StatusOK, proto.ChatResponse{
		Response:  reply,
		Timestamp: sess.UpdatedAt,
		Payload:   payload,
		SessionID: sess.ID,
	})
}

func (s *Server) handlePutSessionTitle(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	var req proto.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if !s.store.rename(req.UserID, sessionID, req.Title) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	userID := r.URL.Query().Get("user_id")
	if !s.store.delete(userID, sessionID) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wraps a handler with bearer-token verification.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
