package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"unify-server/src/config"
)

func Login(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			logger.Error().Err(err).Msg("failed to decode login request")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if !strings.EqualFold(strings.TrimSpace(credentials.Username), cfg.Username) {
			logger.Warn().Str("username", credentials.Username).Str("ip", r.RemoteAddr).Msg("login attempt for unknown user")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(credentials.Password)); err != nil {
			logger.Warn().Str("ip", r.RemoteAddr).Msg("invalid password attempt")
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"username": cfg.Username,
			"exp":      time.Now().Add(time.Hour * 168).Unix(),
		})
		tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			logger.Error().Err(err).Msg("failed to sign token")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		logger.Info().Str("username", cfg.Username).Msg("successful login")
		writeJSON(w, http.StatusOK, map[string]string{"token": tokenString})
	}
}
