package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stresslens/internal/db"
	"stresslens/internal/models"
	"stresslens/internal/services"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	users     *db.UserStore
	vault     *services.UserVault
	jwtSecret []byte
	log       *zap.Logger
}

func NewAuthHandler(users *db.UserStore, vault *services.UserVault, jwtSecret []byte, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, vault: vault, jwtSecret: jwtSecret, log: log}
}

type credentials struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

type tokenResponse struct {
	Success bool    `json:"success"`
	Token   string  `json:"token"`
	User    UserDTO `json:"user"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentials true "Email and password"
// @Success 201 {object} tokenResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c.Email = services.NormalizeEmail(c.Email)
	if !strings.Contains(c.Email, "@") || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	if _, err := h.users.GetByBlindIndex(r.Context(), h.vault.EmailIndex(c.Email)); err == nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		fail(w, h.log, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := models.User{Email: c.Email, PasswordHash: string(hashed), FullName: c.FullName}
	if err := h.vault.SealUser(&user); err != nil {
		writeError(w, http.StatusInternalServerError, "could not encrypt user data")
		return
	}
	if err := h.users.Create(r.Context(), &user); err != nil {
		h.log.Warn("create user failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "could not create user")
		return
	}
	user.Email = c.Email

	token, err := h.issueJWT(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Success: true, Token: token, User: ToUserDTO(user)})
}

// Login godoc
// @Summary Exchange credentials for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body credentials true "Email and password"
// @Success 200 {object} tokenResponse
// @Failure 401 {object} errorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	c.Email = services.NormalizeEmail(c.Email)
	if c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.users.GetByBlindIndex(r.Context(), h.vault.EmailIndex(c.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		fail(w, h.log, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.vault.OpenUser(&user); err != nil {
		writeError(w, http.StatusInternalServerError, "could not decrypt user data")
		return
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token, User: ToUserDTO(user)})
}

func (h *AuthHandler) issueJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}
