package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"expense-ledger/internal/auth"
	"expense-ledger/internal/config"
	"expense-ledger/internal/mail"
	"expense-ledger/internal/storage"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key for the authenticated user.
const CurrentUserKey = "currentUser"

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db     *storage.DB
	mailer mail.Sender
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a new Handlers instance.
func New(db *storage.DB, mailer mail.Sender, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{db: db, mailer: mailer, cfg: cfg, logger: logger}
}

// serverError logs the cause and sends a generic 500. The underlying
// error text never reaches the caller.
func (h *Handlers) serverError(c *gin.Context, op string, err error) {
	h.logger.Error(op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account. Passwords are stored as bcrypt
// hashes only.
func (h *Handlers) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, username, email and password are required"})
		return
	}

	_, err := h.db.GetUserByUsername(req.Username)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		h.serverError(c, "register: lookup user", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.serverError(c, "register: hash password", err)
		return
	}

	if _, err := h.db.CreateUser(req.Name, req.Username, req.Email, hash); err != nil {
		h.serverError(c, "register: create user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully!"})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a signed token.
func (h *Handlers) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
		return
	}

	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		} else {
			h.serverError(c, "login: lookup user", err)
		}
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := auth.GenerateToken(h.cfg.Auth.JWTSecret, user.ID, h.cfg.TokenTTL())
	if err != nil {
		h.serverError(c, "login: sign token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"userId":  user.ID,
		"name":    user.Name,
		"token":   token,
	})
}

// AuthRequired validates the Authorization bearer token and puts the
// current user into the gin context.
func (h *Handlers) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		claims, err := auth.ParseToken(h.cfg.Auth.JWTSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		user, err := h.db.GetUserByID(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
