package api

import (
	"errors"
	"net/http"
	"strings"

	"finderhub-backend/internal/model"
	pkgerrors "finderhub-backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Register validates the request, rejects duplicate emails and persists the
// user with a hashed password. Violations come back as a message list.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validationMessages(err)})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.users.ExistsByEmail(c.Request.Context(), email)
	if err != nil {
		h.log.Error().Err(err).Msg("Registration lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again later"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.log.Error().Err(err).Msg("Password hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again later"})
		return
	}

	user := &model.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		CampusID:     req.CampusID,
		Role:         model.Role(req.Role),
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already registered"})
			return
		}
		h.log.Error().Err(err).Msg("Registration insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again later"})
		return
	}

	h.log.Info().Str("email", email).Str("role", req.Role).Msg("User registered")
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

var registerFieldMessages = map[string]string{
	"FullName":    "Full name is required",
	"Email":       "Valid email is required",
	"Password":    "Password must be at least 6 characters long",
	"PhoneNumber": "Phone number is required",
	"CampusID":    "Campus ID is required",
	"Role":        "Role must be Student, Faculty, or Staff",
}

// validationMessages flattens binding failures into per-field messages.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request body"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if msg, ok := registerFieldMessages[fe.Field()]; ok {
			messages = append(messages, msg)
		} else {
			messages = append(messages, fe.Error())
		}
	}
	return messages
}
