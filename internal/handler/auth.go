package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/middleware"
	"github.com/applytrack/applytrack-api/internal/repository"
)

type AuthHandler struct {
	userRepo *repository.UserRepo
}

func NewAuthHandler(userRepo *repository.UserRepo) *AuthHandler {
	return &AuthHandler{userRepo: userRepo}
}

// GoogleSignIn handles POST /auth/google
// Creates or fetches a user based on Firebase token
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	firebaseUID := middleware.GetFirebaseUID(c)
	if firebaseUID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	email, _ := c.Get("email")
	emailStr, _ := email.(string)

	user, err := h.userRepo.FindByFirebaseUID(c.Request.Context(), firebaseUID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	// Create if new
	if user == nil {
		var req struct {
			Name string `json:"name"`
		}
		c.ShouldBindJSON(&req)

		user, err = h.userRepo.Create(c.Request.Context(), firebaseUID, emailStr, req.Name)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}
		log.Info().Str("uid", firebaseUID).Msg("New user created")
	}

	c.JSON(http.StatusOK, user)
}

// getUserID extracts and parses the user UUID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	idStr := middleware.GetUserID(c)
	return uuid.Parse(idStr)
}
