package handlers

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vayhout/notesphere/internal/middleware"
	"github.com/vayhout/notesphere/internal/models"
	"github.com/vayhout/notesphere/internal/repository"
	"github.com/vayhout/notesphere/pkg/auth"
	"github.com/vayhout/notesphere/pkg/blacklist"
	"github.com/vayhout/notesphere/pkg/email"
	"github.com/vayhout/notesphere/pkg/response"
)

type AuthHandler struct {
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	revoked    *blacklist.TokenBlacklist
	email      *email.EmailService
}

func NewAuthHandler(userRepo repository.UserRepository, jwtManager *auth.JWTManager, revoked *blacklist.TokenBlacklist, emailService *email.EmailService) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		revoked:    revoked,
		email:      emailService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	ctx := c.Request.Context()

	exists, err := h.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		response.InternalServerError(c, "Failed to check username availability")
		return
	}
	if exists {
		response.Conflict(c, "Username already exists")
		return
	}

	exists, err = h.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		response.InternalServerError(c, "Failed to check email availability")
		return
	}
	if exists {
		response.Conflict(c, "Email already exists")
		return
	}

	user, err := h.userRepo.Create(ctx, &req)
	if err != nil {
		response.InternalServerError(c, "Failed to create user")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	if h.email.Enabled() {
		go func(name, to string) {
			if err := h.email.SendWelcomeEmail(name, to); err != nil {
				log.Printf("Failed to send welcome email to %s: %v", to, err)
			}
		}(user.FullName, user.Email)
	}

	response.Created(c, &models.LoginResponse{
		User:  user.ToResponse(),
		Token: token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.userRepo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.InternalServerError(c, "Failed to authenticate user")
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		response.Unauthorized(c, "Invalid username or password")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username)
	if err != nil {
		response.InternalServerError(c, "Failed to generate token")
		return
	}

	response.Success(c, &models.LoginResponse{
		User:  user.ToResponse(),
		Token: token,
	})
}

// Logout revokes the presented token until its natural expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, exists := middleware.GetCurrentUser(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	token, ok := c.Get(middleware.AuthTokenKey)
	if !ok {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	if claims.ExpiresAt != nil {
		if err := h.revoked.Revoke(c.Request.Context(), token.(string), claims.ExpiresAt.Time); err != nil {
			log.Printf("Failed to revoke token for user %d: %v", claims.UserID, err)
		}
	}

	response.Success(c, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to get user profile")
		return
	}

	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, user.ToResponse())
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		FullName string `json:"full_name" binding:"required,min=2,max=100"`
		Email    string `json:"email" binding:"required,email,max=100"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	existingUser, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		response.InternalServerError(c, "Failed to check email availability")
		return
	}
	if existingUser != nil && existingUser.ID != userID {
		response.Conflict(c, "Email already exists")
		return
	}

	user, err := h.userRepo.UpdateProfile(ctx, userID, req.FullName, req.Email)
	if err != nil {
		response.InternalServerError(c, "Failed to update profile")
		return
	}

	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, user.ToResponse())
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, exists := middleware.GetCurrentUserID(c)
	if !exists {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6,max=100"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		response.InternalServerError(c, "Failed to get user")
		return
	}

	if user == nil {
		response.NotFound(c, "User not found")
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		response.Unauthorized(c, "Current password is incorrect")
		return
	}

	newPasswordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		response.InternalServerError(c, "Failed to hash new password")
		return
	}

	if err := h.userRepo.ChangePassword(ctx, userID, newPasswordHash); err != nil {
		response.InternalServerError(c, "Failed to change password")
		return
	}

	response.Success(c, gin.H{"message": "Password changed successfully"})
}
