package controllers

import (
	"context"
	"strings"
	"time"

	"learnhub_go/config"
	"learnhub_go/database"
	"learnhub_go/middleware"
	"learnhub_go/models"
	"learnhub_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuthController struct{}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new account. Self-registration always yields a STUDENT;
// a non-student role is honored only when the request arrives through the
// authenticated user-management route.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	role := models.RoleStudent
	if req.Role != "" && req.Role != string(models.RoleStudent) {
		forced := models.Role(req.Role)
		if !forced.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid role",
			})
		}
		claims, err := middleware.GetCurrentClaims(c)
		if err != nil || !middleware.RoleAllowed(middleware.CapUserManage, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Only user managers may assign roles",
			})
		}
		role = forced
	}

	email := strings.ToLower(utils.SanitizeString(req.Email))

	// Check if email already exists
	var existingUser models.User
	if err := database.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	user := models.User{
		Name:     utils.SanitizeString(req.Name),
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		// The First-based pre-check does not see soft-deleted rows, but the
		// email unique index still does. Map the collision to a conflict.
		if isDuplicateKey(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Email already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	middleware.LogAudit(c, "CREATE", "users", user.ID, fiber.Map{
		"email": user.Email,
		"role":  user.Role,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Login authenticates a user and returns a JWT token. The error message is
// identical for an unknown email and a wrong password so the endpoint cannot
// be used to enumerate accounts.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout blacklists the presented JWT in Redis. Tokens have no expiry, so the
// blacklist is what makes logout effective.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing authorization header"})
	}

	if rc := database.GetRedisClient(); rc != nil {
		key := "blacklist:jwt:" + tokenString
		if err := rc.Set(context.Background(), key, "1", config.TokenBlacklistTTL).Err(); err != nil {
			logrus.WithError(err).Warn("Failed to blacklist token on logout")
		}
	}

	if user, err := middleware.GetCurrentUser(c); err == nil {
		middleware.LogAudit(c, "LOGOUT", "auth", user.ID, fiber.Map{"email": user.Email})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// GetProfile returns the current user's profile
func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// ChangePassword allows users to change their password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := utils.CheckPassword(req.CurrentPassword, user.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Current password is incorrect",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	if err := database.DB.Model(user).Update("password", hashedPassword).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update password",
		})
	}

	middleware.LogAudit(c, "UPDATE", "users", user.ID, fiber.Map{
		"action": "password_change",
	})

	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

// resetRequestedMessage is returned whether or not the email exists; the two
// paths must stay byte-identical to keep the endpoint enumeration-safe.
const resetRequestedMessage = "If that email is registered, a reset link has been sent"

// RequestPasswordReset generates a reset token for the account behind the
// given email. Email delivery is out of scope; the token is logged only.
func (ac *AuthController) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.JSON(fiber.Map{"message": resetRequestedMessage})
	}

	token, err := utils.GenerateRandomToken(32)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate reset token")
		return c.JSON(fiber.Map{"message": resetRequestedMessage})
	}

	expiresAt := time.Now().Add(1 * time.Hour)
	if err := database.DB.Model(&user).Updates(map[string]interface{}{
		"password_reset_token":   token,
		"password_reset_expires": expiresAt,
	}).Error; err != nil {
		logrus.WithError(err).Error("Failed to save reset token")
		return c.JSON(fiber.Map{"message": resetRequestedMessage})
	}

	// Email delivery is not wired up; operators read the token from the log.
	logrus.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"email":      user.Email,
		"token":      token,
		"expires_at": expiresAt,
	}).Info("Password reset requested")

	return c.JSON(fiber.Map{"message": resetRequestedMessage})
}

// ResetPasswordWithToken sets a new password using a valid reset token.
func (ac *AuthController) ResetPasswordWithToken(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var user models.User
	if err := database.DB.Where("password_reset_token = ? AND password_reset_expires > ?",
		req.Token, time.Now()).First(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired reset token",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	if err := database.DB.Model(&user).Updates(map[string]interface{}{
		"password":               hashedPassword,
		"password_reset_token":   nil,
		"password_reset_expires": nil,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset password",
		})
	}

	middleware.LogAudit(c, "UPDATE", "users", user.ID, fiber.Map{
		"action": "password_reset",
	})

	return c.JSON(fiber.Map{
		"message": "Password reset successfully",
	})
}
