package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/validation"
)

type SellerController struct {
	users repository.UserRepository
}

func NewSellerController(users repository.UserRepository) *SellerController {
	return &SellerController{users: users}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=200"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a seller account. The API key is only shown once.
func (sc *SellerController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validation.Message(err))
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, validation.Message(err))
	}
	apiKey, err := user.IssueAPIKey()
	if err != nil {
		log.Errorf("[Seller] API key generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if err := sc.users.Create(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return jsonError(c, fiber.StatusConflict, err.Error())
		}
		return respondRepoError(c, "Seller", "seller not found", err)
	}

	log.Infof("[Seller] Registered seller %d", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"seller":  user,
		"api_key": apiKey,
	})
}

// HandleRotateAPIKey issues a new API key after checking the seller's
// credentials. The previous key stops working immediately.
func (sc *SellerController) HandleRotateAPIKey(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, validation.Message(err))
	}

	ctx := c.UserContext()
	user, err := sc.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondRepoError(c, "Seller", "seller not found", err)
	}
	if user == nil || !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive() {
		return jsonError(c, fiber.StatusForbidden, "account disabled")
	}

	apiKey, err := user.IssueAPIKey()
	if err != nil {
		log.Errorf("[Seller] API key generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
	if err := sc.users.Update(ctx, user); err != nil {
		return respondRepoError(c, "Seller", "seller not found", err)
	}

	log.Infof("[Seller] Rotated API key for seller %d", user.ID)
	return c.JSON(fiber.Map{
		"api_key":        apiKey,
		"api_key_prefix": user.APIKeyPrefix,
	})
}
