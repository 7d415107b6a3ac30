package controllers

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/vitrinehq/vitrine/app/models"
	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/storage"
	"github.com/vitrinehq/vitrine/internal/pkg/upload"
	"github.com/vitrinehq/vitrine/internal/pkg/usercontext"
	"github.com/vitrinehq/vitrine/internal/pkg/validation"
)

// ImageStore stores product images.
type ImageStore interface {
	Upload(ctx context.Context, ownerID uint, filename string, data []byte) (*storage.UploadedImage, error)
	KeyFromURL(url string) (string, bool)
}

// ImageCleaner removes images that are no longer referenced.
type ImageCleaner interface {
	ImageReplaced(ctx context.Context, productID, oldKey string) error
}

type ProductController struct {
	products repository.ProductRepository
	images   ImageStore
	cleaner  ImageCleaner
}

// NewProductController creates the catalog controller. images and cleaner may
// be nil when object storage is disabled.
func NewProductController(products repository.ProductRepository, images ImageStore, cleaner ImageCleaner) *ProductController {
	return &ProductController{products: products, images: images, cleaner: cleaner}
}

type productRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"image_url"`
	Status      *string          `json:"status"`
}

func (r productRequest) apply(p *models.Product) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		p.Description = strings.TrimSpace(*r.Description)
	}
	if r.Price != nil {
		p.Price = r.Price.Round(2)
	}
	if r.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*r.ImageURL)
	}
	if r.Status != nil {
		p.Status = strings.ToLower(strings.TrimSpace(*r.Status))
	}
}

// validateProduct returns the client message for an invalid product, or ""
// when the product can be stored.
func validateProduct(p *models.Product) string {
	if err := p.Validate(); err != nil {
		if errors.Is(err, models.ErrNegativePrice) {
			return err.Error()
		}
		return validation.Message(err)
	}
	return ""
}

// HandleListProducts lists the storefront catalog, newest first.
func (pc *ProductController) HandleListProducts(c *fiber.Ctx) error {
	products, err := pc.products.ListActive(c.UserContext())
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleGetProduct returns one purchasable product.
func (pc *ProductController) HandleGetProduct(c *fiber.Ctx) error {
	product, err := pc.products.GetActiveByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}
	return c.JSON(product)
}

// HandleListSellerProducts lists every product of the authenticated seller.
func (pc *ProductController) HandleListSellerProducts(c *fiber.Ctx) error {
	products, err := pc.products.ListByOwner(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleCreateProduct creates a product owned by the authenticated seller.
func (pc *ProductController) HandleCreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Price == nil {
		return jsonError(c, fiber.StatusBadRequest, "price is required")
	}

	product := &models.Product{
		OwnerID: usercontext.GetUserID(c),
		Status:  models.ProductStatusActive,
	}
	req.apply(product)
	if msg := validateProduct(product); msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := pc.products.Create(c.UserContext(), product); err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}
	log.Infof("[Product] Seller %d created product %s", product.OwnerID, product.ID)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies the provided fields to a seller's product.
func (pc *ProductController) HandleUpdateProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	product, err := pc.products.GetByIDForOwner(ctx, c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	oldImage := product.ImageURL
	req.apply(product)
	if msg := validateProduct(product); msg != "" {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	if err := pc.products.Update(ctx, product); err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}
	if oldImage != product.ImageURL {
		pc.releaseImage(ctx, product.ID, oldImage)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a seller's product. Products that were already
// sold are kept; sellers deactivate them instead.
func (pc *ProductController) HandleDeleteProduct(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sellerID := usercontext.GetUserID(c)
	product, err := pc.products.GetByIDForOwner(ctx, c.Params("id"), sellerID)
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}

	if err := pc.products.DeleteForOwner(ctx, product.ID, sellerID); err != nil {
		if errors.Is(err, repository.ErrProductInUse) {
			return jsonError(c, fiber.StatusConflict, "product has orders, deactivate it instead")
		}
		return respondRepoError(c, "Product", "product not found", err)
	}
	pc.releaseImage(ctx, product.ID, product.ImageURL)
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUploadProductImage stores a new image for a seller's product and
// schedules removal of the previous one.
func (pc *ProductController) HandleUploadProductImage(c *fiber.Ctx) error {
	if pc.images == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "image storage is not configured")
	}

	ctx := c.UserContext()
	sellerID := usercontext.GetUserID(c)
	product, err := pc.products.GetByIDForOwner(ctx, c.Params("id"), sellerID)
	if err != nil {
		return respondRepoError(c, "Product", "product not found", err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > upload.MaxImageSize {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, upload.ErrTooLarge.Error())
	}
	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "could not read image")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxImageSize+1))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "could not read image")
	}
	if int64(len(data)) > upload.MaxImageSize {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, upload.ErrTooLarge.Error())
	}

	uploaded, err := pc.images.Upload(ctx, sellerID, fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		log.Errorf("[Product] Image upload for product %s failed: %v", product.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "failed to store image")
	}

	oldImage := product.ImageURL
	product.ImageURL = uploaded.URL
	if err := pc.products.Update(ctx, product); err != nil {
		pc.releaseImage(ctx, product.ID, uploaded.URL)
		return respondRepoError(c, "Product", "product not found", err)
	}
	pc.releaseImage(ctx, product.ID, oldImage)

	return c.JSON(product)
}

// releaseImage schedules deletion of an image we stored ourselves. External
// URLs are left alone.
func (pc *ProductController) releaseImage(ctx context.Context, productID, imageURL string) {
	if pc.images == nil || pc.cleaner == nil || imageURL == "" {
		return
	}
	key, ok := pc.images.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := pc.cleaner.ImageReplaced(ctx, productID, key); err != nil {
		log.Warnf("[Product] Failed to schedule deletion of %s: %v", key, err)
	}
}
