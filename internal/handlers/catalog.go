package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/repos"
)

type CatalogHandler struct {
	log         *logger.Logger
	productRepo repos.ProductRepo
	variantRepo repos.ProductVariantRepo
}

func NewCatalogHandler(log *logger.Logger, productRepo repos.ProductRepo, variantRepo repos.ProductVariantRepo) *CatalogHandler {
	return &CatalogHandler{
		log:         log.With("handler", "CatalogHandler"),
		productRepo: productRepo,
		variantRepo: variantRepo,
	}
}

// GET /api/products?category=&gender=&search=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	filter := repos.ProductFilter{
		Category: c.Query("category"),
		Gender:   c.Query("gender"),
		Search:   c.Query("search"),
	}

	products, err := h.productRepo.ListFiltered(ctx, nil, filter)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}
	categories, err := h.productRepo.DistinctCategories(ctx, nil)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}
	genders, err := h.productRepo.DistinctGenders(ctx, nil)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"products":   products,
		"categories": categories,
		"genders":    genders,
		"filter":     filter,
	})
}

// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}

	product, err := h.productRepo.GetByID(c.Request.Context(), nil, productID)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	// Distinct in-stock size and color names for the storefront selectors.
	sizeSet := map[string]struct{}{}
	colorSet := map[string]struct{}{}
	var availableSizes, availableColors []string
	for _, v := range product.Variants {
		if !v.Inventory.IsAvailable() {
			continue
		}
		if v.Size != nil {
			if _, seen := sizeSet[v.Size.Name]; !seen {
				sizeSet[v.Size.Name] = struct{}{}
				availableSizes = append(availableSizes, v.Size.Name)
			}
		}
		if v.Color != nil {
			if _, seen := colorSet[v.Color.Name]; !seen {
				colorSet[v.Color.Name] = struct{}{}
				availableColors = append(availableColors, v.Color.Name)
			}
		}
	}

	RespondOK(c, gin.H{
		"product":          product,
		"available_sizes":  availableSizes,
		"available_colors": availableColors,
	})
}

// GET /api/inventory
// Full variant inventory with derived stock-status flags.
func (h *CatalogHandler) ListInventory(c *gin.Context) {
	variants, err := h.variantRepo.ListWithInventory(c.Request.Context(), nil)
	if err != nil {
		RespondPipelineError(c, err)
		return
	}

	items := make([]gin.H, 0, len(variants))
	for _, v := range variants {
		quantity := 0
		if v.Inventory != nil {
			quantity = v.Inventory.Quantity
		}
		item := gin.H{
			"id":              v.ID,
			"sku":             v.SKU,
			"quantity":        quantity,
			"is_low_stock":    v.Inventory.IsLowStock(),
			"is_out_of_stock": v.Inventory.IsOutOfStock(),
		}
		if v.Product != nil {
			item["product"] = v.Product.Name
		}
		if v.Size != nil {
			item["size"] = v.Size.Name
		}
		if v.Color != nil {
			item["color"] = v.Color.Name
		}
		items = append(items, item)
	}

	RespondOK(c, gin.H{"inventory": items, "total_variants": len(items)})
}
