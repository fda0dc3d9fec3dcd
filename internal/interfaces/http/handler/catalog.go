package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcatalog "github.com/storecore/backend/internal/application/catalog"
)

// CatalogHandler serves product and variant management endpoints
type CatalogHandler struct {
	BaseHandler
	service *appcatalog.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *appcatalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers catalog routes on the API group
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	{
		products := catalog.Group("/products")
		{
			products.POST("", h.CreateProduct)
			products.GET("", h.ListProducts)
			products.GET("/:id", h.GetProduct)
			products.PUT("/:id", h.UpdateProduct)
			products.POST("/:id/deactivate", h.DeactivateProduct)
		}

		variants := catalog.Group("/variants")
		{
			variants.POST("", h.CreateVariant)
			variants.GET("", h.ListVariants)
			variants.GET("/:id", h.GetVariant)
			variants.GET("/sku/:sku", h.GetVariantBySKU)
			variants.GET("/alerts/low-stock", h.ListLowStockVariants)
			variants.POST("/:id/deactivate", h.DeactivateVariant)
		}
	}
}

// CreateProduct handles POST /catalog/products
// @Summary      Create a product
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Create a product"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// ListProducts handles GET /catalog/products
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "active or inactive"
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := toFilter(req)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	products, total, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, req.Page, req.PageSize)
}

// GetProduct handles GET /catalog/products/:id
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateProduct handles PUT /catalog/products/:id
// @Summary      Update product details
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "UUID"
// @Param        request body catalog.UpdateProductRequest true "Update product details"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeactivateProduct handles POST /catalog/products/:id/deactivate
// @Summary      Deactivate a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/products/{id}/deactivate [post]
func (h *CatalogHandler) DeactivateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.DeactivateProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateVariant handles POST /catalog/variants
// @Summary      Create a product variant
// @Description  New variants start at zero stock; use an inventory adjustment to receive.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateVariantRequest true "Create a product variant"
// @Success      201 {object} dto.Response{data=catalog.VariantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants [post]
func (h *CatalogHandler) CreateVariant(c *gin.Context) {
	var req appcatalog.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variant, err := h.service.CreateVariant(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variant)
}

// ListVariants handles GET /catalog/variants with an optional product_id filter
// @Summary      List variants
// @Tags         catalog
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        product_id query string false "Filter by product"
// @Success      200 {object} dto.Response{data=[]catalog.VariantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants [get]
func (h *CatalogHandler) ListVariants(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var productID *uuid.UUID
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "invalid product_id")
			return
		}
		productID = &id
	}

	variants, total, err := h.service.ListVariants(c.Request.Context(), productID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, variants, total, req.Page, req.PageSize)
}

// GetVariant handles GET /catalog/variants/:id
// @Summary      Get a variant
// @Tags         catalog
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=catalog.VariantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants/{id} [get]
func (h *CatalogHandler) GetVariant(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variant, err := h.service.GetVariant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// GetVariantBySKU handles GET /catalog/variants/sku/:sku
// @Summary      Get a variant by SKU
// @Tags         catalog
// @Produce      json
// @Param        sku path string true "Variant SKU"
// @Success      200 {object} dto.Response{data=catalog.VariantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants/sku/{sku} [get]
func (h *CatalogHandler) GetVariantBySKU(c *gin.Context) {
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "sku is required")
		return
	}

	variant, err := h.service.GetVariantBySKU(c.Request.Context(), sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// ListLowStockVariants handles GET /catalog/variants/alerts/low-stock
// @Summary      List variants at or below their low-stock threshold
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalog.VariantResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants/alerts/low-stock [get]
func (h *CatalogHandler) ListLowStockVariants(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variants, err := h.service.ListLowStockVariants(c.Request.Context(), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variants)
}

// DeactivateVariant handles POST /catalog/variants/:id/deactivate
// @Summary      Deactivate a variant
// @Tags         catalog
// @Produce      json
// @Param        id path string true "UUID"
// @Success      200 {object} dto.Response{data=catalog.VariantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants/{id}/deactivate [post]
func (h *CatalogHandler) DeactivateVariant(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	variant, err := h.service.DeactivateVariant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}
