package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/http/middleware"
	"github.com/casecraft/casecraft-api/internal/service"
	"github.com/casecraft/casecraft-api/pkg/validator"
)

type productHandler struct {
	svc        *Service
	validate   validator.Validator
	productSvc service.ProductService
}

func newProductHandler(svc *Service, validate validator.Validator, productSvc service.ProductService) *productHandler {
	return &productHandler{
		svc:        svc,
		validate:   validate,
		productSvc: productSvc,
	}
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, products)
}

// parseListParams reads the catalog query parameters. sort_by and sort_order
// are passed through untouched; unknown values fall back further down rather
// than erroring here.
func parseListParams(r *http.Request) (service.ListProductsParams, error) {
	q := r.URL.Query()

	params := service.ListProductsParams{
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil {
			return service.ListProductsParams{}, err
		}
		params.Skip = skip
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return service.ListProductsParams{}, err
		}
		params.Limit = limit
	}

	return params, nil
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, product)
}

type createProductRequest struct {
	Name                 string          `json:"name" validate:"required"`
	Description          string          `json:"description"`
	Price                float64         `json:"price"`
	Stock                int             `json:"stock"`
	ImageURL             string          `json:"image_url"`
	Category             string          `json:"category"`
	Customizable         bool            `json:"customizable"`
	CustomizationOptions json.RawMessage `json:"customization_options"`
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.svc.respondError(w, r, apperr.InvalidTokenErr)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	if err := h.validate.Validate(req); err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		Stock:                req.Stock,
		ImageURL:             req.ImageURL,
		Category:             req.Category,
		Customizable:         req.Customizable,
		CustomizationOptions: req.CustomizationOptions,
	}, principal)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name                 *string         `json:"name"`
	Description          *string         `json:"description"`
	Price                *float64        `json:"price"`
	Stock                *int            `json:"stock"`
	ImageURL             *string         `json:"image_url"`
	Category             *string         `json:"category"`
	Customizable         *bool           `json:"customizable"`
	CustomizationOptions json.RawMessage `json:"customization_options"`
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.svc.respondError(w, r, apperr.InvalidTokenErr)
		return
	}

	id, err := productID(r)
	if err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:                 req.Name,
		Description:          req.Description,
		Price:                req.Price,
		Stock:                req.Stock,
		ImageURL:             req.ImageURL,
		Category:             req.Category,
		Customizable:         req.Customizable,
		CustomizationOptions: req.CustomizationOptions,
	}, principal)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, product)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.svc.respondError(w, r, apperr.InvalidTokenErr)
		return
	}

	id, err := productID(r)
	if err != nil {
		h.svc.respondError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}

	product, err := h.productSvc.DeleteProduct(r.Context(), id, principal)
	if err != nil {
		h.svc.respondError(w, r, err)
		return
	}

	h.svc.respondJSON(w, r, http.StatusOK, product)
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
}
