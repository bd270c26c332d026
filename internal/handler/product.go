package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
	"github.com/HasanSh18/lotus-leaf-shop/internal/service"
)

// ListProducts возвращает активные товары по фильтрам из строки запроса.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := model.ProductFilter{
		Query:    q.Get("q"),
		Gender:   model.Gender(q.Get("gender")),
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Size:     q.Get("size"),
	}

	if v := q.Get("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeMessage(w, http.StatusBadRequest, "Invalid minPrice")
			return
		}
		cents := unitsToCents(price)
		filter.MinPriceCents = &cents
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeMessage(w, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		cents := unitsToCents(price)
		filter.MaxPriceCents = &cents
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetProduct возвращает активный товар по идентификатору.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		h.internalError(w, "get product", err, zap.String("productID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

type variantRequest struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int64  `json:"stock"`
}

type productRequest struct {
	Name          string           `json:"name"`
	Gender        string           `json:"gender"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	Price         *float64         `json:"price"`
	DiscountPrice *float64         `json:"discountPrice"`
	Stock         *int64           `json:"stock"`
	Colors        []string         `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Images        []string         `json:"images"`
	Variants      []variantRequest `json:"variants"`
	IsActive      *bool            `json:"isActive"`
}

func (req *productRequest) toInput() service.ProductInput {
	in := service.ProductInput{
		Name:        req.Name,
		Gender:      model.Gender(req.Gender),
		Category:    req.Category,
		Description: req.Description,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		Images:      req.Images,
		Stock:       req.Stock,
		IsActive:    req.IsActive,
	}

	if req.Price != nil {
		cents := unitsToCents(*req.Price)
		in.PriceCents = &cents
	}
	if req.DiscountPrice != nil {
		cents := unitsToCents(*req.DiscountPrice)
		in.DiscountPriceCents = &cents
	}

	for _, v := range req.Variants {
		in.Variants = append(in.Variants, model.Variant{
			Color: v.Color,
			Size:  v.Size,
			Stock: v.Stock,
		})
	}

	return in
}

// CreateProduct создаёт товар (только администратор).
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, "create product", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct обновляет товар (только администратор).
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			h.writeMessage(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidProduct):
			h.writeMessage(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, "update product", err, zap.String("productID", id))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

type deleteProductResponse struct {
	Message string          `json:"message"`
	Product productResponse `json:"product"`
}

// DeleteProduct скрывает товар из каталога, сохраняя запись (только администратор).
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		h.internalError(w, "delete product", err, zap.String("productID", id))
		return
	}

	h.writeJSON(w, http.StatusOK, deleteProductResponse{
		Message: "Product deactivated",
		Product: toProductResponse(product),
	})
}
