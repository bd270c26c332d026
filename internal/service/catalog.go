package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
)

// ProductInput содержит данные товара от администратора.
// Nil-поля при обновлении означают «оставить как есть»; списки цветов,
// размеров, изображений и вариантов перезаписываются целиком.
type ProductInput struct {
	Name               string
	Gender             model.Gender
	Category           string
	Description        string
	PriceCents         *int64
	DiscountPriceCents *int64
	Stock              *int64
	Colors             []string
	Sizes              []string
	Images             []string
	Variants           []model.Variant
	IsActive           *bool
}

// ListProducts возвращает активные товары по фильтрам каталога.
func (s *Service) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

// GetProduct возвращает активный товар. Скрытый товар неотличим от отсутствующего.
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

// CreateProduct создаёт товар. При наличии вариантов совокупный остаток
// выводится как сумма остатков вариантов.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !model.IsValidGender(in.Gender) {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidProduct, in.Gender)
	}
	if !model.IsValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, in.Category)
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price is required", ErrInvalidProduct)
	}

	p := &model.Product{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Gender:             in.Gender,
		Category:           in.Category,
		Description:        in.Description,
		PriceCents:         *in.PriceCents,
		DiscountPriceCents: in.DiscountPriceCents,
		Colors:             emptyIfNil(in.Colors),
		Sizes:              emptyIfNil(in.Sizes),
		Images:             emptyIfNil(in.Images),
		Variants:           in.Variants,
		IsActive:           true,
	}

	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	p.Stock = deriveStock(in.Variants, in.Stock, 0)

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetProductByID(ctx, p.ID)
}

// UpdateProduct обновляет товар, сохраняя непереданные скалярные поля.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Gender != "" {
		if !model.IsValidGender(in.Gender) {
			return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidProduct, in.Gender)
		}
		p.Gender = in.Gender
	}
	if in.Category != "" {
		if !model.IsValidCategory(in.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, in.Category)
		}
		p.Category = in.Category
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if in.DiscountPriceCents != nil {
		p.DiscountPriceCents = in.DiscountPriceCents
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	p.Colors = emptyIfNil(in.Colors)
	p.Sizes = emptyIfNil(in.Sizes)
	p.Images = emptyIfNil(in.Images)
	p.Variants = in.Variants
	p.Stock = deriveStock(in.Variants, in.Stock, p.Stock)

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	return s.repo.GetProductByID(ctx, p.ID)
}

// DeleteProduct помечает товар неактивным; запись и исторические ссылки
// на неё сохраняются.
func (s *Service) DeleteProduct(ctx context.Context, id string) (*model.Product, error) {
	if err := s.repo.DeactivateProduct(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetProductByID(ctx, id)
}

// deriveStock выводит совокупный остаток: сумма вариантов, если они есть,
// иначе явно переданное значение, иначе прежнее.
func deriveStock(variants []model.Variant, stock *int64, fallback int64) int64 {
	if len(variants) > 0 {
		return model.VariantStockSum(variants)
	}
	if stock != nil {
		return *stock
	}
	return fallback
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
