package service

import (
	"context"
	"errors"
	"testing"

	"github.com/HasanSh18/lotus-leaf-shop/internal/model"
	"github.com/HasanSh18/lotus-leaf-shop/internal/repository"
)

func int64Ptr(v int64) *int64 { return &v }

func TestCreateProduct_DerivesStockFromVariants(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, nil, nil, "", nil)

	p, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "Lotus Hoodie",
		Gender:     model.GenderUnisex,
		Category:   "Hoodie unisex",
		PriceCents: int64Ptr(2500),
		Stock:      int64Ptr(99),
		Variants: []model.Variant{
			{Color: "black", Size: "M", Stock: 5},
			{Color: "white", Size: "L", Stock: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}

	// Варианты заданы: совокупный остаток их сумма, явное значение игнорируется.
	if p.Stock != 8 {
		t.Fatalf("Stock = %d, want 8", p.Stock)
	}
	if !p.IsActive {
		t.Fatalf("new product must be active by default")
	}
	if p.ID == "" {
		t.Fatalf("product must get an id")
	}
}

func TestCreateProduct_ExplicitStockWithoutVariants(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil, nil, nil, "", nil)

	p, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "Special Set",
		Gender:     model.GenderUnisex,
		Category:   "Special set",
		PriceCents: int64Ptr(10000),
		Stock:      int64Ptr(7),
	})
	if err != nil {
		t.Fatalf("CreateProduct error: %v", err)
	}
	if p.Stock != 7 {
		t.Fatalf("Stock = %d, want 7", p.Stock)
	}
}

func TestCreateProduct_InvalidCategory(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, nil, nil, "", nil)

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:       "Lotus Shoes",
		Gender:     model.GenderUnisex,
		Category:   "Shoes",
		PriceCents: int64Ptr(2500),
	})
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestCreateProduct_MissingPrice(t *testing.T) {
	svc := NewService(&stubRepo{}, nil, nil, nil, "", nil)

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Name:     "Lotus Hoodie",
		Gender:   model.GenderUnisex,
		Category: "Hoodie unisex",
	})
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestGetProduct_HidesInactive(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{ID: "p1", IsActive: false},
	}
	svc := NewService(repo, nil, nil, nil, "", nil)

	_, err := svc.GetProduct(context.Background(), "p1")
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for inactive product, got %v", err)
	}
}

func TestUpdateProduct_KeepsScalarFields(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{
			ID:          "p1",
			Name:        "Lotus Hoodie",
			Gender:      model.GenderUnisex,
			Category:    "Hoodie unisex",
			Description: "warm",
			PriceCents:  2500,
			Stock:       5,
			IsActive:    true,
		},
	}
	svc := NewService(repo, nil, nil, nil, "", nil)

	p, err := svc.UpdateProduct(context.Background(), "p1", ProductInput{
		PriceCents: int64Ptr(3000),
	})
	if err != nil {
		t.Fatalf("UpdateProduct error: %v", err)
	}

	if p.Name != "Lotus Hoodie" || p.Category != "Hoodie unisex" {
		t.Fatalf("omitted fields must keep previous values: %+v", p)
	}
	if p.PriceCents != 3000 {
		t.Fatalf("PriceCents = %d, want 3000", p.PriceCents)
	}
	if p.Stock != 5 {
		t.Fatalf("Stock = %d, want previous value 5", p.Stock)
	}
}

func TestDeleteProduct_Deactivates(t *testing.T) {
	repo := &stubRepo{
		product: &model.Product{ID: "p1", Name: "Lotus Hoodie", IsActive: true},
	}
	svc := NewService(repo, nil, nil, nil, "", nil)

	p, err := svc.DeleteProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("DeleteProduct error: %v", err)
	}
	if repo.deactivatedID != "p1" {
		t.Fatalf("deactivated id = %q, want p1", repo.deactivatedID)
	}
	if p.IsActive {
		t.Fatalf("product must be inactive after delete")
	}
}
