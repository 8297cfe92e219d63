package odoo

import (
	"context"
	"fmt"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/internal/erp"
)

const modelProduct = "product.product"

var productFields = []string{"id", "name", "default_code", "barcode", "list_price", "uom_id"}

// ProductRepository resolves scanned codes to catalog products, localized
// by the worker's language.
type ProductRepository struct {
	client *erp.Client
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(client *erp.Client) *ProductRepository {
	return &ProductRepository{client: client}
}

type productRecord struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Code    optString `json:"default_code"`
	Barcode optString `json:"barcode"`
	Price   float64   `json:"list_price"`
	UoMID   many2One  `json:"uom_id"`
}

func (r productRecord) toDomain() domain.Product {
	uom := r.UoMID.Name
	if uom == "" {
		uom = "Units"
	}

	return domain.Product{
		ID:      r.ID,
		Name:    r.Name,
		Code:    string(r.Code),
		Barcode: string(r.Barcode),
		Price:   r.Price,
		UoMName: uom,
	}
}

// FindByCode retrieves products matching the scanned code on either the
// internal code or the barcode. Zero matches is not an error here; the
// caller decides what an empty result means.
func (r *ProductRepository) FindByCode(ctx context.Context, code, lang string) ([]domain.Product, error) {
	var records []productRecord
	filter := []any{
		"|",
		[]any{"default_code", "=", code},
		[]any{"barcode", "=", code},
	}
	opts := map[string]any{
		"fields":  productFields,
		"context": map[string]any{"lang": lang},
	}

	if err := r.client.SearchRead(ctx, modelProduct, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("find product by code %q: %w", code, err)
	}

	return toDomainProducts(records), nil
}

// ByIDs retrieves products by id with localized names.
func (r *ProductRepository) ByIDs(ctx context.Context, ids []int, lang string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []productRecord
	filter := []any{[]any{"id", "in", ids}}
	opts := map[string]any{
		"fields":  productFields,
		"context": map[string]any{"lang": lang},
	}

	if err := r.client.SearchRead(ctx, modelProduct, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("read products %v: %w", ids, err)
	}

	return toDomainProducts(records), nil
}

func toDomainProducts(records []productRecord) []domain.Product {
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toDomain())
	}
	return products
}
