// Package odoo implements the repository interfaces on top of the remote
// store's stock, product and hr models. The store owns all durable state;
// nothing here is cached across requests.
package odoo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/internal/erp"
	"github.com/flfwms/picking-api/internal/repository"
)

const (
	OrderResource = "picking"

	modelPicking  = "stock.picking"
	modelMoveLine = "stock.move.line"
	modelLocation = "stock.location"
)

var (
	pickingFields  = []string{"id", "name", "state", "date", "partner_id", "move_line_ids"}
	moveLineFields = []string{"id", "picking_id", "product_id", "product_uom_qty", "qty_done", "product_uom_id", "location_id"}
	locationFields = []string{"id", "name", "complete_name"}
)

// OrderRepository provides order and order line operations backed by the
// remote store.
type OrderRepository struct {
	client *erp.Client
}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository(client *erp.Client) *OrderRepository {
	return &OrderRepository{client: client}
}

type pickingRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Date      optString `json:"date"`
	PartnerID many2One  `json:"partner_id"`
	LineIDs   []int     `json:"move_line_ids"`
}

func (r pickingRecord) toDomain() *domain.Order {
	partner := r.PartnerID.Name
	if partner == "" {
		partner = "Unknown"
	}

	return &domain.Order{
		ID:      r.ID,
		Name:    r.Name,
		State:   r.State,
		Date:    string(r.Date),
		Partner: partner,
		LineIDs: r.LineIDs,
	}
}

type moveLineRecord struct {
	ID         int      `json:"id"`
	PickingID  many2One `json:"picking_id"`
	ProductID  many2One `json:"product_id"`
	Required   float64  `json:"product_uom_qty"`
	Done       float64  `json:"qty_done"`
	UoMID      many2One `json:"product_uom_id"`
	LocationID many2One `json:"location_id"`
}

func (r moveLineRecord) toDomain() domain.OrderLine {
	return domain.OrderLine{
		ID:         r.ID,
		OrderID:    r.PickingID.ID,
		ProductID:  r.ProductID.ID,
		Required:   r.Required,
		Done:       r.Done,
		UoMID:      r.UoMID.ID,
		LocationID: r.LocationID.ID,
	}
}

// FindOrderByName retrieves an order by exact name match.
func (r *OrderRepository) FindOrderByName(ctx context.Context, name string) (*domain.Order, error) {
	var records []pickingRecord
	filter := []any{[]any{"name", "=", name}}
	opts := map[string]any{"fields": pickingFields}

	if err := r.client.SearchRead(ctx, modelPicking, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("find order by name %q: %w", name, err)
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{Resource: OrderResource, Key: "name", Value: name}
	}

	return records[0].toDomain(), nil
}

// OrderByID retrieves an order by id.
func (r *OrderRepository) OrderByID(ctx context.Context, id int) (*domain.Order, error) {
	var records []pickingRecord
	filter := []any{[]any{"id", "=", id}}
	opts := map[string]any{"fields": pickingFields}

	if err := r.client.SearchRead(ctx, modelPicking, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{Resource: OrderResource, Key: "id", Value: strconv.Itoa(id)}
	}

	return records[0].toDomain(), nil
}

// ListAssigned retrieves all orders currently in the assigned state.
func (r *OrderRepository) ListAssigned(ctx context.Context) ([]domain.Order, error) {
	var records []pickingRecord
	filter := []any{[]any{"state", "=", "assigned"}}
	opts := map[string]any{"fields": pickingFields}

	if err := r.client.SearchRead(ctx, modelPicking, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("list assigned orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, *rec.toDomain())
	}

	return orders, nil
}

// LinesByIDs retrieves order lines by their ids.
func (r *OrderRepository) LinesByIDs(ctx context.Context, ids []int) ([]domain.OrderLine, error) {
	var records []moveLineRecord
	filter := []any{[]any{"id", "in", ids}}
	opts := map[string]any{"fields": moveLineFields}

	if err := r.client.SearchRead(ctx, modelMoveLine, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("read lines %v: %w", ids, err)
	}

	return toDomainLines(records), nil
}

// LinesByOrder retrieves all lines attached to an order, in stored order.
func (r *OrderRepository) LinesByOrder(ctx context.Context, orderID int) ([]domain.OrderLine, error) {
	var records []moveLineRecord
	filter := []any{[]any{"picking_id", "=", orderID}}
	opts := map[string]any{"fields": moveLineFields}

	if err := r.client.SearchRead(ctx, modelMoveLine, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("read lines for order %d: %w", orderID, err)
	}

	return toDomainLines(records), nil
}

// LinesByProduct retrieves the lines for one product within an order.
func (r *OrderRepository) LinesByProduct(ctx context.Context, orderID, productID int) ([]domain.OrderLine, error) {
	var records []moveLineRecord
	filter := []any{
		[]any{"picking_id", "=", orderID},
		[]any{"product_id", "=", productID},
	}
	opts := map[string]any{"fields": moveLineFields}

	if err := r.client.SearchRead(ctx, modelMoveLine, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("read lines for product %d in order %d: %w", productID, orderID, err)
	}

	return toDomainLines(records), nil
}

// WriteLineQuantity writes the picked quantity for a single line.
func (r *OrderRepository) WriteLineQuantity(ctx context.Context, lineID int, qty float64) error {
	if err := r.client.Write(ctx, modelMoveLine, []int{lineID}, map[string]any{"qty_done": qty}); err != nil {
		return fmt.Errorf("write quantity for line %d: %w", lineID, err)
	}

	return nil
}

// LocationsByIDs retrieves stock locations keyed by id.
func (r *OrderRepository) LocationsByIDs(ctx context.Context, ids []int) (map[int]domain.Location, error) {
	if len(ids) == 0 {
		return map[int]domain.Location{}, nil
	}

	var records []domain.Location
	filter := []any{[]any{"id", "in", ids}}
	opts := map[string]any{"fields": locationFields}

	if err := r.client.SearchRead(ctx, modelLocation, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("read locations %v: %w", ids, err)
	}

	locations := make(map[int]domain.Location, len(records))
	for _, loc := range records {
		locations[loc.ID] = loc
	}

	return locations, nil
}

func toDomainLines(records []moveLineRecord) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(records))
	for _, rec := range records {
		lines = append(lines, rec.toDomain())
	}
	return lines
}
