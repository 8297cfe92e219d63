package picking

import (
	"context"

	"github.com/flfwms/picking-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LineView is the client-facing descriptor of one order line, combining
// line progress with localized product metadata and the source location.
type LineView struct {
	LineID           int     `json:"line_id"`
	ProductID        int     `json:"product_id"`
	ProductName      string  `json:"product_name"`
	ProductCode      string  `json:"product_code,omitempty"`
	Price            float64 `json:"price"`
	UoM              string  `json:"uom"`
	Required         float64 `json:"required"`
	Done             float64 `json:"done"`
	Remain           float64 `json:"remain"`
	Barcode          string  `json:"barcode,omitempty"`
	Location         string  `json:"location,omitempty"`
	LocationComplete string  `json:"location_complete,omitempty"`
}

// lineViews assembles LineViews for the given lines. Product metadata and
// locations are fetched concurrently; both reads hit the remote store.
func (s *Service) lineViews(ctx context.Context, lines []domain.OrderLine, lang string) ([]LineView, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	productIDs := make([]int, 0, len(lines))
	locationIDs := make([]int, 0, len(lines))
	seenProducts := make(map[int]bool)
	seenLocations := make(map[int]bool)
	for _, line := range lines {
		if line.ProductID != 0 && !seenProducts[line.ProductID] {
			seenProducts[line.ProductID] = true
			productIDs = append(productIDs, line.ProductID)
		}
		if line.LocationID != 0 && !seenLocations[line.LocationID] {
			seenLocations[line.LocationID] = true
			locationIDs = append(locationIDs, line.LocationID)
		}
	}

	var (
		products  []domain.Product
		locations map[int]domain.Location
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.ByIDs(gctx, productIDs, lang)
		return err
	})
	g.Go(func() error {
		var err error
		locations, err = s.orders.LocationsByIDs(gctx, locationIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productMap := make(map[int]domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, newLineView(line, productMap[line.ProductID], locations[line.LocationID]))
	}

	return views, nil
}

func newLineView(line domain.OrderLine, product domain.Product, location domain.Location) LineView {
	name := product.Name
	if name == "" {
		name = "Unknown Product"
	}
	uom := product.UoMName
	if uom == "" {
		uom = "Units"
	}

	return LineView{
		LineID:           line.ID,
		ProductID:        line.ProductID,
		ProductName:      name,
		ProductCode:      product.Code,
		Price:            product.Price,
		UoM:              uom,
		Required:         line.Required,
		Done:             line.Done,
		Remain:           line.Remaining(),
		Barcode:          product.Barcode,
		Location:         location.Name,
		LocationComplete: location.CompleteName,
	}
}
