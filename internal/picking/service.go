// Package picking implements scan validation and progress tracking for
// warehouse pick orders. The service is stateless: the expected next line
// is re-derived from remotely stored quantities on every call, so client
// retries after a crash recompute the same expectation.
package picking

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/internal/repository"
)

// OrderStore is the narrow view of the remote order store the service
// depends on. It is implemented by repository/odoo and by an in-memory
// fake in tests.
type OrderStore interface {
	FindOrderByName(ctx context.Context, name string) (*domain.Order, error)
	OrderByID(ctx context.Context, id int) (*domain.Order, error)
	ListAssigned(ctx context.Context) ([]domain.Order, error)
	LinesByIDs(ctx context.Context, ids []int) ([]domain.OrderLine, error)
	LinesByOrder(ctx context.Context, orderID int) ([]domain.OrderLine, error)
	LinesByProduct(ctx context.Context, orderID, productID int) ([]domain.OrderLine, error)
	WriteLineQuantity(ctx context.Context, lineID int, qty float64) error
	LocationsByIDs(ctx context.Context, ids []int) (map[int]domain.Location, error)
}

// ProductStore resolves scanned codes to localized catalog products.
type ProductStore interface {
	FindByCode(ctx context.Context, code, lang string) ([]domain.Product, error)
	ByIDs(ctx context.Context, ids []int, lang string) ([]domain.Product, error)
}

// Service decides the outcome of scans and tracks per-line progress.
type Service struct {
	orders   OrderStore
	products ProductStore
	logger   *slog.Logger
}

// NewService creates a new picking Service.
func NewService(orders OrderStore, products ProductStore, logger *slog.Logger) *Service {
	return &Service{
		orders:   orders,
		products: products,
		logger:   logger,
	}
}

// PickingRef identifies an order in responses.
type PickingRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrderProgress summarizes how many lines the order has and how many are
// already satisfied.
type OrderProgress struct {
	TotalLines     int `json:"total_lines"`
	CompletedLines int `json:"completed_lines"`
}

// AttachResult is returned when a worker attaches to an order.
type AttachResult struct {
	Picking PickingRef    `json:"picking"`
	Line    *LineView     `json:"line"`
	Summary OrderProgress `json:"order_summary"`
}

// AttachByBarcode looks up an order by exact name match and starts a fresh
// pick session: every line's picked quantity is reset to zero. Returns the
// first line still requiring work, or the first line when all are already
// satisfied.
func (s *Service) AttachByBarcode(ctx context.Context, barcode, lang string) (*AttachResult, error) {
	order, err := s.orders.FindOrderByName(ctx, barcode)
	if err != nil {
		return nil, orderLookupError(err)
	}

	if order.Locked() {
		return nil, domain.ErrOrderLocked
	}

	// Fresh session: explicit reset, not an idempotent no-op.
	for _, lineID := range order.LineIDs {
		if err := s.orders.WriteLineQuantity(ctx, lineID, 0); err != nil {
			return nil, err
		}
	}

	lines, err := s.orders.LinesByIDs(ctx, order.LineIDs)
	if err != nil {
		return nil, err
	}

	views, err := s.lineViews(ctx, lines, lang)
	if err != nil {
		return nil, err
	}

	var first *LineView
	completed := 0
	for i := range views {
		if views[i].Remain > 0 {
			if first == nil {
				first = &views[i]
			}
		} else {
			completed++
		}
	}
	if first == nil && len(views) > 0 {
		first = &views[0]
	}

	s.logger.Info("pick session started", "order_id", order.ID, "order_name", order.Name, "lines", len(views))

	return &AttachResult{
		Picking: PickingRef{ID: order.ID, Name: order.Name},
		Line:    first,
		Summary: OrderProgress{TotalLines: len(views), CompletedLines: completed},
	}, nil
}

// ScanInput describes one scan event.
type ScanInput struct {
	OrderID int
	Code    string
	// ExpectedProductID is the client's hint of what it believes comes
	// next; zero means no hint.
	ExpectedProductID int
	Language          string
}

// LineProgress is the post-scan state of the updated line.
type LineProgress struct {
	Required         float64 `json:"required"`
	Done             float64 `json:"done"`
	Remain           float64 `json:"remain"`
	Location         string  `json:"location,omitempty"`
	LocationComplete string  `json:"location_complete,omitempty"`
}

// ScanResult reports the outcome of an accepted scan.
type ScanResult struct {
	Line           LineProgress `json:"line"`
	RowCompleted   bool         `json:"row_completed"`
	OrderCompleted bool         `json:"order_completed"`
	NextLine       *LineView    `json:"next_line,omitempty"`
}

// Scan validates one scan event against the order and, on acceptance,
// increments exactly one line's picked quantity by 1.
//
// The expected line is recomputed from stored quantities on every call:
// among incomplete lines (required > done, required > 0) the one with the
// lowest identifier must be scanned next. A scan of any other in-order
// product fails WRONG_ORDER, or ALREADY_SCANNED when that product has no
// remaining quantity anywhere in the order.
func (s *Service) Scan(ctx context.Context, in ScanInput) (*ScanResult, error) {
	products, err := s.products.FindByCode(ctx, in.Code, in.Language)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, domain.ErrNotInOrder
	}
	scanned := products[0]

	// Client hint check fires before the order is even loaded.
	if in.ExpectedProductID != 0 && scanned.ID != in.ExpectedProductID {
		s.logger.Warn("scan did not match client expectation",
			"order_id", in.OrderID, "expected_product_id", in.ExpectedProductID, "scanned_product_id", scanned.ID)
		return nil, domain.ErrWrongOrder
	}

	productLines, err := s.orders.LinesByProduct(ctx, in.OrderID, scanned.ID)
	if err != nil {
		return nil, err
	}
	if len(productLines) == 0 {
		return nil, domain.ErrNotInOrder
	}

	allLines, err := s.orders.LinesByOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	incomplete := incompleteLines(allLines)
	if len(incomplete) == 0 {
		// No ordering constraint left; accept without mutating anything.
		line := productLines[0]
		progress, err := s.lineProgress(ctx, line)
		if err != nil {
			return nil, err
		}
		return &ScanResult{
			Line:           *progress,
			RowCompleted:   line.Remaining() == 0,
			OrderCompleted: true,
		}, nil
	}

	sort.Slice(incomplete, func(i, j int) bool { return incomplete[i].ID < incomplete[j].ID })
	expected := incomplete[0]

	if expected.ProductID != scanned.ID {
		// The scanned product is on the order but out of turn. If it has
		// no remaining quantity anywhere, the worker already picked it.
		hasRemain := false
		for _, l := range productLines {
			if l.Required > l.Done {
				hasRemain = true
				break
			}
		}
		if !hasRemain {
			return nil, domain.ErrAlreadyScanned
		}

		s.logger.Warn("scan out of order",
			"order_id", in.OrderID, "expected_product_id", expected.ProductID, "scanned_product_id", scanned.ID)
		return nil, domain.ErrWrongOrder
	}

	line := productLines[0]
	done := line.Done + 1
	if done > line.Required {
		// Rejected before the write; the increment never reaches the store.
		return nil, domain.ErrOverpick
	}

	if err := s.orders.WriteLineQuantity(ctx, line.ID, done); err != nil {
		return nil, err
	}

	updated, err := s.readLine(ctx, line.ID)
	if err != nil {
		return nil, err
	}

	progress, err := s.lineProgress(ctx, *updated)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Line:         *progress,
		RowCompleted: updated.Remaining() == 0,
	}

	if result.RowCompleted {
		if err := s.fillNextLine(ctx, in.OrderID, updated.ID, in.Language, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// fillNextLine searches the order for the next line requiring work, in
// stored order, and attaches its descriptor; when none is left the order
// is complete.
func (s *Service) fillNextLine(ctx context.Context, orderID, doneLineID int, lang string, result *ScanResult) error {
	lines, err := s.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if line.Required > line.Done && line.ID != doneLineID {
			views, err := s.lineViews(ctx, []domain.OrderLine{line}, lang)
			if err != nil {
				return err
			}
			if len(views) > 0 {
				result.NextLine = &views[0]
			}
			return nil
		}
	}

	for _, line := range lines {
		if line.Required > line.Done {
			return nil
		}
	}
	result.OrderCompleted = true

	return nil
}

// FinalizeItem is one submitted line of a finalize request.
type FinalizeItem struct {
	LineID    int     `json:"line_id"`
	ProductID int     `json:"product_id"`
	Qty       float64 `json:"qty"`
}

// FinalizeResult reports how many labels to print, one per line.
type FinalizeResult struct {
	LabelsCount int `json:"labels_count"`
}

// Finalize writes the submitted quantities, all or nothing. Any submitted
// line that vanished or whose required quantity changed since the client
// last read it is collected into a MismatchError and nothing is written.
func (s *Service) Finalize(ctx context.Context, orderID int, items []FinalizeItem) (*FinalizeResult, error) {
	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}

	if order.Locked() {
		return nil, domain.ErrOrderLocked
	}

	lines, err := s.orders.LinesByIDs(ctx, order.LineIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]domain.OrderLine, len(lines))
	for _, line := range lines {
		byID[line.ID] = line
	}

	var diffs []domain.LineDiff
	for _, item := range items {
		line, ok := byID[item.LineID]
		if !ok {
			diffs = append(diffs, domain.LineDiff{LineID: item.LineID, ProductID: item.ProductID, NewRequired: 0})
			continue
		}
		if line.Required != item.Qty {
			diffs = append(diffs, domain.LineDiff{LineID: item.LineID, ProductID: item.ProductID, NewRequired: line.Required})
		}
	}

	if len(diffs) > 0 {
		return nil, &domain.MismatchError{Diffs: diffs}
	}

	for _, item := range items {
		if err := s.orders.WriteLineQuantity(ctx, item.LineID, item.Qty); err != nil {
			return nil, err
		}
	}

	s.logger.Info("order finalized", "order_id", orderID, "lines", len(items))

	return &FinalizeResult{LabelsCount: len(items)}, nil
}

// ResetProgress zeroes the picked quantity on every line of the order.
// Terminal orders cannot be reset.
func (s *Service) ResetProgress(ctx context.Context, orderID int) error {
	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return orderLookupError(err)
	}

	if order.Locked() {
		return domain.ErrOrderLocked
	}

	lines, err := s.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err := s.orders.WriteLineQuantity(ctx, line.ID, 0); err != nil {
			return err
		}
	}

	s.logger.Info("pick progress reset", "order_id", orderID, "lines", len(lines))

	return nil
}

// TaskSummary is one row of the available-tasks listing.
type TaskSummary struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Date          string `json:"date,omitempty"`
	PartnerName   string `json:"partner_name"`
	ProductsCount int    `json:"products_count"`
}

// ListAvailable returns all orders currently assigned and ready to pick.
func (s *Service) ListAvailable(ctx context.Context) ([]TaskSummary, error) {
	orders, err := s.orders.ListAssigned(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]TaskSummary, 0, len(orders))
	for _, order := range orders {
		tasks = append(tasks, TaskSummary{
			ID:            order.ID,
			Name:          order.Name,
			Date:          order.Date,
			PartnerName:   order.Partner,
			ProductsCount: len(order.LineIDs),
		})
	}

	return tasks, nil
}

// TaskHeader is the order header in the task detail view.
type TaskHeader struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date,omitempty"`
	PartnerName string `json:"partner_name"`
}

// TaskDetails is the full detail view of one order.
type TaskDetails struct {
	Picking TaskHeader `json:"picking"`
	Lines   []LineView `json:"lines"`
}

// Details returns the order header and all lines with product metadata.
func (s *Service) Details(ctx context.Context, orderID int, lang string) (*TaskDetails, error) {
	order, err := s.orders.OrderByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}

	lines, err := s.orders.LinesByIDs(ctx, order.LineIDs)
	if err != nil {
		return nil, err
	}

	views, err := s.lineViews(ctx, lines, lang)
	if err != nil {
		return nil, err
	}

	return &TaskDetails{
		Picking: TaskHeader{ID: order.ID, Name: order.Name, Date: order.Date, PartnerName: order.Partner},
		Lines:   views,
	}, nil
}

// readLine re-reads a single line from the store.
func (s *Service) readLine(ctx context.Context, lineID int) (*domain.OrderLine, error) {
	lines, err := s.orders.LinesByIDs(ctx, []int{lineID})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrNotInOrder
	}
	return &lines[0], nil
}

// lineProgress builds the post-scan snapshot of a line including its
// source location.
func (s *Service) lineProgress(ctx context.Context, line domain.OrderLine) (*LineProgress, error) {
	progress := &LineProgress{
		Required: line.Required,
		Done:     line.Done,
		Remain:   line.Remaining(),
	}

	if line.LocationID != 0 {
		locations, err := s.orders.LocationsByIDs(ctx, []int{line.LocationID})
		if err != nil {
			return nil, err
		}
		if loc, ok := locations[line.LocationID]; ok {
			progress.Location = loc.Name
			progress.LocationComplete = loc.CompleteName
		}
	}

	return progress, nil
}

func incompleteLines(lines []domain.OrderLine) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.Incomplete() {
			out = append(out, line)
		}
	}
	return out
}

// orderLookupError converts a store not-found into the business error the
// client understands.
func orderLookupError(err error) error {
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		return domain.ErrPickingNotFound
	}
	return err
}
