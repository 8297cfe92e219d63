package domain

// Order states as reported by the remote store. "done" and "cancel" are
// terminal; a terminal order is locked against further scans and resets.
const (
	OrderStateDone      = "done"
	OrderStateCancelled = "cancel"
)

// Order is a picking header in the remote store.
type Order struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	State   string `json:"state"`
	Date    string `json:"date,omitempty"`
	Partner string `json:"partner_name,omitempty"`
	LineIDs []int  `json:"-"`
}

// Locked reports whether the order is in a terminal state and therefore
// immutable to scans, resets and finalization.
func (o *Order) Locked() bool {
	return o.State == OrderStateDone || o.State == OrderStateCancelled
}

// OrderLine is a move line: one product's required vs picked quantity
// within an order.
type OrderLine struct {
	ID         int
	OrderID    int
	ProductID  int
	Required   float64
	Done       float64
	UoMID      int
	LocationID int
}

// Remaining returns the quantity still to pick on this line.
func (l *OrderLine) Remaining() float64 {
	return l.Required - l.Done
}

// Incomplete reports whether the line still requires work. Lines with a
// zero required quantity never count as incomplete.
func (l *OrderLine) Incomplete() bool {
	return l.Required > l.Done && l.Required > 0
}

// Location is a stock location referenced by order lines.
type Location struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	CompleteName string `json:"complete_name"`
}
