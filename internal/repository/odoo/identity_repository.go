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
	UserResource     = "user"
	EmployeeResource = "employee"

	modelUser     = "res.users"
	modelEmployee = "hr.employee"
)

var (
	userFields     = []string{"id", "name", "login", "active", "employee_id", "lang"}
	employeeFields = []string{"id", "name", "user_id", "active", "pin", "lang"}
)

// IdentityRepository provides worker identity lookups for credential
// issuance.
type IdentityRepository struct {
	client *erp.Client
}

// NewIdentityRepository creates a new IdentityRepository instance.
func NewIdentityRepository(client *erp.Client) *IdentityRepository {
	return &IdentityRepository{client: client}
}

type userRecord struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Login      optString `json:"login"`
	Active     bool      `json:"active"`
	EmployeeID many2One  `json:"employee_id"`
	Language   optString `json:"lang"`
}

type employeeRecord struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	UserID   many2One  `json:"user_id"`
	Active   bool      `json:"active"`
	PIN      optString `json:"pin"`
	Language optString `json:"lang"`
}

func (r employeeRecord) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:       r.ID,
		Name:     r.Name,
		Active:   r.Active,
		PIN:      string(r.PIN),
		Language: string(r.Language),
		UserID:   r.UserID.ID,
	}
}

// AuthenticateSession verifies a login and password against the remote
// store's session endpoint and returns the user id.
func (r *IdentityRepository) AuthenticateSession(ctx context.Context, login, password string) (int, error) {
	return r.client.AuthenticateSession(ctx, login, password)
}

// UserByID retrieves a user record by id.
func (r *IdentityRepository) UserByID(ctx context.Context, id int) (*domain.User, error) {
	var records []userRecord
	if err := r.client.Read(ctx, modelUser, []int{id}, userFields, &records); err != nil {
		return nil, fmt.Errorf("read user %d: %w", id, err)
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{Resource: UserResource, Key: "id", Value: strconv.Itoa(id)}
	}

	rec := records[0]
	return &domain.User{
		ID:         rec.ID,
		Name:       rec.Name,
		Login:      string(rec.Login),
		Active:     rec.Active,
		Language:   string(rec.Language),
		EmployeeID: rec.EmployeeID.ID,
	}, nil
}

// EmployeeByID retrieves an employee record by id.
func (r *IdentityRepository) EmployeeByID(ctx context.Context, id int) (*domain.Employee, error) {
	var records []employeeRecord
	if err := r.client.Read(ctx, modelEmployee, []int{id}, employeeFields, &records); err != nil {
		return nil, fmt.Errorf("read employee %d: %w", id, err)
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{Resource: EmployeeResource, Key: "id", Value: strconv.Itoa(id)}
	}

	return records[0].toDomain(), nil
}

// EmployeeByBadge retrieves an employee by exact badge barcode match.
func (r *IdentityRepository) EmployeeByBadge(ctx context.Context, badge string) (*domain.Employee, error) {
	var records []employeeRecord
	filter := []any{[]any{"barcode", "=", badge}}
	opts := map[string]any{"fields": employeeFields}

	if err := r.client.SearchRead(ctx, modelEmployee, filter, opts, &records); err != nil {
		return nil, fmt.Errorf("find employee by badge: %w", err)
	}

	if len(records) == 0 {
		return nil, &repository.NotFoundError{Resource: EmployeeResource, Key: "badge", Value: badge}
	}

	return records[0].toDomain(), nil
}
