package domain

// DefaultLanguage is used when neither the employee nor the user record
// carries a language.
const DefaultLanguage = "uk_UA"

// User is a worker identity in the remote store. Employee is attached
// when the user account is linked to an employee record.
type User struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Login    string    `json:"login,omitempty"`
	Active   bool      `json:"active"`
	Language string    `json:"lang"`
	Employee *Employee `json:"employee,omitempty"`

	// EmployeeID links the account to an hr record, zero when unlinked.
	EmployeeID int `json:"employee_id,omitempty"`
}

// Employee is an hr record holding the badge, PIN and preferred language.
// The PIN is stored in clear by the remote system and compared as-is.
type Employee struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	PIN      string `json:"pin,omitempty"`
	Language string `json:"lang,omitempty"`
	UserID   int    `json:"-"`
}
