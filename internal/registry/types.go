package registry

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for issue and expiry dates as
// they travel to and from the record store.
const DateLayout = time.DateOnly

// Role determines which views and mutations an account may reach.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClerk  Role = "CLERK"
	RoleViewer Role = "VIEWER"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleClerk, RoleViewer:
		return true
	}
	return false
}

// Status is the lifecycle state of a permit. There is no transition
// operation anywhere in the system: status is set at creation and a record
// only leaves the registry through deletion.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
	StatusRevoked Status = "REVOKED"
)

// Permit is a vehicle operating authorization record.
type Permit struct {
	ID           string    `json:"id"`
	PermitNumber string    `json:"permitNumber"`
	OperatorName string    `json:"operatorName"`
	CompanyID    string    `json:"companyId"`
	VehicleReg   string    `json:"vehicleReg"`
	Route        string    `json:"route"`
	IssueDate    string    `json:"issueDate"`  // DateLayout
	ExpiryDate   string    `json:"expiryDate"` // DateLayout
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User is an authentication and authorization identity. Password is stored
// and compared as plaintext, matching the existing registry records.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// Public returns a copy of the user with the password stripped, safe to hand
// to API responses.
func (u User) Public() User {
	u.Password = ""
	return u
}

// Stats counts permits by lifecycle status.
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
	Revoked int `json:"revoked"`
}

// NextPermitNumber synthesizes the human-facing permit reference from the
// issuance year and the current collection size. The sequence is derived from
// collection length, so two sessions registering at the same instant can mint
// the same reference; the scheme is kept as-is for compatibility with the
// existing registry.
func NextPermitNumber(year, collectionSize int) string {
	return fmt.Sprintf("PTA-%d-%04d", year, collectionSize+1)
}

var (
	ErrSyncFailed           = errors.New("registry: sync failed")
	ErrValidation           = errors.New("registry: validation failed")
	ErrInvalidCredentials   = errors.New("registry: invalid credentials")
	ErrAccessDenied         = errors.New("registry: access denied")
	ErrNotFound             = errors.New("registry: not found")
	ErrConfirmationRequired = errors.New("registry: confirmation required")
)
