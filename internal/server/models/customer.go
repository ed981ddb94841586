package models

import (
	"fmt"
	"time"
)

// CustomerStatus is the lifecycle label of a customer record.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusProspect CustomerStatus = "prospect"

	DefaultCustomerStatus = CustomerStatusActive
)

// CustomerStatuses lists every accepted status in display order.
var CustomerStatuses = []CustomerStatus{
	CustomerStatusActive,
	CustomerStatusInactive,
	CustomerStatusProspect,
}

// Valid reports whether s is one of CustomerStatuses.
func (s CustomerStatus) Valid() bool {
	for _, v := range CustomerStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseCustomerStatus returns DefaultCustomerStatus for an empty string.
func ParseCustomerStatus(s string) (CustomerStatus, error) {
	if s == "" {
		return DefaultCustomerStatus, nil
	}
	st := CustomerStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown customer status %q", s)
	}
	return st, nil
}

// Customer is a contact managed by the application. Optional attributes
// are nil when absent.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string
	Company   *string
	Position  *string
	Address   *string
	Notes     *string
	Status    CustomerStatus
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// CustomerFilter narrows a customer listing. Search matches name, email or
// company case-insensitively; a zero Limit means no limit.
type CustomerFilter struct {
	Search string
	Offset int
	Limit  int
}
