package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/validation"
)

// CustomerCreate is the payload for a new customer. Status defaults to
// "active" when omitted.
type CustomerCreate struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Position *string `json:"position,omitempty" validate:"omitempty,max=255"`
	Address  *string `json:"address,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive prospect"`
}

func (c CustomerCreate) Validate() error { return validation.Struct(c) }

// ToModel assumes c has been validated.
func (c CustomerCreate) ToModel() *models.Customer {
	status := models.DefaultCustomerStatus
	if c.Status != nil {
		status = models.CustomerStatus(*c.Status)
	}
	return &models.Customer{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		Position: c.Position,
		Address:  c.Address,
		Notes:    c.Notes,
		Status:   status,
	}
}

// CustomerUpdate is a partial update: every field is optional and only
// the fields present in the request are changed. Optional fields sent as
// JSON null are cleared; null is rejected for name, email and status.
type CustomerUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company  *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Position *string `json:"position,omitempty" validate:"omitempty,max=255"`
	Address  *string `json:"address,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive prospect"`

	// Nulls holds the JSON keys that were sent as null.
	Nulls map[string]bool `json:"-"`
}

var requiredUpdateFields = []string{"name", "email", "status"}

var nullableUpdateFields = map[string]bool{
	"phone": true, "company": true, "position": true, "address": true, "notes": true,
}

func (u *CustomerUpdate) UnmarshalJSON(b []byte) error {
	type fields CustomerUpdate
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		if f.Nulls == nil {
			f.Nulls = map[string]bool{}
		}
		f.Nulls[k] = true
	}
	*u = CustomerUpdate(f)
	return nil
}

func (u CustomerUpdate) Validate() error {
	var errs validation.Errors
	if err := validation.Struct(u); err != nil && !errors.As(err, &errs) {
		return err
	}
	for _, name := range requiredUpdateFields {
		if u.Nulls[name] {
			errs = append(errs, validation.FieldError{Field: name, Error: "must not be null"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (u CustomerUpdate) Empty() bool {
	if u.Name != nil || u.Email != nil || u.Phone != nil || u.Company != nil ||
		u.Position != nil || u.Address != nil || u.Notes != nil || u.Status != nil {
		return false
	}
	for name := range u.Nulls {
		if nullableUpdateFields[name] {
			return false
		}
	}
	return true
}

// Apply copies the present fields onto c, clears the optional fields sent
// as null and leaves the rest untouched.
func (u CustomerUpdate) Apply(c *models.Customer) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	setOptional(&c.Phone, u.Phone, u.Nulls["phone"])
	setOptional(&c.Company, u.Company, u.Nulls["company"])
	setOptional(&c.Position, u.Position, u.Nulls["position"])
	setOptional(&c.Address, u.Address, u.Nulls["address"])
	setOptional(&c.Notes, u.Notes, u.Nulls["notes"])
	if u.Status != nil {
		c.Status = models.CustomerStatus(*u.Status)
	}
}

func setOptional(dst **string, v *string, null bool) {
	switch {
	case v != nil:
		*dst = v
	case null:
		*dst = nil
	}
}

type CustomerResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	Company   *string    `json:"company"`
	Position  *string    `json:"position"`
	Address   *string    `json:"address"`
	Notes     *string    `json:"notes"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func NewCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Position:  c.Position,
		Address:   c.Address,
		Notes:     c.Notes,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCustomerResponses(cs []*models.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCustomerResponse(c))
	}
	return out
}

// ExportResponse points at a published CSV export.
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
