// internal/errors/errors.go
package appErrors

import "fmt"

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrCustomerNotFound is returned when no customer row matches an ID.
type ErrCustomerNotFound struct {
	CustomerID string
}

func (e *ErrCustomerNotFound) Error() string {
	return fmt.Sprintf("customer %s not found", e.CustomerID)
}

func NewCustomerNotFound(id string) error {
	return &ErrCustomerNotFound{CustomerID: id}
}

// ErrModelNotFound is returned when an unknown model name is requested.
type ErrModelNotFound struct {
	Name string
}

func (e *ErrModelNotFound) Error() string {
	return fmt.Sprintf("model %q not found", e.Name)
}

func NewModelNotFound(name string) error {
	return &ErrModelNotFound{Name: name}
}
