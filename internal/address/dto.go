package address

import (
	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/db/models"
)

// Input is the payload for creating or replacing an address.
type Input struct {
	Name       string  `json:"name" validate:"required,min=1,max=120"`
	Phone      string  `json:"phone" validate:"required,min=7,max=20"`
	Line1      string  `json:"line1" validate:"required,min=1,max=200"`
	Line2      *string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string  `json:"city" validate:"required,min=1,max=100"`
	State      string  `json:"state" validate:"required,min=1,max=100"`
	PostalCode string  `json:"postalCode" validate:"required,min=4,max=10"`
	Country    string  `json:"country" validate:"omitempty,len=2"`
	IsDefault  bool    `json:"isDefault"`
}

// DTO is the wire representation of a saved address.
type DTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"isDefault"`
}

func toDTO(address *models.Address) *DTO {
	if address == nil {
		return nil
	}
	return &DTO{
		ID:         address.ID,
		Name:       address.Name,
		Phone:      address.Phone,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		State:      address.State,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		IsDefault:  address.IsDefault,
	}
}

// ToModel builds an Address owned by userID from the input.
func (in Input) ToModel(userID uuid.UUID) *models.Address {
	country := in.Country
	if country == "" {
		country = "IN"
	}
	return &models.Address{
		UserID:     userID,
		Name:       in.Name,
		Phone:      in.Phone,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    country,
		IsDefault:  in.IsDefault,
	}
}
