package types

import (
	"database/sql/driver"
	"strings"
)

// Address is the postal address kept on a customer profile.
type Address struct {
	PostalCode string  `json:"cep"`
	Street     string  `json:"rua"`
	Number     string  `json:"numero"`
	Complement *string `json:"complemento,omitempty"`
	District   string  `json:"bairro"`
	City       string  `json:"cidade"`
	State      string  `json:"estado"`
}

// IsZero reports whether no address field was filled in.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.Number) == "" &&
		strings.TrimSpace(a.District) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == ""
}

// Value stores the address as a JSON document.
func (a Address) Value() (driver.Value, error) {
	return jsonValue(a, "address")
}

// Scan decodes the JSON document.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	return scanJSON(value, a, "address")
}

// DeliveryAddress is the shipping snapshot frozen on an order. It is never
// rewritten after the order is created.
type DeliveryAddress struct {
	Address
	FullName string `json:"nomeCompleto"`
	Email    string `json:"email"`
	Phone    string `json:"telefone"`
}

// Value stores the snapshot as a JSON document.
func (d DeliveryAddress) Value() (driver.Value, error) {
	return jsonValue(d, "delivery address")
}

// Scan decodes the JSON document.
func (d *DeliveryAddress) Scan(value interface{}) error {
	if value == nil {
		*d = DeliveryAddress{}
		return nil
	}
	return scanJSON(value, d, "delivery address")
}
