package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, parents first, for schema bootstrapping in
// dev and tests. Production schema comes from the SQL migrations.
func All() []any {
	return []any{
		&User{},
		&Customer{},
		&Merchant{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Payment{},
	}
}
