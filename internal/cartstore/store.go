package cartstore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot carried by a cart line.
type Product struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"preco"`
	MerchantID uuid.UUID       `json:"lojistaId"`
	ImageURL   string          `json:"imagem,omitempty"`
}

// Item is one cart line.
type Item struct {
	ID            string  `json:"cartItemId"`
	Product       Product `json:"produto"`
	Quantity      int     `json:"quantidade"`
	SelectedColor string  `json:"corSelecionada,omitempty"`
	SelectedSize  string  `json:"tamanhoSelecionado,omitempty"`
}

// Subtotal returns price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemID builds the de-duplication key of a cart line.
func ItemID(productID uuid.UUID, size, color string) string {
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}

// Listener receives a copy of the items after every mutation.
type Listener func(items []Item)

// Store is an in-memory cart safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	items     []Item
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{listeners: map[int]Listener{}}
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Add increments the matching line or appends a new one with quantity 1.
func (s *Store) Add(product Product, size, color string) {
	s.mutate(func() {
		id := ItemID(product.ID, size, color)
		for idx := range s.items {
			if s.items[idx].ID == id {
				s.items[idx].Quantity++
				return
			}
		}
		s.items = append(s.items, Item{
			ID:            id,
			Product:       product,
			Quantity:      1,
			SelectedColor: color,
			SelectedSize:  size,
		})
	})
}

func (s *Store) Remove(id string) {
	s.mutate(func() { s.removeLocked(id) })
}

// SetQuantity sets the line quantity; n <= 0 removes the line.
func (s *Store) SetQuantity(id string, n int) {
	s.mutate(func() {
		if n <= 0 {
			s.removeLocked(id)
			return
		}
		for idx := range s.items {
			if s.items[idx].ID == id {
				s.items[idx].Quantity = n
				return
			}
		}
	})
}

func (s *Store) Clear() {
	s.mutate(func() { s.items = nil })
}

// Replace swaps the whole item list, used when hydrating from the server.
func (s *Store) Replace(items []Item) {
	s.mutate(func() {
		s.items = make([]Item, 0, len(items))
		for _, item := range items {
			if item.ID == "" {
				item.ID = ItemID(item.Product.ID, item.SelectedSize, item.SelectedColor)
			}
			if item.Quantity <= 0 {
				continue
			}
			s.items = append(s.items, item)
		}
	})
}

// Items returns a copy of the current lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) removeLocked(id string) {
	for idx := range s.items {
		if s.items[idx].ID == id {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return
		}
	}
}

func (s *Store) snapshotLocked() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// mutate applies fn under the lock and notifies listeners after releasing it.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snapshot := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}
