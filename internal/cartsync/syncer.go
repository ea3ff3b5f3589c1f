package cartsync

import (
	"context"
	"errors"
	"sync"

	"github.com/baxeinwear/storefront-backend/internal/cartstore"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

// ErrSaveInProgress is returned by a Remote when the server refused the save
// because another save for the same customer holds the cart lock.
var ErrSaveInProgress = errors.New("cart save already in progress")

// Remote is the server side of the cart.
type Remote interface {
	FetchCart(ctx context.Context, userID string) ([]cartstore.Item, error)
	SaveCart(ctx context.Context, userID string, items []cartstore.Item) error
}

// Syncer keeps a cartstore.Store and the server cart in step for one session.
// It hydrates once per user and pushes every later local change.
type Syncer struct {
	store  *cartstore.Store
	remote Remote
	logg   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	userID      string
	hydratedFor string
	skipNext    bool
	inFlight    bool

	wg          sync.WaitGroup
	unsubscribe func()
}

// New wires the syncer to store. ctx bounds every push; cancel it (or call
// Close) to abort saves in flight.
func New(ctx context.Context, store *cartstore.Store, remote Remote, logg *logger.Logger) *Syncer {
	ctx, cancel := context.WithCancel(ctx)
	s := &Syncer{
		store:  store,
		remote: remote,
		logg:   logg,
		ctx:    ctx,
		cancel: cancel,
	}
	s.unsubscribe = store.Subscribe(s.onChange)
	return s
}

// Hydrate loads the server cart into the local store when userID is
// authenticated, the local store is empty and this user has not been hydrated
// yet. Failures are logged and leave the local store untouched. A canceled ctx
// discards the response and allows a later retry.
func (s *Syncer) Hydrate(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	s.mu.Lock()
	if s.userID != userID {
		s.userID = userID
		s.hydratedFor = ""
		s.skipNext = false
	}
	if s.hydratedFor == userID || !s.store.IsEmpty() {
		s.mu.Unlock()
		return
	}
	s.hydratedFor = userID
	s.mu.Unlock()

	ctx = s.withUser(ctx, userID)
	items, err := s.remote.FetchCart(ctx, userID)
	if ctx.Err() != nil {
		s.mu.Lock()
		if s.hydratedFor == userID {
			s.hydratedFor = ""
		}
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logError(ctx, "cart.hydrate_failed", err)
		return
	}

	s.mu.Lock()
	if s.userID != userID {
		s.mu.Unlock()
		return
	}
	s.skipNext = true
	s.mu.Unlock()

	s.store.Replace(items)
	if s.logg != nil {
		s.logg.Debug(ctx, "cart.hydrated")
	}
}

// Logout forgets the current user, resets the hydration marker and empties the
// local cart without pushing it.
func (s *Syncer) Logout() {
	s.mu.Lock()
	s.userID = ""
	s.hydratedFor = ""
	s.skipNext = false
	s.mu.Unlock()

	s.store.Clear()
}

// Wait blocks until every save started so far has returned.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Close detaches from the store and aborts saves in flight.
func (s *Syncer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Syncer) onChange(items []cartstore.Item) {
	s.mu.Lock()
	userID := s.userID
	switch {
	case userID == "":
		s.mu.Unlock()
		return
	case s.skipNext:
		s.skipNext = false
		s.mu.Unlock()
		return
	case s.inFlight:
		s.mu.Unlock()
		if s.logg != nil {
			s.logg.Debug(s.withUser(s.ctx, userID), "cart.save_dropped")
		}
		return
	}
	s.inFlight = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.persist(userID, items)
}

func (s *Syncer) persist(userID string, items []cartstore.Item) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	ctx := s.withUser(s.ctx, userID)
	if err := s.remote.SaveCart(ctx, userID, items); err != nil {
		if errors.Is(err, ErrSaveInProgress) {
			if s.logg != nil {
				s.logg.Debug(ctx, "cart.save_dropped")
			}
			return
		}
		s.logError(ctx, "cart.save_failed", err)
	}
}

func (s *Syncer) withUser(ctx context.Context, userID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithUserID(ctx, userID)
}

func (s *Syncer) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
