package session

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"artshop/internal/catalog"
	"artshop/internal/topics"
	"artshop/pkg/models"
	"artshop/pkg/money"
)

// Loader builds a fresh gallery collection.
type Loader interface {
	LoadGalleries(ctx context.Context) *catalog.Collection
}

// Notifier receives a state event after every mutation.
type Notifier interface {
	Publish(sessionID string, v any)
}

// State is the UI state of one visitor session: expand selectors, modal
// flags, the item shown in the detail modal, the cart, and the session's
// own gallery collection.
type State struct {
	id       string
	notifier Notifier

	galleries atomic.Pointer[catalog.Collection]

	// pubMu is taken before mu is released, so events leave in Seq order.
	pubMu sync.Mutex

	mu         sync.Mutex
	seq        uint64
	sel        topics.Selection
	detailOpen bool
	detail     models.GalleryItem
	cartOpen   bool
	cart       []models.CartItem
	lastSeen   time.Time
}

// Snapshot is a copy of a State at one point in time.
type Snapshot struct {
	ID            string             `json:"id"`
	Seq           uint64             `json:"seq"`
	Selection     topics.Selection   `json:"selection"`
	DetailOpen    bool               `json:"detail_open"`
	CurrentDetail models.GalleryItem `json:"current_detail"`
	CartOpen      bool               `json:"cart_open"`
	Cart          []models.CartItem  `json:"cart"`
	CartCount     int                `json:"cart_count"`
	CartTotal     float64            `json:"cart_total"`
	TotalLabel    string             `json:"total_label"`
}

// Receipt reports what a checkout took out of the cart.
type Receipt struct {
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

func NewState(id string, notifier Notifier) *State {
	return &State{
		id:       id,
		notifier: notifier,
		cart:     []models.CartItem{},
		lastSeen: time.Now(),
	}
}

func (s *State) ID() string { return s.id }

// Galleries returns the collection published by the last load.
func (s *State) Galleries() *catalog.Collection {
	return s.galleries.Load()
}

// Reload builds a new collection and swaps it in whole; readers never see
// a partially built one.
func (s *State) Reload(ctx context.Context, loader Loader) *catalog.Collection {
	coll := loader.LoadGalleries(ctx)
	s.galleries.Store(coll)
	s.touch()
	s.emit(EventGalleriesLoaded)
	return coll
}

// ToggleTopic activates name, or clears it when already active. Either way
// the subtopic and gallery selectors are cleared.
func (s *State) ToggleTopic(name string) {
	s.update(EventTopicToggled, func() {
		if s.sel.Topic == name {
			s.sel.Topic = ""
		} else {
			s.sel.Topic = name
		}
		s.sel.Subtopic = ""
		s.sel.Gallery = ""
	})
}

// ToggleSubtopic is ToggleTopic one level down; it clears the gallery selector.
func (s *State) ToggleSubtopic(name string) {
	s.update(EventSubtopicToggled, func() {
		if s.sel.Subtopic == name {
			s.sel.Subtopic = ""
		} else {
			s.sel.Subtopic = name
		}
		s.sel.Gallery = ""
	})
}

func (s *State) ToggleGallery(name string) {
	s.update(EventGalleryToggled, func() {
		if s.sel.Gallery == name {
			s.sel.Gallery = ""
		} else {
			s.sel.Gallery = name
		}
	})
}

func (s *State) ShowDetail(item models.GalleryItem) {
	s.update(EventDetailShown, func() {
		s.detail = item
		s.detailOpen = true
	})
}

// CloseDetail hides the detail modal; the item stays current.
func (s *State) CloseDetail() {
	s.update(EventDetailClosed, func() {
		s.detailOpen = false
	})
}

// AddToCart appends a copy of the current detail item, closes the detail
// modal and opens the cart. With no item ever shown it adds the empty
// placeholder item.
func (s *State) AddToCart() {
	s.update(EventCartAdded, func() {
		s.cart = append(s.cart, s.detail)
		s.detailOpen = false
		s.cartOpen = true
	})
}

func (s *State) OpenCart() {
	s.update(EventCartOpened, func() { s.cartOpen = true })
}

func (s *State) CloseCart() {
	s.update(EventCartClosed, func() { s.cartOpen = false })
}

func (s *State) ClearCart() {
	s.update(EventCartCleared, func() { s.cart = []models.CartItem{} })
}

// RemoveFromCart drops the item at index; out of range indexes are ignored.
func (s *State) RemoveFromCart(index int) {
	s.update(EventCartRemoved, func() {
		if index < 0 || index >= len(s.cart) {
			return
		}
		s.cart = slices.Delete(s.cart, index, index+1)
	})
}

// Checkout closes and empties the cart and returns what it held.
func (s *State) Checkout() Receipt {
	var r Receipt
	s.update(EventCheckedOut, func() {
		r = Receipt{
			Items: s.cart,
			Count: len(s.cart),
			Total: cartTotal(s.cart),
		}
		s.cartOpen = false
		s.cart = []models.CartItem{}
	})
	return r
}

func (s *State) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cart)
}

func (s *State) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	total := cartTotal(s.cart)
	return Snapshot{
		ID:            s.id,
		Seq:           s.seq,
		Selection:     s.sel,
		DetailOpen:    s.detailOpen,
		CurrentDetail: s.detail,
		CartOpen:      s.cartOpen,
		Cart:          slices.Clone(s.cart),
		CartCount:     len(s.cart),
		CartTotal:     total,
		TotalLabel:    money.Format(total),
	}
}

// LastSeen is when the session was last mutated or reloaded.
func (s *State) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *State) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *State) update(kind string, fn func()) {
	s.mu.Lock()
	fn()
	s.lastSeen = time.Now()
	s.commitLocked(kind)
}

func (s *State) emit(kind string) {
	s.mu.Lock()
	s.commitLocked(kind)
}

// commitLocked bumps Seq, snapshots, and publishes. It is entered with mu
// held and returns with it released.
func (s *State) commitLocked(kind string) {
	s.seq++
	snap := s.snapshotLocked()
	s.pubMu.Lock()
	s.mu.Unlock()

	defer s.pubMu.Unlock()
	s.publish(kind, snap)
}

func (s *State) publish(kind string, snap Snapshot) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(s.id, Event{
		Type:      kind,
		SessionID: s.id,
		State:     snap,
		At:        time.Now().UTC(),
	})
}

func cartTotal(items []models.CartItem) float64 {
	prices := make([]float64, len(items))
	for i, it := range items {
		prices[i] = it.Price
	}
	return money.Sum(prices)
}
