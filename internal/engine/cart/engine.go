// Package cart reconciles two cart stores behind one interface: the
// server-side cart of a signed-in customer and the device-local cart of a
// guest. Which store an operation hits is decided fresh on every call from
// the current session, never cached, so a sign-in or sign-out between two
// taps lands each tap in the right store.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/engine/gateway"
	"github.com/stylemate/platform/internal/engine/localstore"
	"github.com/stylemate/platform/internal/engine/session"
	"github.com/stylemate/platform/internal/metrics"
	"github.com/stylemate/platform/internal/models"
)

// ErrSignInRequired gates checkout: a guest cart can hold items but never
// place an order. Callers route to the auth prompt.
var ErrSignInRequired = errors.New("sign in to continue to checkout")

// Notifier surfaces cart outcomes to whatever layer hosts the engine,
// typically as dismissible toasts. Implementations must not block.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Error(string)   {}

const guestCartKey = "guest_cart"

// GuestCartItem is a device-local cart line. Stock is unknown client-side, so
// quantity has no stock ceiling here; the server clamps on merge.
type GuestCartItem struct {
	ProductID    uuid.UUID  `json:"productId"`
	ProductName  string     `json:"productName"`
	ProductImage string     `json:"productImage"`
	Quantity     int        `json:"quantity"`
	UnitPrice    int64      `json:"unitPrice"`
	SalonID      *uuid.UUID `json:"salonId,omitempty"`
}

type guestCartDoc struct {
	Items []GuestCartItem `json:"items"`
}

// LineSource tags which store a projected line came from.
type LineSource string

const (
	SourceServer LineSource = "server"
	SourceGuest  LineSource = "guest"
)

// Line is the unified read-only projection over both stores. ID carries the
// cart item id for server lines and the product id for guest lines; the two
// identifier spaces stay distinct on purpose, mirroring Remove.
type Line struct {
	Source       LineSource
	ID           uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	ProductImage string
	Quantity     int
	UnitPrice    int64
	TotalPrice   int64
}

// Totals are derived from the active store on every read, never stored.
type Totals struct {
	ItemCount      int
	Subtotal       int64
	Tax            int64
	DeliveryCharge int64
	Total          int64
}

// Engine is the cart reconciliation engine.
type Engine struct {
	api      *gateway.Client
	store    *localstore.Store
	session  session.Session
	logger   *slog.Logger
	notifier Notifier

	// merging makes the guest-to-account merge exactly-once: the transition
	// handler may fire again before the first merge finishes.
	merging atomic.Bool

	// wasCustomer tracks the previous session verdict so HandleAuthChange can
	// detect the unauthenticated -> customer transition.
	mu          sync.Mutex
	wasCustomer bool
}

func NewEngine(api *gateway.Client, store *localstore.Store, sess session.Session, logger *slog.Logger, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &Engine{
		api:      api,
		store:    store,
		session:  sess,
		logger:   logger,
		notifier: notifier,
	}
}

// serverMode re-evaluates the mode rule. Called at the top of every operation.
func (e *Engine) serverMode() bool {
	return session.IsCustomer(e.session)
}

// Lines returns the unified projection of whichever store is active.
func (e *Engine) Lines(ctx context.Context) ([]Line, error) {
	if e.serverMode() {
		cart, err := e.fetchServerCart(ctx)
		if err != nil {
			return nil, err
		}

		lines := make([]Line, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, Line{
				Source:       SourceServer,
				ID:           item.ID,
				ProductID:    item.ProductID,
				ProductName:  item.ProductName,
				ProductImage: item.ProductImage,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
				TotalPrice:   item.UnitPrice * int64(item.Quantity),
			})
		}

		return lines, nil
	}

	items, err := e.guestItems()
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			Source:       SourceGuest,
			ID:           item.ProductID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.UnitPrice * int64(item.Quantity),
		})
	}

	return lines, nil
}

// Totals derives item count, subtotal, tax and total from the active store.
func (e *Engine) Totals(ctx context.Context) (Totals, error) {
	lines, err := e.Lines(ctx)
	if err != nil {
		return Totals{}, err
	}

	var t Totals
	for _, line := range lines {
		t.ItemCount += line.Quantity
		t.Subtotal += line.TotalPrice
	}

	t.Tax = models.TaxOn(t.Subtotal)
	t.DeliveryCharge = models.DeliveryCharge
	t.Total = t.Subtotal + t.Tax + t.DeliveryCharge

	return t, nil
}

// Add puts one unit of product in the cart. Server mode posts and drops the
// cached copy; guest mode does a whole-document read-modify-write, bumping the
// quantity when the product is already present so the cart never holds two
// rows for one product.
func (e *Engine) Add(ctx context.Context, product *models.Product) error {
	if e.serverMode() {
		err := e.api.Send(ctx, "POST", "/api/v1/cart",
			models.AddCartItemRequest{ProductID: product.ID, Quantity: 1}, nil)
		if err != nil {
			e.logger.Warn("Add to cart failed", "productId", product.ID.String(), "error", err.Error())
			e.notifier.Error(writeFailureMessage(err, "Could not add "+product.Name+" to your cart"))
			return err
		}

		e.notifier.Success(product.Name + " added to cart")

		return nil
	}

	var doc guestCartDoc
	err := e.store.Update(guestCartKey, &doc, func(bool) error {
		for i := range doc.Items {
			if doc.Items[i].ProductID == product.ID {
				doc.Items[i].Quantity++
				return nil
			}
		}

		doc.Items = append(doc.Items, GuestCartItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			Quantity:     1,
			UnitPrice:    product.Price,
			SalonID:      product.SalonID,
		})

		return nil
	})
	if err != nil {
		e.logger.Warn("Guest cart add failed", "productId", product.ID.String(), "error", err.Error())
		e.notifier.Error("Could not add " + product.Name + " to your cart")
		return err
	}

	e.notifier.Success(product.Name + " added to cart")

	return nil
}

// Remove deletes a line. The id means a cart item id in server mode and a
// product id in guest mode. Removing an absent guest product is a no-op.
func (e *Engine) Remove(ctx context.Context, id uuid.UUID) error {
	if e.serverMode() {
		return e.api.Send(ctx, "DELETE", "/api/v1/cart/items/"+id.String(), nil, nil)
	}

	var doc guestCartDoc
	return e.store.Update(guestCartKey, &doc, func(bool) error {
		kept := doc.Items[:0]
		for _, item := range doc.Items {
			if item.ProductID != id {
				kept = append(kept, item)
			}
		}
		doc.Items = kept

		return nil
	})
}

// UpdateQuantity sets a line's quantity. A non-positive quantity removes the
// line; in server mode that decision is the backend's.
func (e *Engine) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if e.serverMode() {
		return e.api.Send(ctx, "PUT", "/api/v1/cart/items/"+id.String(),
			models.UpdateCartItemRequest{Quantity: quantity}, nil)
	}

	var doc guestCartDoc
	return e.store.Update(guestCartKey, &doc, func(bool) error {
		kept := doc.Items[:0]
		for _, item := range doc.Items {
			if item.ProductID != id {
				kept = append(kept, item)
				continue
			}
			if quantity > 0 {
				item.Quantity = quantity
				kept = append(kept, item)
			}
		}
		doc.Items = kept

		return nil
	})
}

// Clear empties the cart. Server mode deletes line by line; guest mode wipes
// the single local key.
func (e *Engine) Clear(ctx context.Context) error {
	if !e.serverMode() {
		return e.store.Delete(guestCartKey)
	}

	cart, err := e.fetchServerCart(ctx)
	if err != nil {
		return err
	}

	for _, item := range cart.Items {
		if err := e.api.Send(ctx, "DELETE", "/api/v1/cart/items/"+item.ID.String(), nil, nil); err != nil {
			return err
		}
	}

	return nil
}

// Checkout proceeds only for a signed-in customer; a guest gets
// ErrSignInRequired and no request is ever issued.
func (e *Engine) Checkout(ctx context.Context) (*models.CheckoutSummary, error) {
	if !e.serverMode() {
		return nil, ErrSignInRequired
	}

	var summary models.CheckoutSummary
	if err := e.api.Send(ctx, "POST", "/api/v1/checkout", nil, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// HandleAuthChange re-evaluates the session and, on the unauthenticated to
// customer transition, merges the guest cart into the account exactly once.
func (e *Engine) HandleAuthChange(ctx context.Context) error {
	isCustomer := e.serverMode()

	e.mu.Lock()
	transitioned := isCustomer && !e.wasCustomer
	e.wasCustomer = isCustomer
	e.mu.Unlock()

	if !transitioned {
		return nil
	}

	return e.MergeGuestCartIntoAccount(ctx)
}

// MergeGuestCartIntoAccount transfers every guest line to the server cart.
// The merge flag makes re-entry a no-op while a merge is running. Per-item
// failures are logged and skipped; the guest store is cleared when the merge
// completes regardless, so a re-invocation cannot re-add items.
func (e *Engine) MergeGuestCartIntoAccount(ctx context.Context) error {
	items, err := e.guestItems()
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	if !e.merging.CompareAndSwap(false, true) {
		return nil
	}
	defer e.merging.Store(false)

	for _, item := range items {
		err := e.api.Send(ctx, "POST", "/api/v1/cart",
			models.AddCartItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}, nil)
		if err != nil {
			metrics.ObserveGuestMergeItem("failed")
			e.logger.Warn("Guest cart item skipped during merge",
				"productId", item.ProductID.String(), "error", err.Error())
			continue
		}

		metrics.ObserveGuestMergeItem("merged")
	}

	if err := e.store.Delete(guestCartKey); err != nil {
		e.logger.Error("Failed to clear guest cart after merge", "error", err.Error())
		return err
	}

	e.logger.Info("Guest cart merged into account", "items", len(items))
	e.notifier.Success("Your cart items were moved to your account")

	return nil
}

// writeFailureMessage prefers the server's own message for a failed write.
func writeFailureMessage(err error, fallback string) string {
	if msg, ok := gateway.ServerMessage(err); ok {
		return msg
	}

	return fallback
}

func (e *Engine) fetchServerCart(ctx context.Context) (*models.Cart, error) {
	var resp models.CartResponse
	if err := e.api.Get(ctx, "/api/v1/cart", nil, &resp); err != nil {
		return nil, err
	}

	return &resp.Cart, nil
}

func (e *Engine) guestItems() ([]GuestCartItem, error) {
	var doc guestCartDoc
	if _, err := e.store.Read(guestCartKey, &doc); err != nil {
		return nil, err
	}

	return doc.Items, nil
}
