package cart

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Container is the canonical in-memory cart. It owns the authoritative
// line-item list; the Store holds a serialized mirror rewritten wholesale
// after every mutation.
//
// Unlike the storefront it replaces, the stock ceiling is enforced inside
// Add itself, so no caller can push a quantity past the recorded stock.
type Container struct {
	mu    sync.Mutex
	items []LineItem
	store Store
}

// NewContainer creates a Container hydrated synchronously from store, so the
// first read already reflects prior session state.
func NewContainer(store Store) *Container {
	c := &Container{store: store}
	for _, it := range store.Load() {
		// Discard rows a buggy or hand-edited state file could carry.
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

// Add merges item into the cart. When a line with the same ID exists its
// quantity is incremented by item.Quantity and its stock ceiling refreshed;
// otherwise a new line is appended. The resulting quantity must not exceed
// the item's stock; a rejected add leaves the cart untouched.
func (c *Container) Add(item LineItem) error {
	if item.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.items {
		if existing.ID != item.ID {
			continue
		}
		next := existing.Quantity + item.Quantity
		if item.Stock > 0 && next > item.Stock {
			return errors.Wrapf(ErrStockExceeded, "product %s: %d requested, %d in stock",
				item.ID, next, item.Stock)
		}
		c.items[i].Quantity = next
		c.items[i].Stock = item.Stock
		c.persist()
		return nil
	}

	if item.Stock > 0 && item.Quantity > item.Stock {
		return errors.Wrapf(ErrStockExceeded, "product %s: %d requested, %d in stock",
			item.ID, item.Quantity, item.Stock)
	}
	c.items = append(c.items, item)
	c.persist()
	return nil
}

// Remove deletes the line matching id. Removing an absent id is a no-op.
func (c *Container) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist()
			return
		}
	}
}

// Decrease decrements the quantity of id by one. Reaching zero removes the
// line entirely; a zero or negative quantity is never observable or
// persisted. Decreasing an absent id is a no-op.
func (c *Container) Decrease(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.ID != id {
			continue
		}
		if it.Quantity <= 1 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else {
			c.items[i].Quantity--
		}
		c.persist()
		return
	}
}

// Clear empties the cart.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.persist()
}

// ClearSubmitted subtracts the snapshot's quantities from the cart, removing
// lines that reach zero. Lines added or increased after the snapshot was
// taken survive, so a successful submission never wipes concurrent additions.
func (c *Container) ClearSubmitted(snapshot []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	submitted := make(map[string]int, len(snapshot))
	for _, it := range snapshot {
		submitted[it.ID] += it.Quantity
	}

	kept := c.items[:0]
	for _, it := range c.items {
		it.Quantity -= submitted[it.ID]
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.persist()
}

// Items returns a snapshot of the cart in insertion order.
func (c *Container) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines in the cart.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subtotal returns the sum of price multiplied by quantity over all lines.
func (c *Container) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// persist mirrors the current items to the store. Caller holds c.mu.
func (c *Container) persist() {
	snapshot := make([]LineItem, len(c.items))
	copy(snapshot, c.items)
	c.store.Save(snapshot)
}
