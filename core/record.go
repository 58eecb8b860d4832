package core

import (
	"fmt"
	"sync"
)

// Record is the ordered conversation log owned by one agent instance. Item
// order is chronological and is the history fed to the model; identifiers are
// unique within a record.
//
// Contract:
//   - Append is atomic: either every item is appended or none is
//   - Items returns a defensive copy
//   - Copy produces an independent record; items are copied, never moved
//
// Access is guarded by an RWMutex so that a deployment which overlaps turns can
// still serialize appends.
type Record struct {
	owner string
	mu    sync.RWMutex
	items []Item
	ids   map[string]struct{}
}

// NewRecord creates an empty record owned by the named agent.
func NewRecord(owner string) *Record {
	return &Record{owner: owner, ids: map[string]struct{}{}}
}

// NewRecordFromItems wraps items restored from an outside source without
// validating them. The result may hold empty or repeated identifiers; merge
// code reading such a record has to tolerate that.
func NewRecordFromItems(owner string, items []Item) *Record {
	r := NewRecord(owner)
	r.items = make([]Item, 0, len(items))
	for _, it := range items {
		r.items = append(r.items, it.Clone())
		if it.ID != "" {
			r.ids[it.ID] = struct{}{}
		}
	}
	return r
}

// Owner returns the name of the owning agent.
func (r *Record) Owner() string { return r.owner }

// Append adds items in order. Items without an identifier get a fresh one. An
// identifier that is already present (in the record or earlier in items)
// rejects the whole call with ErrDuplicateItem.
func (r *Record) Append(items ...Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ID == "" {
			it.ID = NewID()
		}
		if _, dup := r.ids[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID)
		}
		seen[it.ID] = struct{}{}
		staged = append(staged, it.Clone())
	}

	for _, it := range staged {
		r.items = append(r.items, it)
		r.ids[it.ID] = struct{}{}
	}
	return nil
}

// Items returns a snapshot of the record.
func (r *Record) Items() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, len(r.items))
	for i, it := range r.items {
		out[i] = it.Clone()
	}
	return out
}

// Len returns the number of items.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// IDs returns the set of identifiers present in the record.
func (r *Record) IDs() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[string]struct{}, len(r.ids))
	for id := range r.ids {
		ids[id] = struct{}{}
	}
	return ids
}

// Has reports whether an item with the identifier is present.
func (r *Record) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[id]
	return ok
}

// Last returns the most recent item.
func (r *Record) Last() (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return Item{}, false
	}
	return r.items[len(r.items)-1].Clone(), true
}

// CopyOptions selects which items Copy keeps.
type CopyOptions struct {
	// ExcludeInstructions drops system-role priming items.
	ExcludeInstructions bool
	// ExcludeFunctionCalls drops function call and function response items.
	ExcludeFunctionCalls bool
}

// Copy returns an independent filtered record with the same owner. Items keep
// their identifiers, malformed ones included.
func (r *Record) Copy(opts CopyOptions) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kept := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		if opts.ExcludeInstructions && it.IsInstruction() {
			continue
		}
		if opts.ExcludeFunctionCalls && it.IsToolItem() {
			continue
		}
		kept = append(kept, it)
	}
	return NewRecordFromItems(r.owner, kept)
}

// Truncate keeps at most maxItems of the most recent items, in place, and
// returns the receiver for chaining. The window never opens on a tool item:
// leading function calls or outputs whose counterpart fell outside the window
// are dropped too. A non-positive maxItems empties the record.
func (r *Record) Truncate(maxItems int) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if maxItems < 0 {
		maxItems = 0
	}
	window := r.items
	if len(window) > maxItems {
		window = window[len(window)-maxItems:]
	}
	for len(window) > 0 && window[0].IsToolItem() {
		window = window[1:]
	}

	r.items = append([]Item(nil), window...)
	r.ids = make(map[string]struct{}, len(r.items))
	for _, it := range r.items {
		if it.ID != "" {
			r.ids[it.ID] = struct{}{}
		}
	}
	return r
}
