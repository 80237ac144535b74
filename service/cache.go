package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/NewtonYuan/BYS.FE/model"
	"github.com/NewtonYuan/BYS.FE/report"
)

// SlotStorage is the durable key/value medium behind the report cache.
// MinioService implements it; tests use an in-memory fake.
type SlotStorage interface {
	ReadSlot(ctx context.Context, key string) ([]byte, bool, error)
	WriteSlot(ctx context.Context, key string, data []byte) error
	ClearSlot(ctx context.Context, key string) error
}

type slotMemo struct {
	raw    string
	report *model.LeaseReport
}

// ReportCache holds the last normalized report per owner. Reads are
// memoized by exact raw-byte equality, so repeated reads of unchanged
// storage never re-parse; a slot changed behind our back (another
// instance wrote it) is re-normalized on the next read. A stored
// payload that no longer parses as JSON is treated as "no report" and
// the slot is cleared.
type ReportCache struct {
	storage SlotStorage
	prefix  string

	mu        sync.Mutex
	memos     map[string]slotMemo
	listeners map[string]map[int]func()
	nextID    int
}

func NewReportCache(storage SlotStorage, slotPrefix string) *ReportCache {
	return &ReportCache{
		storage:   storage,
		prefix:    slotPrefix,
		memos:     make(map[string]slotMemo),
		listeners: make(map[string]map[int]func()),
	}
}

func (c *ReportCache) slotKey(owner string) string {
	return fmt.Sprintf("%s/%s.json", c.prefix, owner)
}

// Read returns the owner's last report, or nil when the slot is empty
// or corrupt.
func (c *ReportCache) Read(ctx context.Context, owner string) (*model.LeaseReport, error) {
	key := c.slotKey(owner)

	data, ok, err := c.storage.ReadSlot(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.forget(owner)
		return nil, nil
	}

	raw := string(data)

	c.mu.Lock()
	memo, has := c.memos[owner]
	c.mu.Unlock()
	if has && memo.raw == raw {
		return memo.report, nil
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		// Unreadable slot counts as "no report"; clear it so the next
		// read is cheap.
		_ = c.storage.ClearSlot(ctx, key)
		c.forget(owner)
		return nil, nil
	}

	normalized := report.Normalize(parsed)

	c.mu.Lock()
	c.memos[owner] = slotMemo{raw: raw, report: &normalized}
	c.mu.Unlock()

	return &normalized, nil
}

// Write persists the report (nil clears the slot), updates the memo
// and notifies this process's subscribers synchronously.
func (c *ReportCache) Write(ctx context.Context, owner string, rep *model.LeaseReport) error {
	key := c.slotKey(owner)

	if rep == nil {
		if err := c.storage.ClearSlot(ctx, key); err != nil {
			return err
		}
		c.forget(owner)
		c.notify(owner)
		return nil
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	if err := c.storage.WriteSlot(ctx, key, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.memos[owner] = slotMemo{raw: string(data), report: rep}
	c.mu.Unlock()

	c.notify(owner)
	return nil
}

// Subscribe registers a listener for an owner's slot. The returned
// function unsubscribes it.
func (c *ReportCache) Subscribe(owner string, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listeners[owner] == nil {
		c.listeners[owner] = make(map[int]func())
	}
	id := c.nextID
	c.nextID++
	c.listeners[owner][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners[owner], id)
	}
}

// Invalidate fans an external slot change (e.g. a bucket notification
// from another instance) out to subscribers so they re-read.
func (c *ReportCache) Invalidate(owner string) {
	c.forget(owner)
	c.notify(owner)
}

func (c *ReportCache) forget(owner string) {
	c.mu.Lock()
	delete(c.memos, owner)
	c.mu.Unlock()
}

func (c *ReportCache) notify(owner string) {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners[owner]))
	for _, fn := range c.listeners[owner] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
