package service

import (
	"context"
	"sync"
	"testing"

	"github.com/NewtonYuan/BYS.FE/model"
	"github.com/NewtonYuan/BYS.FE/report"
)

// memorySlots is an in-memory SlotStorage for tests
type memorySlots struct {
	mu    sync.Mutex
	data  map[string][]byte
	reads int
}

func newMemorySlots() *memorySlots {
	return &memorySlots{data: make(map[string][]byte)}
}

func (m *memorySlots) ReadSlot(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	data, ok := m.data[key]
	return data, ok, nil
}

func (m *memorySlots) WriteSlot(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memorySlots) ClearSlot(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func testReport() *model.LeaseReport {
	r := report.Normalize(map[string]any{
		"leaseSummary": map[string]any{"address": "12 Example St", "tenancyType": "periodic"},
	})
	return &r
}

func TestReportCacheReadEmpty(t *testing.T) {
	cache := NewReportCache(newMemorySlots(), "reports/last-report")

	rep, err := cache.Read(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rep != nil {
		t.Error("Expected nil report for empty slot")
	}
}

func TestReportCacheWriteThenRead(t *testing.T) {
	cache := NewReportCache(newMemorySlots(), "reports/last-report")
	ctx := context.Background()

	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rep, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rep == nil {
		t.Fatal("Expected report after write")
	}
	if rep.LeaseSummary.Address == nil || *rep.LeaseSummary.Address != "12 Example St" {
		t.Errorf("Expected persisted address, got %v", rep.LeaseSummary.Address)
	}

	// Another owner's slot stays empty
	other, err := cache.Read(ctx, "bob")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if other != nil {
		t.Error("Expected no report for another owner")
	}
}

func TestReportCacheMemoizesUnchangedSlot(t *testing.T) {
	cache := NewReportCache(newMemorySlots(), "reports/last-report")
	ctx := context.Background()

	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	first, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	second, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	// Identical raw bytes must return the memoized value, not a
	// re-normalized copy.
	if first != second {
		t.Error("Expected repeated reads of unchanged slot to return the memoized report")
	}
}

func TestReportCacheDetectsExternalChange(t *testing.T) {
	slots := newMemorySlots()
	cache := NewReportCache(slots, "reports/last-report")
	ctx := context.Background()

	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	before, _ := cache.Read(ctx, "alice")

	// Simulate another instance replacing the slot
	err := slots.WriteSlot(ctx, "reports/last-report/alice.json", []byte(`{"leaseSummary":{"address":"99 Other Rd"}}`))
	if err != nil {
		t.Fatalf("WriteSlot failed: %v", err)
	}

	after, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if after == before {
		t.Error("Expected changed slot to be re-normalized")
	}
	if after.LeaseSummary.Address == nil || *after.LeaseSummary.Address != "99 Other Rd" {
		t.Errorf("Expected new address, got %v", after.LeaseSummary.Address)
	}
}

func TestReportCacheCorruptSlotCleared(t *testing.T) {
	slots := newMemorySlots()
	cache := NewReportCache(slots, "reports/last-report")
	ctx := context.Background()

	key := "reports/last-report/alice.json"
	if err := slots.WriteSlot(ctx, key, []byte("{not json")); err != nil {
		t.Fatalf("WriteSlot failed: %v", err)
	}

	rep, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rep != nil {
		t.Error("Expected nil report for corrupt slot")
	}

	if _, ok := slots.data[key]; ok {
		t.Error("Expected corrupt slot to be cleared")
	}
}

func TestReportCacheWriteNilClears(t *testing.T) {
	slots := newMemorySlots()
	cache := NewReportCache(slots, "reports/last-report")
	ctx := context.Background()

	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := cache.Write(ctx, "alice", nil); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	rep, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rep != nil {
		t.Error("Expected nil report after clear")
	}
	if len(slots.data) != 0 {
		t.Error("Expected slot storage to be empty after clear")
	}
}

func TestReportCacheSubscribe(t *testing.T) {
	cache := NewReportCache(newMemorySlots(), "reports/last-report")
	ctx := context.Background()

	aliceNotified := 0
	bobNotified := 0
	unsubscribe := cache.Subscribe("alice", func() { aliceNotified++ })
	cache.Subscribe("bob", func() { bobNotified++ })

	// Notification is synchronous: counted by the time Write returns
	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if aliceNotified != 1 {
		t.Errorf("Expected 1 notification, got %d", aliceNotified)
	}
	if bobNotified != 0 {
		t.Errorf("Expected no notification for other owner, got %d", bobNotified)
	}

	// Clearing notifies too
	if err := cache.Write(ctx, "alice", nil); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if aliceNotified != 2 {
		t.Errorf("Expected 2 notifications, got %d", aliceNotified)
	}

	unsubscribe()
	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if aliceNotified != 2 {
		t.Errorf("Expected no notification after unsubscribe, got %d", aliceNotified)
	}
}

func TestReportCacheInvalidate(t *testing.T) {
	slots := newMemorySlots()
	cache := NewReportCache(slots, "reports/last-report")
	ctx := context.Background()

	if err := cache.Write(ctx, "alice", testReport()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	before, _ := cache.Read(ctx, "alice")

	notified := 0
	cache.Subscribe("alice", func() { notified++ })

	cache.Invalidate("alice")
	if notified != 1 {
		t.Errorf("Expected 1 notification from Invalidate, got %d", notified)
	}

	// Memo was dropped, so the next read re-normalizes even though
	// the bytes are unchanged.
	after, err := cache.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if after == before {
		t.Error("Expected Invalidate to drop the memo")
	}
}
