package artifact

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/agentrelay/core"
)

var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	svc := NewInMemoryStore()
	data := []byte("hello")
	if err := svc.Save("s1", "a1", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	data[0] = 'H'
	out, err := svc.Get("s1", "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" {
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	out[0] = 'x'
	out2, _ := svc.Get("s1", "a1")
	if string(out2) != "hello" {
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	svc := NewInMemoryStore()
	_ = svc.Save("s1", "b", []byte("2"))
	_ = svc.Save("s1", "a", []byte("1"))

	ids, _ := svc.List("s1")
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
	if err := svc.Delete("s1", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete("s1", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get("s1", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete("missing", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown session, got %v", err)
	}
}

func TestInMemoryStore_DeleteSession(t *testing.T) {
	svc := NewInMemoryStore()
	_ = svc.Save("s1", "a", []byte("1"))
	_ = svc.Save("s2", "a", []byte("2"))
	_ = svc.DeleteSession("s1")
	if ids, _ := svc.List("s1"); len(ids) != 0 {
		t.Fatalf("session not dropped: %v", ids)
	}
	if _, err := svc.Get("s2", "a"); err != nil {
		t.Fatalf("other session affected: %v", err)
	}
}

func TestInMemoryStore_MaxSize(t *testing.T) {
	svc := NewInMemoryStore(func(o *InMemoryOptions) { o.MaxSize = 4 })
	if err := svc.Save("s1", "a", []byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("frame-%d", i)
			_ = svc.Save("s1", id, []byte{byte(i)})
			_, _ = svc.Get("s1", id)
		}(i)
	}
	wg.Wait()
	if ids, _ := svc.List("s1"); len(ids) != 20 {
		t.Fatalf("expected 20 artifacts, got %d", len(ids))
	}
}
