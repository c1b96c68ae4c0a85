package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arc/portal-engine/store"
)

// failing always errors: simulates disabled or broken storage.
type failing struct{}

func (failing) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}
func (failing) Save(context.Context, string, []byte) error {
	return errors.New("storage unavailable")
}
func (failing) Delete(context.Context, string) error {
	return errors.New("storage unavailable")
}

type slice struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadJSON_RoundTrip(t *testing.T) {
	gw := store.NewMemory()
	ctx := context.Background()

	store.SaveJSON(ctx, gw, "k", slice{Name: "notes", Count: 3})

	got, ok := store.LoadJSON[slice](ctx, gw, "k")
	if !ok {
		t.Fatal("expected ok load")
	}
	if got != (slice{Name: "notes", Count: 3}) {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestLoadJSON_AbsentKey(t *testing.T) {
	gw := store.NewMemory()

	if _, ok := store.LoadJSON[slice](context.Background(), gw, "k"); ok {
		t.Error("absent key must yield ok=false, not an error")
	}
}

func TestLoadJSON_MalformedBlob(t *testing.T) {
	gw := store.NewMemory()
	ctx := context.Background()

	gw.Save(ctx, "k", []byte("{broken"))

	if _, ok := store.LoadJSON[slice](ctx, gw, "k"); ok {
		t.Error("malformed blob must yield ok=false")
	}
}

func TestHelpers_SwallowStorageFailures(t *testing.T) {
	ctx := context.Background()

	// None of these may panic or surface an error.
	store.SaveJSON(ctx, failing{}, "k", slice{Name: "x"})
	store.Remove(ctx, failing{}, "k")
	if _, ok := store.LoadJSON[slice](ctx, failing{}, "k"); ok {
		t.Error("failed load must yield ok=false")
	}

	// Unserializable values are swallowed too.
	store.SaveJSON(ctx, store.NewMemory(), "k", make(chan int))
}
