package searchkit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kailas-cloud/searchkit/internal/db"
)

func TestProvider_BuildsOnceUnderRace(t *testing.T) {
	var builds atomic.Int32
	store := &mockStore{}
	p := &Provider{build: func(db.Config) (db.Store, error) {
		builds.Add(1)
		return store, nil
	}}

	const callers = 64
	var wg sync.WaitGroup
	got := make([]db.Store, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := p.get()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			got[i] = s
		}()
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
	for i, s := range got {
		if s != store {
			t.Errorf("caller %d got a different handle", i)
		}
	}
	if !p.Built() {
		t.Error("Built() = false after successful construction")
	}
}

func TestProvider_FailureIsCached(t *testing.T) {
	var builds atomic.Int32
	p := &Provider{build: func(db.Config) (db.Store, error) {
		builds.Add(1)
		return nil, errors.New("tls: bad certificate pool")
	}}

	for i := 0; i < 3; i++ {
		_, err := p.get()
		f, ok := AsFailure(err)
		if !ok {
			t.Fatalf("want *Failure, got %T", err)
		}
		if f.Kind != KindConfiguration {
			t.Errorf("Kind = %s, want configuration", f.Kind)
		}
		if !errors.Is(err, ErrConfiguration) {
			t.Error("expected errors.Is(err, ErrConfiguration)")
		}
	}
	if n := builds.Load(); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
	if p.Built() {
		t.Error("Built() = true after failed construction")
	}
}

func TestClient_LazyConstruction(t *testing.T) {
	store := &mockStore{countFn: func(context.Context, string, []byte) (int64, error) { return 7, nil }}
	c := testClient(t, store)

	if c.Provider().Built() {
		t.Fatal("handle built before first use")
	}
	n, err := c.Count(context.Background(), "orders", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("Count = %d, want 7", n)
	}
	if !c.Provider().Built() {
		t.Error("handle not built after first use")
	}
}

func TestClient_CloseReleasesStore(t *testing.T) {
	store := &mockStore{}
	c := testClient(t, store)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Close()
	if !store.closed {
		t.Error("store not closed")
	}
	err := c.Ping(context.Background())
	if f, ok := AsFailure(err); !ok || f.Kind != KindConfiguration {
		t.Errorf("Ping after Close = %v, want configuration failure", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(DefaultConnectionConfig(), WithDriver("solr"))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Port = 0
	_, err := New(cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
