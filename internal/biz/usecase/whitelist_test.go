package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

func newTestCache(source *mockSource, store *mockStore, sink *mockSink) *WhitelistCache {
	cfg := CacheConfig{Timeout: 2 * time.Second}
	if store == nil {
		return NewWhitelistCache(source, nil, sink, discardLogger(), cfg)
	}
	return NewWhitelistCache(source, store, sink, discardLogger(), cfg)
}

func TestCurrentSnapshot_EmptyBeforeLoad(t *testing.T) {
	cache := newTestCache(&mockSource{}, nil, &mockSink{})

	snap := cache.CurrentSnapshot()
	if snap == nil {
		t.Fatal("Expected non-nil snapshot")
	}
	if !snap.IsEmpty() {
		t.Error("Expected empty snapshot before first refresh")
	}
}

func TestRefreshNow_Success(t *testing.T) {
	source := &mockSource{payload: &domain.RemoteWhitelistPayload{
		Items:     []*string{strPtr("Rune Axe"), strPtr(" "), nil, strPtr("Rune Axe ")},
		UpdatedAt: "2024-05-01 10:00",
	}}
	store := &mockStore{}
	sink := &mockSink{}
	cache := newTestCache(source, store, sink)

	snap, err := cache.RefreshNow(context.Background(), "https://example.test/exec", true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	items := snap.Items()
	if len(items) != 2 || items[0] != "Rune Axe" || items[1] != "Rune Axe" {
		t.Errorf("Expected [Rune Axe Rune Axe], got %v", items)
	}
	if snap.SetSize() != 1 || !snap.Contains("rune axe") {
		t.Errorf("Expected lowercase set {rune axe}, size %d", snap.SetSize())
	}
	if cache.CurrentSnapshot() != snap {
		t.Error("Expected refreshed snapshot to be published")
	}
	if store.snap != snap {
		t.Error("Expected snapshot to be persisted")
	}

	messages := sink.all()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 status message, got %d", len(messages))
	}
	want := "Drop whitelist ready for 2 items (updated 2024-05-01 10:00)."
	if messages[0] != want {
		t.Errorf("Expected '%s', got '%s'", want, messages[0])
	}
}

func TestRefreshNow_NoAnnounce(t *testing.T) {
	source := &mockSource{payload: payloadOf("", "Abyssal whip")}
	sink := &mockSink{}
	cache := newTestCache(source, nil, sink)

	if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sink.all()) != 0 {
		t.Errorf("Expected no status messages, got %v", sink.all())
	}
}

func TestRefreshNow_EmptyEndpointClears(t *testing.T) {
	source := &mockSource{payload: payloadOf("", "Abyssal whip")}
	store := &mockStore{}
	sink := &mockSink{}
	cache := newTestCache(source, store, sink)

	if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := cache.RefreshNow(context.Background(), "   ", true)
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if !cache.CurrentSnapshot().IsEmpty() {
		t.Error("Expected snapshot to be cleared")
	}
	if !store.cleared {
		t.Error("Expected stored snapshot to be cleared")
	}
	if source.callCount() != 1 {
		t.Errorf("Expected no fetch for empty endpoint, got %d calls", source.callCount())
	}

	messages := sink.all()
	if len(messages) != 1 || !strings.Contains(messages[0], "not configured") {
		t.Errorf("Expected a not-configured message, got %v", messages)
	}
}

func TestRefreshNow_FailuresKeepSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		payload *domain.RemoteWhitelistPayload
		err     error
		message string
	}{
		{"network", nil, &domain.TransportError{Op: "GET", Err: errors.New("connection refused")}, "Failed to reach"},
		{"status", nil, &domain.StatusError{Code: 500}, "HTTP 500"},
		{"empty", nil, domain.ErrEmptyPayload, "was empty"},
		{"nil payload", nil, nil, "was empty"},
		{"format", nil, &domain.FormatError{Err: errors.New("invalid character")}, "Could not parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &mockSource{payload: payloadOf("", "Dragon Claws")}
			sink := &mockSink{}
			cache := newTestCache(source, nil, sink)

			before, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			source.set(tt.payload, tt.err)
			if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", true); err == nil {
				t.Fatal("Expected refresh to fail")
			}

			if cache.CurrentSnapshot() != before {
				t.Error("Expected snapshot to be unchanged after failed refresh")
			}
			messages := sink.all()
			if len(messages) != 1 || !strings.Contains(messages[0], tt.message) {
				t.Errorf("Expected message containing '%s', got %v", tt.message, messages)
			}
		})
	}
}

func TestRefresh_ReturnsBeforeFetchCompletes(t *testing.T) {
	release := make(chan struct{})
	source := &mockSource{payload: payloadOf("", "Dragon Claws"), release: release}
	cache := newTestCache(source, nil, &mockSink{})

	done := make(chan struct{})
	go func() {
		cache.Refresh("https://example.test/exec", false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refresh blocked on the fetch")
	}

	if !cache.CurrentSnapshot().IsEmpty() {
		t.Error("Expected snapshot to be empty while fetch is in flight")
	}

	close(release)
	cache.Wait()

	if !cache.CurrentSnapshot().Contains("dragon claws") {
		t.Error("Expected snapshot to be updated after refresh completes")
	}
}

func TestRefresh_EmptyEndpointClearsImmediately(t *testing.T) {
	source := &mockSource{payload: payloadOf("", "Dragon Claws")}
	cache := newTestCache(source, nil, &mockSink{})
	if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	cache.Refresh("", false)

	if !cache.CurrentSnapshot().IsEmpty() {
		t.Error("Expected snapshot to be cleared before Refresh returns")
	}
}

func TestSeed_UsesStoredSnapshot(t *testing.T) {
	stored := domain.NewWhitelistSnapshot([]string{"Bandos chestplate"}, "yesterday", time.Now())
	cache := newTestCache(&mockSource{}, &mockStore{snap: stored}, &mockSink{})

	if err := cache.Seed(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cache.CurrentSnapshot() != stored {
		t.Error("Expected stored snapshot to be published")
	}
}

func TestSeed_DoesNotOverrideRefresh(t *testing.T) {
	stored := domain.NewWhitelistSnapshot([]string{"Old item"}, "", time.Now())
	source := &mockSource{payload: payloadOf("", "New item")}
	cache := newTestCache(source, &mockStore{snap: stored}, &mockSink{})

	fresh, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := cache.Seed(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cache.CurrentSnapshot() != fresh {
		t.Error("Expected refreshed snapshot to win over stored one")
	}
}

func TestRefreshNow_StoreFailureStillPublishes(t *testing.T) {
	source := &mockSource{payload: payloadOf("", "Dragon Claws")}
	store := &mockStore{saveErr: errors.New("disk full")}
	cache := newTestCache(source, store, &mockSink{})

	if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cache.CurrentSnapshot().Contains("Dragon Claws") {
		t.Error("Expected snapshot to be published despite store failure")
	}
}

func TestReadyMessage(t *testing.T) {
	one := domain.NewWhitelistSnapshot([]string{"Dragon Claws"}, "", time.Now())
	if got := readyMessage(one, ""); got != "Drop whitelist ready for 1 item." {
		t.Errorf("Unexpected singular message: '%s'", got)
	}

	none := domain.NewWhitelistSnapshot(nil, "", time.Now())
	if got := readyMessage(none, ""); got != "Drop whitelist ready for 0 items." {
		t.Errorf("Unexpected empty message: '%s'", got)
	}

	withSheet := readyMessage(one, " sheet-123 ")
	if withSheet != "Drop whitelist ready for 1 item. Sheet ID: sheet-123" {
		t.Errorf("Unexpected sheet message: '%s'", withSheet)
	}
}

func TestCurrentSnapshot_ConsistentDuringRefresh(t *testing.T) {
	source := &mockSource{}
	cache := newTestCache(source, nil, &mockSink{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var readers sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for ctx.Err() == nil {
				snap := cache.CurrentSnapshot()
				if snap.Count() != snap.SetSize() {
					errCh <- fmt.Errorf("count %d does not match set size %d", snap.Count(), snap.SetSize())
					return
				}
				for _, item := range snap.Items() {
					if !snap.Contains(item) {
						errCh <- fmt.Errorf("item %q missing from its own set", item)
						return
					}
				}
			}
		}()
	}

	for round := 1; round <= 50; round++ {
		items := make([]string, round)
		for i := range items {
			items[i] = fmt.Sprintf("Item %d-%d", round, i)
		}
		source.set(payloadOf("", items...), nil)
		if _, err := cache.RefreshNow(context.Background(), "https://example.test/exec", false); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	cancel()
	readers.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}
