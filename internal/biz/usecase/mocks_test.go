package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

// Mock implementations

type mockSource struct {
	mu      sync.Mutex
	payload *domain.RemoteWhitelistPayload
	err     error
	calls   int
	release chan struct{} // when set, Fetch waits for it
}

func (m *mockSource) Fetch(ctx context.Context, endpointURL string) (*domain.RemoteWhitelistPayload, error) {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, &domain.TransportError{Op: "GET", Err: ctx.Err()}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.payload, m.err
}

func (m *mockSource) set(payload *domain.RemoteWhitelistPayload, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	m.err = err
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockStore struct {
	mu      sync.Mutex
	snap    *domain.WhitelistSnapshot
	cleared bool
	saveErr error
}

func (m *mockStore) Load(ctx context.Context) (*domain.WhitelistSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *mockStore) Save(ctx context.Context, snap *domain.WhitelistSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	return nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	m.cleared = true
	return nil
}

type mockWebhook struct {
	mu       sync.Mutex
	payloads []domain.NotificationPayload
	urls     []string
	err      error
	release  chan struct{}
}

func (m *mockWebhook) Post(ctx context.Context, endpointURL string, payload domain.NotificationPayload) error {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	m.urls = append(m.urls, endpointURL)
	return m.err
}

func (m *mockWebhook) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

type mockSink struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockSink) Notify(channel domain.ChatChannel, sender, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func (m *mockSink) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

type mockDropRepo struct {
	mu      sync.Mutex
	records map[string]*domain.DropRecord
}

func newMockDropRepo() *mockDropRepo {
	return &mockDropRepo{records: make(map[string]*domain.DropRecord)}
}

func (m *mockDropRepo) Record(ctx context.Context, rec *domain.DropRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockDropRepo) UpdateDelivery(ctx context.Context, id string, status domain.DeliveryStatus, statusCode int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return errors.New("not found")
	}
	rec.Status = status
	rec.StatusCode = statusCode
	rec.Error = errMsg
	return nil
}

func (m *mockDropRepo) ListRecent(ctx context.Context, limit int) ([]*domain.DropRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.DropRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockDropRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, r := range m.records {
		if r.MatchedAt.Before(before) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *mockDropRepo) Close() error { return nil }

func (m *mockDropRepo) only() *domain.DropRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		return r
	}
	return nil
}

type mockResolver struct {
	names map[int]string
}

func (m *mockResolver) ItemName(ctx context.Context, itemID int) (string, error) {
	name, ok := m.names[itemID]
	if !ok {
		return "", errors.New("unknown item")
	}
	return name, nil
}

// logRecorder is a slog.Handler that keeps every record
type logRecorder struct {
	mu      *sync.Mutex
	records *[]slog.Record
}

func newLogRecorder() (*slog.Logger, *logRecorder) {
	h := &logRecorder{mu: &sync.Mutex{}, records: &[]slog.Record{}}
	return slog.New(h), h
}

func (h *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r.Clone())
	return nil
}

func (h *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *logRecorder) WithGroup(string) slog.Handler { return h }

func (h *logRecorder) count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range *h.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

func (h *logRecorder) attrs(level slog.Level) []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]any
	for _, r := range *h.records {
		if r.Level != level {
			continue
		}
		m := map[string]any{}
		r.Attrs(func(a slog.Attr) bool {
			m[a.Key] = a.Value.Any()
			return true
		})
		out = append(out, m)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func payloadOf(updatedAt string, items ...string) *domain.RemoteWhitelistPayload {
	p := &domain.RemoteWhitelistPayload{UpdatedAt: updatedAt}
	for _, it := range items {
		p.Items = append(p.Items, strPtr(it))
	}
	return p
}
