package data

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
)

type captureSink struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureSink) Notify(channel domain.ChatChannel, sender, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiSink_FansOutAndSkipsNil(t *testing.T) {
	a, b := &captureSink{}, &captureSink{}
	sink := NewMultiSink(a, nil, b)

	sink.Notify(domain.ChannelGameMessage, "", "hello")

	if len(a.messages) != 1 || len(b.messages) != 1 {
		t.Errorf("Expected both sinks to receive the message, got %v / %v", a.messages, b.messages)
	}
}

func TestFeishuSink_SendsInBackground(t *testing.T) {
	sent := make(chan string, 1)
	sink := newFeishuSink("oc_test", func(ctx context.Context, chatID, text string) error {
		if chatID != "oc_test" {
			t.Errorf("Unexpected chat id: %s", chatID)
		}
		sent <- text
		return nil
	}, quietLogger())

	sink.Notify(domain.ChannelGameMessage, "", "Filtered drop detected: Bones x1")

	select {
	case text := <-sent:
		if text != "Filtered drop detected: Bones x1" {
			t.Errorf("Unexpected text: %s", text)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected message to be sent")
	}
}

func TestFeishuSink_RateLimited(t *testing.T) {
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	sink := newFeishuSink("oc_test", func(ctx context.Context, chatID, text string) error {
		mu.Lock()
		count++
		mu.Unlock()
		wg.Done()
		return nil
	}, quietLogger())

	// Burst of 5 passes, the rest are dropped
	wg.Add(5)
	for i := 0; i < 20; i++ {
		sink.Notify(domain.ChannelGameMessage, "", "spam")
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if count != 5 {
		t.Errorf("Expected 5 sends, got %d", count)
	}
}

func TestFormatChatLine(t *testing.T) {
	if got := formatChatLine("", "hi"); got != "hi" {
		t.Errorf("Unexpected line: %s", got)
	}
	if got := formatChatLine("Exporter", "hi"); got != "Exporter: hi" {
		t.Errorf("Unexpected line: %s", got)
	}
}

func TestDesktopSink_SkipsEmpty(t *testing.T) {
	called := make(chan struct{}, 1)
	sink := newDesktopSink(func(title, body string) error {
		called <- struct{}{}
		return nil
	}, quietLogger())

	sink.Notify(domain.ChannelGameMessage, "", "")
	select {
	case <-called:
		t.Error("Expected empty message to be skipped")
	case <-time.After(50 * time.Millisecond):
	}

	sink.Notify(domain.ChannelGameMessage, "", "Drop whitelist ready for 1 item.")
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Error("Expected notification to be shown")
	}
}
