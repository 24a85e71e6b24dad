package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"golang.org/x/time/rate"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// feishuSink mirrors status lines and drop notices into a Feishu chat
type feishuSink struct {
	chatID  string
	send    func(ctx context.Context, chatID, text string) error
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFeishuSink creates a sink posting to chatID through the Feishu IM API
func NewFeishuSink(appID, appSecret, chatID string, logger *slog.Logger) repo.NotificationSink {
	client := lark.NewClient(appID, appSecret)
	return newFeishuSink(chatID, func(ctx context.Context, chatID, text string) error {
		return sendFeishuText(ctx, client, chatID, text)
	}, logger)
}

func newFeishuSink(chatID string, send func(ctx context.Context, chatID, text string) error, logger *slog.Logger) *feishuSink {
	return &feishuSink{
		chatID:  chatID,
		send:    send,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger.With("component", "FeishuSink"),
	}
}

// Notify sends in the background; bursts beyond the limiter are dropped
func (s *feishuSink) Notify(channel domain.ChatChannel, sender, message string) {
	if !s.limiter.Allow() {
		s.logger.Debug("rate limited, message dropped", "message", message)
		return
	}

	text := formatChatLine(sender, message)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.send(ctx, s.chatID, text); err != nil {
			s.logger.Warn("failed to mirror message", "chat_id", s.chatID, "error", err)
		}
	}()
}

func formatChatLine(sender, message string) string {
	if sender == "" {
		return message
	}
	return sender + ": " + message
}

func sendFeishuText(ctx context.Context, client *lark.Client, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := client.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}
	return nil
}
