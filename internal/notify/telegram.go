package notify

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Growfam/fc26-sniping/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSink posts events to a Telegram chat via the bot API. Wrap it in
// an AsyncSink so HTTP latency never reaches the trading loops.
type TelegramSink struct {
	http   *resty.Client
	token  string
	chatID string
	logger *zap.Logger
}

// NewTelegram builds a sink for the given bot token and chat.
func NewTelegram(token, chatID string, logger *zap.Logger) *TelegramSink {
	return &TelegramSink{
		http:   resty.New().SetBaseURL(telegramAPIBase).SetTimeout(10 * time.Second),
		token:  token,
		chatID: chatID,
		logger: logger,
	}
}

func (s *TelegramSink) send(text string) {
	resp, err := s.http.R().
		SetFormData(map[string]string{
			"chat_id": s.chatID,
			"text":    text,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", s.token))
	if err != nil {
		s.logger.Warn("telegram delivery failed", zap.Error(err))
		return
	}
	if resp.IsError() {
		s.logger.Warn("telegram rejected message", zap.Int("status", resp.StatusCode()))
	}
}

func (s *TelegramSink) OnPurchase(listing domain.Listing, price int64) {
	s.send(fmt.Sprintf("Bought %s (%d) for %d coins", listing.Name, listing.Rating, price))
}

func (s *TelegramSink) OnSale(proceeds, runningProfit int64) {
	s.send(fmt.Sprintf("Sold for %d coins, running profit %d", proceeds, runningProfit))
}

func (s *TelegramSink) OnFatalError(err error) {
	s.send(fmt.Sprintf("Sniper halted: %v", err))
}
