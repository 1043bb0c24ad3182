package service

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"obi-site/internal/domain"
)

// messageSender is the part of *tgbotapi.BotAPI the alerter uses
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts every stored enquiry to a staff chat
type TelegramAlerter struct {
	bot    messageSender
	chatID int64
}

// NewTelegramAlerter connects to the Bot API with token
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

func (a *TelegramAlerter) Name() string {
	return "telegram"
}

func (a *TelegramAlerter) EnquiryCreated(ctx context.Context, event *domain.EnquiryCreatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(a.chatID, formatEnquiryAlert(&event.Enquiry))
	msg.DisableWebPagePreview = true
	if _, err := a.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatEnquiryAlert(e *domain.Enquiry) string {
	var b strings.Builder
	b.WriteString("New space enquiry\n\n")
	fmt.Fprintf(&b, "Name: %s\n", e.Name)
	fmt.Fprintf(&b, "Phone: %s\n", e.Phone)
	fmt.Fprintf(&b, "Email: %s\n", e.Email)
	fmt.Fprintf(&b, "Event: %s\n", e.EventType.Label())
	fmt.Fprintf(&b, "Date: %s\n", e.EventDate)
	if e.Message != nil {
		fmt.Fprintf(&b, "\n%s\n", *e.Message)
	}
	return b.String()
}
