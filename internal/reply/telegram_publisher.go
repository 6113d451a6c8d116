package reply

import (
	"github.com/ninja0404/trade-journal/internal/common"
	"github.com/ninja0404/trade-journal/internal/notifier"
)

// TelegramPublisher Telegram发布器，把回复发回原会话
type TelegramPublisher struct {
	botToken string
}

// NewTelegramPublisher 创建Telegram发布器
func NewTelegramPublisher(botToken string) *TelegramPublisher {
	return &TelegramPublisher{botToken: botToken}
}

func (p *TelegramPublisher) GetType() string {
	return "telegram"
}

func (p *TelegramPublisher) Publish(reply *common.ReplyEvent) error {
	return notifier.SendToTelegram(p.botToken, reply.ChatID, reply.Text)
}

func (p *TelegramPublisher) Close() error {
	return nil
}
