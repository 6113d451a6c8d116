package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ninja0404/trade-journal/pkg/logger"
)

var telegramAPIBase = "https://api.telegram.org"

// telegramSendMessageRequest Telegram sendMessage请求结构
type telegramSendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// telegramResponse Telegram Bot API响应结构 (用于检查错误)
type telegramResponse struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

var telegramHTTPClient = &http.Client{Timeout: 10 * time.Second}

// SendToTelegram 发送文本消息到指定的Telegram会话
func SendToTelegram(botToken string, chatID int64, messageText string) error {
	if botToken == "" {
		return fmt.Errorf("telegram bot token 为空")
	}
	if messageText == "" {
		logger.Warn("尝试发送空消息到Telegram，已跳过")
		return nil // 不视为错误，但记录警告
	}

	body := telegramSendMessageRequest{
		ChatID:                chatID,
		Text:                  messageText,
		DisableWebPagePreview: true,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		logger.Error(fmt.Sprintf("序列化Telegram消息失败: %v", err))
		return fmt.Errorf("序列化Telegram消息失败: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, botToken)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		logger.Error(fmt.Sprintf("创建Telegram请求失败: %v", err))
		return fmt.Errorf("创建Telegram请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := telegramHTTPClient.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("发送Telegram消息失败: %v", err))
		return fmt.Errorf("发送Telegram消息失败: %w", err)
	}
	defer resp.Body.Close()

	var tgResp telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tgResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("发送Telegram消息返回错误状态码 %d, 无法解析响应体", resp.StatusCode)
		}
		logger.Warn("发送Telegram消息成功，但无法解析响应体")
		return nil
	}

	if !tgResp.Ok {
		errMsg := fmt.Sprintf("Telegram API返回错误 Code: %d, Description: %s", tgResp.ErrorCode, tgResp.Description)
		logger.Error(errMsg)
		return errors.New(errMsg)
	}

	return nil
}
