// Package telegram is a thin direct Bot API client for the few calls made
// outside the update handler chain: webhook registration and out-of-band
// reports to the admin channel.
package telegram

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// BotAPI is a raw Telegram Bot API client.
type BotAPI struct {
	token  string
	client *resty.Client
}

func NewBotAPI(token string) *BotAPI {
	return &BotAPI{
		token:  token,
		client: resty.New().SetBaseURL("https://api.telegram.org/bot" + token),
	}
}

// Call posts one API method with JSON params and returns the raw response.
func (b *BotAPI) Call(method string, params map[string]interface{}) (string, error) {
	resp, err := b.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return "", fmt.Errorf("telegram API call %s failed: %w", method, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("telegram API call %s failed: %s", method, resp.Status())
	}
	return resp.String(), nil
}

// SendMessage sends a text message to a chat id or @channel name.
func (b *BotAPI) SendMessage(chatID string, text string) (string, error) {
	return b.Call("sendMessage", map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
}

// SetWebhook points Telegram at the given public URL.
func (b *BotAPI) SetWebhook(url string) (string, error) {
	return b.Call("setWebhook", map[string]interface{}{
		"url": url,
	})
}

// DeleteWebhook switches the bot back to long polling.
func (b *BotAPI) DeleteWebhook() (string, error) {
	return b.Call("deleteWebhook", map[string]interface{}{})
}
