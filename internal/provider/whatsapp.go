package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// whatsappSuffix turns a bare phone number into the provider's WhatsApp
// attendee identifier.
const whatsappSuffix = "@s.whatsapp.net"

type chatResponse struct {
	Object    string `json:"object"`
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

func (c *Client) sendWhatsappMessage(ctx context.Context, req SendRequest) *SendResult {
	digits := digitsOnly(req.Recipient)
	if digits == "" {
		return failure(ErrClassValidation, "phone number contains no digits")
	}

	form := url.Values{}
	form.Set("account_id", req.AccountID)
	form.Set("attendees_ids", digits+whatsappSuffix)
	form.Set("text", req.Text)

	var resp chatResponse
	detail, ok := c.doRequest(ctx, "send_chat", http.MethodPost, "/api/v1/chats",
		"application/x-www-form-urlencoded", []byte(form.Encode()), &resp)
	if !ok {
		return failure(ErrClassProviderError, detail)
	}
	return &SendResult{Success: true, ProviderMessageID: resp.MessageID}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
