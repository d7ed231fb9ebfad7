package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

type userResponse struct {
	Object     string `json:"object"`
	ProviderID string `json:"provider_id"`
	PublicID   string `json:"public_identifier"`
}

type inviteResponse struct {
	Object       string `json:"object"`
	InvitationID string `json:"invitation_id"`
}

type inviteRequest struct {
	AccountID  string `json:"account_id"`
	ProviderID string `json:"provider_id"`
	Message    string `json:"message,omitempty"`
}

func (c *Client) sendLinkedinMessage(ctx context.Context, req SendRequest, inmail bool) *SendResult {
	providerID, res := c.resolveProfile(ctx, req.AccountID, req.Recipient)
	if res != nil {
		return res
	}

	form := url.Values{}
	form.Set("account_id", req.AccountID)
	form.Set("attendees_ids", providerID)
	form.Set("text", req.Text)
	if inmail {
		form.Set("inmail", "true")
	}

	var resp chatResponse
	detail, ok := c.doRequest(ctx, "send_chat", http.MethodPost, "/api/v1/chats",
		"application/x-www-form-urlencoded", []byte(form.Encode()), &resp)
	if !ok {
		return failure(ErrClassProviderError, detail)
	}
	return &SendResult{Success: true, ProviderMessageID: resp.MessageID}
}

func (c *Client) sendLinkedinInvite(ctx context.Context, req SendRequest) *SendResult {
	// reject an oversized note before touching the provider
	if utf8.RuneCountInString(req.Text) > InviteNoteMaxLen {
		return failure(ErrClassValidation, fmt.Sprintf("connection note exceeds %d characters", InviteNoteMaxLen))
	}

	providerID, res := c.resolveProfile(ctx, req.AccountID, req.Recipient)
	if res != nil {
		return res
	}

	body, err := json.Marshal(inviteRequest{
		AccountID:  req.AccountID,
		ProviderID: providerID,
		Message:    req.Text,
	})
	if err != nil {
		return failure(ErrClassProviderError, err.Error())
	}

	var resp inviteResponse
	detail, ok := c.doRequest(ctx, "send_invite", http.MethodPost, "/api/v1/users/invite",
		"application/json", body, &resp)
	if !ok {
		return failure(ErrClassProviderError, detail)
	}
	return &SendResult{Success: true, ProviderMessageID: resp.InvitationID}
}

// resolveProfile looks up the provider-internal ID for a public profile
// URL. Resolution failures are their own error class so callers can tell
// them apart from generic send failures.
func (c *Client) resolveProfile(ctx context.Context, accountID, profileURL string) (string, *SendResult) {
	identifier, ok := publicIdentifier(profileURL)
	if !ok {
		return "", failure(ErrClassValidation, "missing or malformed LinkedIn profile URL")
	}

	path := fmt.Sprintf("/api/v1/users/%s?account_id=%s", url.PathEscape(identifier), url.QueryEscape(accountID))
	var resp userResponse
	detail, reqOK := c.doRequest(ctx, "resolve_profile", http.MethodGet, path, "", nil, &resp)
	if !reqOK {
		return "", failure(ErrClassProfileNotResolvable, detail)
	}
	if resp.ProviderID == "" {
		return "", failure(ErrClassProfileNotResolvable, "provider returned no provider_id for profile")
	}
	return resp.ProviderID, nil
}

// publicIdentifier extracts the public identifier from a LinkedIn profile
// URL, e.g. https://www.linkedin.com/in/jane-doe/ -> jane-doe.
func publicIdentifier(rawURL string) (string, bool) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		// a bare identifier is accepted as-is
		if u.Host == "" && !strings.Contains(trimmed, "/") {
			return trimmed, true
		}
		return "", false
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "in" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], true
		}
	}
	last := segments[len(segments)-1]
	if last == "" || last == "in" {
		return "", false
	}
	return last, true
}
