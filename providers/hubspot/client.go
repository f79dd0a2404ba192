package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-responder/core"
)

// Client talks to the conversations v3 and CRM contacts APIs through a
// transport adapter so tests can script the wire without a network.
type Client struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
	adapter     core.TransportAdapter
}

var (
	_ core.ConversationClient = (*Client)(nil)
	_ core.ContactClient      = (*Client)(nil)
)

func (c *Client) ListThreadMessages(ctx context.Context, threadID string, limit int) ([]core.ThreadMessage, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return nil, fmt.Errorf("hubspot: thread id is required")
	}
	if limit <= 0 {
		limit = 25
	}

	res, err := c.do(ctx, http.MethodGet,
		"/conversations/v3/conversations/threads/"+url.PathEscape(threadID)+"/messages",
		map[string]string{"limit": strconv.Itoa(limit)},
		nil,
	)
	if err != nil {
		return nil, err
	}

	payload, err := decodeObject(res.Body)
	if err != nil {
		return nil, err
	}
	results, _ := payload["results"].([]any)
	messages := make([]core.ThreadMessage, 0, len(results))
	for _, entry := range results {
		object, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		messages = append(messages, decodeMessage(object))
	}
	// The API does not guarantee ordering across pages; callers expect
	// newest first.
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

func (c *Client) PostComment(ctx context.Context, threadID string, text string) error {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return fmt.Errorf("hubspot: thread id is required")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("hubspot: comment text is required")
	}
	_, err := c.do(ctx, http.MethodPost,
		"/conversations/v3/conversations/threads/"+url.PathEscape(threadID)+"/messages",
		nil,
		map[string]any{
			"type": "COMMENT",
			"text": text,
		},
	)
	return err
}

func (c *Client) SendMessage(ctx context.Context, threadID string, msg core.OutboundMessage) (core.SendReceipt, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return core.SendReceipt{}, fmt.Errorf("hubspot: thread id is required")
	}

	payload := map[string]any{
		"type":             "MESSAGE",
		"text":             msg.Text,
		"senderActorId":    msg.SenderActorID,
		"channelId":        msg.ChannelID,
		"channelAccountId": msg.ChannelAccountID,
		"recipients": []any{
			map[string]any{
				"recipientField": "TO",
				"deliveryIdentifiers": []any{
					map[string]any{
						"type":  "HS_EMAIL_ADDRESS",
						"value": msg.RecipientEmail,
					},
				},
			},
		},
	}
	if subject := strings.TrimSpace(msg.Subject); subject != "" {
		payload["subject"] = subject
	}

	res, err := c.do(ctx, http.MethodPost,
		"/conversations/v3/conversations/threads/"+url.PathEscape(threadID)+"/messages",
		nil,
		payload,
	)
	if err != nil {
		return core.SendReceipt{}, err
	}

	decoded, err := decodeObject(res.Body)
	if err != nil {
		return core.SendReceipt{}, err
	}
	receipt := core.SendReceipt{MessageID: scalar(decoded, "id")}
	if status, ok := decoded["status"].(map[string]any); ok {
		receipt.Status = scalar(status, "statusType")
	}
	return receipt, nil
}

func (c *Client) GetActor(ctx context.Context, actorID string) (core.Actor, bool, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return core.Actor{}, false, fmt.Errorf("hubspot: actor id is required")
	}

	res, err := c.do(ctx, http.MethodGet,
		"/conversations/v3/conversations/actors/"+url.PathEscape(actorID),
		nil,
		nil,
	)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Code == http.StatusNotFound {
			return core.Actor{}, false, nil
		}
		return core.Actor{}, false, err
	}

	decoded, err := decodeObject(res.Body)
	if err != nil {
		return core.Actor{}, false, err
	}
	return core.Actor{
		ID:    scalar(decoded, "id"),
		Type:  scalar(decoded, "type"),
		Name:  scalar(decoded, "name"),
		Email: scalar(decoded, "email"),
		Raw:   decoded,
	}, true, nil
}

var existingIDPattern = regexp.MustCompile(`Existing ID:\s*([0-9]+)`)

// UpsertContactByEmail creates the contact and, when it already exists,
// patches the existing record. The contacts API reports the existing ID in
// the conflict message body.
func (c *Client) UpsertContactByEmail(ctx context.Context, email string, properties map[string]string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("hubspot: contact email is required")
	}

	props := map[string]any{"email": email}
	for key, value := range properties {
		if strings.TrimSpace(key) == "" {
			continue
		}
		props[key] = value
	}

	res, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", nil, map[string]any{"properties": props})
	if err == nil {
		decoded, decodeErr := decodeObject(res.Body)
		if decodeErr != nil {
			return "", decodeErr
		}
		return scalar(decoded, "id"), nil
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Code != http.StatusConflict {
		return "", err
	}
	match := existingIDPattern.FindStringSubmatch(richErr.Message)
	if len(match) < 2 {
		return "", err
	}
	contactID := match[1]

	if _, err := c.do(ctx, http.MethodPatch,
		"/crm/v3/objects/contacts/"+url.PathEscape(contactID),
		nil,
		map[string]any{"properties": props},
	); err != nil {
		return "", err
	}
	return contactID, nil
}

func (c *Client) do(ctx context.Context, method string, path string, query map[string]string, payload any) (core.TransportResponse, error) {
	if c == nil || c.adapter == nil {
		return core.TransportResponse{}, fmt.Errorf("hubspot: transport adapter is required")
	}
	if c.accessToken == "" {
		return core.TransportResponse{}, goerrors.New(
			"hubspot: access token is not configured",
			goerrors.CategoryInternal,
		).WithTextCode(core.ResponderErrorNotConfigured)
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return core.TransportResponse{}, fmt.Errorf("hubspot: encode request payload: %w", err)
		}
		body = encoded
	}

	res, err := c.adapter.Do(ctx, core.TransportRequest{
		Method: method,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.accessToken,
			"Content-Type":  "application/json",
		},
		Query:   query,
		Body:    body,
		Timeout: c.timeout,
	})
	if err != nil {
		return core.TransportResponse{}, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return core.TransportResponse{}, goerrors.New(
			fmt.Sprintf("hubspot: %s %s returned status %d: %s", method, path, res.StatusCode, truncateBody(res.Body)),
			goerrors.CategoryExternal,
		).WithCode(res.StatusCode).
			WithTextCode(core.ResponderErrorUpstreamFailed).
			WithMetadata(map[string]any{
				"provider":    ProviderID,
				"status_code": res.StatusCode,
				"path":        path,
			})
	}
	return res, nil
}

func decodeObject(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var decoded map[string]any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("hubspot: decode response body: %w", err)
	}
	return decoded, nil
}

func decodeMessage(object map[string]any) core.ThreadMessage {
	msg := core.ThreadMessage{
		ID:               scalar(object, "id"),
		Type:             strings.ToUpper(scalar(object, "type")),
		Direction:        strings.ToUpper(scalar(object, "direction")),
		ChannelID:        scalar(object, "channelId"),
		ChannelAccountID: scalar(object, "channelAccountId"),
		Subject:          scalar(object, "subject"),
		Text:             scalar(object, "text"),
		Raw:              object,
	}

	if client, ok := object["client"].(map[string]any); ok {
		msg.SenderAppID = scalar(client, "integrationAppId")
	}
	if msg.SenderAppID == "" {
		msg.SenderAppID = scalar(object, "appId")
	}

	if createdAt := scalar(object, "createdAt"); createdAt != "" {
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			msg.CreatedAt = parsed
		}
	}

	senders, _ := object["senders"].([]any)
	for _, entry := range senders {
		sender, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		decoded := core.MessageSender{
			ActorID: scalar(sender, "actorId"),
			Name:    scalar(sender, "name"),
		}
		if identifier, ok := sender["deliveryIdentifier"].(map[string]any); ok {
			decoded.DeliveryIdentifier = core.DeliveryIdentifier{
				Type:  scalar(identifier, "type"),
				Value: scalar(identifier, "value"),
			}
		}
		msg.Senders = append(msg.Senders, decoded)
	}
	return msg
}

// scalar reads a string-or-number field, keeping numbers digit-exact.
func scalar(object map[string]any, key string) string {
	switch value := object[key].(type) {
	case string:
		return strings.TrimSpace(value)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

func truncateBody(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
