package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// maxButtons is the provider limit on interactive reply buttons per message.
const maxButtons = 3

// Client talks to the provider's messages endpoint. It is explicitly
// constructed and injected into the router and emergency subsystem; it never
// retries on its own.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	phoneNumberID string
	accessToken   string
}

// ClientOpts holds parameters for creating a Client.
type ClientOpts struct {
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
	HTTPClient    *http.Client // optional; timeouts come from the caller's ctx
}

// NewClient creates a channel Client.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("channel: base url is required")
	}
	if opts.PhoneNumberID == "" {
		return nil, fmt.Errorf("channel: phone number id is required")
	}
	if opts.AccessToken == "" {
		return nil, fmt.Errorf("channel: access token is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		httpClient:    hc,
		baseURL:       opts.BaseURL,
		phoneNumberID: opts.PhoneNumberID,
		accessToken:   opts.AccessToken,
	}, nil
}

// SendText implements Sender.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]interface{}{"body": body},
	})
}

// SendTemplate implements Sender.
func (c *Client) SendTemplate(ctx context.Context, to, name, language string, params []string) (string, error) {
	var components []map[string]interface{}
	if len(params) > 0 {
		parameters := make([]map[string]string, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, map[string]string{"type": "text", "text": p})
		}
		components = append(components, map[string]interface{}{
			"type":       "body",
			"parameters": parameters,
		})
	}
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       name,
			"language":   map[string]string{"code": language},
			"components": components,
		},
	})
}

// SendMedia implements Sender.
func (c *Client) SendMedia(ctx context.Context, to, mediaType, link, caption string) (string, error) {
	media := map[string]interface{}{"link": link}
	if caption != "" {
		media["caption"] = caption
	}
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              mediaType,
		mediaType:           media,
	})
}

// SendButtons implements Sender.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []Button) (string, error) {
	if len(buttons) == 0 || len(buttons) > maxButtons {
		return "", &SendError{Kind: ErrorRejected, Message: fmt.Sprintf("button count %d out of range [1,%d]", len(buttons), maxButtons)}
	}
	btns := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		btns = append(btns, map[string]interface{}{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		})
	}
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": btns},
		},
	})
}

// SendList implements Sender.
func (c *Client) SendList(ctx context.Context, to, body, buttonLabel string, sections []ListSection) (string, error) {
	if len(sections) == 0 {
		return "", &SendError{Kind: ErrorRejected, Message: "list prompt requires at least one section"}
	}
	secs := make([]map[string]interface{}, 0, len(sections))
	for _, s := range sections {
		rows := make([]map[string]string, 0, len(s.Rows))
		for _, r := range s.Rows {
			row := map[string]string{"id": r.ID, "title": r.Title}
			if r.Description != "" {
				row["description"] = r.Description
			}
			rows = append(rows, row)
		}
		secs = append(secs, map[string]interface{}{"title": s.Title, "rows": rows})
	}
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "list",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"button": buttonLabel, "sections": secs},
		},
	})
}

// SendLocation implements Sender.
func (c *Client) SendLocation(ctx context.Context, to string, latitude, longitude float64, name, address string) (string, error) {
	return c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "location",
		"location": map[string]interface{}{
			"latitude":  latitude,
			"longitude": longitude,
			"name":      name,
			"address":   address,
		},
	})
}

// MarkRead implements Sender.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	_, err := c.post(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	})
	return err
}

// sendResponse is the provider's success envelope.
type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// errorResponse is the provider's failure envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// post submits one payload to the messages endpoint and classifies failures
// into the SendError taxonomy.
func (c *Client) post(ctx context.Context, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &SendError{Kind: ErrorRejected, Message: err.Error()}
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &SendError{Kind: ErrorRejected, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failure or ctx deadline — never confirmation of delivery.
		return "", &SendError{Kind: ErrorTransient, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &SendError{Kind: ErrorTransient, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var ok sendResponse
		if err := json.Unmarshal(respBody, &ok); err == nil && len(ok.Messages) > 0 {
			return ok.Messages[0].ID, nil
		}
		return "", nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &SendError{
			Kind:       ErrorRateLimited,
			StatusCode: resp.StatusCode,
			Message:    providerError(respBody),
			RetryAfter: retryAfter(resp),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", &SendError{Kind: ErrorRejected, StatusCode: resp.StatusCode, Message: providerError(respBody)}
	default:
		return "", &SendError{Kind: ErrorTransient, StatusCode: resp.StatusCode, Message: providerError(respBody)}
	}
}

// providerError extracts the provider's error message, falling back to the
// raw body.
func providerError(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// retryAfter reads the Retry-After header in seconds, zero when absent.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	sec, err := strconv.Atoi(v)
	if err != nil || sec < 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}
