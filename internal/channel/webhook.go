package channel

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"
)

// signaturePrefix is the scheme tag the provider prepends to the hex digest
// in the signature header.
const signaturePrefix = "sha256="

// VerifySignature checks the webhook signature header against an HMAC-SHA256
// of the raw request body. Comparison is constant-time. When no secret is
// configured the check is a no-op that accepts everything — an explicit,
// logged fail-open for deployments that terminate authenticity elsewhere.
func VerifySignature(secret string, rawBody []byte, signatureHeader string) bool {
	if secret == "" {
		log.Printf("channel: no app secret configured, skipping webhook signature verification")
		return true
	}
	sig := strings.TrimPrefix(signatureHeader, signaturePrefix)
	if sig == "" || sig == signatureHeader {
		return false
	}
	provided, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(provided, mac.Sum(nil))
}

// Wire types for the provider's webhook envelope:
// entry[] -> changes[] -> value{messages, statuses, contacts}.
type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value webhookValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookValue struct {
	Contacts []struct {
		WaID    string `json:"wa_id"`
		Profile struct {
			Name string `json:"name"`
		} `json:"profile"`
	} `json:"contacts"`
	Messages []struct {
		ID        string `json:"id"`
		From      string `json:"from"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text"`
		Button *struct {
			Payload string `json:"payload"`
			Text    string `json:"text"`
		} `json:"button"`
		Interactive *struct {
			Type        string `json:"type"`
			ButtonReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"button_reply"`
			ListReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"list_reply"`
		} `json:"interactive"`
		Location *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"location"`
		Image    *struct{ ID string } `json:"image"`
		Document *struct{ ID string } `json:"document"`
	} `json:"messages"`
	Statuses []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Timestamp   string `json:"timestamp"`
		RecipientID string `json:"recipient_id"`
	} `json:"statuses"`
}

// ParseWebhook decodes an inbound webhook body into typed messages, status
// updates, and contact metadata. A malformed body decodes to an empty Webhook
// and is logged as a parse failure — this function never fails the caller.
func ParseWebhook(body []byte) Webhook {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("channel: webhook parse failure: %v", err)
		return Webhook{}
	}

	var wh Webhook
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			decodeValue(change.Value, &wh)
		}
	}
	return wh
}

// decodeValue appends one change's payload to the accumulating Webhook.
func decodeValue(v webhookValue, wh *Webhook) {
	for _, c := range v.Contacts {
		wh.Contacts = append(wh.Contacts, ContactInfo{
			Address: NormalizeAddress(c.WaID),
			Name:    c.Profile.Name,
		})
	}

	for _, m := range v.Messages {
		msg := InboundMessage{
			ID:        m.ID,
			From:      NormalizeAddress(m.From),
			Timestamp: parseEpoch(m.Timestamp),
			Type:      m.Type,
		}
		switch {
		case m.Text != nil:
			msg.Text = m.Text.Body
		case m.Button != nil:
			msg.Text = m.Button.Text
			msg.ReplyID = m.Button.Payload
		case m.Interactive != nil && m.Interactive.ButtonReply != nil:
			msg.Text = m.Interactive.ButtonReply.Title
			msg.ReplyID = m.Interactive.ButtonReply.ID
		case m.Interactive != nil && m.Interactive.ListReply != nil:
			msg.Text = m.Interactive.ListReply.Title
			msg.ReplyID = m.Interactive.ListReply.ID
		case m.Location != nil:
			msg.Latitude = m.Location.Latitude
			msg.Longitude = m.Location.Longitude
		case m.Image != nil:
			msg.MediaID = m.Image.ID
		case m.Document != nil:
			msg.MediaID = m.Document.ID
		}
		wh.Messages = append(wh.Messages, msg)
	}

	for _, s := range v.Statuses {
		wh.Statuses = append(wh.Statuses, StatusUpdate{
			MessageID:   s.ID,
			RecipientID: NormalizeAddress(s.RecipientID),
			Status:      s.Status,
			Timestamp:   parseEpoch(s.Timestamp),
		})
	}
}

// parseEpoch converts the provider's unix-seconds string; zero time on failure.
func parseEpoch(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
