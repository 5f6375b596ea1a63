// Package clicksend sends SMS, MMS and email through the ClickSend REST API.
package clicksend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the ClickSend REST endpoint.
const DefaultBaseURL = "https://rest.clicksend.com"

const (
	source       = "s3publish"
	maxErrorBody = 4 << 10
)

// ErrInvalid is returned for messages missing required fields.
var ErrInvalid = errors.New("invalid message")

// APIError is a non-2xx response from ClickSend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clicksend: %d: %q", e.StatusCode, e.Body)
}

// Client for the ClickSend v3 API.
type Client struct {
	Username       string
	APIKey         string
	EmailAddressID int // allowed sender address used for email
	BaseURL        string
	HTTPClient     *http.Client
	Logger         zerolog.Logger
}

// NewFromEnv reads CLICK_SEND_API_USERNAME, CLICK_SEND_API_KEY and
// CLICK_SEND_EMAIL_ADDRESS_ID (default 0).
func NewFromEnv() (*Client, error) {
	c := &Client{
		Username: os.Getenv("CLICK_SEND_API_USERNAME"),
		APIKey:   os.Getenv("CLICK_SEND_API_KEY"),
	}
	if c.Username == "" || c.APIKey == "" {
		return nil, fmt.Errorf("clicksend: not set in environment: CLICK_SEND_API_USERNAME, CLICK_SEND_API_KEY")
	}
	if id := os.Getenv("CLICK_SEND_EMAIL_ADDRESS_ID"); id != "" {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, fmt.Errorf("clicksend: CLICK_SEND_EMAIL_ADDRESS_ID: %w", err)
		}
		c.EmailAddressID = n
	}
	return c, nil
}

// SMS is a text message to a single recipient.
type SMS struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// MMS is a multimedia message; MediaFile is the URL of the attached media.
type MMS struct {
	Subject   string `json:"subject"`
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	MediaFile string `json:"media_file"`
}

// Recipient of an email.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Attachment of an email; Content is base64.
type Attachment struct {
	Content     string `json:"content"`
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition"`
	ContentID   string `json:"content_id"`
}

// Email sent from the client's allowed address, with From as display name.
type Email struct {
	To          []Recipient  `json:"to"`
	From        string       `json:"from"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type message struct {
	Source  string `json:"source"`
	Body    string `json:"body"`
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	From    string `json:"from,omitempty"`
	Country string `json:"country,omitempty"`
}

type emailFrom struct {
	EmailAddressID int    `json:"email_address_id"`
	Name           string `json:"name"`
}

// SendSMS sends m.Message to m.Phone.
func (c *Client) SendSMS(ctx context.Context, m SMS) error {
	if m.Phone == "" || m.Message == "" {
		return fmt.Errorf("%w: both phone and message are required", ErrInvalid)
	}
	to, err := FormatPhoneNumber(m.Phone)
	if err != nil {
		return err
	}
	return c.post(ctx, "/v3/sms/send", struct {
		Messages []message `json:"messages"`
	}{[]message{{Source: source, Body: m.Message, To: to}}})
}

// SendMMS sends m to a UK number.
func (c *Client) SendMMS(ctx context.Context, m MMS) error {
	if m.Subject == "" || m.From == "" || m.To == "" || m.Body == "" || m.MediaFile == "" {
		return fmt.Errorf("%w: all fields (subject, from, to, body, media_file) are required", ErrInvalid)
	}
	to, err := FormatPhoneNumber(m.To)
	if err != nil {
		return err
	}
	return c.post(ctx, "/v3/mms/send", struct {
		MediaFile string    `json:"media_file"`
		Messages  []message `json:"messages"`
	}{
		MediaFile: m.MediaFile,
		Messages: []message{{
			Source:  source,
			Subject: m.Subject,
			From:    m.From,
			Body:    m.Body,
			To:      to,
			Country: "GB",
		}},
	})
}

// SendEmail sends m. Attachments default to an empty list.
func (c *Client) SendEmail(ctx context.Context, m Email) error {
	if len(m.To) == 0 || m.From == "" || m.Subject == "" || m.Body == "" {
		return fmt.Errorf("%w: missing required fields (to, from, subject, body)", ErrInvalid)
	}
	attachments := m.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	return c.post(ctx, "/v3/email/send", struct {
		To          []Recipient  `json:"to"`
		From        emailFrom    `json:"from"`
		Subject     string       `json:"subject"`
		Body        string       `json:"body"`
		Attachments []Attachment `json:"attachments"`
	}{
		To:          m.To,
		From:        emailFrom{EmailAddressID: c.EmailAddressID, Name: m.From},
		Subject:     m.Subject,
		Body:        m.Body,
		Attachments: attachments,
	})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint := strings.TrimSuffix(base, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.Username, c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	c.Logger.Debug().Str("url", endpoint).Int("size", len(b)).Msg("clicksend request")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	c.Logger.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("clicksend response")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
