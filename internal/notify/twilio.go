package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL         = "https://api.twilio.com/2010-04-01"
	whatsappPrefix = "whatsapp:"
	// Twilio rejects bodies longer than this.
	maxBodyLength = 1600
)

var ErrNotConfigured = errors.New("twilio credentials are not configured")

// Sender delivers a text message to a user.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// Client sends WhatsApp messages through the Twilio REST API.
type Client struct {
	accountSID string
	authToken  string
	from       string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

func New(logger *zap.Logger, accountSID, authToken, from string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		accountSID: strings.TrimSpace(accountSID),
		authToken:  strings.TrimSpace(authToken),
		from:       whatsappAddress(from),
		logger:     logger,
		APIURL:     apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether all credentials are present.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != "" && c.from != ""
}

// Send delivers body to the WhatsApp number. Bodies over the channel
// limit are cut.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	to = whatsappAddress(to)
	if to == "" {
		return errors.New("recipient is required")
	}

	runes := []rune(strings.TrimSpace(body))
	if len(runes) == 0 {
		return errors.New("message body must not be empty")
	}
	if len(runes) > maxBodyLength {
		c.logger.Warn("truncating message body", zap.Int("length", len(runes)), zap.Int("limit", maxBodyLength))
		runes = runes[:maxBodyLength]
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.APIURL, c.accountSID)
	data := map[string]string{
		"From": c.from,
		"To":   to,
		"Body": string(runes),
	}

	if err := c.postForm(ctx, endpoint, data); err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	c.logger.Info("message sent", zap.String("to", to))
	return nil
}

// Messages returns the most recent messages of the account.
func (c *Client) Messages(ctx context.Context, limit int) ([]Message, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 20
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.APIURL, c.accountSID)

	var list messageList
	if err := c.getJSON(ctx, endpoint, map[string]string{"PageSize": fmt.Sprint(limit)}, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return list.Messages, nil
}

func whatsappAddress(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}
