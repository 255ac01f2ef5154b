package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL адрес Resend API
const DefaultBaseURL = "https://api.resend.com"

// Client клиент для отправки писем через Resend API
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента Resend
func NewClient(baseURL, apiKey, from string, timeout time.Duration, log Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send отправляет письмо
func (c *Client) Send(ctx context.Context, to []string, subject, html string) error {
	payload, err := json.Marshal(SendEmailRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status code %d: %s", ErrUnavailable, resp.StatusCode, readError(resp.Body))
	default:
		return fmt.Errorf("%w: status code %d: %s", ErrRejected, resp.StatusCode, readError(resp.Body))
	}

	// Парсим ответ
	var sent SendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	c.log.Info("Resend: email sent id=%s, to=%s", sent.ID, strings.Join(to, ","))
	return nil
}

// readError достает сообщение об ошибке из тела ответа
func readError(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))

	var apiErr ErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Sprintf("%s: %s", apiErr.Name, apiErr.Message)
	}
	return string(raw)
}
