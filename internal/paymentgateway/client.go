// Package paymentgateway реализует HTTP-клиент платёжного шлюза:
// создание и отмена подписок, создание заказов на разовую покупку.
// Аутентификация — basic auth по ключу и секрету аккаунта.
package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client клиент платёжного шлюза.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного шлюза.
func NewClient(keyID, keySecret, apiURL string) *Client {
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateSubscription создаёт подписку по идентификатору тарифного плана
// и возвращает идентификатор и статус, присвоенные шлюзом.
func (c *Client) CreateSubscription(ctx context.Context, planID string) (*SubscriptionResponse, error) {
	const op = "paymentgateway.CreateSubscription"

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions", CreateSubscriptionRequest{
		PlanID:         planID,
		CustomerNotify: 1,
		TotalCount:     12,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out SubscriptionResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// CancelSubscription отменяет подписку в шлюзе и возвращает её
// терминальный статус.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionResponse, error) {
	const op = "paymentgateway.CancelSubscription"

	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+subscriptionID+"/cancel", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out SubscriptionResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}

// CreateOrder создаёт разовый заказ на указанную сумму.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string) (*OrderResponse, error) {
	const op = "paymentgateway.CreateOrder"

	req, err := c.newRequest(ctx, http.MethodPost, "/orders", CreateOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out OrderResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &out, nil
}
