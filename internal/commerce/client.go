package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ClientConfig configures the HTTP commerce client.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	SiteID       string
	Timeout      time.Duration
}

// Client talks to the commerce REST API. Calls go through a circuit breaker
// that only counts transport failures and 5xx responses.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ Backend = (*Client)(nil)

// NewClient creates a new commerce API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "commerce-api",
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				var respErr *ResponseError
				if errors.As(err, &respErr) {
					return respErr.StatusCode < http.StatusInternalServerError
				}
				return err == nil
			},
		}),
	}
}

func (c *Client) LoginGuest(ctx context.Context) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/guest", "", nil, &out, func(req *http.Request) {
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	})
	if err != nil {
		return nil, fmt.Errorf("guest login failed: %w", err)
	}
	return &out, nil
}

func (c *Client) CreateBasket(ctx context.Context, token string) (*Basket, error) {
	return c.basket(ctx, http.MethodPost, "/baskets", token, struct{}{})
}

func (c *Client) GetBasket(ctx context.Context, token, basketID string) (*Basket, error) {
	return c.basket(ctx, http.MethodGet, basketPath(basketID), token, nil)
}

func (c *Client) AddItemsToBasket(ctx context.Context, token, basketID string, items []ProductItemRequest) (*Basket, error) {
	return c.basket(ctx, http.MethodPost, basketPath(basketID)+"/items", token, items)
}

func (c *Client) UpdateCustomerForBasket(ctx context.Context, token, basketID, email string) (*Basket, error) {
	return c.basket(ctx, http.MethodPut, basketPath(basketID)+"/customer", token, CustomerInfo{Email: email})
}

func (c *Client) UpdateShippingAddressForShipment(ctx context.Context, token, basketID, shipmentID string, address OrderAddress) (*Basket, error) {
	return c.basket(ctx, http.MethodPut, shipmentPath(basketID, shipmentID)+"/shipping-address", token, address)
}

func (c *Client) UpdateShippingMethodForShipment(ctx context.Context, token, basketID, shipmentID, shippingMethodID string) (*Basket, error) {
	return c.basket(ctx, http.MethodPut, shipmentPath(basketID, shipmentID)+"/shipping-method", token, ShippingMethod{ID: shippingMethodID})
}

func (c *Client) GetShippingMethodsForShipment(ctx context.Context, token, basketID, shipmentID string) (*ShippingMethodResult, error) {
	var out ShippingMethodResult
	if err := c.do(ctx, http.MethodGet, shipmentPath(basketID, shipmentID)+"/shipping-methods", token, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBillingAddressForBasket(ctx context.Context, token, basketID string, address OrderAddress) (*Basket, error) {
	return c.basket(ctx, http.MethodPut, basketPath(basketID)+"/billing-address", token, address)
}

func (c *Client) AddPaymentInstrumentToBasket(ctx context.Context, token, basketID string, req PaymentInstrumentRequest) (*Basket, error) {
	return c.basket(ctx, http.MethodPost, basketPath(basketID)+"/payment-instruments", token, req)
}

func (c *Client) CreateOrder(ctx context.Context, token, basketID string) (*Order, error) {
	var out Order
	body := map[string]string{"basketId": basketID}
	if err := c.do(ctx, http.MethodPost, "/orders", token, body, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, token, orderNo string) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderNo), token, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, token, productID string) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), token, nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) basket(ctx context.Context, method, path, token string, in any) (*Basket, error) {
	var out Basket
	if err := c.do(ctx, method, path, token, in, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

func basketPath(basketID string) string {
	return "/baskets/" + url.PathEscape(basketID)
}

func shipmentPath(basketID, shipmentID string) string {
	return basketPath(basketID) + "/shipments/" + url.PathEscape(shipmentID)
}

// do performs one API call. Non-2xx responses are decoded into a
// ResponseError; a body that is not an envelope keeps only the status.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any, prepare func(*http.Request)) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = b
	}

	u := c.cfg.BaseURL + path
	if c.cfg.SiteID != "" {
		u += "?" + url.Values{"siteId": {c.cfg.SiteID}}.Encode()
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if prepare != nil {
			prepare(req)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			respErr := &ResponseError{StatusCode: resp.StatusCode}
			if jsonErr := json.Unmarshal(data, respErr); jsonErr != nil || respErr.Title == "" {
				respErr.Title = http.StatusText(resp.StatusCode)
			}
			return nil, respErr
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
