package snapscan

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// cashUpDateLayout is the timestamp format of POST cash_ups, always UTC.
const cashUpDateLayout = "2006-01-02T15:04:05Z"

// Domain methods return the response body decoded into generic JSON values
// (map[string]any, []any, string, float64, bool or nil). Its shape is defined
// by the merchant API and passed through untouched.

func (c *Client) CreateCashUpPeriod(timestamp time.Time, reference string) (any, error) {
	return c.CreateCashUpPeriodWithContext(context.Background(), timestamp, reference)
}

// CreateCashUpPeriodWithContext closes the current cash-up period at timestamp
// and labels it with reference.
func (c *Client) CreateCashUpPeriodWithContext(ctx context.Context, timestamp time.Time, reference string) (any, error) {
	payload := cashUpRequest{
		Date:      timestamp.UTC().Format(cashUpDateLayout),
		Reference: reference,
	}

	var confirmation any
	if err := c.Post(ctx, "cash_ups", payload, &confirmation); err != nil {
		return nil, fmt.Errorf("failed to create cash up period: %w", err)
	}

	return confirmation, nil
}

func (c *Client) GetCashUps(pagination *Pagination) (any, error) {
	return c.GetCashUpsWithContext(context.Background(), pagination)
}

// GetCashUpsWithContext lists cash-up references, newest first as ordered by the API.
func (c *Client) GetCashUpsWithContext(ctx context.Context, pagination *Pagination) (any, error) {
	var cashUps any
	if err := c.Get(ctx, "cash_ups", pagination, &cashUps); err != nil {
		return nil, fmt.Errorf("failed to list cash ups: %w", err)
	}

	return cashUps, nil
}

func (c *Client) GetCashUpPayments(reference string, pagination *Pagination) (any, error) {
	return c.GetCashUpPaymentsWithContext(context.Background(), reference, pagination)
}

// GetCashUpPaymentsWithContext lists the payments of a cash-up period.
// A freshly created period may not be visible yet, so server errors are
// retried with a fixed delay up to Config.MaxRetries attempts.
func (c *Client) GetCashUpPaymentsWithContext(ctx context.Context, reference string, pagination *Pagination) (any, error) {
	_, logger, retryConfig := c.snapshot()
	endpoint := fmt.Sprintf("payments/cash_ups/%s", url.PathEscape(reference))

	var payments any
	err := retryOnServerError(ctx, retryConfig, logger, "get cash up payments", func() error {
		payments = nil
		return c.Get(ctx, endpoint, pagination, &payments)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get payments for cash up %q: %w", reference, err)
	}

	return payments, nil
}

func (c *Client) GetPayments(pagination *Pagination) (any, error) {
	return c.GetPaymentsWithContext(context.Background(), pagination)
}

func (c *Client) GetPaymentsWithContext(ctx context.Context, pagination *Pagination) (any, error) {
	var payments any
	if err := c.Get(ctx, "payments", pagination, &payments); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

func (c *Client) GetPayment(id int64) (any, error) {
	return c.GetPaymentWithContext(context.Background(), id)
}

func (c *Client) GetPaymentWithContext(ctx context.Context, id int64) (any, error) {
	var payment any
	if err := c.Get(ctx, fmt.Sprintf("payments/%d", id), nil, &payment); err != nil {
		return nil, fmt.Errorf("failed to get payment %d: %w", id, err)
	}

	return payment, nil
}
