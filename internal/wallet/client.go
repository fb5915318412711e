// Package wallet talks to the custodial wallet service holding the shop's
// crypto funds, and to the public price API used for fiat conversion.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Withdrawal is the quote/result of a withdrawal request. With dryRun the
// service only computes fees; without it the transfer is broadcast and
// TxIDList carries the resulting transaction ids.
type Withdrawal struct {
	ToAddress             string   `json:"toAddress"`
	TotalWithdrawalAmount float64  `json:"totalWithdrawalAmount"`
	BlockchainFeeAmount   float64  `json:"blockchainFeeAmount"`
	ServiceFeeAmount      float64  `json:"serviceFeeAmount"`
	ReceivingAmount       float64  `json:"receivingAmount"`
	TxIDList              []string `json:"txIdList"`
}

// Service is the contract the admin flows consume. Calls are fallible and
// never retried here; a failure surfaces to the admin as-is.
type Service interface {
	// GetBalance returns the held amount per currency, in whole coins.
	GetBalance(ctx context.Context) (map[Currency]float64, error)

	// Withdraw sweeps the balance of one currency to the given address.
	// With dryRun=true only the fee/amount quote is computed.
	Withdraw(ctx context.Context, currency Currency, toAddress string, dryRun bool) (*Withdrawal, error)

	// GetFiatPrice returns the price of one coin in the given fiat
	// currency (lowercase code, e.g. "usd").
	GetFiatPrice(ctx context.Context, currency Currency, fiat string) (float64, error)
}

// Client is the HTTP implementation of Service.
type Client struct {
	api    *resty.Client
	prices *resty.Client
}

// NewClient creates a wallet service client. baseURL points at the
// custodial service, priceURL at the CoinGecko-compatible price API.
func NewClient(baseURL, apiKey, priceURL string) *Client {
	api := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("X-Api-Key", apiKey)
	prices := resty.New().
		SetBaseURL(priceURL).
		SetTimeout(15 * time.Second)
	return &Client{api: api, prices: prices}
}

func (c *Client) GetBalance(ctx context.Context) (map[Currency]float64, error) {
	var out map[Currency]float64
	resp, err := c.api.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/balance")
	if err != nil {
		return nil, fmt.Errorf("wallet balance request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wallet balance request failed: %s", resp.Status())
	}
	return out, nil
}

func (c *Client) Withdraw(ctx context.Context, currency Currency, toAddress string, dryRun bool) (*Withdrawal, error) {
	var out Withdrawal
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"currency":  currency,
			"toAddress": toAddress,
			"dryRun":    dryRun,
		}).
		SetResult(&out).
		Post("/withdrawal")
	if err != nil {
		return nil, fmt.Errorf("wallet withdrawal request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wallet withdrawal request failed: %s", resp.Status())
	}
	return &out, nil
}

func (c *Client) GetFiatPrice(ctx context.Context, currency Currency, fiat string) (float64, error) {
	var out map[string]map[string]float64
	resp, err := c.prices.R().
		SetContext(ctx).
		SetQueryParam("ids", currency.CoingeckoName()).
		SetQueryParam("vs_currencies", fiat).
		SetResult(&out).
		Get("/simple/price")
	if err != nil {
		return 0, fmt.Errorf("price lookup failed: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("price lookup failed: %s", resp.Status())
	}
	price, ok := out[currency.CoingeckoName()][fiat]
	if !ok {
		return 0, fmt.Errorf("price lookup returned no %s/%s rate", currency, fiat)
	}
	return price, nil
}
