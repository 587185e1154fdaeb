// Package blockfrost implements the chain data port against the
// Blockfrost HTTP API.
package blockfrost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/adawatch/charon/core"
	"github.com/adawatch/charon/ports"
)

var networkBaseURLs = map[string]string{
	"mainnet": "https://cardano-mainnet.blockfrost.io/api/v0",
	"preprod": "https://cardano-preprod.blockfrost.io/api/v0",
	"preview": "https://cardano-preview.blockfrost.io/api/v0",
}

const (
	accountCacheTTL = 2 * time.Minute
	// transaction details are immutable once on chain
	txCacheTTL = time.Hour
)

// Client talks to the Blockfrost API for one network. Responses are cached
// so that repeated dashboard loads do not burn through the project's
// request quota.
type Client struct {
	http      *http.Client
	baseURL   string
	projectID string
	cache     *gocache.Cache
}

// New creates a client for the given network ("mainnet", "preprod",
// "preview"); unknown networks fall back to preprod like the upstream
// deployment did.
func New(projectID, network string) *Client {
	baseURL, ok := networkBaseURLs[network]
	if !ok {
		baseURL = networkBaseURLs["preprod"]
	}
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		projectID: projectID,
		cache:     gocache.New(accountCacheTTL, 10*time.Minute),
	}
}

// WithBaseURL points the client at a different endpoint, for tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type addressInfo struct {
	ControlledAmount string  `json:"controlled_amount"`
	StakeAddress     *string `json:"stake_address"`
	TxCount          int     `json:"tx_count"`
}

type addressTransaction struct {
	TxHash      string `json:"tx_hash"`
	Block       string `json:"block"`
	BlockHeight uint64 `json:"block_height"`
	BlockTime   uint64 `json:"block_time"`
	Slot        uint64 `json:"slot"`
	Index       uint32 `json:"index"`
}

type txDetails struct {
	Hash string `json:"hash"`
	Fees string `json:"fees"`
}

// AccountInfo fetches the balance and transaction count for an address
func (c *Client) AccountInfo(ctx context.Context, address string) (*core.AccountInfo, error) {
	cacheKey := "account:" + address
	if cached, ok := c.cache.Get(cacheKey); ok {
		info := cached.(core.AccountInfo)
		return &info, nil
	}

	var info addressInfo
	if err := c.get(ctx, "/addresses/"+url.PathEscape(address), nil, &info); err != nil {
		return nil, err
	}

	balance, err := decimal.NewFromString(info.ControlledAmount)
	if err != nil {
		return nil, fmt.Errorf("unparseable controlled_amount %q: %w", info.ControlledAmount, err)
	}

	result := core.AccountInfo{
		Balance: balance,
		TxCount: info.TxCount,
	}
	if info.StakeAddress != nil {
		result.StakeAddress = *info.StakeAddress
	}

	c.cache.Set(cacheKey, result, accountCacheTTL)
	return &result, nil
}

// AddressTransactions fetches one page of transactions for an address,
// resolving the fee of each through the transaction details endpoint.
func (c *Client) AddressTransactions(ctx context.Context, address string, page, count int) ([]core.Transaction, error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"count": {strconv.Itoa(count)},
	}

	var txs []addressTransaction
	if err := c.get(ctx, "/addresses/"+url.PathEscape(address)+"/transactions", query, &txs); err != nil {
		return nil, err
	}

	transactions := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		fees, err := c.transactionFees(ctx, tx.TxHash)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, core.Transaction{
			Hash:        tx.TxHash,
			Block:       tx.Block,
			BlockHeight: tx.BlockHeight,
			BlockTime:   tx.BlockTime,
			Slot:        tx.Slot,
			Index:       tx.Index,
			Fees:        fees,
		})
	}
	return transactions, nil
}

func (c *Client) transactionFees(ctx context.Context, hash string) (decimal.Decimal, error) {
	cacheKey := "tx:" + hash
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(decimal.Decimal), nil
	}

	var details txDetails
	if err := c.get(ctx, "/txs/"+url.PathEscape(hash), nil, &details); err != nil {
		return decimal.Decimal{}, err
	}

	fees, err := decimal.NewFromString(details.Fees)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable fees %q: %w", details.Fees, err)
	}

	c.cache.Set(cacheKey, fees, txCacheTTL)
	return fees, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("project_id", c.projectID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("blockfrost request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("blockfrost returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse blockfrost response: %w", err)
	}
	return nil
}

var _ ports.ChainData = (*Client)(nil)
