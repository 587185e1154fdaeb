package ports

import (
	"context"

	"github.com/adawatch/charon/core"
)

// ChainData fetches on-chain information about an address from an external
// provider
type ChainData interface {
	AccountInfo(ctx context.Context, address string) (*core.AccountInfo, error)
	AddressTransactions(ctx context.Context, address string, page, count int) ([]core.Transaction, error)
}
