package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"
)

// Balance is the hosting account balance shown on the status page.
type Balance struct {
	MonthToDate    string `json:"monthToDate"`
	AccountBalance string `json:"accountBalance"`
}

type client struct {
	api *godo.Client
}

func NewClient(token string) *client {
	return &client{
		api: godo.NewFromToken(token),
	}
}

func (c *client) GetBalance(ctx context.Context) (*Balance, error) {
	b, _, err := c.api.Balance.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching balance: %w", err)
	}

	return &Balance{
		MonthToDate:    b.MonthToDateBalance,
		AccountBalance: b.AccountBalance,
	}, nil
}
