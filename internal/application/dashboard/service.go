// Package dashboard aggregates entity counts for the admin landing page.
package dashboard

import (
	"context"

	"github.com/documentor-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Counts struct {
	Users               int `json:"users"`
	ActiveUsers         int `json:"active_users"`
	Apps                int `json:"apps"`
	Packages            int `json:"packages"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	Transactions        int `json:"transactions"`
	Conversions         int `json:"conversions"`
	ErrorLogs           int `json:"error_logs"`
}

// Counter counts items matching exact-value filters.
type Counter interface {
	Count(ctx context.Context, filters map[string]any) (int, error)
}

type Service interface {
	Counts(ctx context.Context) (*Counts, error)
}

type Sources struct {
	Users         Counter
	Apps          Counter
	Packages      Counter
	Subscriptions Counter
	Transactions  Counter
	Histories     Counter
	Logs          Counter
}

type service struct {
	src Sources
}

func NewService(src Sources) Service {
	return &service{src: src}
}

// Counts runs every count concurrently and fails if any of them fails.
func (s *service) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int, src Counter, filters map[string]any) {
		g.Go(func() error {
			n, err := src.Count(ctx, filters)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&c.Users, s.src.Users, nil)
	count(&c.ActiveUsers, s.src.Users, map[string]any{"is_active": true})
	count(&c.Apps, s.src.Apps, nil)
	count(&c.Packages, s.src.Packages, nil)
	count(&c.ActiveSubscriptions, s.src.Subscriptions, map[string]any{"status": domain.SubscriptionActive})
	count(&c.Transactions, s.src.Transactions, nil)
	count(&c.Conversions, s.src.Histories, nil)
	count(&c.ErrorLogs, s.src.Logs, map[string]any{"type": domain.LogError})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &c, nil
}
