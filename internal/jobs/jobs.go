// Package jobs programa las tareas periódicas del servicio.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron"

	"grocery-mart/internal/models"
)

type MostSellerRefresher interface {
	Refresh(ctx context.Context) error
}

type PendingOrderFinder interface {
	StalePending(ctx context.Context, olderThan time.Duration) ([]*models.Order, error)
}

type Config struct {
	MostSellerRefresh string
	PendingSweep      string
	PendingMaxAge     time.Duration
}

type Scheduler struct {
	cron *cron.Cron
}

// Start registra y arranca los jobs; una programación vacía desactiva el job
func Start(cfg Config, ranking MostSellerRefresher, orders PendingOrderFinder) (*Scheduler, error) {
	c := cron.New()

	if cfg.MostSellerRefresh != "" {
		if err := c.AddFunc(cfg.MostSellerRefresh, func() { RefreshMostSellers(ranking) }); err != nil {
			return nil, fmt.Errorf("scheduling most seller refresh %q: %w", cfg.MostSellerRefresh, err)
		}
	}
	if cfg.PendingSweep != "" {
		if err := c.AddFunc(cfg.PendingSweep, func() { SweepPendingOrders(orders, cfg.PendingMaxAge) }); err != nil {
			return nil, fmt.Errorf("scheduling pending order sweep %q: %w", cfg.PendingSweep, err)
		}
	}

	c.Start()
	log.Println("⏰ Cron jobs started")
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func RefreshMostSellers(ranking MostSellerRefresher) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ranking.Refresh(ctx); err != nil {
		log.Printf("❌ refreshing most sellers: %v", err)
	}
}

// SweepPendingOrders reporta órdenes pendientes abandonadas
func SweepPendingOrders(orders PendingOrderFinder, maxAge time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stale, err := orders.StalePending(ctx, maxAge)
	if err != nil {
		log.Printf("❌ sweeping pending orders: %v", err)
		return 0
	}
	for _, o := range stale {
		log.Printf("🕒 order %s of user %s pending since %s", o.ID, o.UserID, o.UpdatedAt.Format(time.RFC3339))
	}
	return len(stale)
}
