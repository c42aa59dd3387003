// Package monitoring считает статистику обменов по ботам и отдаёт её в
// Prometheus.
package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trade_exchange/internal/domain/entity"
	"trade_exchange/internal/domain/value"
)

const (
	labelBot       = "bot"
	labelOutcome   = "outcome"
	labelDirection = "direction"

	outcomeConfirmed = "confirmed"
	directionGiven   = "given"
	directionRecv    = "received"
)

type Collector struct {
	offers       *prometheus.CounterVec
	items        *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec

	mu    sync.Mutex
	stats map[string]*entity.TradeStatistics
}

func NewCollector(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		offers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_offers_total",
			Help: "Handled trade offers by outcome",
		}, []string{labelBot, labelOutcome}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_items_total",
			Help: "Items moved by confirmed trades",
		}, []string{labelBot, labelDirection}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_passes_total",
			Help: "Finished trade passes",
		}, []string{labelBot}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trade_pass_duration_seconds",
			Help:    "Duration of a trade pass",
			Buckets: prometheus.DefBuckets,
		}, []string{labelBot}),
		stats: make(map[string]*entity.TradeStatistics),
	}

	for _, collector := range []prometheus.Collector{c.offers, c.items, c.passes, c.passDuration} {
		if err := registerer.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	return c, nil
}

// OnBatchResultsReady учитывает результаты прохода.
func (c *Collector) OnBatchResultsReady(_ context.Context, botName string, results []entity.TradeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.stats[botName]
	if !ok {
		stats = &entity.TradeStatistics{}
		c.stats[botName] = stats
	}

	for _, result := range results {
		stats.Include(result)

		if result.Outcome == value.OutcomeTryAgain {
			continue
		}

		c.offers.WithLabelValues(botName, result.Outcome.String()).Inc()

		if result.Outcome == value.OutcomeAccepted && result.Confirmed {
			c.offers.WithLabelValues(botName, outcomeConfirmed).Inc()
			c.items.WithLabelValues(botName, directionGiven).Add(float64(len(result.ItemsToGive)))
			c.items.WithLabelValues(botName, directionRecv).Add(float64(len(result.ItemsToReceive)))
		}
	}
}

func (c *Collector) ObservePass(botName string, duration time.Duration, _ int) {
	c.passes.WithLabelValues(botName).Inc()
	c.passDuration.WithLabelValues(botName).Observe(duration.Seconds())
}

// Snapshot возвращает копию статистики бота.
func (c *Collector) Snapshot(botName string) entity.TradeStatistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stats, ok := c.stats[botName]; ok {
		return *stats
	}

	return entity.TradeStatistics{}
}
