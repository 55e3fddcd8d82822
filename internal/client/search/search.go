// Package search provides the product search used by the client. Only a
// mock backend exists: it fabricates a fixed number of offers per query.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
)

const (
	DefaultDelay = 1500 * time.Millisecond
	ResultCount  = 5
	SnapshotSize = 3
)

var ErrEmptyQuery = errors.New("search query is empty")

var stores = []string{"Amazon", "eBay", "Best Buy", "Target", "Walmart"}

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.ResultSnapshot, error)
}

type MockOptions struct {
	Delay time.Duration
	// Rand overrides the price source. Nil means a process-wide generator.
	Rand *rand.Rand
}

type MockSearcher struct {
	delay time.Duration
	rnd   *rand.Rand
}

func NewMockSearcher(opts MockOptions) *MockSearcher {
	return &MockSearcher{delay: opts.Delay, rnd: opts.Rand}
}

// Search waits for the configured delay, then returns ResultCount offers.
// The wait is abandoned if ctx is done.
func (m *MockSearcher) Search(ctx context.Context, query string) ([]models.ResultSnapshot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	base := 50 + m.float()*500
	out := make([]models.ResultSnapshot, ResultCount)
	for i := range out {
		out[i] = models.ResultSnapshot{
			Name:     fmt.Sprintf("%s - Premium Quality Model %d", query, i+1),
			Price:    fmt.Sprintf("$%.2f", base+float64(i*20)),
			Store:    stores[i%len(stores)],
			URL:      fmt.Sprintf("https://example.com/product/%d", i),
			Verified: true,
		}
	}
	return out, nil
}

func (m *MockSearcher) float() float64 {
	if m.rnd != nil {
		return m.rnd.Float64()
	}
	return rand.Float64()
}

// Top returns at most n leading results as a new slice.
func Top(results []models.ResultSnapshot, n int) []models.ResultSnapshot {
	if n < 0 {
		n = 0
	}
	if n > len(results) {
		n = len(results)
	}
	out := make([]models.ResultSnapshot, n)
	copy(out, results[:n])
	return out
}
