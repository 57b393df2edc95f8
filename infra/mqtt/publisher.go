package mqtt

import (
	"fmt"
	"sync"

	"github.com/gridflex/flexcore/core/bus"
)

// Client is the transport surface a Trader or market clearing loop needs:
// publish its own messages, subscribe to a counterparty's.
type Client interface {
	PublishBids(traderID string, bids bus.BidsAtTime) error
	PublishAward(traderID string, award bus.AwardData) error
	SubscribeAwards(traderID string, onAward func(bus.AwardData)) error
	SubscribeBids(traderID string, onBids func(bus.BidsAtTime)) error
	Disconnect()
}

// MockClient is an in-memory Client used in tests in place of a live broker.
type MockClient struct {
	mu            sync.Mutex
	Bids          map[string]bus.BidsAtTime
	Awards        map[string]bus.AwardData
	FailTraderIDs map[string]bool
	awardSubs     map[string]func(bus.AwardData)
	bidSubs       map[string]func(bus.BidsAtTime)
}

// NewMockClient returns a ready MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		Bids:          make(map[string]bus.BidsAtTime),
		Awards:        make(map[string]bus.AwardData),
		FailTraderIDs: make(map[string]bool),
		awardSubs:     make(map[string]func(bus.AwardData)),
		bidSubs:       make(map[string]func(bus.BidsAtTime)),
	}
}

// PublishBids records bids for traderID, or fails if configured to.
func (m *MockClient) PublishBids(traderID string, bids bus.BidsAtTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTraderIDs[traderID] {
		return fmt.Errorf("mock publish failed for %s", traderID)
	}
	m.Bids[traderID] = bids
	if sub, ok := m.bidSubs[traderID]; ok {
		sub(bids)
	}
	return nil
}

// PublishAward records an award for traderID, or fails if configured to.
func (m *MockClient) PublishAward(traderID string, award bus.AwardData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTraderIDs[traderID] {
		return fmt.Errorf("mock publish failed for %s", traderID)
	}
	m.Awards[traderID] = award
	if sub, ok := m.awardSubs[traderID]; ok {
		sub(award)
	}
	return nil
}

// SubscribeAwards registers onAward to be called by future PublishAward
// calls addressed to traderID.
func (m *MockClient) SubscribeAwards(traderID string, onAward func(bus.AwardData)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awardSubs[traderID] = onAward
	return nil
}

// SubscribeBids registers onBids to be called by future PublishBids calls
// addressed to traderID.
func (m *MockClient) SubscribeBids(traderID string, onBids func(bus.BidsAtTime)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bidSubs[traderID] = onBids
	return nil
}

// Disconnect is a no-op for MockClient.
func (m *MockClient) Disconnect() {}
