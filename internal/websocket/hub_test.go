package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id        string
	accountID uuid.UUID
	messages  [][]byte
	mu        sync.Mutex
	closed    bool
}

func newMockClient(id string, accountID uuid.UUID) *mockClient {
	return &mockClient{
		id:        id,
		accountID: accountID,
		messages:  make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) AccountID() uuid.UUID {
	return m.accountID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	acc1, acc2 := uuid.New(), uuid.New()

	client1 := newMockClient("client-1", acc1)
	client2 := newMockClient("client-2", acc1)
	client3 := newMockClient("client-3", acc2)

	// Register clients
	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	// Verify counts
	assert.Equal(t, 2, hub.ClientCount(acc1))
	assert.Equal(t, 1, hub.ClientCount(acc2))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))

	// Unregister one client from the first account
	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(acc1))

	// Unregister remaining clients
	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(acc1))
	assert.Equal(t, 0, hub.ClientCount(acc2))
}

func TestHub_Broadcast_AccountIsolation(t *testing.T) {
	hub := NewHub()
	acc1, acc2 := uuid.New(), uuid.New()

	client1a := newMockClient("client-1a", acc1)
	client1b := newMockClient("client-1b", acc1)
	client2 := newMockClient("client-2", acc2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	evt := TransactionCreated(map[string]interface{}{"id": "tx-42"})
	hub.Broadcast(acc1, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	msgs1a := client1a.GetMessages()
	msgs1b := client1b.GetMessages()
	assert.Len(t, msgs1a, 1, "client1a should receive 1 message")
	assert.Len(t, msgs1b, 1, "client1b should receive 1 message")

	msgs2 := client2.GetMessages()
	assert.Len(t, msgs2, 0, "client2 should not receive another account's events")
}

func TestHub_Broadcast_MultipleFanOut(t *testing.T) {
	hub := NewHub()

	accountID := uuid.New()

	// One account open in several tabs
	clients := make([]*mockClient, 5)
	for i := 0; i < 5; i++ {
		clients[i] = newMockClient("client-"+string(rune('a'+i)), accountID)
		hub.Register(clients[i])
	}

	evt := ReportReady(map[string]interface{}{"mode": "combined"})
	hub.Broadcast(accountID, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	// All clients should receive the message
	for i, c := range clients {
		msgs := c.GetMessages()
		assert.Len(t, msgs, 1, "client %d should receive message", i)
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50
	accounts := make([]uuid.UUID, 5)
	for i := range accounts {
		accounts[i] = uuid.New()
	}

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(uuid.NewString(), accounts[i%5])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()

	total := 0
	for _, acc := range accounts {
		total += hub.ClientCount(acc)
	}
	assert.Equal(t, clientCount, total)
	assert.Equal(t, clientCount, hub.TotalClientCount())

	// Concurrently broadcast and unregister
	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			evt := GoalUpdated(map[string]interface{}{"id": float64(idx)})
			hub.Broadcast(accounts[idx%5], evt)
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	// After unregistering all, counts should be 0
	for _, acc := range accounts {
		assert.Equal(t, 0, hub.ClientCount(acc))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", uuid.New())

	// Should not panic when unregistering a client that was never registered
	require.NotPanics(t, func() {
		hub.Unregister(client)
	})
}

func TestHub_BroadcastToAccountWithoutClients(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		evt := TransactionCreated(map[string]interface{}{"id": float64(1)})
		hub.Broadcast(uuid.New(), evt)
	})
}

func TestHub_Disconnect(t *testing.T) {
	hub := NewHub()
	acc1, acc2 := uuid.New(), uuid.New()

	a := newMockClient("a", acc1)
	b := newMockClient("b", acc1)
	other := newMockClient("c", acc2)
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	assert.Equal(t, 2, hub.Disconnect(acc1))
	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.False(t, other.IsClosed())
	assert.Equal(t, 0, hub.ClientCount(acc1))
	assert.Equal(t, 1, hub.ClientCount(acc2))
	assert.Equal(t, 0, hub.Disconnect(acc1))
}
