package host

import (
	"sync"
	"testing"

	sshtesting "github.com/redpencil/rpio/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
)

func TestConnectionCache_SetAndGet(t *testing.T) {
	cache := NewConnectionCache()
	assert.Equal(t, 0, cache.Size())
	assert.Nil(t, cache.Get("web1"))

	conn := &Connection{Alias: "web1", Client: sshtesting.NewMockClient("web1")}
	cache.Set("web1", conn)

	assert.Same(t, conn, cache.Get("web1"))
	assert.Equal(t, 1, cache.Size())
}

func TestConnectionCache_EvictsDeadConnections(t *testing.T) {
	tests := []struct {
		name string
		conn func() *Connection
	}{
		{"no client", func() *Connection { return &Connection{Alias: "web1"} }},
		{"closed client", func() *Connection {
			client := sshtesting.NewMockClient("web1")
			client.Close()
			return &Connection{Alias: "web1", Client: client}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewConnectionCache()
			cache.Set("web1", tt.conn())

			assert.Nil(t, cache.Get("web1"))
			assert.Equal(t, 0, cache.Size())
		})
	}
}

func TestConnectionCache_SetReplacesAndCloses(t *testing.T) {
	cache := NewConnectionCache()
	old := sshtesting.NewMockClient("web1")
	cache.Set("web1", &Connection{Alias: "web1", Client: old})

	fresh := &Connection{Alias: "web1", Client: sshtesting.NewMockClient("web1")}
	cache.Set("web1", fresh)

	assert.True(t, old.IsClosed())
	assert.Same(t, fresh, cache.Get("web1"))

	// Setting the same connection again must not close it.
	cache.Set("web1", fresh)
	assert.NotNil(t, cache.Get("web1"))
}

func TestConnectionCache_CloseAll(t *testing.T) {
	cache := NewConnectionCache()
	var clients []*sshtesting.MockClient
	for _, name := range []string{"host1", "host2", "host3"} {
		client := sshtesting.NewMockClient(name)
		clients = append(clients, client)
		cache.Set(name, &Connection{Alias: name, Client: client})
	}

	cache.CloseAll()

	assert.Equal(t, 0, cache.Size())
	for _, c := range clients {
		assert.True(t, c.IsClosed())
	}
}

func TestConnectionCache_ConcurrentUse(t *testing.T) {
	cache := NewConnectionCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Set("host", &Connection{Alias: "host", Client: sshtesting.NewMockClient("host")})
			cache.Get("host")
			cache.Size()
		}()
	}
	wg.Wait()
	cache.CloseAll()
}

func TestConnectionCache_Remove(t *testing.T) {
	cache := NewConnectionCache()
	client := sshtesting.NewMockClient("web1")
	cache.Set("web1", &Connection{Alias: "web1", Client: client})

	cache.Remove("web1")
	assert.True(t, client.IsClosed())
	assert.Nil(t, cache.Get("web1"))
	assert.Equal(t, 0, cache.Size())

	assert.NotPanics(t, func() { cache.Remove("never-cached") })
}
