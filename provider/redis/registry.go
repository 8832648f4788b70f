package redis

import (
	"errors"
	"net"
	"strconv"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Identity names a redis server endpoint plus logical database. Two
// identities that compare equal share one client through a Registry.
type Identity struct {
	Host string
	Port int
	DB   int
}

func (id Identity) withDefaults() Identity {
	if id.Host == "" {
		id.Host = "localhost"
	}
	if id.Port == 0 {
		id.Port = 6379
	}
	return id
}

func (id Identity) Addr() string {
	id = id.withDefaults()
	return net.JoinHostPort(id.Host, strconv.Itoa(id.Port))
}

// DialFunc builds a client for an identity. Implementations should not
// block on I/O; go-redis clients connect lazily on first use.
type DialFunc func(Identity) (goredis.UniversalClient, error)

func defaultDial(id Identity) (goredis.UniversalClient, error) {
	return goredis.NewClient(&goredis.Options{
		Addr: id.Addr(),
		DB:   id.DB,
	}), nil
}

// Registry hands out one shared client per identity. The dial function
// runs at most once per identity; concurrent callers for the same
// identity wait and receive the same client.
type Registry struct {
	mu      sync.Mutex
	dial    DialFunc
	clients map[Identity]goredis.UniversalClient
}

func NewRegistry(dial DialFunc) *Registry {
	if dial == nil {
		dial = defaultDial
	}
	return &Registry{
		dial:    dial,
		clients: make(map[Identity]goredis.UniversalClient),
	}
}

// Client returns the shared client for id, dialing on first request.
// The identity is normalized first, so {"", 0, 0} and
// {"localhost", 6379, 0} name the same client.
func (r *Registry) Client(id Identity) (goredis.UniversalClient, error) {
	id = id.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	c, err := r.dial(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNilClient
	}
	r.clients[id] = c
	return c, nil
}

// Provider wraps the shared client for id in a Redis provider. The
// provider does not own the client; closing it leaves the connection
// open for other users of the registry.
func (r *Registry) Provider(id Identity) (*Redis, error) {
	c, err := r.Client(id)
	if err != nil {
		return nil, err
	}
	return New(Config{Client: c})
}

// Len reports how many distinct clients the registry currently holds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close closes every dialed client and empties the registry. The first
// close error is returned; remaining clients are still closed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for id, c := range r.clients {
		if err := c.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) && first == nil {
			first = err
		}
		delete(r.clients, id)
	}
	return first
}
