// ABOUTME: Charm KV client used as the blob store for deal attachments
// ABOUTME: Wraps charm/kv in production and a local BadgerDB in tests

package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Key namespaces shared with the uploads store.
const (
	BlobPrefix = "blob/"
	MetaPrefix = "meta/"
)

// Options selects the charm server and write behaviour.
type Options struct {
	// Name is the KV database name, usually the app name.
	Name string
	// Host is the charm server hostname.
	Host string
	// AutoSync pushes to the server after every write.
	AutoSync bool
}

// store is the subset of charm/kv the client relies on.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client is a thread-safe KV handle.
type Client struct {
	mu     sync.RWMutex
	kv     store
	opts   Options
	remote bool
}

// Open connects to the charm KV named opts.Name, pulling remote changes first when AutoSync is set.
func Open(opts Options) (*Client, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("charm kv name is required")
	}
	if opts.Host != "" {
		_ = os.Setenv("CHARM_HOST", opts.Host)
	}

	db, err := kv.OpenWithDefaults(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, opts: opts, remote: true}
	if opts.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

func (c *Client) Options() Options {
	return c.opts
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	if !c.remote {
		return "local", nil
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether the charm server answers.
func (c *Client) IsConnected() bool {
	_, err := c.ID()
	return err == nil
}

// Sync pushes and pulls changes with the charm server.
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set(key, value); err != nil {
		return err
	}
	if c.opts.AutoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// Delete removes a key and syncs if enabled.
func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete(key); err != nil {
		return err
	}
	if c.opts.AutoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// KeysWithPrefix returns all keys starting with prefix.
func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	c.mu.RLock()
	keys, err := c.kv.Keys()
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	var matched [][]byte
	for _, k := range keys {
		if bytes.HasPrefix(k, prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// Reset wipes every key from the local store.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
