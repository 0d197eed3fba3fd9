// Package catalog implements the demo resource catalog: a fixed set of
// resources with cursor-based listing, per-URI reads, and subscriptions
// that emit periodic update notifications.
package catalog

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const (
	numResources = 100
	pageSize     = 10

	// DefaultUpdateInterval is how often each subscribed URI gets an
	// update notification.
	DefaultUpdateInterval = 10 * time.Second
)

// Resource is one catalog entry together with its content. Text entries
// carry Text; binary entries carry Blob (base64).
type Resource struct {
	URI      string
	Name     string
	MIMEType string
	Text     string
	Blob     string
}

// Page is one listing page. An empty NextCursor signals the end of the
// collection.
type Page struct {
	Resources  []Resource
	NextCursor string
}

// UpdateFunc receives the URI of a subscribed resource that changed.
type UpdateFunc func(uri string)

// Catalog holds the fixed resource set and the live subscription state.
// The resource set is immutable; the subscription set is guarded by mu.
type Catalog struct {
	resources []Resource
	byURI     map[string]Resource

	mu          sync.Mutex
	subscribers map[string]struct{}

	interval time.Duration
	onUpdate UpdateFunc
	logger   *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Config configures a Catalog.
type Config struct {
	// OnUpdate is called once per subscribed URI per interval. May be nil.
	OnUpdate UpdateFunc
	// UpdateInterval defaults to DefaultUpdateInterval.
	UpdateInterval time.Duration
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New creates the catalog and starts the background update notifier.
// Callers must call Close to stop it.
func New(cfg Config) *Catalog {
	interval := cfg.UpdateInterval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		subscribers: make(map[string]struct{}),
		interval:    interval,
		onUpdate:    cfg.OnUpdate,
		logger:      logger,
		done:        make(chan struct{}),
	}
	c.generate()

	go c.notifyLoop()

	return c
}

// generate builds the fixed resource set: odd-numbered entries are plain
// text, even-numbered entries are base64 blobs.
func (c *Catalog) generate() {
	c.byURI = make(map[string]Resource, numResources)
	for i := 1; i <= numResources; i++ {
		uri := fmt.Sprintf("demo://resource/%d", i)
		resource := Resource{
			URI:  uri,
			Name: fmt.Sprintf("Resource %d", i),
		}
		if i%2 == 1 {
			resource.MIMEType = "text/plain"
			resource.Text = fmt.Sprintf("Resource %d: this is a plain text resource", i)
		} else {
			resource.MIMEType = "application/octet-stream"
			resource.Blob = base64.StdEncoding.EncodeToString(
				[]byte(fmt.Sprintf("Resource %d: this is a base64 blob", i)))
		}
		c.resources = append(c.resources, resource)
		c.byURI[uri] = resource
	}
}

// Resources returns the full immutable resource set.
func (c *Catalog) Resources() []Resource {
	return c.resources
}

// List returns one page of resources. The cursor is opaque to callers; an
// empty cursor starts at the beginning.
func (c *Catalog) List(cursor string) (Page, error) {
	start := 0
	if cursor != "" {
		offset, err := decodeCursor(cursor)
		if err != nil {
			return Page{}, err
		}
		start = offset
	}
	if start < 0 || start > len(c.resources) {
		return Page{}, fmt.Errorf("cursor out of range: %d", start)
	}

	end := start + pageSize
	if end > len(c.resources) {
		end = len(c.resources)
	}

	page := Page{Resources: c.resources[start:end]}
	if end < len(c.resources) {
		page.NextCursor = encodeCursor(end)
	}
	return page, nil
}

// Read returns the content entries for one URI.
func (c *Catalog) Read(uri string) ([]Resource, error) {
	resource, ok := c.byURI[uri]
	if !ok {
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
	return []Resource{resource}, nil
}

// Subscribe registers interest in updates for one URI.
func (c *Catalog) Subscribe(uri string) error {
	if _, ok := c.byURI[uri]; !ok {
		return fmt.Errorf("resource not found: %s", uri)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[uri] = struct{}{}
	return nil
}

// Unsubscribe removes a subscription. Unsubscribing an unknown URI is a
// no-op.
func (c *Catalog) Unsubscribe(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscribers, uri)
}

// Close stops the background notifier. Safe to call more than once.
func (c *Catalog) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Catalog) notifyLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		subscribed := make([]string, 0, len(c.subscribers))
		for uri := range c.subscribers {
			subscribed = append(subscribed, uri)
		}
		c.mu.Unlock()

		for _, uri := range subscribed {
			c.logger.Debug("resource updated", "uri", uri)
			if c.onUpdate != nil {
				c.onUpdate(uri)
			}
		}
	}
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil {
		return 0, fmt.Errorf("invalid cursor: %w", err)
	}
	return offset, nil
}
