// Package notifier is the device notification center: permission state,
// delivery channels, action categories, cron-backed triggers, the tray of
// delivered notifications and the response listener subscription.
package notifier

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"medreminder/internal/infrastructure/scheduler"
	appErrors "medreminder/internal/pkg/errors"
	"medreminder/internal/pkg/logger"
	"medreminder/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type scheduledEntry struct {
	request Request
	entryID cron.EntryID
}

// Center is the notification center. Construct it with NewCenter and stop it
// with Stop.
type Center struct {
	sched     *scheduler.Scheduler
	log       logger.Logger
	metrics   *metrics.Metrics
	platform  string
	prompter  Prompter
	presenter Presenter
	now       func() time.Time

	mu         sync.Mutex
	permission PermissionStatus
	channels   map[string]Channel
	categories map[string]Category
	entries    map[string]scheduledEntry
	presented  map[string]Notification

	listenersMu  sync.RWMutex
	listeners    map[int]ResponseListener
	nextListener int
}

// Option configures a Center.
type Option func(*Center)

// WithPlatform sets the platform ("android" or "ios"). Android requires
// explicit delivery channels.
func WithPlatform(platform string) Option {
	return func(c *Center) { c.platform = strings.ToLower(platform) }
}

// WithPrompter sets how permission requests are answered. The default grants.
func WithPrompter(p Prompter) Option {
	return func(c *Center) { c.prompter = p }
}

// WithPresenter sets where delivered notifications are shown.
func WithPresenter(p Presenter) Option {
	return func(c *Center) { c.presenter = p }
}

// WithMetrics records delivery counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Center) { c.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// NewCenter creates a Center whose triggers run on sched.
func NewCenter(sched *scheduler.Scheduler, log logger.Logger, opts ...Option) *Center {
	c := &Center{
		sched:      sched,
		log:        log,
		platform:   "android",
		prompter:   func(context.Context, Capabilities) PermissionStatus { return PermissionGranted },
		now:        time.Now,
		permission: PermissionUndetermined,
		channels:   make(map[string]Channel),
		categories: make(map[string]Category),
		entries:    make(map[string]scheduledEntry),
		presented:  make(map[string]Notification),
		listeners:  make(map[int]ResponseListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Platform returns the configured platform.
func (c *Center) Platform() string {
	return c.platform
}

// RequiresChannels reports whether notifications need a registered channel.
func (c *Center) RequiresChannels() bool {
	return c.platform == "android"
}

// GetPermissions returns the current authorization state.
func (c *Center) GetPermissions(ctx context.Context) (PermissionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission, nil
}

// RequestPermissions prompts for caps and stores the answer. A denied answer
// is sticky, like on a real device: later requests return denied without
// prompting again.
func (c *Center) RequestPermissions(ctx context.Context, caps Capabilities) (PermissionStatus, error) {
	c.mu.Lock()
	current := c.permission
	c.mu.Unlock()

	if current == PermissionGranted || current == PermissionDenied {
		return current, nil
	}

	status := c.prompter(ctx, caps)
	if status != PermissionGranted {
		status = PermissionDenied
	}

	c.mu.Lock()
	c.permission = status
	c.mu.Unlock()
	c.log.Info(fmt.Sprintf("Notification permission %s", status))
	return status, nil
}

// SetChannel registers a delivery channel. Registering an identical channel
// again is a no-op.
func (c *Center) SetChannel(ctx context.Context, ch Channel) error {
	if ch.ID == "" {
		return fmt.Errorf("%w: channel id is required", appErrors.ErrScheduling)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.channels[ch.ID]; ok && reflect.DeepEqual(existing, ch) {
		c.log.Debug(fmt.Sprintf("Channel %s already registered", ch.ID))
		return nil
	}
	c.channels[ch.ID] = ch
	c.log.Info(fmt.Sprintf("Registered notification channel %s", ch.ID))
	return nil
}

// Channel returns a registered channel.
func (c *Center) Channel(id string) (Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.channels[id]
	return ch, ok
}

// SetCategory registers or replaces a category.
func (c *Center) SetCategory(ctx context.Context, cat Category) error {
	if cat.Identifier == "" {
		return fmt.Errorf("%w: category identifier is required", appErrors.ErrScheduling)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories[cat.Identifier] = cat
	c.log.Info(fmt.Sprintf("Registered notification category %s with %d actions", cat.Identifier, len(cat.Actions)))
	return nil
}

// Category returns a registered category.
func (c *Center) Category(id string) (Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cat, ok := c.categories[id]
	return cat, ok
}

// Schedule registers req and returns its identifier. An empty identifier is
// replaced by a generated one. Scheduling an identifier that is already live
// replaces the existing trigger.
func (c *Center) Schedule(ctx context.Context, req Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.permission != PermissionGranted {
		return "", appErrors.ErrNotAuthorized
	}
	if req.Identifier == "" {
		req.Identifier = uuid.NewString()
	}
	if c.RequiresChannels() && req.Trigger.ChannelID != "" {
		if _, ok := c.channels[req.Trigger.ChannelID]; !ok {
			c.log.Warn(fmt.Sprintf("Channel %s is not registered, %s will use the default channel", req.Trigger.ChannelID, req.Identifier))
		}
	}

	var spec string
	switch {
	case req.Trigger.Repeats:
		if req.Trigger.Hour < 0 || req.Trigger.Hour > 23 || req.Trigger.Minute < 0 || req.Trigger.Minute > 59 {
			return "", fmt.Errorf("%w: invalid daily trigger %02d:%02d", appErrors.ErrScheduling, req.Trigger.Hour, req.Trigger.Minute)
		}
		spec = scheduler.DailySpec(req.Trigger.Hour, req.Trigger.Minute)
	case !req.Trigger.Date.IsZero():
		if !req.Trigger.Date.After(c.now()) {
			return "", fmt.Errorf("%w: trigger date %s is in the past", appErrors.ErrScheduling, req.Trigger.Date.Format(time.RFC3339))
		}
		spec = scheduler.OnceSpec(req.Trigger.Date)
	default:
		return "", fmt.Errorf("%w: trigger has neither a daily time nor a date", appErrors.ErrScheduling)
	}

	if old, ok := c.entries[req.Identifier]; ok {
		c.sched.RemoveJob(old.entryID)
		c.log.Debug(fmt.Sprintf("Replacing scheduled notification %s", req.Identifier))
	}

	id := req.Identifier
	entryID, err := c.sched.AddJob(spec, func() { c.Fire(context.Background(), id) })
	if err != nil {
		delete(c.entries, id)
		return "", fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	c.entries[id] = scheduledEntry{request: req, entryID: entryID}
	return id, nil
}

// Cancel removes a scheduled request. Unknown identifiers are ignored.
func (c *Center) Cancel(ctx context.Context, identifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[identifier]
	if !ok {
		c.log.Debug(fmt.Sprintf("No scheduled notification %s to cancel", identifier))
		return nil
	}
	c.sched.RemoveJob(entry.entryID)
	delete(c.entries, identifier)
	return nil
}

// Scheduled lists live requests ordered by identifier.
func (c *Center) Scheduled(ctx context.Context) ([]ScheduledRequest, error) {
	c.mu.Lock()
	entries := make([]scheduledEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	out := make([]ScheduledRequest, 0, len(entries))
	for _, e := range entries {
		out = append(out, ScheduledRequest{Request: e.request, NextTrigger: c.sched.Next(e.entryID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}

// ScheduledRequestByID returns a live request.
func (c *Center) ScheduledRequestByID(identifier string) (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identifier]
	return e.request, ok
}

// Fire delivers the request now: the notification enters the tray and is
// handed to the presenter. One-shot requests are removed afterwards. It is
// what the cron job runs, and can be called directly to deliver early.
func (c *Center) Fire(ctx context.Context, identifier string) (Notification, error) {
	c.mu.Lock()
	entry, ok := c.entries[identifier]
	if !ok {
		c.mu.Unlock()
		return Notification{}, fmt.Errorf("%w: no scheduled notification %s", appErrors.ErrScheduling, identifier)
	}
	n := Notification{Request: entry.request, Date: c.now()}
	c.presented[identifier] = n
	if !entry.request.Trigger.Repeats {
		c.sched.RemoveJob(entry.entryID)
		delete(c.entries, identifier)
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Deliveries.Inc()
	}
	c.log.Info(fmt.Sprintf("Delivered notification %s: %s", identifier, n.Request.Content.Title))

	if c.presenter != nil {
		if err := c.presenter.Present(ctx, n); err != nil {
			c.log.Error(fmt.Sprintf("Failed to present notification %s", identifier), err)
		}
	}
	return n, nil
}

// Presented lists delivered notifications still in the tray.
func (c *Center) Presented(ctx context.Context) ([]Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.presented))
	for _, n := range c.presented {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Request.Identifier < out[j].Request.Identifier })
	return out, nil
}

// PresentedByID returns a delivered notification still in the tray.
func (c *Center) PresentedByID(identifier string) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.presented[identifier]
	return n, ok
}

// Dismiss removes a delivered notification from the tray.
func (c *Center) Dismiss(ctx context.Context, identifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.presented, identifier)
	return nil
}

// DismissAll empties the tray.
func (c *Center) DismissAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presented = make(map[string]Notification)
	return nil
}

// Subscription is the handle returned by AddResponseListener.
type Subscription struct {
	center *Center
	id     int
	once   sync.Once
}

// Remove unregisters the listener. It is safe to call more than once.
func (s *Subscription) Remove() {
	if s == nil || s.center == nil {
		return
	}
	s.once.Do(func() {
		s.center.listenersMu.Lock()
		delete(s.center.listeners, s.id)
		s.center.listenersMu.Unlock()
	})
}

// AddResponseListener registers fn for every response event.
func (c *Center) AddResponseListener(fn ResponseListener) *Subscription {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	c.nextListener++
	c.listeners[c.nextListener] = fn
	return &Subscription{center: c, id: c.nextListener}
}

// ListenerCount returns the number of registered response listeners.
func (c *Center) ListenerCount() int {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	return len(c.listeners)
}

// Respond delivers a response event to every listener. Each listener runs in
// its own goroutine, detached from ctx cancellation, and Respond returns
// without waiting for them.
func (c *Center) Respond(ctx context.Context, resp Response) int {
	c.listenersMu.RLock()
	listeners := make([]ResponseListener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.listenersMu.RUnlock()

	detached := context.WithoutCancel(ctx)
	for _, l := range listeners {
		go l(detached, resp)
	}
	if len(listeners) == 0 {
		c.log.Warn(fmt.Sprintf("No response listener registered, dropping %s response for %s", resp.ActionIdentifier, resp.Notification.Request.Identifier))
	}
	return len(listeners)
}

// Stop stops all triggers.
func (c *Center) Stop() {
	c.sched.Stop()
}
