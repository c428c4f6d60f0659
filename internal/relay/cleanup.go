package relay

import (
	"context"
	"sync"
	"time"

	"icrelay/internal/constants"
	"icrelay/internal/metrics"
	"icrelay/internal/privacy"

	"github.com/sirupsen/logrus"
)

// Deleter removes chat messages
type Deleter interface {
	Delete(ctx context.Context, channelID, messageID string) error
}

// Cleaner deletes chat messages after a fixed delay.
// Pending deletions are tracked so Stop can cancel them.
type Cleaner struct {
	deleter Deleter
	delay   time.Duration
	logger  *logrus.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewCleaner creates a cleaner that waits delay before deleting
func NewCleaner(deleter Deleter, delay time.Duration, logger *logrus.Logger) *Cleaner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Cleaner{
		deleter: deleter,
		delay:   delay,
		logger:  logger,
		pending: make(map[uint64]*time.Timer),
	}
}

// Schedule deletes the given messages from channelID once the delay elapses.
// Empty message ids are skipped. Returns false when nothing was scheduled.
// ctx only contributes the verbose logging flag; the task outlives it.
func (c *Cleaner) Schedule(ctx context.Context, channelID string, messageIDs ...string) bool {
	ids := make([]string, 0, len(messageIDs))
	for _, id := range messageIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if channelID == "" || len(ids) == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}

	verbose := privacy.IsVerbose(ctx)
	c.nextID++
	taskID := c.nextID
	c.wg.Add(1)
	c.pending[taskID] = time.AfterFunc(c.delay, func() {
		defer c.wg.Done()
		if !c.claim(taskID) {
			return
		}
		c.run(verbose, channelID, ids)
	})
	metrics.SetGauge(metrics.CleanupPending, float64(len(c.pending)), nil, "Scheduled cleanup tasks")
	return true
}

// Pending returns the number of scheduled tasks that have not fired yet
func (c *Cleaner) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop cancels every pending task and waits for running ones to finish
func (c *Cleaner) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancelled := 0
	for taskID, timer := range c.pending {
		if timer.Stop() {
			c.wg.Done()
			cancelled++
		}
		delete(c.pending, taskID)
	}
	c.mu.Unlock()

	c.wg.Wait()
	metrics.SetGauge(metrics.CleanupPending, 0, nil, "Scheduled cleanup tasks")
	if cancelled > 0 {
		c.logger.WithField("cancelled", cancelled).Info("Cancelled pending cleanup tasks")
	}
}

// claim removes a fired task from the pending set; false if Stop got there first
func (c *Cleaner) claim(taskID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[taskID]; !ok {
		return false
	}
	delete(c.pending, taskID)
	metrics.SetGauge(metrics.CleanupPending, float64(len(c.pending)), nil, "Scheduled cleanup tasks")
	return true
}

func (c *Cleaner) run(verbose bool, channelID string, messageIDs []string) {
	ctx, cancel := context.WithTimeout(privacy.WithVerbose(context.Background(), verbose), time.Duration(constants.DefaultCleanupDeleteTimeout)*time.Second)
	defer cancel()

	for _, messageID := range messageIDs {
		status := "success"
		if err := c.deleter.Delete(ctx, channelID, messageID); err != nil {
			status = "failure"
			c.logger.WithFields(logrus.Fields{
				"channel_id": privacy.ChannelIDForLog(ctx, channelID),
				"message_id": privacy.MessageIDForLog(ctx, messageID),
			}).WithError(err).Warn("Failed to delete message during cleanup")
		}
		metrics.IncrementCounter(metrics.CleanupDeletes, map[string]string{"status": status}, "Cleanup deletions")
	}
}
