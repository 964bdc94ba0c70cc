// Package platform holds chat platform clients.
package platform

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// LocalClient is an in-process stand-in for the chat platform. It is
// connected from Connect until Close or until its listen loop ends.
type LocalClient struct {
	log   *slog.Logger
	ready atomic.Bool
}

func NewLocalClient(log *slog.Logger) *LocalClient {
	return &LocalClient{log: log}
}

func (c *LocalClient) Connect(ctx context.Context) error {
	c.ready.Store(true)
	c.log.Info("Local chat platform connected")
	return nil
}

func (c *LocalClient) Listen(ctx context.Context) error {
	<-ctx.Done()
	c.ready.Store(false)
	return ctx.Err()
}

func (c *LocalClient) Ready() bool {
	return c.ready.Load()
}

func (c *LocalClient) Close() error {
	c.ready.Store(false)
	c.log.Info("Local chat platform disconnected")
	return nil
}
