package api

import (
	"context"
	"fmt"
)

// Checker verifies one dependency for the readiness probe.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Pinger is implemented by stores that support a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts any Pinger into a named readiness checker.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker for a pingable dependency.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// Name returns the checker name.
func (c *PingChecker) Name() string {
	return c.name
}

// Check verifies the dependency is reachable.
func (c *PingChecker) Check(ctx context.Context) error {
	if c.pinger == nil {
		return fmt.Errorf("%s not configured", c.name)
	}
	return c.pinger.Ping(ctx)
}
