package trigger

import "sync/atomic"

// Client is a trigger armed out-of-band: some other part of your app (an
// admin endpoint, a signal handler, an operator command) calls Arm, and the
// very next append rotates the log. It needs no configuration and never
// rotates on its own.
type Client struct {
	latch atomic.Bool
}

// NewClient returns a trigger that rotates the log whenever signalled.
func NewClient() *Client {
	return &Client{}
}

// Arm signals that the log must rotate before the next append. Safe to call
// from any goroutine at any time. Arming an already-armed trigger is a
// no-op: any number of Arm calls between two appends coalesce into a single
// rotation. An Arm racing exactly with a consuming Evaluate lands on one
// side or the other of the swap; only one rotation per arm is ever promised.
func (c *Client) Arm() {
	c.latch.Store(true)
}

// Evaluate consumes the latch: it returns true at most once per Arm, then
// reads false until the next Arm. Satisfies the Trigger interface.
func (c *Client) Evaluate(_ *LogFile) (bool, error) {
	return c.latch.Swap(false), nil
}

// Our trigger must satisfy the Trigger interface.
var _ Trigger = (*Client)(nil)
