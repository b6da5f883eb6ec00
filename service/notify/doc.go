// Package notify turns workflow effects into outbound messages.
//
// Dispatch plans the message (recipient, template, data and freshly minted
// links) and publishes it to an in-memory queue; a worker pool resolves the
// recipient address and calls the Notifier. Delivery failures are retried
// through the queue and finally logged. The workflow never waits on delivery.
package notify
