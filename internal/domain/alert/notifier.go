package alert

// Notifier pushes a freshly created notification to an external channel.
// Delivery is best effort: a failed push never fails the scan that created
// the notification.
type Notifier interface {
	Notify(n *Notification) error
}
