package notifier

import "github.com/benmeehan/geo-alarm/internal/monitor"

// Multi fans an event out to several notifiers in order.
type Multi []monitor.Notifier

// Notify delivers evt to every notifier.
func (m Multi) Notify(evt monitor.Event) {
	for _, n := range m {
		n.Notify(evt)
	}
}
