// Package events provides a lightweight in-process event system used to
// decouple task mutations from their side effects (the notification log).
package events
