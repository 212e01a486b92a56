// Package indicator drives status LEDs from router events: one LED lit while
// a call is up, one blinking while the radio plays.
package indicator

// Controller switches board LEDs.
type Controller interface {
	// Set turns the named LED on or off. A non-empty pattern ("solid",
	// "blink", "heartbeat" or a raw trigger name) also changes its trigger.
	Set(name string, on bool, pattern string) error

	// Available returns the LED names this controller knows.
	Available() []string

	// Patterns returns the supported patterns.
	Patterns() []string
}
