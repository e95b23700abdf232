package engine

import "time"

// Event is the structured record resolved from one message.
type Event struct {
	// Action is what remains of the message once every slot is removed.
	Action string `json:"action"`

	// Date is the event day, formatted with config.RecordDateLayout ("05, Mar 2024").
	Date string `json:"date"`

	// Time is the 24-hour wall clock, formatted with config.RecordTimeLayout.
	Time string `json:"time"`

	// People lists one name per PERSON span. It is never nil so it encodes as [].
	People []string `json:"people"`

	// Place is only set when the message carries a PLACE span.
	Place []string `json:"place,omitempty"`

	// Start is the resolved moment behind Date and Time.
	Start time.Time `json:"-"`

	// Message is the raw input, kept for calendar descriptions.
	Message string `json:"-"`
}
