package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain is a capability category (arithmetic, weather lookup...) that a
// dedicated handler can satisfy.
type Domain string

// Well-known domains wired by the default configuration.
const (
	DomainMath     Domain = "math"
	DomainWeather  Domain = "weather"
	DomainDateTime Domain = "datetime"
	DomainResearch Domain = "research"
)

func (d Domain) String() string { return string(d) }

// Request is the raw text received from a caller. It is immutable once built.
type Request struct {
	ID         string
	Text       string
	ReceivedAt time.Time
}

// NewRequest wraps text in a Request with a fresh identifier.
func NewRequest(text string) Request {
	return Request{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	}
}

// Blank reports whether the request carries no non-whitespace text.
func (r Request) Blank() bool { return strings.TrimSpace(r.Text) == "" }
