package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/intentmesh/core"
)

// DateTimeOptions configures the DateTime handler.
type DateTimeOptions struct {
	// Clock returns the current time. Defaults to time.Now.
	Clock    func() time.Time
	Location *time.Location
}

// DateTime answers calendar questions from a clock.
type DateTime struct {
	opts DateTimeOptions
}

// NewDateTime creates a DateTime handler.
func NewDateTime(optFns ...func(o *DateTimeOptions)) *DateTime {
	opts := DateTimeOptions{Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DateTime{opts: opts}
}

// Description implements core.Describer.
func (d *DateTime) Description() string { return "Tells the current day, month, date, year or time" }

// Handle implements core.Handler. Fields default to "date".
func (d *DateTime) Handle(_ context.Context, params core.Params) (string, error) {
	now := d.opts.Clock()
	if d.opts.Location != nil {
		now = now.In(d.opts.Location)
	}

	fields := params.Fields
	if len(fields) == 0 {
		fields = []string{"date"}
	}

	var lines []string
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "day", "weekday":
			lines = append(lines, "Today is "+now.Weekday().String())
		case "month":
			lines = append(lines, fmt.Sprintf("The current month is %d", int(now.Month())))
		case "date":
			lines = append(lines, "Today's date is "+now.Format("2006-01-02"))
		case "year":
			lines = append(lines, fmt.Sprintf("The current year is %d", now.Year()))
		case "time":
			lines = append(lines, "The current time is "+now.Format("15:04"))
		}
	}
	if len(lines) == 0 {
		return "", core.NewHandlerError("UNKNOWN_FIELD", fmt.Sprintf("unsupported fields %v", fields))
	}
	return strings.Join(lines, "\n"), nil
}
