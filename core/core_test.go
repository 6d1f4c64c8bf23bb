package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	r1 := NewRequest("weather in Tokyo")
	r2 := NewRequest("weather in Tokyo")

	assert.NotEmpty(t, r1.ID)
	assert.NotEqual(t, r1.ID, r2.ID)
	assert.False(t, r1.Blank())
	assert.True(t, NewRequest("  \t\n").Blank())
	assert.False(t, r1.ReceivedAt.IsZero())
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "10-5", Operation{Operator: OpSubtract, Left: 10, Right: 5}.String())
	assert.Equal(t, "+3", Operation{Operator: OpAdd, Right: 3, Chained: true}.String())
	assert.Equal(t, "2.5*4", Operation{Operator: OpMultiply, Left: 2.5, Right: 4}.String())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "8", FormatNumber(8))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	assert.Equal(t, "-0.125", FormatNumber(-0.125))
}

func TestIntentRecord_AddKeepsFirstDetectionOrder(t *testing.T) {
	r := NewIntentRecord()
	assert.True(t, r.Empty())

	assert.True(t, r.Add(DomainWeather, Params{Locations: []string{"Paris"}}))
	assert.True(t, r.Add(DomainMath, Params{Numbers: []float64{2, 3}}))
	assert.False(t, r.Add(DomainWeather, Params{Locations: []string{"Tokyo"}}))

	assert.Equal(t, []Domain{DomainWeather, DomainMath}, r.Domains)
	assert.Equal(t, []string{"Paris"}, r.ParamsFor(DomainWeather).Locations)
	assert.True(t, r.Has(DomainMath))
	assert.False(t, r.Has(DomainDateTime))
	assert.Equal(t, "weather,math", r.String())
}

func TestIntentRecord_DropDeduplicates(t *testing.T) {
	var r IntentRecord
	r.Drop("stocks")
	r.Drop("stocks")
	assert.Equal(t, []Domain{"stocks"}, r.Dropped)
	assert.True(t, r.Empty())
}

func TestHandlerError(t *testing.T) {
	cause := errors.New("store offline")
	err := &HandlerError{Domain: DomainWeather, Code: "LOOKUP_FAILED", Message: "lookup failed", Cause: cause}

	assert.Equal(t, "handler error [LOOKUP_FAILED] in weather: lookup failed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "handler error: boom", (&HandlerError{Message: "boom"}).Error())
}

func TestFailureKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"not found", fmt.Errorf("domain x: %w", ErrHandlerNotFound), FailureNotFound},
		{"timeout", fmt.Errorf("domain x: %w", ErrTimeout), FailureTimeout},
		{"deadline", context.DeadlineExceeded, FailureTimeout},
		{"handler error", NewHandlerError("DIVISION_BY_ZERO", "division by zero"), FailureHandler},
		{"plain", errors.New("boom"), FailureHandler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureKindOf(tt.err))
		})
	}
}

func TestFinalResponse_Failures(t *testing.T) {
	resp := FinalResponse{Results: []PartialResult{
		{Domain: DomainMath, Err: ErrTimeout},
		{Domain: DomainWeather, Payload: "ok"},
	}}
	failures := resp.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, DomainMath, failures[0].Domain)
	assert.Equal(t, FailureTimeout, failures[0].Kind())
	assert.True(t, resp.Results[1].OK())
}

func TestHandlerFunc(t *testing.T) {
	h := HandlerFunc(func(_ context.Context, p Params) (string, error) { return "echo " + p.Query, nil })
	out, err := h.Handle(context.Background(), Params{Query: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo hi", out)
}

func TestRequestContext_WithTimeout(t *testing.T) {
	rc := NewRequestContext(context.Background(), NewRequest("hello"), nil)
	require.NotNil(t, rc.Logger)

	bounded, cancel := rc.WithTimeout(10 * time.Millisecond)
	defer cancel()

	select {
	case <-bounded.Done():
	case <-time.After(time.Second):
		t.Fatal("bounded context did not expire")
	}
	assert.ErrorIs(t, bounded.Err(), context.DeadlineExceeded)
	assert.NoError(t, rc.Err(), "parent context must be unaffected")
	assert.Equal(t, rc.Request.ID, bounded.Request.ID)

	unbounded, cancel2 := rc.WithTimeout(0)
	cancel2()
	assert.ErrorIs(t, unbounded.Err(), context.Canceled)
}
