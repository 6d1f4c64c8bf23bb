package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/intentmesh/core"
)

type describedHandler struct{ text string }

func (h describedHandler) Handle(context.Context, core.Params) (string, error) { return h.text, nil }
func (h describedHandler) Description() string                               { return "says " + h.text }

func static(text string) core.Handler {
	return core.HandlerFunc(func(context.Context, core.Params) (string, error) { return text, nil })
}

func TestRegistry_RegisterResolve(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, static("math")))
	require.NoError(t, r.Register(core.DomainWeather, static("weather")))

	h, err := r.Resolve(core.DomainWeather)
	require.NoError(t, err)
	out, _ := h.Handle(context.Background(), core.Params{})
	assert.Equal(t, "weather", out)

	assert.Equal(t, []core.Domain{core.DomainMath, core.DomainWeather}, r.Domains())
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.Has(core.DomainMath))
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := New().Seal()
	_, err := r.Resolve("stocks")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "stocks")
}

func TestRegistry_InvalidEntries(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Register("", static("x")), ErrInvalidEntry)
	assert.ErrorIs(t, r.Register(core.DomainMath, nil), ErrInvalidEntry)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_DuplicateLastWriteWins(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, static("first")))
	require.NoError(t, r.Register(core.DomainWeather, static("weather")))
	require.NoError(t, r.Register(core.DomainMath, static("second")))

	h, err := r.Resolve(core.DomainMath)
	require.NoError(t, err)
	out, _ := h.Handle(context.Background(), core.Params{})
	assert.Equal(t, "second", out)
	// Position of the first registration is kept.
	assert.Equal(t, []core.Domain{core.DomainMath, core.DomainWeather}, r.Domains())
}

func TestRegistry_StrictDuplicates(t *testing.T) {
	r := New(func(o *Options) { o.StrictDuplicates = true })
	require.NoError(t, r.Register(core.DomainMath, static("first")))
	assert.ErrorIs(t, r.Register(core.DomainMath, static("second")), ErrDuplicateDomain)
}

func TestRegistry_Sealed(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, static("math")))
	r.Seal()
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Register(core.DomainWeather, static("weather")), ErrSealed)
	assert.False(t, r.Has(core.DomainWeather))
}

func TestRegistry_DomainsReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, static("math")))
	ds := r.Domains()
	ds[0] = "mutated"
	assert.Equal(t, []core.Domain{core.DomainMath}, r.Domains())
}

func TestRegistry_Describe(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, describedHandler{text: "hi"}))
	require.NoError(t, r.Register(core.DomainWeather, static("weather")))
	assert.Equal(t, "says hi", r.Describe(core.DomainMath))
	assert.Equal(t, "", r.Describe(core.DomainWeather))
	assert.Equal(t, "", r.Describe("missing"))
}

func TestRegistry_ConcurrentResolveAfterSeal(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(core.DomainMath, static("math")))
	r.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(core.DomainMath)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
