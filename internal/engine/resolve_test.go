package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reveal/internal/ir"
)

func newTestResolver(opts ...ResolverOption) *Resolver {
	return NewResolver(ir.DefaultCatalog(), opts...)
}

func TestResolve_HeroScenario(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Mobile: {ir.NewTuple("hero", "fadeIn", 0)},
	}

	d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, "fadeIn", d.AnimationName)
	assert.Equal(t, int64(0), d.DelayMs)
	assert.Equal(t, int64(1000), d.DurationMs)
	assert.Equal(t, ir.FillForwards, d.FillMode)
	assert.Equal(t, int64(0), d.Opacity)
	assert.Equal(t, ir.DefaultTiming, d.TimingFunction)
	assert.Equal(t, ir.Mobile, d.Source)
	require.NotNil(t, d.Keyframes)
	assert.Equal(t, 1.0, d.Keyframes.To.Opacity)

	hidden, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(0))
	require.True(t, ok, "invisible elements keep their timing")
	assert.Equal(t, "", hidden.AnimationName)
	assert.Equal(t, int64(0), hidden.Opacity)
	assert.Equal(t, d.DelayMs, hidden.DelayMs)
	assert.Equal(t, d.DurationMs, hidden.DurationMs)
}

func TestResolve_DesktopFallsBackToTablet(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Desktop: {},
		ir.Tablet:  {ir.NewTuple("hero", "fadeFromLeft", 2)},
	}

	d, ok := r.Resolve(table, "hero", ir.Desktop, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, "fadeFromLeft", d.AnimationName)
	assert.Equal(t, int64(300), d.DelayMs)
	assert.Equal(t, ir.Tablet, d.Source)
}

func TestResolve_NoMatchIsEmpty(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Mobile:  {ir.NewTuple("other", "fadeIn", 0)},
		ir.Tablet:  {ir.NewTuple("other", "fadeIn", 1)},
		ir.Desktop: {ir.NewTuple("other", "fadeIn", 2)},
	}
	entries := []*ir.Intersection{nil, Ratio(0), Ratio(0.35), Ratio(1)}

	for _, bp := range []ir.Breakpoint{ir.Mobile, ir.Tablet, ir.Desktop, ir.Unclassified} {
		for _, in := range entries {
			d, ok := r.Resolve(table, "hero", bp, in)
			assert.False(t, ok, "bp=%q", bp)
			assert.Equal(t, ir.Descriptor{}, d)
		}
	}
}

func TestResolve_NilAndEmptyTables(t *testing.T) {
	r := newTestResolver()
	for _, table := range []ir.AssignmentTable{nil, {}} {
		_, ok := r.Resolve(table, "hero", ir.Desktop, Ratio(1))
		assert.False(t, ok)
	}
}

func TestResolve_UnmeasuredIsEmptyEverywhere(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Mobile:  {ir.NewTuple("hero", "fadeIn", 0)},
		ir.Tablet:  {ir.NewTuple("hero", "fadeIn", 1)},
		ir.Desktop: {ir.NewTuple("hero", "fadeIn", 2)},
	}
	for _, bp := range ir.Breakpoints {
		_, ok := r.Resolve(table, "hero", bp, nil)
		assert.False(t, ok, "bp=%q", bp)
	}
}

func TestResolve_LastMatchWins(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Mobile: {
			ir.NewTuple("hero", "fadeIn", 0),
			ir.NewTuple("card", "fadeFromTop", 1),
			ir.NewTuple("hero", "fadeFromBottom", 4),
		},
	}

	d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, "fadeFromBottom", d.AnimationName)
	assert.Equal(t, int64(600), d.DelayMs)
}

func TestResolve_MalformedLastMatchDoesNotRetreat(t *testing.T) {
	r := newTestResolver()
	tests := []struct {
		name string
		last ir.AssignmentTuple
	}{
		{"missing kind", ir.AssignmentTuple{Target: "hero", OrderIndex: 1, OrderSet: true}},
		{"missing order", ir.AssignmentTuple{Target: "hero", Kind: "fadeIn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := ir.AssignmentTable{
				ir.Mobile: {ir.NewTuple("hero", "fadeIn", 0), tt.last},
			}
			_, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
			assert.False(t, ok, "an incomplete last match must not fall back to an earlier tuple")
		})
	}
}

func TestResolve_MalformedTupleFallsThroughChain(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Tablet: {ir.AssignmentTuple{Target: "hero"}},
		ir.Mobile: {ir.NewTuple("hero", "fadeIn", 1)},
	}

	d, ok := r.Resolve(table, "hero", ir.Tablet, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, ir.Mobile, d.Source)
	assert.Equal(t, int64(150), d.DelayMs)
}

func TestResolve_DelayLaw(t *testing.T) {
	r := newTestResolver()
	for _, order := range []int64{0, 1, 2, 3, 7, 40} {
		table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeIn", order)}}
		d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
		require.True(t, ok)
		assert.Equal(t, order*150, d.DelayMs, "order=%d", order)
	}
}

func TestResolve_DelayOverflowIsUnresolved(t *testing.T) {
	r := newTestResolver()
	limit := math.MaxInt64 / DefaultDelayRateMs

	table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeIn", limit)}}
	d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, limit*DefaultDelayRateMs, d.DelayMs)

	for _, order := range []int64{limit + 1, 1 << 60, math.MaxInt64} {
		table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeIn", order)}}
		_, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
		assert.False(t, ok, "order=%d", order)
	}

	t.Run("falls through the chain", func(t *testing.T) {
		table := ir.AssignmentTable{
			ir.Mobile:  {ir.NewTuple("hero", "fadeIn", 2)},
			ir.Desktop: {ir.NewTuple("hero", "fadeFromTop", 1<<60)},
		}
		d, ok := r.Resolve(table, "hero", ir.Desktop, Ratio(1))
		require.True(t, ok)
		assert.Equal(t, ir.Mobile, d.Source)
		assert.Equal(t, int64(300), d.DelayMs)
	})
}

func TestDelayFor(t *testing.T) {
	tests := []struct {
		order, rate int64
		want        int64
		ok          bool
	}{
		{0, math.MaxInt64, 0, true},
		{3, 0, 0, true},
		{-2, 150, -300, true},
		{math.MinInt64, -1, 0, false},
		{-1, math.MinInt64, 0, false},
		{math.MinInt64 / 150, 150, (math.MinInt64 / 150) * 150, true},
		{math.MinInt64/150 - 1, 150, 0, false},
	}
	for _, tt := range tests {
		got, ok := delayFor(tt.order, tt.rate)
		assert.Equal(t, tt.ok, ok, "%d*%d", tt.order, tt.rate)
		assert.Equal(t, tt.want, got, "%d*%d", tt.order, tt.rate)
	}
}

func TestResolve_FallbackLaw(t *testing.T) {
	r := newTestResolver()

	t.Run("mobile only", func(t *testing.T) {
		table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeFromTop", 1)}}
		want, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
		require.True(t, ok)

		for _, bp := range []ir.Breakpoint{ir.Tablet, ir.Desktop} {
			got, ok := r.Resolve(table, "hero", bp, Ratio(1))
			require.True(t, ok, "bp=%q", bp)
			assert.Equal(t, want, got, "bp=%q", bp)
		}
	})

	t.Run("tablet never consults desktop", func(t *testing.T) {
		table := ir.AssignmentTable{
			ir.Mobile:  {ir.NewTuple("hero", "fadeIn", 0)},
			ir.Desktop: {ir.NewTuple("hero", "fadeFromRight", 3)},
		}
		d, ok := r.Resolve(table, "hero", ir.Tablet, Ratio(1))
		require.True(t, ok)
		assert.Equal(t, "fadeIn", d.AnimationName)
		assert.Equal(t, ir.Mobile, d.Source)

		d, ok = r.Resolve(table, "hero", ir.Desktop, Ratio(1))
		require.True(t, ok)
		assert.Equal(t, "fadeFromRight", d.AnimationName)
	})

	t.Run("mobile never consults wider lists", func(t *testing.T) {
		table := ir.AssignmentTable{ir.Tablet: {ir.NewTuple("hero", "fadeIn", 0)}}
		_, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
		assert.False(t, ok)
	})

	t.Run("unclassified resolves nothing", func(t *testing.T) {
		table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeIn", 0)}}
		_, ok := r.Resolve(table, "hero", ir.Unclassified, Ratio(1))
		assert.False(t, ok)
	})
}

func TestResolve_VisibilityLaw(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeFromLeft", 1)}}

	tests := []struct {
		ratio float64
		want  string
	}{
		{0, ""},
		{0.01, "fadeFromLeft"},
		{0.35, "fadeFromLeft"},
		{1, "fadeFromLeft"},
	}
	for _, tt := range tests {
		d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(tt.ratio))
		require.True(t, ok)
		assert.Equal(t, tt.want, d.AnimationName, "ratio=%v", tt.ratio)
	}
}

func TestResolve_NoLatch(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "fadeIn", 0)}}

	seq := []float64{1, 0, 1}
	want := []string{"fadeIn", "", "fadeIn"}
	for i, ratio := range seq {
		d, _ := r.Resolve(table, "hero", ir.Mobile, Ratio(ratio))
		assert.Equal(t, want[i], d.AnimationName, "step %d", i)
	}
}

func TestResolve_UnknownKindResolvesByName(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "spinIn", 2)}}

	d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, "spinIn", d.AnimationName)
	assert.Nil(t, d.Keyframes)
}

func TestResolve_Options(t *testing.T) {
	catalog := ir.NewCatalog("linear", ir.AnimationKind{Name: "pop", Label: "Pop"})
	r := NewResolver(catalog, WithDelayRate(100), WithDuration(400))
	table := ir.AssignmentTable{ir.Mobile: {ir.NewTuple("hero", "pop", 3)}}

	d, ok := r.Resolve(table, "hero", ir.Mobile, Ratio(1))
	require.True(t, ok)
	assert.Equal(t, int64(300), d.DelayMs)
	assert.Equal(t, int64(400), d.DurationMs)
	assert.Equal(t, "linear", d.TimingFunction)
	assert.NotNil(t, d.Keyframes)
}

func TestResolve_Idempotent(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{ir.Tablet: {ir.NewTuple("hero", "fadeFromTop", 2)}}

	first, ok1 := r.Resolve(table, "hero", ir.Desktop, Ratio(0.5))
	second, ok2 := r.Resolve(table, "hero", ir.Desktop, Ratio(0.5))
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestResolveAll(t *testing.T) {
	r := newTestResolver()
	table := ir.AssignmentTable{
		ir.Mobile: {
			ir.NewTuple("hero", "fadeIn", 0),
			ir.NewTuple("card", "fadeFromBottom", 1),
		},
	}
	entries := map[string]*ir.Intersection{
		"hero": Ratio(1),
		"card": Ratio(0),
	}

	got := r.ResolveAll(table, []string{"hero", "card", "footer"}, ir.Tablet, entries)
	require.Len(t, got, 2)
	assert.Equal(t, "fadeIn", got["hero"].AnimationName)
	assert.Equal(t, "", got["card"].AnimationName)
	assert.Equal(t, int64(150), got["card"].DelayMs)
	assert.NotContains(t, got, "footer")
}
