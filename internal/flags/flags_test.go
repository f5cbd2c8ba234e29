package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{"enabled flag", New(map[string]bool{FlagStrictCycles: true}), FlagStrictCycles, true},
		{"disabled flag", New(map[string]bool{FlagDescribeCache: false}), FlagDescribeCache, false},
		{"unknown flag", New(map[string]bool{FlagStrictCycles: true}), "unknown-flag", false},
		{"nil registry", nil, FlagStrictCycles, false},
		{"nil flags map", New(nil), FlagDescribeCache, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestDefaults(t *testing.T) {
	r := New(Defaults())

	require.True(t, r.Enabled(FlagDescribeCache))
	require.False(t, r.Enabled(FlagStrictCycles))
	require.Len(t, r.All(), 2)
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, map[string]bool{}, (*Registry)(nil).All())
	require.Equal(t, map[string]bool{}, New(nil).All())
	require.Equal(t, map[string]bool{"a": true, "b": false}, New(map[string]bool{"a": true, "b": false}).All())
}

func TestRegistry_All_ReturnsDefensiveCopy(t *testing.T) {
	r := New(map[string]bool{FlagStrictCycles: true})

	copied := r.All()
	copied[FlagStrictCycles] = false
	copied["new-flag"] = true

	require.True(t, r.Enabled(FlagStrictCycles), "registry should not be affected by copy mutation")
	require.False(t, r.Enabled("new-flag"))
}
