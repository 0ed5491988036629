package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierLabel(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{-50, "Bronze 1"},
		{0, "Bronze 1"},
		{765, "Bronze 1"},
		{766, "Bronze 2"},
		{913, "Bronze 2"},
		{914, "Bronze 3"},
		{1055, "Silver 1"},
		{1201, "Silver 2"},
		{1435, "Silver 3"},
		{1436, "Gold 1"},
		{1751, "Gold 3"},
		{1752, "Platinum 1"},
		{2003, "Platinum 3"},
		{2004, "Diamond 1"},
		{2191, "Diamond 3"},
		{2192, "Master 1"},
		{2274, "Master 1"},
		{2275, "Master 2"},
		{2349, "Master 2"},
		{2350, "Master 3 or Grandmaster"},
		{9999, "Master 3 or Grandmaster"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierLabel(tt.rating), "rating %d", tt.rating)
	}
}

func TestTierLabelBoundariesAreContiguous(t *testing.T) {
	for i, tier := range tiers {
		assert.Equal(t, tier.label, TierLabel(tier.below-1))
		if i+1 < len(tiers) {
			assert.Equal(t, tiers[i+1].label, TierLabel(tier.below))
		} else {
			assert.Equal(t, TopTier, TierLabel(tier.below))
		}
	}
}

func TestStyleKey(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{0, StyleBronze},
		{1054, StyleBronze},
		{1055, StyleSilver},
		{1435, StyleSilver},
		{1436, StyleGold},
		{1752, StylePlatinum},
		{2003, StylePlatinum},
		{2004, StyleDiamond},
		{2191, StyleDiamond},
		{2192, StyleMaster},
		{3000, StyleMaster},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StyleKey(tt.rating), "rating %d", tt.rating)
	}
}
