package rank

// Upper bounds are exclusive: a rating belongs to the first tier whose bound it is
// strictly below.
type threshold struct {
	below int
	label string
}

const TopTier = "Master 3 or Grandmaster"

var tiers = []threshold{
	{766, "Bronze 1"},
	{914, "Bronze 2"},
	{1055, "Bronze 3"},
	{1189, "Silver 1"},
	{1316, "Silver 2"},
	{1436, "Silver 3"},
	{1549, "Gold 1"},
	{1654, "Gold 2"},
	{1752, "Gold 3"},
	{1843, "Platinum 1"},
	{1928, "Platinum 2"},
	{2004, "Platinum 3"},
	{2074, "Diamond 1"},
	{2137, "Diamond 2"},
	{2192, "Diamond 3"},
	{2275, "Master 1"},
	{2350, "Master 2"},
}

const (
	StyleBronze   = "bronze"
	StyleSilver   = "silver"
	StyleGold     = "gold"
	StylePlatinum = "platinum"
	StyleDiamond  = "diamond"
	StyleMaster   = "master"
)

// styles buckets ratings for display and is independent of tiers.
var styles = []threshold{
	{1055, StyleBronze},
	{1436, StyleSilver},
	{1752, StyleGold},
	{2004, StylePlatinum},
	{2192, StyleDiamond},
}

// TierLabel returns the rank name for a rounded rating. Ratings at or below zero
// fall into the lowest tier.
func TierLabel(rating int) string {
	return lookup(tiers, rating, TopTier)
}

// StyleKey returns the coarse display category for a rating.
func StyleKey(rating int) string {
	return lookup(styles, rating, StyleMaster)
}

func lookup(table []threshold, rating int, fallback string) string {
	for _, t := range table {
		if rating < t.below {
			return t.label
		}
	}
	return fallback
}
