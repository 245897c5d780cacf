package model

type rankTier struct {
	minLevel int
	name     string
}

// Highest tier first.
var rankTiers = []rankTier{
	{minLevel: 50, name: "Legend"},
	{minLevel: 35, name: "Master"},
	{minLevel: 20, name: "Adept"},
	{minLevel: 10, name: "Journeyman"},
	{minLevel: 5, name: "Apprentice"},
	{minLevel: 1, name: "Novice"},
}

// RankForLevel returns the cosmetic rank label for a level.
func RankForLevel(level int) string {
	for _, tier := range rankTiers {
		if level >= tier.minLevel {
			return tier.name
		}
	}
	return rankTiers[len(rankTiers)-1].name
}
