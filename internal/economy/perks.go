package economy

import (
	"time"

	"github.com/abhisek/studyquest/internal/store"
)

// Catalog is the registered perk set. Like achievements, perks are data: the
// purchase and effect paths never branch on individual ids.
type Catalog struct {
	ordered []*Perk
	byID    map[string]*Perk
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byID: make(map[string]*Perk)}
}

// Register adds a perk to the catalog.
func (c *Catalog) Register(p *Perk) {
	if _, exists := c.byID[p.ID]; !exists {
		c.ordered = append(c.ordered, p)
	}
	c.byID[p.ID] = p
}

// Get returns the perk with the given id, or nil.
func (c *Catalog) Get(id string) *Perk {
	return c.byID[id]
}

// All returns the perks in registration order.
func (c *Catalog) All() []*Perk {
	return c.ordered
}

// DefaultCatalog returns the built-in perk shop.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	for _, p := range defaultPerks() {
		c.Register(p)
	}
	return c
}

func defaultPerks() []*Perk {
	return []*Perk{
		{
			ID:          "speed_boost",
			Name:        "Speed Boost",
			Description: "Extra 30 seconds for every quiz this week",
			Cost:        75,
			Effect:      PerkEffect{Kind: EffectTimeBonus, TimeBonusSecs: 30},
			Duration:    7 * 24 * time.Hour,
		},
		{
			ID:          "hint_helper",
			Name:        "Hint Helper",
			Description: "One free hint, usable in any quiz",
			Cost:        30,
			Effect:      PerkEffect{Kind: EffectHint, Hints: 1},
		},
		{
			ID:          "double_coins",
			Name:        "Double Coins",
			Description: "Earn 2x coins for 24 hours",
			Cost:        200,
			Effect:      PerkEffect{Kind: EffectCoinBoost, Multiplier: 2.0},
			Duration:    24 * time.Hour,
		},
		{
			ID:          "golden_star",
			Name:        "Golden Star Badge",
			Description: "Show everyone you're a star student",
			Cost:        50,
			Effect:      PerkEffect{Kind: EffectCosmetic},
		},
		{
			ID:          "rainbow_theme",
			Name:        "Rainbow Theme",
			Description: "A colorful profile theme",
			Cost:        80,
			Effect:      PerkEffect{Kind: EffectCosmetic},
		},
	}
}

// active reports whether an owned perk's effect currently applies: duration
// perks must be unexpired, one-shot perks must have uses left, cosmetics are
// always active.
func (c *Catalog) active(own *store.PerkOwnership, now time.Time) (*Perk, bool) {
	perk := c.Get(own.PerkID)
	if perk == nil {
		return nil, false
	}
	switch perk.Effect.Kind {
	case EffectTimeBonus, EffectCoinBoost:
		if own.ExpiresAt == nil || now.Before(*own.ExpiresAt) {
			return perk, true
		}
		return perk, false
	case EffectHint:
		return perk, own.UsesLeft > 0
	case EffectCosmetic:
		return perk, true
	}
	return perk, false
}

// CoinMultiplier returns the product of the student's active coin boost
// multipliers; 1.0 when none apply.
func (c *Catalog) CoinMultiplier(p *store.StudentProfile, now time.Time) float64 {
	mult := 1.0
	for _, own := range p.Perks {
		perk, ok := c.active(own, now)
		if ok && perk.Effect.Kind == EffectCoinBoost {
			mult *= perk.Effect.Multiplier
		}
	}
	return mult
}

// TimeBonusSecs returns the total quiz time extension from active perks.
func (c *Catalog) TimeBonusSecs(p *store.StudentProfile, now time.Time) int {
	total := 0
	for _, own := range p.Perks {
		perk, ok := c.active(own, now)
		if ok && perk.Effect.Kind == EffectTimeBonus {
			total += perk.Effect.TimeBonusSecs
		}
	}
	return total
}

// HintsAvailable returns the remaining hint uses across owned hint perks.
func (c *Catalog) HintsAvailable(p *store.StudentProfile) int {
	total := 0
	for _, own := range p.Perks {
		perk, ok := c.active(own, time.Time{})
		if ok && perk.Effect.Kind == EffectHint {
			total += own.UsesLeft
		}
	}
	return total
}

// ConsumeHint decrements one hint use, returning false if none remain. The
// caller must invoke it inside a profile transaction.
func (c *Catalog) ConsumeHint(p *store.StudentProfile) bool {
	for _, own := range p.Perks {
		perk := c.Get(own.PerkID)
		if perk != nil && perk.Effect.Kind == EffectHint && own.UsesLeft > 0 {
			own.UsesLeft--
			return true
		}
	}
	return false
}
