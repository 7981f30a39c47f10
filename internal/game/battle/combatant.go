package battle

import (
	"fmt"

	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
)

const (
	// MaxHealth caps every combatant's health.
	MaxHealth = 100
	// DefaultMaxMana is used when the metadata collaborator supplies no base mana.
	DefaultMaxMana = 10
)

// CombatantInit is the initialization input supplied by the metadata collaborator.
type CombatantInit struct {
	Identity    string `json:"identity"`
	Name        string `json:"name"`
	Class       string `json:"class"`
	BaseHealth  int    `json:"baseHealth"`
	BaseMana    int    `json:"baseMana"`
	PortraitRef string `json:"portraitRef"`
}

// Combatant is the mutable per-slot battle record.
//
// Invariant: 0 <= Health <= MaxHealth; 0 <= Mana <= MaxMana; Shield >= 0;
// PendingNextAttackBonus >= 0; len(Cooldowns) == len(class powers); every
// Cooldowns[i] >= 0.
type Combatant struct {
	Identity               string
	Name                   string
	Class                  catalog.ClassID
	PortraitRef            string
	Health                 int
	Mana                   int
	MaxMana                int
	Shield                 int
	Cooldowns              []int
	PendingNextAttackBonus int
}

// NewCombatant derives the opening Combatant from init.
//
// Postcondition: Shield, PendingNextAttackBonus, and all cooldowns are 0; Health is
// BaseHealth capped at MaxHealth (MaxHealth when BaseHealth <= 0); Mana == MaxMana ==
// BaseMana (DefaultMaxMana when BaseMana <= 0). Returns an error wrapping
// catalog.ErrUnknownClass if the class has no catalog entry, or ErrInvalidCombatant
// when Identity is empty.
func NewCombatant(init CombatantInit, cat *catalog.Catalog) (Combatant, error) {
	id, err := catalog.ParseClassID(init.Class)
	if err != nil {
		return Combatant{}, err
	}
	powers, err := cat.PowersFor(id)
	if err != nil {
		return Combatant{}, err
	}
	if init.Identity == "" {
		return Combatant{}, fmt.Errorf("%w: identity must not be empty", ErrInvalidCombatant)
	}
	health := init.BaseHealth
	if health <= 0 || health > MaxHealth {
		health = MaxHealth
	}
	maxMana := init.BaseMana
	if maxMana <= 0 {
		maxMana = DefaultMaxMana
	}
	name := init.Name
	if name == "" {
		name = init.Identity
	}
	return Combatant{
		Identity:    init.Identity,
		Name:        name,
		Class:       id,
		PortraitRef: init.PortraitRef,
		Health:      health,
		Mana:        maxMana,
		MaxMana:     maxMana,
		Cooldowns:   make([]int, len(powers)),
	}, nil
}

// IsDefeated reports whether health has reached zero.
func (c *Combatant) IsDefeated() bool { return c.Health <= 0 }

// ApplyDamage reduces Health by amount, flooring at zero.
//
// Postcondition: Health >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.Health = max(0, c.Health-max(0, amount))
}

// Heal raises Health by amount, capped at MaxHealth.
//
// Postcondition: Health <= MaxHealth.
func (c *Combatant) Heal(amount int) {
	c.Health = min(MaxHealth, c.Health+max(0, amount))
}

// GainMana raises Mana by amount, capped at MaxMana.
//
// Postcondition: Mana <= MaxMana.
func (c *Combatant) GainMana(amount int) {
	c.Mana = min(c.MaxMana, c.Mana+max(0, amount))
}

// tickCooldowns decrements every positive cooldown by one.
func (c *Combatant) tickCooldowns() {
	for i, cd := range c.Cooldowns {
		if cd > 0 {
			c.Cooldowns[i] = cd - 1
		}
	}
}

// Validate checks the combatant's numeric invariants.
func (c *Combatant) Validate() error {
	switch {
	case c.Identity == "":
		return fmt.Errorf("identity must not be empty")
	case !c.Class.Valid():
		return fmt.Errorf("%w: %q", catalog.ErrUnknownClass, c.Class)
	case c.Health < 0 || c.Health > MaxHealth:
		return fmt.Errorf("health %d out of [0,%d]", c.Health, MaxHealth)
	case c.MaxMana < 0:
		return fmt.Errorf("maxMana %d must be >= 0", c.MaxMana)
	case c.Mana < 0 || c.Mana > c.MaxMana:
		return fmt.Errorf("mana %d out of [0,%d]", c.Mana, c.MaxMana)
	case c.Shield < 0:
		return fmt.Errorf("shield %d must be >= 0", c.Shield)
	case c.PendingNextAttackBonus < 0:
		return fmt.Errorf("pendingNextAttackBonus %d must be >= 0", c.PendingNextAttackBonus)
	}
	for i, cd := range c.Cooldowns {
		if cd < 0 {
			return fmt.Errorf("cooldowns[%d] = %d must be >= 0", i, cd)
		}
	}
	return nil
}

func (c Combatant) clone() Combatant {
	c.Cooldowns = append([]int(nil), c.Cooldowns...)
	return c
}
