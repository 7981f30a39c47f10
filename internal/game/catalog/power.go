package catalog

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes the three families of power.
type Kind int

const (
	KindUnknown Kind = iota // zero value; intentionally invalid
	KindAttack
	KindDefend
	KindSpecial
)

// String returns the lowercase name of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAttack:
		return "attack"
	case KindDefend:
		return "defend"
	case KindSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// ParseKind converts "attack", "defend", or "special" (any case) into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attack":
		return KindAttack, nil
	case "defend":
		return KindDefend, nil
	case "special":
		return KindSpecial, nil
	default:
		return KindUnknown, fmt.Errorf("unknown power kind %q", s)
	}
}

// MarshalText encodes the Kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a Kind by name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML decodes a Kind from a YAML scalar.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	return k.UnmarshalText([]byte(node.Value))
}

// Range is an inclusive integer interval. The zero Range means "not set".
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// R is shorthand for Range{Min: lo, Max: hi}.
func R(lo, hi int) Range { return Range{Min: lo, Max: hi} }

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

func (r Range) validate(field string) error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("%s range must be non-negative, got [%d,%d]", field, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s range min %d exceeds max %d", field, r.Min, r.Max)
	}
	return nil
}

// Power is one selectable action belonging to a class.
type Power struct {
	Name              string  `yaml:"name" json:"name"`
	Description       string  `yaml:"description" json:"description"`
	Kind              Kind    `yaml:"kind" json:"kind"`
	ManaCost          int     `yaml:"mana_cost" json:"manaCost"`
	CooldownTurns     int     `yaml:"cooldown_turns" json:"cooldownTurns"`
	Damage            Range   `yaml:"damage" json:"damageRange"`
	Shield            Range   `yaml:"shield" json:"shieldRange"`
	Heal              Range   `yaml:"heal" json:"healRange"`
	ManaGain          int     `yaml:"mana_gain" json:"manaGain"`
	SelfDamage        int     `yaml:"self_damage" json:"selfDamage"`
	NextAttackBonus   int     `yaml:"next_attack_bonus" json:"nextAttackBonus"`
	IgnoreShield      bool    `yaml:"ignore_shield" json:"ignoreShield"`
	ShieldPenetration float64 `yaml:"shield_penetration" json:"shieldPenetration"`
}

// Validate checks the power's cost and effect parameters.
//
// Postcondition: nil return guarantees a non-empty name, a known kind, non-negative
// costs and effects, well-formed ranges, penetration in [0,1], a damage range on
// Attack and Special powers, and a shield range on Defend powers.
func (p Power) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch p.Kind {
	case KindAttack, KindSpecial:
		if p.Damage.IsZero() {
			errs = append(errs, fmt.Errorf("%s power %q requires a damage range", p.Kind, p.Name))
		}
	case KindDefend:
		if p.Shield.IsZero() {
			errs = append(errs, fmt.Errorf("defend power %q requires a shield range", p.Name))
		}
	default:
		errs = append(errs, fmt.Errorf("power %q has unknown kind", p.Name))
	}
	if p.ManaCost < 0 {
		errs = append(errs, fmt.Errorf("mana_cost must be >= 0, got %d", p.ManaCost))
	}
	if p.CooldownTurns < 0 {
		errs = append(errs, fmt.Errorf("cooldown_turns must be >= 0, got %d", p.CooldownTurns))
	}
	for _, f := range []struct {
		name string
		r    Range
	}{{"damage", p.Damage}, {"shield", p.Shield}, {"heal", p.Heal}} {
		if err := f.r.validate(f.name); err != nil {
			errs = append(errs, err)
		}
	}
	if p.ManaGain < 0 || p.SelfDamage < 0 || p.NextAttackBonus < 0 {
		errs = append(errs, errors.New("mana_gain, self_damage and next_attack_bonus must be >= 0"))
	}
	if p.ShieldPenetration < 0 || p.ShieldPenetration > 1 {
		errs = append(errs, fmt.Errorf("shield_penetration must be in [0,1], got %v", p.ShieldPenetration))
	}
	return errors.Join(errs...)
}
