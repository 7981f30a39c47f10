package catalog

// Default returns the shipped catalog. content/classes holds the same table in
// YAML for deployments that tune balance without a rebuild.
//
// Postcondition: Returns a non-nil Catalog containing every ClassID.
func Default() *Catalog {
	c, err := New(defaultClasses()...)
	if err != nil {
		panic("catalog: default table invalid: " + err.Error())
	}
	return c
}

func defaultClasses() []*Class {
	return []*Class{
		{
			ID:          Warrior,
			Name:        "Warrior",
			Description: "Front-line brawler who trades blood for burst.",
			Powers: []Power{
				{Name: "Cleave", Description: "Deal 10-15 damage", Kind: KindAttack, ManaCost: 1, Damage: R(10, 15)},
				{Name: "Shield Wall", Description: "Gain 5-10 shield; next attack +3", Kind: KindDefend, ManaCost: 1, Shield: R(5, 10), NextAttackBonus: 3},
				{Name: "Berserk", Description: "Deal 20-30 damage, half of shield ignored; take 5 damage\nCooldown: 3 turns", Kind: KindSpecial, ManaCost: 5, CooldownTurns: 3, Damage: R(20, 30), SelfDamage: 5, ShieldPenetration: 0.5},
			},
		},
		{
			ID:          Mage,
			Name:        "Mage",
			Description: "Fragile caster whose fire ignores every ward.",
			Powers: []Power{
				{Name: "Arcane Bolt", Description: "Deal 8-12 damage; recover 1 mana", Kind: KindAttack, ManaCost: 1, Damage: R(8, 12), ManaGain: 1},
				{Name: "Mana Barrier", Description: "Gain 4-8 shield; recover 2 mana", Kind: KindDefend, ManaCost: 2, Shield: R(4, 8), ManaGain: 2},
				{Name: "Fireball", Description: "Deal 22-32 damage through shields\nCooldown: 3 turns", Kind: KindSpecial, ManaCost: 6, CooldownTurns: 3, Damage: R(22, 32), IgnoreShield: true},
			},
		},
		{
			ID:          Rogue,
			Name:        "Rogue",
			Description: "Opportunist who slips past guards and sets up the kill.",
			Powers: []Power{
				{Name: "Backstab", Description: "Deal 9-14 damage, half of shield ignored", Kind: KindAttack, ManaCost: 1, Damage: R(9, 14), ShieldPenetration: 0.5},
				{Name: "Evade", Description: "Gain 3-6 shield; next attack +5", Kind: KindDefend, ManaCost: 1, Shield: R(3, 6), NextAttackBonus: 5},
				{Name: "Poisoned Blade", Description: "Deal 15-22 damage through shields\nCooldown: 2 turns", Kind: KindSpecial, ManaCost: 4, CooldownTurns: 2, Damage: R(15, 22), IgnoreShield: true},
			},
		},
		{
			ID:          Cleric,
			Name:        "Cleric",
			Description: "Patient healer who outlasts the opponent.",
			Powers: []Power{
				{Name: "Smite", Description: "Deal 8-12 damage; heal 2-4", Kind: KindAttack, ManaCost: 1, Damage: R(8, 12), Heal: R(2, 4)},
				{Name: "Sanctuary", Description: "Gain 4-8 shield; heal 5-10", Kind: KindDefend, ManaCost: 2, Shield: R(4, 8), Heal: R(5, 10)},
				{Name: "Divine Wrath", Description: "Deal 18-26 damage; heal 5-8\nCooldown: 3 turns", Kind: KindSpecial, ManaCost: 5, CooldownTurns: 3, Damage: R(18, 26), Heal: R(5, 8)},
			},
		},
	}
}
