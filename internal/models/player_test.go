package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestPlayer() *PlayerEntity {
	return &PlayerEntity{
		Health:    100,
		MaxHealth: 100,
		Armor:     50,
		MaxArmor:  50,
		Weapon:    "normal",
		Modifiers: map[ModifierStat]Modifier{},
	}
}

func TestTakeDamageArmorFirst(t *testing.T) {
	p := newTestPlayer()

	assert.Equal(t, 0.0, p.TakeDamage(30))
	assert.Equal(t, 20.0, p.Armor)
	assert.Equal(t, 100.0, p.Health)

	assert.Equal(t, 10.0, p.TakeDamage(30))
	assert.Equal(t, 0.0, p.Armor)
	assert.Equal(t, 90.0, p.Health)

	assert.Equal(t, 90.0, p.TakeDamage(500))
	assert.Equal(t, 0.0, p.Health)
	assert.True(t, p.IsDead())

	assert.Equal(t, 0.0, p.TakeDamage(-5))
}

func TestHealAndArmorAreClamped(t *testing.T) {
	p := newTestPlayer()
	p.Health = 80
	p.Heal(50)
	assert.Equal(t, 100.0, p.Health)

	p.Armor = 10
	p.AddArmor(100)
	assert.Equal(t, 50.0, p.Armor)
}

func TestActiveWeaponAndMultiplier(t *testing.T) {
	p := newTestPlayer()
	assert.Equal(t, "normal", p.ActiveWeapon())
	assert.Equal(t, 1.0, p.Multiplier(StatDamage))

	p.Override = &WeaponOverride{Weapon: "laser", ExpiresAt: 100}
	p.Modifiers[StatDamage] = Modifier{Multiplier: 1.5, ExpiresAt: 100}
	assert.Equal(t, "laser", p.ActiveWeapon())
	assert.Equal(t, 1.5, p.Multiplier(StatDamage))
}

func TestPlayerCloneIsDeep(t *testing.T) {
	p := newTestPlayer()
	p.Override = &WeaponOverride{Weapon: "laser"}
	p.Modifiers[StatSpeed] = Modifier{Multiplier: 1.4}
	p.Loadout.Skills = []string{"a"}

	c := p.Clone()
	c.Override.Weapon = "wave"
	c.Modifiers[StatSpeed] = Modifier{Multiplier: 2}
	c.Loadout.Skills[0] = "b"
	c.Health = 1

	assert.Equal(t, "laser", p.Override.Weapon)
	assert.Equal(t, 1.4, p.Modifiers[StatSpeed].Multiplier)
	assert.Equal(t, "a", p.Loadout.Skills[0])
	assert.Equal(t, 100.0, p.Health)
}

func TestEnemyDamageClamped(t *testing.T) {
	e := &EnemyEntity{Health: 20, MaxHealth: 20}
	e.TakeDamage(15)
	assert.Equal(t, 5.0, e.Health)
	assert.False(t, e.IsDead())
	e.TakeDamage(15)
	assert.Equal(t, 0.0, e.Health)
	assert.True(t, e.IsDead())

	e.SpawnTime = 500
	assert.False(t, e.Active(499))
	assert.True(t, e.Active(500))
}
