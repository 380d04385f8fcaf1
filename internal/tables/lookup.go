// lookup.go

package tables

import (
	"fmt"
	"sort"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// Ship 查询战机
func (t *Tables) Ship(id string) (ShipConfig, bool) {
	s, ok := t.Ships[id]
	return s, ok
}

// Enemy 查询敌机
func (t *Tables) Enemy(id string) (EnemyConfig, bool) {
	e, ok := t.Enemies[id]
	return e, ok
}

// Weapon 查询武器
func (t *Tables) Weapon(id string) (WeaponConfig, bool) {
	w, ok := t.Weapons[id]
	return w, ok
}

// PowerUp 查询道具
func (t *Tables) PowerUp(id string) (PowerUpConfig, bool) {
	p, ok := t.PowerUps[id]
	return p, ok
}

// Wave 查询波次
func (t *Tables) Wave(id string) (*WavePattern, bool) {
	w, ok := t.Waves[id]
	if !ok {
		return nil, false
	}
	return &w, true
}

// Level 按下标查询关卡
func (t *Tables) Level(index int) (*LevelConfig, bool) {
	if index < 0 || index >= len(t.Levels) {
		return nil, false
	}
	return &t.Levels[index], true
}

// Evolution 查询战机到达指定形态的进化阶段
func (t *Tables) Evolution(ship string, form int) (*EvolutionStage, bool) {
	stages, ok := t.Evolutions[ship]
	if !ok {
		stages = t.Evolutions[DefaultEvolution]
	}
	for i := range stages {
		if stages[i].Form == form {
			return &stages[i], true
		}
	}
	return nil, false
}

// ShipIDs 按字母序返回所有战机ID
func (t *Tables) ShipIDs() []string {
	ids := make([]string, 0, len(t.Ships))
	for id := range t.Ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Loadout 根据已解锁技能计算永久加成。
// 未知技能或前置未满足的技能被跳过，并在错误列表中返回
func (t *Tables) Loadout(skillIDs []string) (models.Loadout, []error) {
	var (
		lo       models.Loadout
		skipped  []error
		unlocked = make(map[string]bool, len(skillIDs))
	)
	for _, id := range skillIDs {
		unlocked[id] = true
	}

	for _, id := range skillIDs {
		node, ok := t.Skills[id]
		if !ok {
			skipped = append(skipped, fmt.Errorf("%s: %w", id, ErrUnknownSkill))
			continue
		}
		missing := false
		for _, pre := range node.Prerequisites {
			if !unlocked[pre] {
				skipped = append(skipped, fmt.Errorf("%s 需要 %s: %w", id, pre, ErrMissingPrereq))
				missing = true
				break
			}
		}
		if missing {
			continue
		}

		lo.Skills = append(lo.Skills, id)
		for _, eff := range node.Effects {
			switch eff.Stat {
			case "damage":
				lo.Damage += eff.Value
			case "fireRate":
				lo.FireRate += eff.Value
			case "speed":
				lo.Speed += eff.Value
			case "health":
				lo.Health += eff.Value
			case "armor":
				lo.Armor += eff.Value
			case "dropRate":
				lo.DropRate += eff.Value
			case "scoreMultiplier":
				lo.ScoreMultiplier += eff.Value
			case "dodgeChance":
				lo.DodgeChance += eff.Value
			}
		}
	}
	return lo, skipped
}
