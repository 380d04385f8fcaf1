// loader.go

package tables

import (
	_ "embed"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Default 加载内置数值表
func Default() (*Tables, error) {
	t, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("内置数值表无效: %w", err)
	}
	return t, nil
}

// Load 从YAML文件加载数值表，路径为空时使用内置数值表
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数值表 %s 失败: %w", path, err)
	}

	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("数值表 %s 无效: %w", path, err)
	}
	return t, nil
}

// Parse 解析并校验数值表
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析YAML失败: %w", err)
	}

	applyDefaults(&t)

	if err := validate(&t); err != nil {
		return nil, err
	}

	warnDanglingRefs(&t)
	return &t, nil
}

// applyDefaults 为缺省字段设置默认值
func applyDefaults(t *Tables) {
	if t.Playfield.Margin == 0 {
		t.Playfield.Margin = 50
	}
	if t.Rules.ComboMax == 0 {
		t.Rules.ComboMax = 5
	}
	if t.Rules.MaxForm == 0 {
		t.Rules.MaxForm = 3
	}
	if t.Rules.AwakeningDamageFactor == 0 {
		t.Rules.AwakeningDamageFactor = 1
	}
	if t.Rules.AwakeningFireRateFactor == 0 {
		t.Rules.AwakeningFireRateFactor = 1
	}
	if t.Rules.BossHealthGrowth == 0 {
		t.Rules.BossHealthGrowth = 1
	}
	if t.Rules.LoopDifficultyGrowth == 0 {
		t.Rules.LoopDifficultyGrowth = 1
	}

	for id, w := range t.Weapons {
		if w.FireRate == 0 {
			w.FireRate = 1
		}
		if w.Damage == 0 {
			w.Damage = 1
		}
		if w.BulletSpeed == 0 {
			w.BulletSpeed = 1
		}
		t.Weapons[id] = w
	}

	for i := range t.Levels {
		if t.Levels[i].DifficultyMultiplier == 0 {
			t.Levels[i].DifficultyMultiplier = 1
		}
		if t.Levels[i].WaveDelay == 0 {
			t.Levels[i].WaveDelay = 2000
		}
	}
}

// validate 校验数值表的完整性
func validate(t *Tables) error {
	if t.Playfield.Width <= 0 || t.Playfield.Height <= 0 {
		return fmt.Errorf("场地尺寸必须为正数")
	}
	if len(t.Ships) == 0 {
		return fmt.Errorf("至少需要一架战机")
	}
	if _, ok := t.Ships[t.DefaultShip]; !ok {
		return fmt.Errorf("默认战机 %q: %w", t.DefaultShip, ErrUnknownShip)
	}
	for id, s := range t.Ships {
		if s.MaxHealth <= 0 {
			return fmt.Errorf("战机 %s: maxHealth 必须为正数", id)
		}
		if s.FireRate <= 0 {
			return fmt.Errorf("战机 %s: fireRate 必须为正数", id)
		}
		if _, ok := t.Weapons[s.Weapon]; !ok {
			return fmt.Errorf("战机 %s 的武器 %q: %w", id, s.Weapon, ErrUnknownWeapon)
		}
	}
	for id, e := range t.Enemies {
		if e.Health <= 0 {
			return fmt.Errorf("敌机 %s: health 必须为正数", id)
		}
		switch e.Class {
		case "light", "medium", "heavy", "boss":
		default:
			return fmt.Errorf("敌机 %s: 未知类别 %q", id, e.Class)
		}
	}
	if t.Rules.BossType != "" {
		if _, ok := t.Enemies[t.Rules.BossType]; !ok {
			return fmt.Errorf("首领 %q: %w", t.Rules.BossType, ErrUnknownEnemy)
		}
	}
	for id, p := range t.PowerUps {
		switch p.Effect {
		case "stat_boost", "armor", "weapon_change", "level_up":
		default:
			return fmt.Errorf("道具 %s: 未知效果 %q", id, p.Effect)
		}
	}
	for i, d := range t.Drops {
		if d.Weight < 0 {
			return fmt.Errorf("drops[%d]: 权重不能为负数", i)
		}
	}
	for id, w := range t.Waves {
		if err := validateWave(&w); err != nil {
			return fmt.Errorf("波次 %s: %w", id, err)
		}
	}
	if len(t.Levels) == 0 {
		return fmt.Errorf("至少需要一个关卡")
	}
	return nil
}

func validateWave(w *WavePattern) error {
	if w.WaveDelay < 0 || w.SpawnDelay < 0 {
		return fmt.Errorf("延迟不能为负数")
	}
	if w.Scripted() {
		for i, s := range w.Script {
			if s.Delay < 0 {
				return fmt.Errorf("script[%d]: delay 不能为负数", i)
			}
			if s.X > 1 {
				return fmt.Errorf("script[%d]: x 必须在 [0,1] 之间或为负数", i)
			}
		}
		return nil
	}
	if w.Entry.Left.Count < 0 || w.Entry.Right.Count < 0 {
		return fmt.Errorf("入场数量不能为负数")
	}
	if w.Entry.Left.Count+w.Entry.Right.Count != w.Total() {
		return fmt.Errorf("左右入场数量之和 %d 与敌机总数 %d 不一致",
			w.Entry.Left.Count+w.Entry.Right.Count, w.Total())
	}
	switch w.Formation.Type {
	case ShapeLineHorizontal, ShapeLineVertical, ShapeV, ShapeCircle,
		ShapeSquare, ShapeDiamond, ShapeStaggered, ShapeScattered:
	default:
		return fmt.Errorf("未知编队形状 %q", w.Formation.Type)
	}
	return nil
}

// warnDanglingRefs 引用缺失只记录日志，运行时查表失败会跳过
func warnDanglingRefs(t *Tables) {
	for _, lvl := range t.Levels {
		for _, id := range lvl.Waves {
			if _, ok := t.Waves[id]; !ok {
				log.Printf("警告: 关卡 %d 引用了不存在的波次 %s", lvl.ID, id)
			}
		}
	}
	for id, w := range t.Waves {
		for _, e := range w.Enemies {
			if _, ok := t.Enemies[e.Type]; !ok {
				log.Printf("警告: 波次 %s 引用了不存在的敌机 %s", id, e.Type)
			}
		}
	}
	for _, d := range t.Drops {
		if _, ok := t.PowerUps[d.Type]; !ok && d.Type != NoDrop {
			log.Printf("警告: 掉落表引用了不存在的道具 %s", d.Type)
		}
	}
}
