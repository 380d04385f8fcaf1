package battle

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// logSink 收集模拟器日志
type logSink struct {
	lines []string
}

func (l *logSink) logf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func defaultTables(t *testing.T) *tables.Tables {
	t.Helper()
	tb, err := tables.Default()
	require.NoError(t, err)
	return tb
}

func newTestSim(t *testing.T) (*Simulator, *World) {
	t.Helper()
	return newTestSimWith(t, defaultTables(t))
}

func newTestSimWith(t *testing.T, tb *tables.Tables) (*Simulator, *World) {
	t.Helper()
	sim := NewSimulator(tb, rand.New(rand.NewSource(12345)))
	sim.Logf = t.Logf
	w, err := sim.NewWorld("pegasus", nil)
	require.NoError(t, err)
	return sim, w
}

// at 构造指定时刻的单帧上下文
func at(w *World, now float64) *frame {
	w.Now = now
	return &frame{w: w, now: now}
}

func testEnemy(id string, x, y, health float64) models.EnemyEntity {
	return models.EnemyEntity{
		BaseEntity: models.BaseEntity{ID: id, Position: models.Vector2D{X: x, Y: y}, Size: models.Size{Width: 30, Height: 30}},
		Type:       "scout",
		Class:      models.ClassLight,
		Health:     health,
		MaxHealth:  health,
		ScoreValue: 100,
		Motion:     models.HoldMotion{},
	}
}

func playerShot(id string, x, y, damage float64, pattern models.WeaponPattern) models.ProjectileEntity {
	return models.ProjectileEntity{
		BaseEntity: models.BaseEntity{ID: id, Position: models.Vector2D{X: x, Y: y}, Size: models.Size{Width: 8, Height: 24}},
		Owner:      models.OwnerPlayer,
		Pattern:    pattern,
		Damage:     damage,
		Motion:     models.LinearMotion{Velocity: models.Vector2D{Y: -600}},
	}
}

// enemyShotAtPlayer 落在玩家包围盒内的敌方子弹
func enemyShotAtPlayer(w *World, id string, damage float64) models.ProjectileEntity {
	c := w.Player.Center()
	return models.ProjectileEntity{
		BaseEntity: models.BaseEntity{ID: id, Position: models.Vector2D{X: c.X - 4, Y: c.Y - 8}, Size: models.Size{Width: 8, Height: 16}},
		Owner:      models.OwnerEnemy,
		Pattern:    models.PatternSingle,
		Damage:     damage,
		Motion:     models.LinearMotion{Velocity: models.Vector2D{Y: 300}},
	}
}

func powerUpAtPlayer(w *World, kind string) models.PowerUpEntity {
	return models.PowerUpEntity{
		BaseEntity: models.BaseEntity{ID: "u-" + kind, Position: w.Player.Position, Size: models.Size{Width: 40, Height: 40}},
		Type:       kind,
		ExpiresAt:  w.Now + 5000,
	}
}

// pairTables 只有一个关卡、一个两侧各一架敌机波次的数值表
func pairTables(t *testing.T) *tables.Tables {
	t.Helper()
	tb := defaultTables(t)
	tb.Waves = map[string]tables.WavePattern{
		"pair": {
			Name:    "Pair",
			Enemies: []tables.EnemyCount{{Type: "scout", Count: 2}},
			Entry: tables.EntrySpec{
				Left:  tables.SideEntry{Pattern: tables.EntryStraightDown, Count: 1},
				Right: tables.SideEntry{Pattern: tables.EntryStraightDown, Count: 1},
			},
			Formation:  tables.FormationSpec{Type: tables.ShapeLineHorizontal, YPosition: 0.25, Spacing: 50},
			SpawnDelay: 100,
			WaveDelay:  1500,
		},
	}
	tb.Levels = []tables.LevelConfig{{ID: 1, Name: "Test", Waves: []string{"pair"}, DifficultyMultiplier: 1, WaveDelay: 2000}}
	return tb
}
