package battle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

func TestComboResetsExactlyAtTimeout(t *testing.T) {
	sim, w := newTestSim(t)
	w.Player.Combo = 4
	w.Player.ComboExpiresAt = 2000

	sim.expireEffects(at(w, 1999))
	assert.Equal(t, 4, w.Player.Combo)

	f := at(w, 2000)
	sim.expireEffects(f)
	assert.Equal(t, 0, w.Player.Combo)
	assert.Equal(t, 1, Count(f.events, EventComboChanged))
}

func TestEvolutionAdvancesOneStagePerCheck(t *testing.T) {
	sim, w := newTestSim(t)
	p := w.Player
	p.Health = 10
	w.Score = 100000
	p.Kills = 1000
	w.Scheduler.Level = 2

	f := at(w, 0)
	sim.checkEvolution(f)
	assert.Equal(t, 2, p.Form)
	assert.InDelta(t, 115.0, p.MaxHealth, 1e-9)
	assert.Equal(t, 60.0, p.Health)
	assert.Equal(t, 1, Count(f.events, EventEvolved))

	sim.checkEvolution(at(w, 16))
	assert.Equal(t, 3, p.Form)

	sim.checkEvolution(at(w, 32))
	assert.Equal(t, 3, p.Form)

	w.Score = 0
	p.Kills = 0
	sim.checkEvolution(at(w, 48))
	assert.Equal(t, 3, p.Form)
}

func TestEvolutionRequiresAllThresholds(t *testing.T) {
	sim, w := newTestSim(t)
	w.Score = 100000
	w.Player.Kills = 10

	sim.checkEvolution(at(w, 0))
	assert.Equal(t, 1, w.Player.Form)
}

func TestEvolutionFallsBackToDefaultStages(t *testing.T) {
	sim, _ := newTestSim(t)
	w, err := sim.NewWorld("phoenix", nil)
	require.NoError(t, err)
	w.Score = 5000

	sim.checkEvolution(at(w, 0))
	assert.Equal(t, 2, w.Player.Form)
}

func TestBossSpawnClearsWaveAndScalesHealth(t *testing.T) {
	sim, w := newTestSim(t)
	w.Enemies = []models.EnemyEntity{
		testEnemy("e1", 100, 100, 10),
		testEnemy("e2", 200, 100, 10),
		testEnemy("e3", 300, 100, 10),
	}
	w.BossClears = 2
	w.Score = w.NextBossScore
	w.Scheduler.Phase = PhaseHolding

	f := at(w, 1000)
	sim.checkBoss(f)

	require.Len(t, w.Enemies, 1)
	boss := w.Enemies[0]
	assert.True(t, boss.IsBoss())
	assert.InDelta(t, 5000*math.Pow(1.5, 2), boss.Health, 1e-9)
	assert.Equal(t, boss.Health, boss.MaxHealth)
	assert.True(t, w.BossActive)
	assert.Equal(t, PhaseIdle, w.Scheduler.Phase)
	assert.Equal(t, 1, Count(f.events, EventBossSpawned))

	sim.checkBoss(at(w, 1016))
	assert.Len(t, w.Enemies, 1)
}

func TestBossScalesWithDifficulty(t *testing.T) {
	sim, w := newTestSim(t)
	cfg, ok := sim.tables.Enemy(sim.tables.Rules.BossType)
	require.True(t, ok)

	w.Scheduler.Difficulty = 1.8
	w.BossClears = 1
	w.Score = w.NextBossScore
	sim.checkBoss(at(w, 500))

	boss, ok := w.Boss()
	require.True(t, ok)
	assert.InDelta(t, cfg.Health*1.5*1.8, boss.Health, 1e-9)
	assert.InDelta(t, cfg.BulletDamage*1.8, boss.BulletDamage, 1e-9)
}

func TestBossIgnoresUnsetDifficulty(t *testing.T) {
	sim, w := newTestSim(t)
	cfg, ok := sim.tables.Enemy(sim.tables.Rules.BossType)
	require.True(t, ok)

	w.Scheduler.Difficulty = 0
	w.Score = w.NextBossScore
	sim.checkBoss(at(w, 500))

	boss, ok := w.Boss()
	require.True(t, ok)
	assert.InDelta(t, cfg.Health, boss.Health, 1e-9)
	assert.InDelta(t, cfg.BulletDamage, boss.BulletDamage, 1e-9)
}

func TestBossWaitsForThreshold(t *testing.T) {
	sim, w := newTestSim(t)
	w.Score = w.NextBossScore - 1

	sim.checkBoss(at(w, 0))
	assert.False(t, w.BossActive)
	assert.Empty(t, w.Enemies)
}

func TestUnknownBossTypeIsDeferred(t *testing.T) {
	tb := defaultTables(t)
	tb.Rules.BossType = "missing"
	sim, w := newTestSimWith(t, tb)
	logs := &logSink{}
	sim.Logf = logs.logf
	w.Score = w.NextBossScore

	sim.checkBoss(at(w, 0))

	assert.False(t, w.BossActive)
	assert.Equal(t, int64(50000), w.NextBossScore)
	assert.Len(t, logs.lines, 1)
}

func TestAwakeningExpiryResetsCombo(t *testing.T) {
	sim, w := newTestSim(t)
	w.Player.Awakened = true
	w.Player.AwakenedUntil = 10000
	w.Player.Combo = 5
	w.Player.ComboExpiresAt = 20000

	sim.expireEffects(at(w, 9999))
	assert.True(t, w.Player.Awakened)

	f := at(w, 10000)
	sim.expireEffects(f)
	assert.False(t, w.Player.Awakened)
	assert.Equal(t, 0, w.Player.Combo)
	assert.Equal(t, 1, Count(f.events, EventAwakeningEnded))
}

func TestSpecialCooldownCountsDown(t *testing.T) {
	sim, w := newTestSim(t)
	w.Player.SpecialCooldown = 20

	f := at(w, 0)
	f.dt = 16
	sim.expireEffects(f)
	assert.Equal(t, 4.0, w.Player.SpecialCooldown)

	sim.expireEffects(f)
	assert.Equal(t, 0.0, w.Player.SpecialCooldown)
}
