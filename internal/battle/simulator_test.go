package battle

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

func TestNewWorld(t *testing.T) {
	sim, w := newTestSim(t)
	p := w.Player
	assert.Equal(t, "pegasus", p.Ship)
	assert.Equal(t, 1, p.Form)
	assert.Equal(t, 100.0, p.Health)
	assert.Equal(t, 50.0, p.Armor)
	assert.Equal(t, 180.0, p.FireInterval)
	assert.Equal(t, models.Vector2D{X: 275, Y: 900}, p.Position)
	assert.Equal(t, int64(25000), w.NextBossScore)
	assert.Equal(t, PhaseIdle, w.Scheduler.Phase)

	def, err := sim.NewWorld("", nil)
	require.NoError(t, err)
	assert.Equal(t, "pegasus", def.Player.Ship)

	_, err = sim.NewWorld("zeppelin", nil)
	assert.True(t, errors.Is(err, tables.ErrUnknownShip))
}

func TestNewWorldAppliesLoadout(t *testing.T) {
	sim, _ := newTestSim(t)
	logs := &logSink{}
	sim.Logf = logs.logf

	w, err := sim.NewWorld("pegasus", []string{"survival_health_1", "tactics_dodge", "nope"})
	require.NoError(t, err)

	assert.InDelta(t, 108.0, w.Player.MaxHealth, 1e-9)
	assert.Equal(t, w.Player.MaxHealth, w.Player.Health)
	assert.Zero(t, w.Player.Loadout.DodgeChance)
	assert.Len(t, logs.lines, 2)
}

func TestTickLeavesInputWorldUntouched(t *testing.T) {
	sim, w := newTestSim(t)
	w.Enemies = []models.EnemyEntity{testEnemy("e1", 100, 100, 50)}
	w.Player.Modifiers[models.StatDamage] = models.Modifier{Multiplier: 2, ExpiresAt: 1}

	next, _ := sim.Tick(w, Input{Left: true}, 16)

	assert.Equal(t, 0.0, w.Now)
	assert.Equal(t, models.Vector2D{X: 275, Y: 900}, w.Player.Position)
	assert.Contains(t, w.Player.Modifiers, models.StatDamage)
	assert.Empty(t, w.Projectiles)

	assert.Equal(t, 16.0, next.Now)
	assert.Equal(t, int64(1), next.Tick)
	assert.Less(t, next.Player.Position.X, 275.0)
	assert.NotContains(t, next.Player.Modifiers, models.StatDamage)
	assert.Equal(t, Input{Left: true}, next.PrevInput)
}

func TestTickAfterSessionEndIsNoop(t *testing.T) {
	sim, w := newTestSim(t)
	w.Over = true

	next, events := sim.Tick(w, Input{}, 16)

	assert.Same(t, w, next)
	assert.Empty(t, events)
}

func TestTickSpawnsBothSidesWithinTwoIntervals(t *testing.T) {
	sim, w := newTestSimWith(t, pairTables(t))
	w.Scheduler.Countdown = 0

	for w.Now < 200 {
		w, _ = sim.Tick(w, Input{}, 16)
	}

	n := 0
	for _, e := range w.Enemies {
		if e.SpawnTime <= w.Now {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

func TestTickScalesEnemiesByDifficulty(t *testing.T) {
	tb := pairTables(t)
	tb.Levels[0].DifficultyMultiplier = 2
	sim, w := newTestSimWith(t, tb)
	w.Scheduler = sim.scheduler.Start()
	w.Scheduler.Countdown = 0

	w, _ = sim.Tick(w, Input{}, 16)

	require.Len(t, w.Enemies, 1)
	assert.Equal(t, 40.0, w.Enemies[0].Health)
	assert.Equal(t, 20.0, w.Enemies[0].BulletDamage)
}

func TestTickIsDeterministicForSeed(t *testing.T) {
	play := func() (*World, []EventKind, []string) {
		tb := defaultTables(t)
		sim := NewSimulator(tb, rand.New(rand.NewSource(42)))
		sim.Logf = t.Logf
		w, err := sim.NewWorld("dragon", nil)
		require.NoError(t, err)

		var (
			kinds   []EventKind
			spawned []string
		)
		for i := 0; i < 1500 && !w.Over; i++ {
			in := Input{Left: (i/60)%2 == 0, Right: (i/60)%2 == 1, Special: i%400 == 0}
			var events []Event
			w, events = sim.Tick(w, in, 16)
			for _, e := range events {
				kinds = append(kinds, e.Kind)
				if e.Kind == EventEnemySpawned || e.Kind == EventBossSpawned {
					spawned = append(spawned, e.EntityID)
				}
			}
		}
		return w, kinds, spawned
	}

	a, ak, as := play()
	b, bk, bs := play()

	assert.Equal(t, a.Now, b.Now)
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.Player.Position, b.Player.Position)
	assert.Equal(t, a.Player.Health, b.Player.Health)
	assert.Equal(t, ak, bk)
	assert.Equal(t, a.Player.ID, b.Player.ID)
	require.NotEmpty(t, as)
	assert.Equal(t, as, bs)
	require.Equal(t, len(a.Enemies), len(b.Enemies))
	for i := range a.Enemies {
		assert.Equal(t, a.Enemies[i].ID, b.Enemies[i].ID)
		assert.Equal(t, a.Enemies[i].Position, b.Enemies[i].Position)
		assert.Equal(t, a.Enemies[i].Health, b.Enemies[i].Health)
	}
	assert.NotZero(t, Count(toEvents(ak), EventEnemySpawned))
}

func toEvents(kinds []EventKind) []Event {
	events := make([]Event, len(kinds))
	for i, k := range kinds {
		events[i] = Event{Kind: k}
	}
	return events
}

func TestSpecialIsEdgeTriggered(t *testing.T) {
	sim, w := newTestSim(t)
	w.Enemies = []models.EnemyEntity{testEnemy("e1", 100, 100, 1000)}

	f := at(w, 0)
	sim.triggerSpecial(f, Input{Special: true})
	assert.Equal(t, 700.0, w.Enemies[0].Health)
	assert.Equal(t, 15000.0, w.Player.SpecialCooldown)
	assert.Equal(t, 1, Count(f.events, EventSpecialFired))

	w.Player.SpecialCooldown = 0
	w.PrevInput = Input{Special: true}
	sim.triggerSpecial(at(w, 16), Input{Special: true})
	assert.Equal(t, 700.0, w.Enemies[0].Health)

	w.PrevInput = Input{}
	w.Player.SpecialCooldown = 1
	sim.triggerSpecial(at(w, 32), Input{Special: true})
	assert.Equal(t, 700.0, w.Enemies[0].Health)
}

func TestAwakeningNeedsCombo(t *testing.T) {
	sim, w := newTestSim(t)
	w.Player.Combo = 4

	sim.triggerAwakening(at(w, 0), Input{Awaken: true})
	assert.False(t, w.Player.Awakened)

	w.Player.Combo = 5
	f := at(w, 100)
	sim.triggerAwakening(f, Input{Awaken: true})
	assert.True(t, w.Player.Awakened)
	assert.Equal(t, 10100.0, w.Player.AwakenedUntil)
	assert.Equal(t, 1, Count(f.events, EventAwakeningStarted))
}

func TestFireIntervalAndDamage(t *testing.T) {
	sim, w := newTestSim(t)
	p := w.Player
	normal, _ := sim.tables.Weapon("normal")

	assert.Equal(t, 180.0, sim.fireInterval(p, normal))
	assert.Equal(t, 15.0, sim.shotDamage(p, normal))

	p.RateLevel = 2
	p.PowerLevel = 2
	assert.Equal(t, 150.0, sim.fireInterval(p, normal))
	assert.Equal(t, 21.0, sim.shotDamage(p, normal))

	p.Awakened = true
	assert.InDelta(t, 150*0.3333, sim.fireInterval(p, normal), 1e-9)
	assert.Equal(t, 42.0, sim.shotDamage(p, normal))

	p.Modifiers[models.StatFireRate] = models.Modifier{Multiplier: 0.1, ExpiresAt: 1e9}
	assert.Equal(t, 40.0, sim.fireInterval(p, normal))
}

func TestPlayerFireLanesGrowWithForm(t *testing.T) {
	sim, w := newTestSim(t)

	sim.playerFire(at(w, 1000))
	assert.Len(t, w.Projectiles, 1)

	sim.playerFire(at(w, 1100))
	assert.Len(t, w.Projectiles, 1)

	w.Player.Form = 2
	sim.playerFire(at(w, 1200))
	assert.Len(t, w.Projectiles, 4)
	for _, p := range w.Projectiles {
		assert.Equal(t, models.OwnerPlayer, p.Owner)
		assert.Less(t, p.Position.Y, w.Player.Position.Y)
	}
}

func TestAwakenedFiresAtLeastSecondForm(t *testing.T) {
	sim, w := newTestSim(t)
	w.Player.Awakened = true
	w.Player.AwakenedUntil = 10000

	sim.playerFire(at(w, 1000))
	assert.Len(t, w.Projectiles, 3)

	w.Projectiles = nil
	w.Player.Form = 3
	sim.playerFire(at(w, 2000))
	assert.Len(t, w.Projectiles, 5)
}

func TestTripleShotSpreadIsSymmetric(t *testing.T) {
	sim, _ := newTestSim(t)
	w, err := sim.NewWorld("dragon", nil)
	require.NoError(t, err)

	sim.playerFire(at(w, 1000))

	require.Len(t, w.Projectiles, 3)
	vx := func(i int) float64 {
		return w.Projectiles[i].Motion.(models.LinearMotion).Velocity.X
	}
	assert.InDelta(t, -vx(0), vx(2), 1e-9)
	assert.InDelta(t, 0.0, vx(1), 1e-9)
	speed := 550 * 0.9
	assert.InDelta(t, speed*math.Sin(25*math.Pi/180), vx(2), 1e-9)
}

func TestWaveShotsWeave(t *testing.T) {
	sim, _ := newTestSim(t)
	w, err := sim.NewWorld("andromeda", nil)
	require.NoError(t, err)

	sim.playerFire(at(w, 1000))
	require.Len(t, w.Projectiles, 1)
	shot := w.Projectiles[0]
	assert.True(t, shot.Piercing())
	assert.Equal(t, models.MotionSine, shot.Motion.Kind())
}

func TestEnemyFire(t *testing.T) {
	sim, w := newTestSim(t)
	e := testEnemy("e1", 100, 100, 10)
	e.Entered = true
	e.FireRate = 1000
	e.BulletSpeed = 250
	e.BulletDamage = 10
	hidden := e
	hidden.ID = "e2"
	hidden.Entered = false
	boss := testEnemy("boss", 300, 50, 5000)
	boss.Class = models.ClassBoss
	boss.Entered = true
	boss.FireRate = 800
	boss.BulletSpeed = 360
	w.Enemies = []models.EnemyEntity{e, hidden, boss}

	sim.enemyFire(at(w, 999))
	assert.Len(t, w.Projectiles, 5)

	w.Projectiles = nil
	sim.enemyFire(at(w, 1000))
	require.Len(t, w.Projectiles, 1)
	shot := w.Projectiles[0]
	assert.Equal(t, models.OwnerEnemy, shot.Owner)
	assert.Equal(t, 130.0, shot.Position.Y)
	assert.Equal(t, models.Vector2D{Y: 250}, shot.Motion.(models.LinearMotion).Velocity)
}
