package protocol

import (
	"math/rand"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/AstralSaints-Server/internal/battle"
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

func newWorld(t *testing.T) *battle.World {
	t.Helper()
	tb, err := tables.Default()
	require.NoError(t, err)
	sim := battle.NewSimulator(tb, rand.New(rand.NewSource(12345)))
	w, err := sim.NewWorld("pegasus", nil)
	require.NoError(t, err)
	return w
}

func TestConvertWorldHidesPendingEnemies(t *testing.T) {
	w := newWorld(t)
	w.Now = 1000
	w.Enemies = []models.EnemyEntity{
		{BaseEntity: models.BaseEntity{ID: "now"}, Type: "scout", SpawnTime: 500},
		{BaseEntity: models.BaseEntity{ID: "later"}, Type: "scout", SpawnTime: 1500},
	}
	w.Particles = []models.ParticleEntity{{Life: 250, MaxLife: 1000, Color: "#fff"}}
	w.Player.Modifiers[models.StatDamage] = models.Modifier{Multiplier: 1.5, ExpiresAt: 2000}

	f := ConvertWorld(w, []battle.Event{{Kind: battle.EventWaveStarted, Label: "basic_pincer"}})

	require.Len(t, f.Enemies, 1)
	assert.Equal(t, "now", f.Enemies[0].ID)
	require.Len(t, f.Particles, 1)
	assert.Equal(t, 0.25, f.Particles[0].Alpha)
	assert.Equal(t, 1.5, f.Player.Modifiers[models.StatDamage])
	assert.Equal(t, "pegasus", f.Player.Ship)
	assert.Equal(t, "normal", f.Player.Weapon)
	assert.Len(t, f.Events, 1)
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecFor(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			data, err := codec.Marshal(ClientMessage{Type: MsgInput, Input: &battle.Input{Left: true, Special: true}})
			require.NoError(t, err)

			var msg ClientMessage
			require.NoError(t, codec.Unmarshal(data, &msg))
			assert.Equal(t, MsgInput, msg.Type)
			require.NotNil(t, msg.Input)
			assert.True(t, msg.Input.Left)
			assert.True(t, msg.Input.Special)
			assert.False(t, msg.Input.Right)
		})
	}
}

func TestCodecFrameTypes(t *testing.T) {
	assert.Equal(t, websocket.TextMessage, JSON.FrameType())
	assert.Equal(t, websocket.BinaryMessage, Msgpack.FrameType())

	def, err := CodecFor("")
	require.NoError(t, err)
	assert.Equal(t, "json", def.Name())

	_, err = CodecFor("xml")
	assert.Error(t, err)
}

func TestFrameEncodesWithMsgpack(t *testing.T) {
	w := newWorld(t)
	data, err := Msgpack.Marshal(NewFrameMessage(ConvertWorld(w, nil)))
	require.NoError(t, err)

	var msg ServerMessage
	require.NoError(t, Msgpack.Unmarshal(data, &msg))
	assert.Equal(t, MsgFrame, msg.Type)
	require.NotNil(t, msg.Frame)
	assert.Equal(t, w.Player.Health, msg.Frame.Player.Health)
}

func TestErrorMessage(t *testing.T) {
	msg := NewErrorMessage("会话已满", "session_limit")
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, "session_limit", msg.Error.ErrorCode)
}
