// events.go

package battle

import (
	"github.com/jacl-coder/AstralSaints-Server/internal/models"
)

// EventKind 事件类型
type EventKind string

const (
	EventWaveStarted      EventKind = "wave_started"
	EventWaveCleared      EventKind = "wave_cleared"
	EventLevelComplete    EventKind = "level_complete"
	EventEnemySpawned     EventKind = "enemy_spawned"
	EventEnemyKilled      EventKind = "enemy_killed"
	EventScoreGained      EventKind = "score_gained"
	EventComboChanged     EventKind = "combo_changed"
	EventPowerUpDropped   EventKind = "powerup_dropped"
	EventPowerUpCollected EventKind = "powerup_collected"
	EventPlayerDamaged    EventKind = "player_damaged"
	EventBossSpawned      EventKind = "boss_spawned"
	EventBossDefeated     EventKind = "boss_defeated"
	EventEvolved          EventKind = "evolved"
	EventAwakeningStarted EventKind = "awakening_started"
	EventAwakeningEnded   EventKind = "awakening_ended"
	EventSpecialFired     EventKind = "special_fired"
	EventSessionEnded     EventKind = "session_ended"
)

// Event 一帧内产生的副作用
type Event struct {
	Kind     EventKind       `json:"kind" msgpack:"kind"`
	EntityID string          `json:"entity_id,omitempty" msgpack:"id,omitempty"`
	Label    string          `json:"label,omitempty" msgpack:"label,omitempty"`
	Value    float64         `json:"value" msgpack:"value"`
	Position models.Vector2D `json:"position" msgpack:"pos"`
}

// Find 返回第一个指定类型的事件
func Find(events []Event, kind EventKind) (Event, bool) {
	for _, e := range events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

// Count 指定类型事件的数量
func Count(events []Event, kind EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
