// motion.go

package models

// MotionKind 运动规则类型
type MotionKind string

const (
	MotionLinear MotionKind = "linear"
	MotionSine   MotionKind = "sine"
	MotionZigzag MotionKind = "zigzag"
	MotionTween  MotionKind = "tween"
	MotionPatrol MotionKind = "patrol"
	MotionHold   MotionKind = "hold"
)

// Motion 运动规则。各变体均为值类型，只能在本包内实现
type Motion interface {
	Kind() MotionKind
	isMotion()
}

// LinearMotion 匀速直线运动，速度单位 px/s
type LinearMotion struct {
	Velocity Vector2D
}

// SineMotion 竖直匀速，水平方向绕锚点做正弦摆动。
// 相位按帧递增，与真实时间无关
type SineMotion struct {
	AnchorX   float64
	Phase     float64
	Rate      float64 // 每帧相位增量
	Amplitude float64
	VY        float64
}

// ZigzagMotion 竖直匀速，水平方向在 [AnchorX, AnchorX+Direction*Amplitude] 之间往返
type ZigzagMotion struct {
	AnchorX   float64
	Phase     float64
	Rate      float64
	Amplitude float64
	Direction float64
	VY        float64
}

// EaseKind 缓动函数类型
type EaseKind string

const (
	EaseLinear    EaseKind = "linear"
	EaseOutCubic  EaseKind = "out_cubic"
	EaseInOutSine EaseKind = "in_out_sine"
)

// TweenMotion 在 Duration 毫秒内从 From 插值到 To
type TweenMotion struct {
	From Vector2D
	To   Vector2D
	// Via 二次贝塞尔控制点，为空时走直线
	Via      *Vector2D
	Elapsed  float64
	Duration float64
	Ease     EaseKind
	// Settles 为 true 时到达后进入编队
	Settles bool
}

// PatrolMotion Boss 运动：先下降到 SettleY，再水平往返巡逻
type PatrolMotion struct {
	SettleY      float64
	DescendSpeed float64
	VX           float64
}

// HoldMotion 静止（编队中）
type HoldMotion struct{}

func (LinearMotion) Kind() MotionKind { return MotionLinear }
func (SineMotion) Kind() MotionKind   { return MotionSine }
func (ZigzagMotion) Kind() MotionKind { return MotionZigzag }
func (TweenMotion) Kind() MotionKind  { return MotionTween }
func (PatrolMotion) Kind() MotionKind { return MotionPatrol }
func (HoldMotion) Kind() MotionKind   { return MotionHold }

func (LinearMotion) isMotion() {}
func (SineMotion) isMotion()   {}
func (ZigzagMotion) isMotion() {}
func (TweenMotion) isMotion()  {}
func (PatrolMotion) isMotion() {}
func (HoldMotion) isMotion()   {}
