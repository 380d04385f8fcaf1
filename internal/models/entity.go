// entity.go

package models

// Vector2D 二维向量
type Vector2D struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Add 向量相加
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale 向量缩放
func (v Vector2D) Scale(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

// Size 实体尺寸
type Size struct {
	Width  float64 `json:"width" yaml:"width" msgpack:"w"`
	Height float64 `json:"height" yaml:"height" msgpack:"h"`
}

// Rect 轴对齐包围盒，Position 为左上角
type Rect struct {
	X, Y, Width, Height float64
}

// Overlaps 判断两个包围盒是否相交，边缘接触不算相交
func (a Rect) Overlaps(b Rect) bool {
	return a.X < b.X+b.Width &&
		a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height &&
		a.Y+a.Height > b.Y
}

// Expand 向四周扩展 margin
func (a Rect) Expand(margin float64) Rect {
	return Rect{X: a.X - margin, Y: a.Y - margin, Width: a.Width + 2*margin, Height: a.Height + 2*margin}
}

// EntityType 实体类型
type EntityType string

const (
	// EntityPlayer 玩家实体
	EntityPlayer EntityType = "player"
	// EntityEnemy 敌机实体
	EntityEnemy EntityType = "enemy"
	// EntityProjectile 投射物实体
	EntityProjectile EntityType = "projectile"
	// EntityPowerUp 道具实体
	EntityPowerUp EntityType = "powerup"
	// EntityParticle 粒子实体
	EntityParticle EntityType = "particle"
)

// BaseEntity 基础实体结构
type BaseEntity struct {
	ID       string   `json:"id"`
	Position Vector2D `json:"position"`
	Size     Size     `json:"size"`
}

// Bounds 获取包围盒
func (e *BaseEntity) Bounds() Rect {
	return Rect{X: e.Position.X, Y: e.Position.Y, Width: e.Size.Width, Height: e.Size.Height}
}

// Center 获取中心点
func (e *BaseEntity) Center() Vector2D {
	return Vector2D{X: e.Position.X + e.Size.Width/2, Y: e.Position.Y + e.Size.Height/2}
}

// Collides 两个实体的包围盒是否重叠
func Collides(a, b *BaseEntity) bool {
	return a.Bounds().Overlaps(b.Bounds())
}
