// formation.go

package battle

import (
	"math"
	"math/rand"

	"github.com/jacl-coder/AstralSaints-Server/internal/models"
	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

const (
	// staggerOffset 交错编队相邻槽位的上下偏移
	staggerOffset = 60
	// scatterHeight 散开编队的区域高度
	scatterHeight = 150
	// scatterWidthRatio 散开编队区域占屏幕宽度的比例
	scatterWidthRatio = 0.8
)

// Layout 计算编队槽位的中心坐标。
// 除 scattered 外结果只取决于参数；scattered 以 centerX 为屏幕中线，使用 rng 随机分布
func Layout(shape tables.FormationShape, count int, centerX, centerY, spacing float64, rng *rand.Rand) []models.Vector2D {
	if count <= 0 {
		return nil
	}
	positions := make([]models.Vector2D, 0, count)

	switch shape {
	case tables.ShapeLineHorizontal:
		startX := centerX - float64(count-1)*spacing/2
		for i := 0; i < count; i++ {
			positions = append(positions, models.Vector2D{X: startX + float64(i)*spacing, Y: centerY})
		}

	case tables.ShapeLineVertical:
		startY := centerY - float64(count-1)*spacing/2
		for i := 0; i < count; i++ {
			positions = append(positions, models.Vector2D{X: centerX, Y: startY + float64(i)*spacing})
		}

	case tables.ShapeV:
		// 顶点在中心单独占一个槽位，其余左右交替向下展开，行号为 (i+1)/2
		for i := 0; i < count; i++ {
			row := (i + 1) / 2
			side := -1.0
			if i%2 == 0 {
				side = 1.0
			}
			positions = append(positions, models.Vector2D{
				X: centerX + side*float64(row)*spacing*0.8,
				Y: centerY + float64(row)*spacing,
			})
		}

	case tables.ShapeCircle:
		radius := spacing * 2
		step := 2 * math.Pi / float64(count)
		for i := 0; i < count; i++ {
			angle := float64(i) * step
			positions = append(positions, models.Vector2D{
				X: centerX + math.Cos(angle)*radius,
				Y: centerY + math.Sin(angle)*radius,
			})
		}

	case tables.ShapeSquare:
		perSide := int(math.Ceil(math.Sqrt(float64(count))))
		offset := float64(perSide-1) * spacing / 2
		for i := 0; i < count; i++ {
			row, col := i/perSide, i%perSide
			positions = append(positions, models.Vector2D{
				X: centerX - offset + float64(col)*spacing,
				Y: centerY - offset + float64(row)*spacing,
			})
		}

	case tables.ShapeDiamond:
		// 第 k 环有 4k 个槽位，第 0 环只有中心一个
		for ring := 0; len(positions) < count; ring++ {
			slots := 1
			if ring > 0 {
				slots = 4 * ring
			}
			distance := float64(ring) * spacing
			for i := 0; i < slots && len(positions) < count; i++ {
				angle := float64(i) / float64(slots) * 2 * math.Pi
				positions = append(positions, models.Vector2D{
					X: centerX + math.Cos(angle)*distance,
					Y: centerY + math.Sin(angle)*distance,
				})
			}
		}

	case tables.ShapeStaggered:
		startX := centerX - float64(count-1)*spacing/2
		for i := 0; i < count; i++ {
			dy := float64(staggerOffset)
			if i%2 == 0 {
				dy = -dy
			}
			positions = append(positions, models.Vector2D{X: startX + float64(i)*spacing, Y: centerY + dy})
		}

	case tables.ShapeScattered:
		width := centerX * 2 * scatterWidthRatio
		for i := 0; i < count; i++ {
			positions = append(positions, models.Vector2D{
				X: centerX + between(rng, -width/2, width/2),
				Y: centerY + between(rng, -scatterHeight/2, scatterHeight/2),
			})
		}

	default:
		return nil
	}

	return positions
}
