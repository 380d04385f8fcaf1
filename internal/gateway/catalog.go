package gateway

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jacl-coder/AstralSaints-Server/internal/tables"
)

// CatalogHandler 战机与技能目录处理器，数据来自静态数值表
type CatalogHandler struct {
	tables *tables.Tables
}

// ShipInfo 战机目录条目
type ShipInfo struct {
	ID string `json:"id"`
	tables.ShipConfig
	Default bool `json:"default"`
}

// StageInfo 进化阶段条目
type StageInfo struct {
	Form     int    `json:"form"`
	Name     string `json:"name"`
	MinScore int64  `json:"min_score"`
	MinKills int    `json:"min_kills"`
	MinLevel int    `json:"min_level"`
}

// ShipDetail 战机详情
type ShipDetail struct {
	ShipInfo
	Evolutions []StageInfo `json:"evolutions"`
}

// SkillInfo 技能目录条目
type SkillInfo struct {
	ID string `json:"id"`
	tables.SkillNode
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(t *tables.Tables) *CatalogHandler {
	return &CatalogHandler{tables: t}
}

// RegisterHandlers 注册HTTP处理器
func (h *CatalogHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/ships", h.handleShips)
	mux.HandleFunc("/ships/", h.handleShipDetail)
	mux.HandleFunc("/skills", h.handleSkills)
}

// handleShips 列出所有战机
func (h *CatalogHandler) handleShips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	ids := h.tables.ShipIDs()
	ships := make([]ShipInfo, 0, len(ids))
	for _, id := range ids {
		ships = append(ships, h.shipInfo(id))
	}
	sendSuccess(w, "查询成功", ships)
}

// handleShipDetail 查询单个战机及其进化路线
func (h *CatalogHandler) handleShipDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/ships/")
	if _, ok := h.tables.Ship(id); !ok {
		sendError(w, "战机不存在", http.StatusNotFound)
		return
	}

	detail := ShipDetail{ShipInfo: h.shipInfo(id)}
	for form := 1; form <= h.tables.Rules.MaxForm; form++ {
		stage, ok := h.tables.Evolution(id, form)
		if !ok {
			continue
		}
		detail.Evolutions = append(detail.Evolutions, StageInfo{
			Form:     stage.Form,
			Name:     stage.Name,
			MinScore: stage.Requirements.Score,
			MinKills: stage.Requirements.Kills,
			MinLevel: stage.Requirements.Level,
		})
	}
	sendSuccess(w, "查询成功", detail)
}

// handleSkills 列出技能树
func (h *CatalogHandler) handleSkills(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	skills := make([]SkillInfo, 0, len(h.tables.Skills))
	for id, node := range h.tables.Skills {
		skills = append(skills, SkillInfo{ID: id, SkillNode: node})
	}
	sort.Slice(skills, func(i, j int) bool { return skills[i].ID < skills[j].ID })
	sendSuccess(w, "查询成功", skills)
}

func (h *CatalogHandler) shipInfo(id string) ShipInfo {
	cfg, _ := h.tables.Ship(id)
	return ShipInfo{ID: id, ShipConfig: cfg, Default: id == h.tables.DefaultShip}
}
