// schema.go

package db

import (
	"context"
	"fmt"
)

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 单局战绩表
CREATE TABLE IF NOT EXISTS session_records (
    id UUID PRIMARY KEY,
    player_id VARCHAR(64) NOT NULL,
    player_name VARCHAR(64) NOT NULL,
    ship VARCHAR(32) NOT NULL,
    score BIGINT NOT NULL DEFAULT 0,
    kills INT NOT NULL DEFAULT 0,
    form INT NOT NULL DEFAULT 1,
    level INT NOT NULL DEFAULT 1,
    loop INT NOT NULL DEFAULT 0,
    boss_clears INT NOT NULL DEFAULT 0,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    ended_at TIMESTAMP WITH TIME ZONE NOT NULL
);

-- 创建索引以提高查询性能
CREATE INDEX IF NOT EXISTS idx_session_records_player_ended ON session_records(player_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS idx_session_records_score ON session_records(score DESC);
CREATE INDEX IF NOT EXISTS idx_session_records_kills ON session_records(kills DESC);
`

// DropAllTablesSQL 删除所有表的SQL语句
const DropAllTablesSQL = `
DROP TABLE IF EXISTS session_records CASCADE;
`

// Tables 由本服务管理的表
var Tables = []string{"session_records"}

// InitAllTables 初始化所有数据库表
func InitAllTables(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("数据库未连接")
	}
	if _, err := DB.ExecContext(ctx, CreateAllTablesSQL); err != nil {
		return fmt.Errorf("创建表失败: %w", err)
	}
	return nil
}

// DropAllTables 删除所有表和数据
func DropAllTables(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("数据库未连接")
	}
	if _, err := DB.ExecContext(ctx, DropAllTablesSQL); err != nil {
		return fmt.Errorf("删除表失败: %w", err)
	}
	return nil
}

// TableStatus 表是否存在及其行数
type TableStatus struct {
	Name   string
	Exists bool
	Rows   int64
}

// Status 查询各表状态
func Status(ctx context.Context) ([]TableStatus, error) {
	if DB == nil {
		return nil, fmt.Errorf("数据库未连接")
	}

	statuses := make([]TableStatus, 0, len(Tables))
	for _, name := range Tables {
		st := TableStatus{Name: name}
		if err := DB.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, name).Scan(&st.Exists); err != nil {
			return nil, fmt.Errorf("查询表 %s 失败: %w", name, err)
		}
		if st.Exists {
			// 表名来自固定列表
			if err := DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, name)).Scan(&st.Rows); err != nil {
				return nil, fmt.Errorf("统计表 %s 失败: %w", name, err)
			}
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
