package config

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// GameCatalog 按ID索引的全部小游戏定义
type GameCatalog struct {
	games map[string]*GameDefinition
}

// LoadGameCatalog 从文件系统加载目录下所有 *.yaml 小游戏定义
//
// 参数:
//   - fsys: 文件系统（通常是嵌入的资源）
//   - dir: 定义文件所在目录，如 "data/games"
//
// 返回:
//   - *GameCatalog: 加载后的目录
//   - error: 任一文件读取/校验失败，或ID、槽位重复
func LoadGameCatalog(fsys fs.FS, dir string) (*GameCatalog, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list game definitions in %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no game definitions found in %s", dir)
	}

	catalog := &GameCatalog{games: make(map[string]*GameDefinition, len(files))}
	slots := make(map[int]string, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read game definition file %s: %w", file, err)
		}
		def, err := ParseGameDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("invalid game definition in %s: %w", file, err)
		}
		if _, dup := catalog.games[def.ID]; dup {
			return nil, fmt.Errorf("duplicate game id %q in %s", def.ID, file)
		}
		if other, dup := slots[def.Slot]; dup {
			return nil, fmt.Errorf("game %s reuses slot %d of game %s", def.ID, def.Slot, other)
		}
		catalog.games[def.ID] = def
		slots[def.Slot] = def.ID
	}
	return catalog, nil
}

// NewGameCatalog 由已解析的定义构建目录（测试与工具使用）
func NewGameCatalog(defs ...*GameDefinition) *GameCatalog {
	c := &GameCatalog{games: make(map[string]*GameDefinition, len(defs))}
	for _, d := range defs {
		c.games[d.ID] = d
	}
	return c
}

// Get 按ID获取定义
func (c *GameCatalog) Get(id string) (*GameDefinition, error) {
	def, ok := c.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	return def, nil
}

// IDs 返回排序后的全部游戏ID
func (c *GameCatalog) IDs() []string {
	ids := make([]string, 0, len(c.games))
	for id := range c.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BySlot 按分数槽位查找定义
func (c *GameCatalog) BySlot(slot int) (*GameDefinition, bool) {
	for _, def := range c.games {
		if def.Slot == slot {
			return def, true
		}
	}
	return nil, false
}
