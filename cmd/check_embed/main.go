// Command check_embed 检查游戏定义引用的资源是否都能从资源文件系统读到
//
// 与发布包一样通过 embedded 包按前缀分派 assets/ 与 data/，
// 对每个引用的文件打印大小与 MD5，缺失任何一个时以非零状态退出。
package main

import (
	"crypto/md5"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jermochi/Hygin/pkg/app"
	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/embedded"
	"github.com/jermochi/Hygin/pkg/game"
	"github.com/jermochi/Hygin/pkg/systems"
)

var root = flag.String("root", ".", "包含 assets/ 与 data/ 的目录")

func main() {
	flag.Parse()
	dir := os.DirFS(*root)
	embedded.Init(dir, dir)

	catalog, err := config.LoadGameCatalog(embedded.FS(), app.GamesDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	refs := referencedFiles(catalog)
	paths := make([]string, 0, len(refs))
	for p := range refs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	missing := 0
	for _, p := range paths {
		data, err := embedded.ReadFile(p)
		if err != nil {
			fmt.Printf("MISSING  %-36s (used by %s)\n", p, refs[p])
			missing++
			continue
		}
		fmt.Printf("ok       %-36s %8d bytes  md5 %x\n", p, len(data), md5.Sum(data))
	}

	if missing > 0 {
		fmt.Printf("\n%d of %d referenced files are missing\n", missing, len(paths))
		os.Exit(1)
	}
	fmt.Printf("\nall %d referenced files present\n", len(paths))
}

// referencedFiles 返回 路径 → 第一个引用它的位置
func referencedFiles(catalog *config.GameCatalog) map[string]string {
	refs := make(map[string]string)
	add := func(path, user string) {
		if _, ok := refs[path]; !ok {
			refs[path] = user
		}
	}
	cue := func(c config.CueConfig, user string) {
		if c.Sound != "" {
			add(game.CuePath(c.Sound), user)
		}
		if c.Visual != "" {
			add(game.VisualPath(c.Visual), user)
		}
	}

	for _, id := range []string{
		systems.CueTargetSuccess, systems.CueTargetFailed, systems.CueWrong,
		systems.CueGameComplete, systems.CueGameLose,
	} {
		add(game.CuePath(id), "engine")
	}

	for _, id := range catalog.IDs() {
		def, err := catalog.Get(id)
		if err != nil {
			continue
		}
		for i := range def.Steps {
			step := &def.Steps[i]
			user := fmt.Sprintf("%s step %d", def.ID, i)
			if step.Mask != nil && step.Mask.Image != "" {
				add(step.Mask.Image, user)
			}
			cue(step.OnEnter, user)
			cue(step.OnComplete, user)
		}
	}
	return refs
}
