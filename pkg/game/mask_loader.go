package game

import (
	"context"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jermochi/Hygin/pkg/config"
	"github.com/jermochi/Hygin/pkg/mask"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// maxMaskDecoders 同时解码的图片数量
const maxMaskDecoders = 2

type maskEntry struct {
	mask  *mask.PixelMask
	ready bool
}

// MaskLoader 在后台解码游戏定义中用到的像素遮罩
//
// 实现 systems.MaskProvider：步骤的遮罩在解码完成前报告未就绪，
// 解码失败时报告就绪但为 nil，调用方改用回退生成带。
// 同一张图片和同一组判定条件只解码一次。
type MaskLoader struct {
	fsys fs.FS

	mu      sync.Mutex
	byStep  map[int]*maskEntry
	pending int
	group   *errgroup.Group
}

// NewMaskLoader 创建遮罩加载器
//
// 参数：
//   - fsys: 图片所在的文件系统（路径与游戏定义中的 mask.image 一致）
func NewMaskLoader(fsys fs.FS) *MaskLoader {
	return &MaskLoader{fsys: fsys, byStep: make(map[int]*maskEntry)}
}

// CriteriaFor 将配置转换为遮罩判定条件
func CriteriaFor(mc *config.MaskConfig) mask.Criteria {
	c := mask.Criteria{
		MinAlpha:      mc.MinAlpha,
		MinBrightness: mc.MinBrightness,
		MaxBrightness: mc.MaxBrightness,
		ExcludeTop:    mc.ExcludeTop,
		Stride:        mc.Stride,
	}
	switch mc.Criteria {
	case config.MaskCriteriaBrightness:
		c.Mode = mask.ModeBrightness
	case config.MaskCriteriaSoftTissue:
		c.Mode = mask.ModeSoftTissue
	default:
		c.Mode = mask.ModeAlpha
	}
	return c
}

// Load 开始解码 def 中所有遮罩步骤的图片
// 之前的加载结果被丢弃
func (l *MaskLoader) Load(ctx context.Context, def *config.GameDefinition) {
	type job struct {
		image    string
		criteria mask.Criteria
		steps    []int
	}
	jobs := make(map[string]*job)
	var order []string

	l.mu.Lock()
	l.byStep = make(map[int]*maskEntry)
	for i := range def.Steps {
		mc := def.Steps[i].Mask
		if mc == nil || mc.Image == "" {
			continue
		}
		c := CriteriaFor(mc)
		key := fmt.Sprintf("%s|%+v", mc.Image, c)
		j, ok := jobs[key]
		if !ok {
			j = &job{image: mc.Image, criteria: c}
			jobs[key] = j
			order = append(order, key)
		}
		j.steps = append(j.steps, i)
		l.byStep[i] = &maskEntry{}
	}
	byStep := l.byStep
	l.pending = len(order)

	// SetLimit 下 g.Go 会阻塞，派发放在后台进行
	outer, ctx := errgroup.WithContext(ctx)
	l.group = outer
	l.mu.Unlock()

	outer.Go(func() error {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(maxMaskDecoders)
		for _, key := range order {
			j := jobs[key]
			g.Go(func() error {
				defer func() {
					l.mu.Lock()
					l.pending--
					l.mu.Unlock()
				}()
				if err := ctx.Err(); err != nil {
					return err
				}

				m, err := l.decode(j.image, j.criteria)
				if err != nil {
					log.Warn().Err(err).Str("component", "MaskLoader").Str("image", j.image).
						Msg("mask unavailable, using fallback band")
				} else {
					log.Debug().Str("component", "MaskLoader").Str("image", j.image).
						Int("points", len(m.Points)).Msg("mask decoded")
				}

				l.mu.Lock()
				defer l.mu.Unlock()
				for _, i := range j.steps {
					if e, ok := byStep[i]; ok {
						e.mask = m
						e.ready = true
					}
				}
				return nil
			})
		}
		return g.Wait()
	})
}

func (l *MaskLoader) decode(path string, c mask.Criteria) (*mask.PixelMask, error) {
	if l.fsys == nil {
		return nil, fmt.Errorf("no file system for %s: %w", path, mask.ErrMaskUnavailable)
	}
	f, err := l.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask image %s: %w", path, err)
	}
	defer f.Close()
	return mask.Decode(f, c)
}

// Mask 返回步骤的遮罩
// 没有配置遮罩的步骤总是就绪且为 nil
func (l *MaskLoader) Mask(stepIndex int) (*mask.PixelMask, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.byStep[stepIndex]
	if !ok {
		return nil, true
	}
	return e.mask, e.ready
}

// Pending 仍在解码的图片数量
func (l *MaskLoader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Wait 等待当前加载全部完成
func (l *MaskLoader) Wait() error {
	l.mu.Lock()
	g := l.group
	l.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}
