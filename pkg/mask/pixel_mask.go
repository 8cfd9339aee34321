// Package mask 从图片构建像素占用遮罩
//
// 遮罩本身以全分辨率位图存储，用于碰撞检测；
// 另外按步长采样出一组归一化的候选点，用于目标生成位置的选择。
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	// 注册解码器
	_ "image/jpeg"
	_ "image/png"

	"github.com/jermochi/Hygin/pkg/types"
)

// ErrMaskUnavailable 图片无法解码或没有任何符合条件的像素
var ErrMaskUnavailable = errors.New("pixel mask unavailable")

// Mode 像素判定方式
type Mode int

const (
	// ModeAlpha 透明度阈值
	ModeAlpha Mode = iota
	// ModeBrightness 亮度阈值
	ModeBrightness
	// ModeSoftTissue 偏红的中等亮度区域，排除顶部一段
	ModeSoftTissue
)

func (m Mode) String() string {
	switch m {
	case ModeAlpha:
		return "alpha"
	case ModeBrightness:
		return "brightness"
	case ModeSoftTissue:
		return "softTissue"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// 软组织判定的通道差阈值
const (
	softTissueRedOverGreen = 30
	softTissueRedOverBlue  = 20
)

// Criteria 像素判定条件
type Criteria struct {
	Mode          Mode
	MinAlpha      uint8   // 0 表示 128
	MinBrightness float64 // 0~1
	MaxBrightness float64 // 0 表示不限制
	ExcludeTop    float64 // 归一化 Y 小于该值的像素一律排除
	Stride        int     // 候选点采样步长，<1 时按 1 处理
}

// Bounds 被占用像素的包围盒（像素坐标，闭区间）
type Bounds struct {
	MinX, MaxX, MinY, MaxY int
}

// PixelMask 像素占用遮罩
type PixelMask struct {
	Width  int
	Height int
	Points []types.Point // 归一化候选点（按步长采样）
	Bounds Bounds

	bits  []uint64
	count int
}

// Decode 解码图片并构建遮罩
func Decode(r io.Reader, c Criteria) (*PixelMask, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrMaskUnavailable, err)
	}
	return Build(img, c)
}

// Build 按判定条件从图片构建遮罩
// 没有任何候选点时返回 ErrMaskUnavailable
func Build(img image.Image, c Criteria) (*PixelMask, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrMaskUnavailable)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrMaskUnavailable)
	}

	stride := c.Stride
	if stride < 1 {
		stride = 1
	}
	minAlpha := c.MinAlpha
	if minAlpha == 0 {
		minAlpha = 128
	}

	m := &PixelMask{
		Width:  w,
		Height: h,
		bits:   make([]uint64, (w*h+63)/64),
		Bounds: Bounds{MinX: w, MinY: h, MaxX: -1, MaxY: -1},
	}

	for y := 0; y < h; y++ {
		yNorm := (float64(y) + 0.5) / float64(h)
		for x := 0; x < w; x++ {
			px := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if !c.accepts(px, minAlpha, yNorm) {
				continue
			}
			m.set(x, y)
			if x%stride == 0 && y%stride == 0 {
				m.Points = append(m.Points, types.Point{
					X: (float64(x) + 0.5) / float64(w),
					Y: yNorm,
				})
			}
		}
	}

	if len(m.Points) == 0 {
		return nil, fmt.Errorf("%w: no eligible pixels (%s)", ErrMaskUnavailable, c.Mode)
	}
	return m, nil
}

func (c Criteria) accepts(px color.NRGBA, minAlpha uint8, yNorm float64) bool {
	if px.A < minAlpha {
		return false
	}
	if yNorm < c.ExcludeTop {
		return false
	}

	switch c.Mode {
	case ModeAlpha:
		return true
	case ModeBrightness:
		return c.inBrightness(brightness(px))
	case ModeSoftTissue:
		r, g, bl := int(px.R), int(px.G), int(px.B)
		if r-g < softTissueRedOverGreen || r-bl < softTissueRedOverBlue {
			return false
		}
		return c.inBrightness(brightness(px))
	}
	return false
}

func (c Criteria) inBrightness(v float64) bool {
	if v < c.MinBrightness {
		return false
	}
	if c.MaxBrightness > 0 && v > c.MaxBrightness {
		return false
	}
	return true
}

// brightness 感知亮度 0~1
func brightness(px color.NRGBA) float64 {
	return (0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)) / 255.0
}

func (m *PixelMask) set(x, y int) {
	i := y*m.Width + x
	m.bits[i/64] |= 1 << (uint(i) % 64)
	m.count++
	if x < m.Bounds.MinX {
		m.Bounds.MinX = x
	}
	if x > m.Bounds.MaxX {
		m.Bounds.MaxX = x
	}
	if y < m.Bounds.MinY {
		m.Bounds.MinY = y
	}
	if y > m.Bounds.MaxY {
		m.Bounds.MaxY = y
	}
}

// At 像素是否被占用（越界返回 false）
func (m *PixelMask) At(x, y int) bool {
	if m == nil || x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	i := y*m.Width + x
	return m.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// Count 被占用的像素数
func (m *PixelMask) Count() int {
	if m == nil {
		return 0
	}
	return m.count
}

// pixelOf 将归一化坐标映射到像素坐标
func (m *PixelMask) pixelOf(p types.Point) (int, int) {
	return int(p.X * float64(m.Width)), int(p.Y * float64(m.Height))
}

// ContainsNorm 归一化坐标处是否被占用
func (m *PixelMask) ContainsNorm(p types.Point) bool {
	if m == nil || p.X < 0 || p.Y < 0 || p.X >= 1 || p.Y >= 1 {
		return false
	}
	return m.At(m.pixelOf(p))
}

// CoveredAround 以归一化点为中心、margin 像素为半径的十字与对角采样是否全部被占用
func (m *PixelMask) CoveredAround(p types.Point, margin int) bool {
	if !m.ContainsNorm(p) {
		return false
	}
	if margin <= 0 {
		return true
	}
	x, y := m.pixelOf(p)
	offsets := [...][2]int{
		{-margin, 0}, {margin, 0}, {0, -margin}, {0, margin},
		{-margin, -margin}, {margin, -margin}, {-margin, margin}, {margin, margin},
	}
	for _, o := range offsets {
		if !m.At(x+o[0], y+o[1]) {
			return false
		}
	}
	return true
}

// PointsInBand 返回归一化 Y 落在 [minY, maxY] 内的候选点
func (m *PixelMask) PointsInBand(minY, maxY float64) []types.Point {
	if m == nil {
		return nil
	}
	if minY <= 0 && maxY >= 1 {
		return m.Points
	}
	out := make([]types.Point, 0, len(m.Points))
	for _, p := range m.Points {
		if p.Y >= minY && p.Y <= maxY {
			out = append(out, p)
		}
	}
	return out
}
