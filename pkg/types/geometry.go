// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "math"

// Point 二维坐标点
// 在配置中通常是相对参考区域的比例坐标（0~1），在系统中是屏幕像素坐标
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Distance 返回两点间的欧氏距离
func (p Point) Distance(o Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Rect 轴对齐矩形（左上角 + 宽高）
// 配置文件中的矩形使用比例坐标，运行时通过 Denormalize 转换为像素矩形
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// IsEmpty 判断矩形是否未测量（宽或高为 0）
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains 判断点是否在矩形内（含边界）
func (r Rect) Contains(x, y float64) bool {
	if r.IsEmpty() {
		return false
	}
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Center 返回矩形中心点
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Expand 向四周扩展 margin 像素
func (r Rect) Expand(margin float64) Rect {
	return Rect{X: r.X - margin, Y: r.Y - margin, W: r.W + 2*margin, H: r.H + 2*margin}
}

// Denormalize 将比例矩形映射到参考矩形内，得到像素矩形
func (r Rect) Denormalize(ref Rect) Rect {
	return Rect{
		X: ref.X + r.X*ref.W,
		Y: ref.Y + r.Y*ref.H,
		W: r.W * ref.W,
		H: r.H * ref.H,
	}
}

// DenormalizePoint 将比例坐标映射为参考矩形内的像素坐标
func (r Rect) DenormalizePoint(p Point) Point {
	return Point{X: r.X + p.X*r.W, Y: r.Y + p.Y*r.H}
}

// NormalizePoint 将像素坐标转换为相对本矩形的比例坐标
// 矩形未测量时返回 ok=false
func (r Rect) NormalizePoint(x, y float64) (Point, bool) {
	if r.IsEmpty() {
		return Point{}, false
	}
	return Point{X: (x - r.X) / r.W, Y: (y - r.Y) / r.H}, true
}
