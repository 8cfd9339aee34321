package scenes

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/jermochi/Hygin/pkg/components"
	"github.com/jermochi/Hygin/pkg/types"
	"github.com/jermochi/Hygin/pkg/utils"
)

// uiFace 7x13 点阵字体，标题通过缩放放大
var uiFace = text.NewGoXFace(basicfont.Face7x13)

// 字号（相对 uiFace 的缩放）
const (
	textSmall  = 1.0
	textNormal = 1.5
	textLarge  = 2.0
	textTitle  = 3.0
)

// lineHeight 单行高度（缩放前）
const lineHeight = 13.0

// 调色板
var (
	colorBackground = color.RGBA{R: 0xe8, G: 0xf6, B: 0xfb, A: 0xff}
	colorPanel      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorPanelEdge  = color.RGBA{R: 0x9c, G: 0xc7, B: 0xd8, A: 0xff}
	colorHUD        = color.RGBA{R: 0x2c, G: 0x7d, B: 0xa0, A: 0xff}
	colorText       = color.RGBA{R: 0x23, G: 0x2f, B: 0x3e, A: 0xff}
	colorTextLight  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	colorMuted      = color.RGBA{R: 0x8a, G: 0x96, B: 0xa3, A: 0xff}
	colorButton     = color.RGBA{R: 0x3a, G: 0xa6, B: 0xd0, A: 0xff}
	colorButtonHot  = color.RGBA{R: 0x5f, G: 0xbf, B: 0xe4, A: 0xff}
	colorSelected   = color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}
	colorDisabled   = color.RGBA{R: 0xc3, G: 0xcb, B: 0xd3, A: 0xff}
	colorGood       = color.RGBA{R: 0x27, G: 0xae, B: 0x60, A: 0xff}
	colorBad        = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	colorGerm       = color.RGBA{R: 0x8e, G: 0x44, B: 0xad, A: 0xff}
	colorOverlay    = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x99}
	colorZone       = color.RGBA{R: 0x3a, G: 0xa6, B: 0xd0, A: 0x40}
)

// parseHexColor 解析 "#rrggbb"，格式错误时返回 colorText
func parseHexColor(s string) color.RGBA {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return colorText
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return colorText
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// withAlpha 按比例缩放颜色透明度（预乘 alpha）
func withAlpha(c color.RGBA, a float64) color.RGBA {
	a = utils.Clamp01(a)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}

func fillRect(dst *ebiten.Image, r types.Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, true)
}

func strokeRect(dst *ebiten.Image, r types.Rect, width float32, clr color.Color) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), width, clr, true)
}

// textWidth 缩放后的文字宽度
func textWidth(s string, scale float64) float64 {
	return utils.MeasureTextWidth(s, uiFace) * scale
}

// drawText 左上角对齐绘制一行文字
func drawText(dst *ebiten.Image, s string, x, y, scale float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, uiFace, op)
}

// drawTextCentered 以 cx 为中心绘制一行文字
func drawTextCentered(dst *ebiten.Image, s string, cx, y, scale float64, clr color.Color) {
	drawText(dst, s, cx-textWidth(s, scale)/2, y, scale, clr)
}

// drawWrapped 在矩形内换行居中绘制文字，返回使用的高度
func drawWrapped(dst *ebiten.Image, s string, r types.Rect, scale float64, clr color.Color) float64 {
	lines := utils.WrapText(s, uiFace, r.W/scale)
	step := lineHeight * scale * 1.3
	for i, line := range lines {
		drawTextCentered(dst, line, r.X+r.W/2, r.Y+float64(i)*step, scale, clr)
	}
	return float64(len(lines)) * step
}

// drawButton 绘制按钮：底色随状态变化，Badge 显示在标签下方
func drawButton(dst *ebiten.Image, b *components.Button) {
	fill := colorButton
	switch {
	case b.State == components.UIDisabled:
		fill = colorDisabled
	case b.Selected:
		fill = colorSelected
	case b.State == components.UIHovered:
		fill = colorButtonHot
	}
	fillRect(dst, b.Rect, fill)
	strokeRect(dst, b.Rect, 2, colorPanelEdge)

	scale := textNormal
	if textWidth(b.Label, scale) > b.Rect.W-8 {
		scale = textSmall
	}
	labelY := b.Rect.Y + (b.Rect.H-lineHeight*scale)/2
	if b.Badge != "" {
		labelY = b.Rect.Y + b.Rect.H/2 - lineHeight*scale - 2
		drawTextCentered(dst, b.Badge, b.Rect.X+b.Rect.W/2, b.Rect.Y+b.Rect.H/2+4, textSmall, colorTextLight)
	}
	drawTextCentered(dst, b.Label, b.Rect.X+b.Rect.W/2, labelY, scale, colorTextLight)
}

// drawImageInto 将图片拉伸到矩形
// 遮罩坐标相对步骤区域，图片必须与区域完全重合
func drawImageInto(dst, img *ebiten.Image, r types.Rect) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.W/float64(w), r.H/float64(h))
	op.GeoM.Translate(r.X, r.Y)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}
