//go:build !mobile

// Package mobile 是 gomobile bind 的入口包
//
// 游戏本体只在 -tags mobile 时编译（mobile.go、embed.go），
// 普通构建下这里只留一个空导出，go build ./... 仍然能通过。
package mobile

// Dummy 空导出
func Dummy() {}
