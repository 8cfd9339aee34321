//go:build mobile

// embed.go - 移动端资源嵌入声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// go:embed 只能嵌入本目录下的文件，构建前需要把资源复制到此目录：
//
//	cp -r assets mobile/ && mkdir -p mobile/data && cp -r data/games mobile/data/
//	ebitenmobile bind -target android -tags mobile -o build/android/hygin.aar ./mobile
package mobile

import "embed"

//go:embed all:assets
var assetsFS embed.FS

//go:embed data/games
var dataFS embed.FS
