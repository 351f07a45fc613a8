// embed.go - 资源嵌入声明
// 必须放在项目根目录（与 assets/ 同级）
// 因为 //go:embed 指令只能嵌入当前包目录及其子目录的文件
package main

import "embed"

// assetsFS 内置资源，目前只有默认皮肤 assets/skins/default.zip
// 由 cmd/mkskin 生成
//
//go:embed all:assets
var assetsFS embed.FS
