package configs

import _ "embed"

// 嵌入默认配置文件（在configs目录内直接引用）
//
//go:embed config.json
var defaultConfig []byte

// GetDefaultConfig 获取嵌入的默认配置
// 未指定配置文件路径时作为配置来源，保证零配置可运行
func GetDefaultConfig() []byte {
	return defaultConfig
}
