package main

import (
	"fmt"

	"github.com/ninja0404/trade-journal/internal/app"
	"github.com/ninja0404/trade-journal/pkg/utils"
)

const defaultConfigPath = "./config/config.yaml"

func main() {
	utils.SetEnvPrefix("TRADE_JOURNAL_")

	// 配置路径优先取环境变量
	configPath := utils.GetConfigFilePath()
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// 创建应用实例
	application := app.New()

	// 启动应用
	if err := application.Start(configPath); err != nil {
		fmt.Printf("应用启动失败: %v\n", err)
		return
	}
}
