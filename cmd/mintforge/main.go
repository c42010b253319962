package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/mintforge/v1/internal/app"
)

// 版本信息，构建时通过ldflags注入
var (
	version = "dev"
	commit  = "unknown"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	NoAPI      bool   // 禁用HTTP API
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "mintforge",
	Short: "MintForge 荷兰拍卖铸造引擎",
	Long: `MintForge - 指数衰减荷兰拍卖与延迟结算的铸造引擎

提供生成艺术项目的令牌定价与销售能力:
- 指数半衰期衰减的荷兰拍卖价格曲线
- 购买款全额托管，售罄后按最终清算价统一结算
- 超额付款可由购买者随时取回
- 艺术家/平台收益按核心注册表拆分规则分账`,
}

// startCmd 启动命令
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "启动铸造引擎服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		printBanner()

		opts := []app.Option{}
		if globalFlags.ConfigPath != "" {
			opts = append(opts, app.WithConfigFile(globalFlags.ConfigPath))
		}
		if globalFlags.NoAPI {
			opts = append(opts, app.WithoutAPI())
		}

		application, err := app.BootstrapApp(opts...)
		if err != nil {
			return err
		}

		pterm.Success.Println("模块装配完成，服务启动中")
		return application.Run()
	},
}

// versionCmd 版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mintforge %s (commit %s)\n", version, commit)
	},
}

// printBanner 打印启动横幅
func printBanner() {
	pterm.DefaultHeader.WithFullWidth().Println("MintForge 荷兰拍卖铸造引擎")
	pterm.Info.Printfln("版本: %s", version)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "配置文件路径 (默认: ./config.json)")
	startCmd.Flags().BoolVar(&globalFlags.NoAPI, "no-api", false, "禁用HTTP API服务")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
