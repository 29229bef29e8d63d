package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"aduanex/internal/config"
	"aduanex/internal/consolidator"
	"aduanex/internal/exporter"
	"aduanex/internal/fuzzy"
	"aduanex/internal/pipeline"
	"aduanex/internal/reference"
)

var (
	folderPath = flag.String("folder", "", "报关表格目录 (覆盖配置文件)")
	outputPath = flag.String("out", "", "输出工作簿路径 (覆盖配置文件)")
	dataDir    = flag.String("dataDir", "", "引用资源目录 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Aduanex - 报关数据合并工具")
	fmt.Println("==========================================")

	// .env 仅用于本地运行覆盖，不存在时忽略
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *folderPath != "" {
		cfg.Input.FolderPath = *folderPath
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *dataDir != "" {
		cfg.Input.DataDir = *dataDir
	}

	// 组装管道
	loader := reference.NewLoaderWithLocators(reference.LocatorsWithDataDir(cfg.Input.DataDir))
	engine := consolidator.NewEngineWithOptions(
		fuzzy.NewRatioMatcher(),
		consolidator.SpanishLocale(),
		cfg.Matching.DefaultCountryCode,
		cfg.Matching.Threshold,
	)
	runner := pipeline.NewRunner(loader, engine, exporter.NewExporter())

	// Ctrl+C 触发协作式取消
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("\n收到取消请求，正在停止...")
		cancel()
	}()

	events := runner.Run(ctx, pipeline.RunOptions{
		FolderPath: cfg.Input.FolderPath,
		OutputPath: cfg.Output.Path,
	})

	exitCode := 0
	for event := range events {
		switch event.Type {
		case "start", "done":
			fmt.Println(event.Message)
		case "progress":
			fmt.Printf("\r进度: %3.0f%%", event.Percent)
		case "warning":
			fmt.Printf("\n%s\n", event.Message)
		case "canceled":
			fmt.Printf("\n%s\n", event.Message)
			exitCode = 2
		case "error":
			fmt.Printf("\n%s\n", event.Message)
			exitCode = 1
		}
	}
	fmt.Println()

	if exitCode == 0 {
		fmt.Printf("输出文件: %s\n", cfg.Output.Path)
	}
	os.Exit(exitCode)
}
