package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Input    InputConfig    `toml:"input"`
	Output   OutputConfig   `toml:"output"`
	Matching MatchingConfig `toml:"matching"`
}

// InputConfig 输入配置
type InputConfig struct {
	FolderPath string `toml:"folder_path"` // 报关表格所在目录
	DataDir    string `toml:"data_dir"`    // 引用资源物理目录
}

// OutputConfig 输出配置
type OutputConfig struct {
	Path string `toml:"path"` // 输出工作簿路径
}

// MatchingConfig 匹配与解析配置
type MatchingConfig struct {
	Threshold          int    `toml:"threshold"`            // 供应商模糊匹配阈值 (0-100)
	DefaultCountryCode string `toml:"default_country_code"` // 含数字国家代码的修复值
	Locale             string `toml:"locale"`               // 日期/月份名称区域
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Input: InputConfig{
			FolderPath: "declaraciones",
			DataDir:    "Data",
		},
		Output: OutputConfig{
			Path: "consolidado.xlsx",
		},
		Matching: MatchingConfig{
			Threshold:          80,
			DefaultCountryCode: "US",
			Locale:             "es",
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig 从可执行文件同目录的 config.toml 加载配置
// 文件不存在时使用默认配置
func LoadConfig() (*AppConfig, error) {
	config := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

// SaveConfig 保存配置到可执行文件同目录的 config.toml
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// applyEnvOverrides 环境变量覆盖（用于 E2E / 本地运行）
func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("ADUANEX_FOLDER_PATH"); v != "" {
		config.Input.FolderPath = v
	}
	if v := os.Getenv("ADUANEX_DATA_DIR"); v != "" {
		config.Input.DataDir = v
	}
	if v := os.Getenv("ADUANEX_OUTPUT_PATH"); v != "" {
		config.Output.Path = v
	}
	if v := os.Getenv("ADUANEX_MATCH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Matching.Threshold = n
		}
	}
}
