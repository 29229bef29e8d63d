package reference

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed data/*.csv
var embeddedData embed.FS

// ResourceNotFoundError 所有候选位置都找不到引用资源时返回（致命错误）
type ResourceNotFoundError struct {
	Resource   string
	Candidates []string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("reference resource %q not found (tried: %s)",
		e.Resource, strings.Join(e.Candidates, ", "))
}

// Locator 资源定位策略：按逻辑名尝试打开一个引用资源
type Locator interface {
	// Open 成功返回可读句柄；资源不存在返回错误
	Open(name string) (io.ReadCloser, error)
	// Describe 返回该策略对应的候选位置描述（用于错误信息）
	Describe(name string) string
}

// embedLocator 内嵌资源
type embedLocator struct{}

func (embedLocator) Open(name string) (io.ReadCloser, error) {
	f, err := embeddedData.Open("data/" + name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (embedLocator) Describe(name string) string {
	return "embedded:data/" + name
}

// dirLocator 相对目录下的物理文件
type dirLocator struct {
	dir string
}

func (l dirLocator) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(l.dir, name))
}

func (l dirLocator) Describe(name string) string {
	return filepath.Join(l.dir, name)
}

// exeDirLocator 可执行文件同目录下的 Data 子目录
type exeDirLocator struct{}

func (exeDirLocator) Open(name string) (io.ReadCloser, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(filepath.Dir(exe), "Data", name))
}

func (exeDirLocator) Describe(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return "<exe dir>/Data/" + name
	}
	return filepath.Join(filepath.Dir(exe), "Data", name)
}

// DefaultLocators 默认定位链：内嵌资源优先，然后依次尝试物理路径
func DefaultLocators() []Locator {
	return []Locator{
		embedLocator{},
		dirLocator{dir: "Data"},
		dirLocator{dir: filepath.Join("..", "..", "Data")},
		exeDirLocator{},
		dirLocator{dir: "."},
	}
}

// LocatorsWithDataDir 在默认链中优先尝试指定的物理数据目录（内嵌资源仍最优先）
func LocatorsWithDataDir(dir string) []Locator {
	return append([]Locator{embedLocator{}, dirLocator{dir: dir}}, DefaultLocators()[1:]...)
}

// NewDirLocator 创建指定目录的定位策略（测试用）
func NewDirLocator(dir string) Locator {
	return dirLocator{dir: dir}
}

// openResource 按顺序尝试定位链，返回第一个成功打开的句柄
func openResource(locators []Locator, name string) (io.ReadCloser, error) {
	candidates := make([]string, 0, len(locators))
	for _, loc := range locators {
		rc, err := loc.Open(name)
		if err == nil {
			return rc, nil
		}
		candidates = append(candidates, loc.Describe(name))
	}
	return nil, &ResourceNotFoundError{Resource: name, Candidates: candidates}
}
