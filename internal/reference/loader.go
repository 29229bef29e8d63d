package reference

import (
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"

	"aduanex/internal/model"
)

// 引用资源的逻辑名
const (
	CountriesResource = "countries.csv"
	TariffsResource   = "tariffs.csv"
	SuppliersResource = "suppliers.csv"
)

// Loader 引用表加载器
//
// 三张表各打开一个资源，跳过表头行与键字段为空的行。
// 资源按定位链解析，全部失败时返回 *ResourceNotFoundError。
type Loader struct {
	locators []Locator
}

// NewLoader 创建使用默认定位链的加载器
func NewLoader() *Loader {
	return &Loader{locators: DefaultLocators()}
}

// NewLoaderWithLocators 创建使用指定定位链的加载器（测试用）
func NewLoaderWithLocators(locators []Locator) *Loader {
	return &Loader{locators: locators}
}

// LoadCountries 加载国家表：ISO 代码 -> 国家名称
//
// 资源列: 名称, 地区, 货币, ISO 代码
func (l *Loader) LoadCountries() (map[string]string, error) {
	rows, err := l.readResource(CountriesResource)
	if err != nil {
		return nil, err
	}

	countries := make(map[string]string)
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		code := strings.TrimSpace(row[3])
		if code == "" {
			continue
		}
		countries[code] = strings.TrimSpace(row[0])
	}

	log.Printf("引用表加载完成: 国家 %d 条", len(countries))
	return countries, nil
}

// LoadTariffs 加载税则表：税号 -> 六级描述
//
// 资源列: 税号, 总述, 含义, 子含义, 子含义L1, 次级含义L2, 次级含义L3
func (l *Loader) LoadTariffs() (map[int64]model.TariffInfo, error) {
	rows, err := l.readResource(TariffsResource)
	if err != nil {
		return nil, err
	}

	tariffs := make(map[int64]model.TariffInfo)
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		codeText := strings.TrimSpace(row[0])
		if codeText == "" {
			continue
		}
		code, err := strconv.ParseInt(codeText, 10, 64)
		if err != nil {
			continue
		}
		tariffs[code] = model.TariffInfo{
			GeneralDescription: strings.TrimSpace(row[1]),
			Meaning:            strings.TrimSpace(row[2]),
			SubMeaning:         strings.TrimSpace(row[3]),
			SubMeaningL1:       strings.TrimSpace(row[4]),
			SubSubMeaningL2:    strings.TrimSpace(row[5]),
			SubSubMeaningL3:    strings.TrimSpace(row[6]),
		}
	}

	log.Printf("引用表加载完成: 税则 %d 条", len(tariffs))
	return tariffs, nil
}

// LoadSuppliers 加载供应商表：别名（名称/地址/联系方式）-> 规范名称
//
// 资源列: 名称, 地址, 联系方式
func (l *Loader) LoadSuppliers() (map[string]string, error) {
	rows, err := l.readResource(SuppliersResource)
	if err != nil {
		return nil, err
	}

	suppliers := make(map[string]string)
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		suppliers[name] = name
		if address := strings.TrimSpace(row[1]); address != "" {
			suppliers[address] = name
		}
		if contact := strings.TrimSpace(row[2]); contact != "" {
			suppliers[contact] = name
		}
	}

	log.Printf("引用表加载完成: 供应商 %d 条", len(suppliers))
	return suppliers, nil
}

// LoadAll 一次加载三张引用表
func (l *Loader) LoadAll() (*model.ReferenceMaps, error) {
	countries, err := l.LoadCountries()
	if err != nil {
		return nil, err
	}
	tariffs, err := l.LoadTariffs()
	if err != nil {
		return nil, err
	}
	suppliers, err := l.LoadSuppliers()
	if err != nil {
		return nil, err
	}
	return &model.ReferenceMaps{
		Countries: countries,
		Tariffs:   tariffs,
		Suppliers: suppliers,
	}, nil
}

// readResource 打开资源并读出表头之后的所有数据行
func (l *Loader) readResource(name string) ([][]string, error) {
	rc, err := openResource(l.locators, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read resource %s: %w", name, err)
	}
	if len(all) < 1 {
		return nil, nil
	}
	return all[1:], nil
}
