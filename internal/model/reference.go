package model

// TariffInfo 关税税则条目的六级描述
type TariffInfo struct {
	GeneralDescription string `json:"generalDescription"`
	Meaning            string `json:"meaning"`
	SubMeaning         string `json:"subMeaning"`
	SubMeaningL1       string `json:"subMeaningL1"`
	SubSubMeaningL2    string `json:"subSubMeaningL2"`
	SubSubMeaningL3    string `json:"subSubMeaningL3"`
}

// ReferenceMaps 三张引用表（国家、税则、供应商），每次运行加载一次
//
// 由调用方注入，合并期间只读。引擎不在内部缓存任何引用数据。
type ReferenceMaps struct {
	Countries map[string]string    // ISO 代码 -> 国家名称
	Tariffs   map[int64]TariffInfo // 税号 -> 六级描述
	Suppliers map[string]string    // 别名（名称/地址/联系方式）-> 规范供应商名称
}

// CanonicalSupplierNames 返回去重后的规范供应商名称列表（模糊匹配的候选池）
func (r *ReferenceMaps) CanonicalSupplierNames() []string {
	seen := make(map[string]struct{}, len(r.Suppliers))
	names := make([]string, 0, len(r.Suppliers))
	for _, name := range r.Suppliers {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
