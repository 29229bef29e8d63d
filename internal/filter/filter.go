// Package filter 在统一口径表上应用固定的类目谓词链，产出类目子视图。
// 所有过滤都是纯函数，保持输入表的排序。
package filter

import (
	"log"
	"strings"

	"aduanex/internal/table"
)

// categorySpec 两段式类目过滤：先按总述列的允许清单过滤，
// 再在结果上按细分列的允许清单过滤。
type categorySpec struct {
	name         string
	generalAllow []string
	meaningAllow []string
}

// FlatHotRolledAndProfiles 平板热轧产品与型材
func FlatHotRolledAndProfiles(t *table.Table) *table.Table {
	return apply(t, categorySpec{
		name:         "Planos y Perfiles",
		generalAllow: []string{"Flat hot-rolled products", "Profiles"},
		meaningAllow: []string{
			"Thickness greater than 10mm",
			"Thickness 4.75mm to 10mm",
			"Thickness 3mm to 4.75mm",
			"Thickness less than 3mm",
			"Angles", "Channels", "Beams",
		},
	})
}

// Angles 角钢
func Angles(t *table.Table) *table.Table {
	return apply(t, categorySpec{
		name:         "Angulos",
		generalAllow: []string{"Profiles"},
		meaningAllow: []string{"Angles"},
	})
}

// Channels 槽钢
func Channels(t *table.Table) *table.Table {
	return apply(t, categorySpec{
		name:         "Canales",
		generalAllow: []string{"Profiles"},
		meaningAllow: []string{"Channels"},
	})
}

// Beams 工字钢/H 型钢
func Beams(t *table.Table) *table.Table {
	return apply(t, categorySpec{
		name:         "Vigas",
		generalAllow: []string{"Profiles"},
		meaningAllow: []string{"Beams"},
	})
}

// ColdRolledSheets 平板冷轧产品
func ColdRolledSheets(t *table.Table) *table.Table {
	return apply(t, categorySpec{
		name:         "Laminados en Frio",
		generalAllow: []string{"Flat cold-rolled products"},
		meaningAllow: []string{
			"Thickness 1mm to 3mm",
			"Thickness 0.5mm to 1mm",
			"Thickness less than 0.5mm",
		},
	})
}

// apply 执行两段式过滤
//
// 所需列缺失时记警告并原样返回输入表；零匹配返回保留列结构的空表。
func apply(t *table.Table, spec categorySpec) *table.Table {
	generalIdx := t.ColumnIndex(table.ColTariffGeneral)
	if generalIdx < 0 {
		log.Printf("类目过滤缺少列 %q，返回原表: %s", table.ColTariffGeneral, spec.name)
		return t
	}
	meaningIdx := t.ColumnIndex(table.ColTariffMeaning)
	if meaningIdx < 0 {
		log.Printf("类目过滤缺少列 %q，返回原表: %s", table.ColTariffMeaning, spec.name)
		return t
	}

	out := t.EmptyLike(spec.name)
	for _, row := range t.Rows {
		if !allowed(row, generalIdx, spec.generalAllow) {
			continue
		}
		if !allowed(row, meaningIdx, spec.meaningAllow) {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// allowed 单元格文本是否命中允许清单（大小写不敏感，去除首尾空白）
func allowed(row []any, idx int, allow []string) bool {
	if idx >= len(row) {
		return false
	}
	text, ok := row[idx].(string)
	if !ok {
		return false
	}
	text = strings.TrimSpace(text)
	for _, a := range allow {
		if strings.EqualFold(text, a) {
			return true
		}
	}
	return false
}
