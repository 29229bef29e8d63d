// Package table 提供仅用于 I/O 边界（过滤与导出）的具名表抽象。
// 解析核心只使用 model.CanonicalRecord，不使用本抽象。
package table

import (
	"strings"

	"aduanex/internal/model"
)

// 统一口径表的列名（24 列，导出与过滤共用）
const (
	ColDate              = "FECHA"
	ColMonth             = "MES"
	ColDeclarationNum    = "NUMERO DE DECLARACION"
	ColImporterTaxID     = "RUC IMPORTADOR"
	ColImporterName      = "IMPORTADOR"
	ColSupplierName      = "PROVEEDOR"
	ColSupplierAddress   = "DIRECCION PROVEEDOR"
	ColSupplierContact   = "CONTACTO PROVEEDOR"
	ColExportCountry     = "PAIS DE EMBARQUE"
	ColOriginCountry     = "PAIS DE ORIGEN"
	ColOriginCountryName = "NOMBRE PAIS DE ORIGEN"
	ColTariffCode        = "PARTIDA ARANCELARIA"
	ColPackageCount      = "CANTIDAD DE BULTOS"
	ColTariffGeneral     = "DESCRIPCION GENERAL"
	ColTariffMeaning     = "SIGNIFICADO"
	ColTariffSubMeaning  = "SUBSIGNIFICADO"
	ColTariffSubL1       = "SUBSIGNIFICADO N1"
	ColTariffSubSubL2    = "SUBSUBSIGNIFICADO N2"
	ColTariffSubSubL3    = "SUBSUBSIGNIFICADO N3"
	ColNetWeightKg       = "PESO NETO KG"
	ColNetWeightTon      = "PESO NETO TON"
	ColFobValueUsd       = "VALOR FOB USD"
	ColFobPerTon         = "FOB POR TON"
	ColGoodsDescription  = "DESCRIPCION DE MERCANCIA"
)

// CanonicalColumns 统一口径表的列顺序
func CanonicalColumns() []string {
	return []string{
		ColDate, ColMonth, ColDeclarationNum, ColImporterTaxID, ColImporterName,
		ColSupplierName, ColSupplierAddress, ColSupplierContact,
		ColExportCountry, ColOriginCountry, ColOriginCountryName,
		ColTariffCode, ColPackageCount,
		ColTariffGeneral, ColTariffMeaning, ColTariffSubMeaning,
		ColTariffSubL1, ColTariffSubSubL2, ColTariffSubSubL3,
		ColNetWeightKg, ColNetWeightTon, ColFobValueUsd, ColFobPerTon,
		ColGoodsDescription,
	}
}

// Table 具名列的类型化表
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// ColumnIndex 按列名查列位（大小写不敏感）；不存在返回 -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// EmptyLike 返回保留列结构的空表
func (t *Table) EmptyLike(name string) *Table {
	columns := make([]string, len(t.Columns))
	copy(columns, t.Columns)
	return &Table{Name: name, Columns: columns, Rows: [][]any{}}
}

// RowCount 数据行数
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// FromRecords 把统一口径记录集展开为具名表（保持记录顺序）
func FromRecords(name string, records []*model.CanonicalRecord) *Table {
	t := &Table{
		Name:    name,
		Columns: CanonicalColumns(),
		Rows:    make([][]any, 0, len(records)),
	}

	for _, rec := range records {
		var date any
		if rec.Date != nil {
			date = *rec.Date
		} else {
			date = ""
		}
		t.Rows = append(t.Rows, []any{
			date, rec.MonthName, rec.DeclarationNumber, rec.ImporterTaxID, rec.ImporterName,
			rec.SupplierName, rec.SupplierAddress, rec.SupplierContact,
			rec.ExportCountryCode, rec.OriginCountryCode, rec.OriginCountryName,
			rec.TariffCode, rec.PackageCount,
			rec.TariffGeneralDescription, rec.TariffMeaning, rec.TariffSubMeaning,
			rec.TariffSubMeaningL1, rec.TariffSubSubMeaningL2, rec.TariffSubSubMeaningL3,
			rec.NetWeightKg, rec.NetWeightTon, rec.FobValueUsd, rec.FobPerTon,
			rec.GoodsDescription,
		})
	}
	return t
}
