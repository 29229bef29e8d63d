package exporter

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"aduanex/internal/table"
)

// LiquidationSheetName 固定模板页的名称（当前仅表头，无数据）
const LiquidationSheetName = "Liquidacion"

// liquidationColumns 关税清算报表的固定 10 列模板
var liquidationColumns = []string{
	"NUMERO DE DECLARACION",
	"FECHA",
	"PROVEEDOR",
	"PARTIDA ARANCELARIA",
	"PESO NETO TON",
	"VALOR FOB USD",
	"FLETE",
	"SEGURO",
	"VALOR CIF",
	"IMPUESTOS",
}

// Exporter 表格导出器：把统一口径表与类目子视图写成带格式的工作簿
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// columnStyles 工作簿级的列样式集合
type columnStyles struct {
	header   int
	date     int
	integer  int
	decimal  int
	currency int
}

// Export 导出统一口径表与子视图
//
// 每个主要阶段（每张表、保存）前检查取消；任何失败原样上抛，
// 不保证输出文件的部分可用性。
func (e *Exporter) Export(ctx context.Context, canonical *table.Table, subviews []*table.Table, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newColumnStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	f.SetSheetName("Sheet1", canonical.Name)
	if err := writeTable(f, canonical, styles); err != nil {
		return err
	}

	for _, view := range subviews {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.NewSheet(view.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", view.Name, err)
		}
		if err := writeTable(f, view, styles); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeLiquidationTemplate(f, styles); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// newColumnStyles 创建表头与数值格式样式
func newColumnStyles(f *excelize.File) (columnStyles, error) {
	var s columnStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return s, err
	}

	dateFmt := "dd/mm/yyyy"
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return s, err
	}

	intFmt := "#,##0"
	s.integer, err = f.NewStyle(&excelize.Style{CustomNumFmt: &intFmt})
	if err != nil {
		return s, err
	}

	decFmt := "#,##0.00"
	s.decimal, err = f.NewStyle(&excelize.Style{CustomNumFmt: &decFmt})
	if err != nil {
		return s, err
	}

	curFmt := "$#,##0.00"
	s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &curFmt})
	if err != nil {
		return s, err
	}

	return s, nil
}

// styleForColumn 按列名选择数值样式；无需格式返回 0
func styleForColumn(styles columnStyles, column string) int {
	switch column {
	case table.ColDate:
		return styles.date
	case table.ColDeclarationNum, table.ColImporterTaxID, table.ColTariffCode:
		return styles.integer
	case table.ColNetWeightKg, table.ColNetWeightTon:
		return styles.decimal
	case table.ColFobValueUsd, table.ColFobPerTon:
		return styles.currency
	}
	return 0
}

// writeTable 把一张具名表写入同名工作表
func writeTable(f *excelize.File, t *table.Table, styles columnStyles) error {
	// 列样式先于表头样式设置，表头行样式最终覆盖首行
	for i, column := range t.Columns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if style := styleForColumn(styles, column); style != 0 {
			if err := f.SetColStyle(t.Name, colName, style); err != nil {
				return err
			}
		}
	}

	for i, column := range t.Columns {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Name, cellRef, column); err != nil {
			return err
		}
	}

	for rowIdx, row := range t.Rows {
		for colIdx, value := range row {
			cellRef, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Name, cellRef, value); err != nil {
				return err
			}
		}
	}

	if err := f.SetRowStyle(t.Name, 1, 1, styles.header); err != nil {
		return err
	}

	// 列宽：名称/描述类列加宽
	f.SetColWidth(t.Name, "A", "B", 14)
	f.SetColWidth(t.Name, "C", "E", 22)
	f.SetColWidth(t.Name, "F", "H", 30)
	f.SetColWidth(t.Name, "I", "S", 18)
	f.SetColWidth(t.Name, "T", "X", 16)

	return nil
}

// writeLiquidationTemplate 写入固定 10 列的清算模板页（仅表头）
func writeLiquidationTemplate(f *excelize.File, styles columnStyles) error {
	if _, err := f.NewSheet(LiquidationSheetName); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", LiquidationSheetName, err)
	}
	for i, column := range liquidationColumns {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(LiquidationSheetName, cellRef, column); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(LiquidationSheetName, 1, 1, styles.header); err != nil {
		return err
	}
	f.SetColWidth(LiquidationSheetName, "A", "J", 20)
	return nil
}
