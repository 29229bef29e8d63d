package exporter_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"aduanex/internal/exporter"
	"aduanex/internal/model"
	"aduanex/internal/table"
)

func sampleTable(name string) *table.Table {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return table.FromRecords(name, []*model.CanonicalRecord{
		{
			Date:              &date,
			MonthName:         "ENERO",
			DeclarationNumber: 184512,
			ImporterName:      "IMPORTADORA DEL SUR SA",
			SupplierName:      "ACME STEEL COMPANY",
			TariffCode:        7208510000,
			NetWeightKg:       1250.5,
			NetWeightTon:      1.2505,
			FobValueUsd:       980000,
			FobPerTon:         783686.53,
			GoodsDescription:  "BOBINAS DE ACERO",
		},
	})
}

func TestExport_WritesAllSheets(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), "consolidado.xlsx")
	canonical := sampleTable("Consolidado")
	subviews := []*table.Table{
		canonical.EmptyLike("Angulos"),
		sampleTable("Planos y Perfiles"),
	}

	if err := exporter.NewExporter().Export(context.Background(), canonical, subviews, outPath); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := excelize.OpenFile(outPath)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Consolidado", "Angulos", "Planos y Perfiles", exporter.LiquidationSheetName}
	if len(sheets) != len(want) {
		t.Fatalf("sheets=%v, want %v", sheets, want)
	}
	for _, name := range want {
		if idx, _ := f.GetSheetIndex(name); idx < 0 {
			t.Fatalf("missing sheet %q", name)
		}
	}

	// 主表表头与数据
	header, err := f.GetCellValue("Consolidado", "A1")
	if err != nil || header != table.ColDate {
		t.Fatalf("A1=%q (%v), want %q", header, err, table.ColDate)
	}
	supplier, _ := f.GetCellValue("Consolidado", "F2")
	if supplier != "ACME STEEL COMPANY" {
		t.Fatalf("F2=%q, want supplier name", supplier)
	}

	// 空子视图只有表头行
	rows, err := f.GetRows("Angulos")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Angulos rows=%d, want header only", len(rows))
	}

	// 清算模板页：固定表头，无数据
	liqHeader, _ := f.GetCellValue(exporter.LiquidationSheetName, "A1")
	if liqHeader != "NUMERO DE DECLARACION" {
		t.Fatalf("liquidation A1=%q", liqHeader)
	}
	liqRows, _ := f.GetRows(exporter.LiquidationSheetName)
	if len(liqRows) != 1 {
		t.Fatalf("liquidation rows=%d, want header only", len(liqRows))
	}
}

func TestExport_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outPath := filepath.Join(t.TempDir(), "no.xlsx")
	err := exporter.NewExporter().Export(ctx, sampleTable("Consolidado"), nil, outPath)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}
