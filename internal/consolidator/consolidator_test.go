package consolidator_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"aduanex/internal/consolidator"
	"aduanex/internal/fuzzy"
	"aduanex/internal/model"
)

// buildDeclarationFile 生成一个报关表格测试文件
func buildDeclarationFile(t *testing.T, path string, headers []string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow header failed: %v", err)
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cellRef, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
}

func testReferenceMaps() *model.ReferenceMaps {
	return &model.ReferenceMaps{
		Countries: map[string]string{
			"CN": "China",
			"US": "United States",
			"BR": "Brazil",
		},
		Tariffs: map[int64]model.TariffInfo{
			7208510000: {
				GeneralDescription: "Flat hot-rolled products",
				Meaning:            "Thickness greater than 10mm",
				SubMeaning:         "Iron or non-alloy steel",
				SubMeaningL1:       "Not in coils",
				SubSubMeaningL2:    "Not clad plated or coated",
				SubSubMeaningL3:    "Width 600mm or more",
			},
			7216210000: {
				GeneralDescription: "Profiles",
				Meaning:            "Angles",
				SubMeaning:         "L sections",
				SubMeaningL1:       "Iron or non-alloy steel",
				SubSubMeaningL2:    "Hot-rolled",
				SubSubMeaningL3:    "Height less than 80mm",
			},
		},
		Suppliers: map[string]string{
			"ACME STEEL COMPANY":             "ACME STEEL COMPANY",
			"BAOSTEEL INTERNATIONAL TRADING": "BAOSTEEL INTERNATIONAL TRADING",
			"370 PUDIAN ROAD SHANGHAI":       "BAOSTEEL INTERNATIONAL TRADING",
			"trade@baosteel.example":         "BAOSTEEL INTERNATIONAL TRADING",
		},
	}
}

// declarationRow 按固定 15 列位构造一行
func declarationRow(date, declNum, supplier, address, contact, origin, tariff, weight, fob string) []interface{} {
	return []interface{}{
		date,                     // FECHA DE DECLARACION
		declNum,                  // NUMERO DE DECLARACION
		"20100123456",            // RUC IMPORTADOR
		"IMPORTADORA DEL SUR SA", // IMPORTADOR
		supplier,                 // PROVEEDOR
		address,                  // DIRECCION PROVEEDOR
		contact,                  // CONTACTO PROVEEDOR
		"CN",                     // PAIS DE EMBARQUE
		origin,                   // PAIS DE ORIGEN
		tariff,                   // PARTIDA ARANCELARIA
		"72085100",               // DESCRIPCION ARANCELARIA
		"25 PAQUETES",            // CANTIDAD DE BULTOS
		weight,                   // PESO NETO
		fob,                      // VALOR FOB USD
		"BOBINAS DE ACERO",       // DESCRIPCION DE MERCANCIA
	}
}

func newTestEngine() *consolidator.Engine {
	return consolidator.NewEngine(fuzzy.NewRatioMatcher())
}

func TestConsolidate_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buildDeclarationFile(t, filepath.Join(dir, "enero.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		declarationRow("2025-01-10", "184512,00", "ACME STEEL CO", "", "", "CN", "7208510000", "1,250.50", "980,000.00"),
	})

	records, results, err := newTestEngine().Consolidate(context.Background(), dir, testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records=%d, want 1", len(records))
	}
	if len(results) != 1 || results[0].Status != "consolidated" {
		t.Fatalf("unexpected results: %+v", results)
	}

	rec := records[0]
	if rec.MonthName != "ENERO" {
		t.Fatalf("MonthName=%q, want ENERO", rec.MonthName)
	}
	if rec.DeclarationNumber != 184512 {
		t.Fatalf("DeclarationNumber=%d, want 184512", rec.DeclarationNumber)
	}
	if rec.SupplierName != "ACME STEEL COMPANY" {
		t.Fatalf("SupplierName=%q, want fuzzy-normalized canonical name", rec.SupplierName)
	}
	if rec.OriginCountryName != "China" {
		t.Fatalf("OriginCountryName=%q, want China", rec.OriginCountryName)
	}
	if rec.TariffGeneralDescription != "Flat hot-rolled products" {
		t.Fatalf("TariffGeneralDescription=%q", rec.TariffGeneralDescription)
	}
	if rec.NetWeightKg != 1250.5 {
		t.Fatalf("NetWeightKg=%v, want 1250.5", rec.NetWeightKg)
	}
	if rec.NetWeightTon != 1.2505 {
		t.Fatalf("NetWeightTon=%v, want 1.2505", rec.NetWeightTon)
	}
	want := 980000.0 / 1.2505
	if math.Abs(rec.FobPerTon-want) > 1e-9 {
		t.Fatalf("FobPerTon=%v, want %v", rec.FobPerTon, want)
	}
	if rec.SourceFile != "enero.xlsx" {
		t.Fatalf("SourceFile=%q", rec.SourceFile)
	}
}

func TestConsolidate_FieldDefaultsAndSentinels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buildDeclarationFile(t, filepath.Join(dir, "malos.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		// 日期无效、申报号非数字、国家代码含数字、税号未知、重量空白
		declarationRow("fecha mala", "S/N", "PROVEEDOR DESCONOCIDO SAC", "", "", "C1N", "9999999999", "", ""),
	})

	records, _, err := newTestEngine().Consolidate(context.Background(), dir, testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records=%d, want 1 (bad fields never drop the row)", len(records))
	}

	rec := records[0]
	if rec.Date != nil {
		t.Fatalf("Date should be nil on parse failure")
	}
	if rec.MonthName != model.InvalidMonthName {
		t.Fatalf("MonthName=%q, want sentinel", rec.MonthName)
	}
	if rec.DeclarationNumber != 0 {
		t.Fatalf("DeclarationNumber=%d, want 0", rec.DeclarationNumber)
	}
	if rec.OriginCountryCode != "US" {
		t.Fatalf("OriginCountryCode=%q, want repaired default US", rec.OriginCountryCode)
	}
	if rec.OriginCountryName != "United States" {
		t.Fatalf("OriginCountryName=%q", rec.OriginCountryName)
	}
	if rec.TariffGeneralDescription != model.UnknownValue || rec.TariffSubSubMeaningL3 != model.UnknownValue {
		t.Fatalf("tariff fields should default to sentinel: %+v", rec)
	}
	if rec.SupplierName != "PROVEEDOR DESCONOCIDO SAC" {
		t.Fatalf("SupplierName=%q, low-similarity name must stay unchanged", rec.SupplierName)
	}
	if rec.NetWeightKg != 0 || rec.NetWeightTon != 0 || rec.FobPerTon != 0 {
		t.Fatalf("numeric defaults violated: %+v", rec)
	}
}

func TestConsolidate_SupplierAliasLookupWhenNameBlank(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buildDeclarationFile(t, filepath.Join(dir, "alias.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		declarationRow("2025-02-01", "1", "", "370 PUDIAN ROAD SHANGHAI", "", "CN", "7208510000", "100", "200"),
		declarationRow("2025-02-01", "2", "", "", "trade@baosteel.example", "CN", "7208510000", "100", "200"),
	})

	records, _, err := newTestEngine().Consolidate(context.Background(), dir, testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.SupplierName != "BAOSTEEL INTERNATIONAL TRADING" {
			t.Fatalf("SupplierName=%q, want alias-resolved canonical name", rec.SupplierName)
		}
	}
}

func TestConsolidate_SkipsFileMissingColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buildDeclarationFile(t, filepath.Join(dir, "a_valido.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		declarationRow("2025-01-10", "1", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
		declarationRow("2025-01-11", "2", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
	})

	// 缺少 PESO NETO 列
	var truncated []string
	for _, h := range consolidator.RequiredColumns() {
		if h == "PESO NETO" {
			continue
		}
		truncated = append(truncated, h)
	}
	buildDeclarationFile(t, filepath.Join(dir, "b_malo.xlsx"), truncated, [][]interface{}{
		declarationRow("2025-01-12", "3", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
	})

	records, results, err := newTestEngine().Consolidate(context.Background(), dir, testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d, want only file A's 2 rows", len(records))
	}
	for _, rec := range records {
		if rec.SourceFile != "a_valido.xlsx" {
			t.Fatalf("unexpected source file: %q", rec.SourceFile)
		}
	}

	skipped := 0
	for _, r := range results {
		if r.Status == "skipped" {
			skipped++
			if r.Filename != "b_malo.xlsx" {
				t.Fatalf("skipped wrong file: %q", r.Filename)
			}
		}
	}
	if skipped != 1 {
		t.Fatalf("skipped=%d, want 1", skipped)
	}
}

func TestConsolidate_SortByMonthThenTariff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	buildDeclarationFile(t, filepath.Join(dir, "marzo.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		declarationRow("2025-03-10", "1", "ACME STEEL CO", "", "", "CN", "7216210000", "100", "200"),
		declarationRow("2025-03-10", "2", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
	})
	buildDeclarationFile(t, filepath.Join(dir, "varios.xlsx"), consolidator.RequiredColumns(), [][]interface{}{
		declarationRow("2025-01-05", "3", "ACME STEEL CO", "", "", "CN", "7216210000", "100", "200"),
		declarationRow("sin fecha", "4", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
	})

	engine := newTestEngine()
	records, _, err := engine.Consolidate(context.Background(), dir, testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records=%d, want 4", len(records))
	}

	locale := engine.Locale()
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		pm, cm := locale.MonthNumber(prev.MonthName), locale.MonthNumber(cur.MonthName)
		if pm > cm {
			t.Fatalf("month order violated at %d: %q before %q", i, prev.MonthName, cur.MonthName)
		}
		if pm == cm && prev.TariffCode > cur.TariffCode {
			t.Fatalf("tariff order violated at %d: %d before %d", i, prev.TariffCode, cur.TariffCode)
		}
	}

	// 无效月份排最前
	if records[0].MonthName != model.InvalidMonthName {
		t.Fatalf("first record MonthName=%q, want sentinel", records[0].MonthName)
	}
}

func TestConsolidate_ProgressMonotonic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := make([][]interface{}, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, declarationRow("2025-01-10", "1", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"))
	}
	buildDeclarationFile(t, filepath.Join(dir, "uno.xlsx"), consolidator.RequiredColumns(), rows)
	buildDeclarationFile(t, filepath.Join(dir, "dos.xlsx"), consolidator.RequiredColumns(), rows)

	var percents []float64
	_, _, err := newTestEngine().Consolidate(context.Background(), dir, testReferenceMaps(), func(p float64) {
		percents = append(percents, p)
	})
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	if len(percents) != 10 {
		t.Fatalf("progress calls=%d, want one per row (10)", len(percents))
	}
	for i, p := range percents {
		if p < 0 || p > 100 {
			t.Fatalf("percent out of range: %v", p)
		}
		if i > 0 && p < percents[i-1] {
			t.Fatalf("progress not monotonic at %d: %v after %v", i, p, percents[i-1])
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("final percent=%v, want 100", percents[len(percents)-1])
	}
}

func TestConsolidate_Cancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := [][]interface{}{
		declarationRow("2025-01-10", "1", "ACME STEEL CO", "", "", "CN", "7208510000", "100", "200"),
	}
	buildDeclarationFile(t, filepath.Join(dir, "uno.xlsx"), consolidator.RequiredColumns(), rows)
	buildDeclarationFile(t, filepath.Join(dir, "dos.xlsx"), consolidator.RequiredColumns(), rows)
	buildDeclarationFile(t, filepath.Join(dir, "tres.xlsx"), consolidator.RequiredColumns(), rows)

	ctx, cancel := context.WithCancel(context.Background())

	// 第二个文件处理期间请求取消
	calls := 0
	_, _, err := newTestEngine().Consolidate(ctx, dir, testReferenceMaps(), func(p float64) {
		calls++
		if calls == 2 {
			cancel()
		}
	})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if err != context.Canceled {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
}

func TestConsolidate_EmptyFolder(t *testing.T) {
	t.Parallel()

	records, results, err := newTestEngine().Consolidate(context.Background(), t.TempDir(), testReferenceMaps(), nil)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(records) != 0 || len(results) != 0 {
		t.Fatalf("expected empty result, got %d records", len(records))
	}
}
