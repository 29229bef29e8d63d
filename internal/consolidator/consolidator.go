package consolidator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"aduanex/internal/fuzzy"
	"aduanex/internal/model"
)

// 数据单元格的固定列位（1 基）。表头校验通过后按列位读取，不做名称查找。
const (
	colDate            = 1
	colDeclarationNum  = 2
	colImporterTaxID   = 3
	colImporterName    = 4
	colSupplierName    = 5
	colSupplierAddress = 6
	colSupplierContact = 7
	colExportCountry   = 8
	colOriginCountry   = 9
	colTariffCode      = 10
	colPackageCount    = 12
	colNetWeight       = 13
	colFobValue        = 14
	colGoodsDesc       = 15
)

// DefaultMatchThreshold 供应商模糊匹配的接受阈值（0-100）
const DefaultMatchThreshold = 80

// DefaultCountryCode 含数字的国家代码被修复成的默认代码
const DefaultCountryCode = "US"

// 行间取消检查的间隔
const cancelCheckInterval = 100

// ProgressFunc 进度回调，取值 [0,100]，每行至多调用一次
//
// 回调不带背压语义，调用方不得长时间阻塞。
type ProgressFunc func(percent float64)

// Engine 合并引擎
//
// 调用之间无共享状态：引用表由调用方注入，引擎不缓存。
type Engine struct {
	matcher        fuzzy.Matcher
	locale         Locale
	defaultCountry string
	threshold      int
}

// NewEngine 创建合并引擎（西语区域、默认阈值）
func NewEngine(matcher fuzzy.Matcher) *Engine {
	return &Engine{
		matcher:        matcher,
		locale:         SpanishLocale(),
		defaultCountry: DefaultCountryCode,
		threshold:      DefaultMatchThreshold,
	}
}

// NewEngineWithOptions 创建合并引擎并指定区域、默认国家代码与匹配阈值
func NewEngineWithOptions(matcher fuzzy.Matcher, locale Locale, defaultCountry string, threshold int) *Engine {
	return &Engine{
		matcher:        matcher,
		locale:         locale,
		defaultCountry: defaultCountry,
		threshold:      threshold,
	}
}

// Locale 返回引擎使用的区域配置
func (e *Engine) Locale() Locale {
	return e.locale
}

// Consolidate 合并目录下的所有报关表格
//
// 逐文件顺序处理：表头缺列或不可读的文件记警告跳过，单文件异常不中断整批。
// 取消在每个文件前和文件内每 100 行检查一次，命中后不再追加任何行，
// 返回 ctx.Err()。返回的记录按（月序号, 税号）稳定排序。
func (e *Engine) Consolidate(ctx context.Context, folderPath string, refs *model.ReferenceMaps, progress ProgressFunc) ([]*model.CanonicalRecord, []model.FileResult, error) {
	files, err := listSpreadsheets(folderPath)
	if err != nil {
		return nil, nil, err
	}

	records := []*model.CanonicalRecord{}
	results := make([]model.FileResult, 0, len(files))
	if len(files) == 0 {
		return records, results, nil
	}

	pool := refs.CanonicalSupplierNames()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, results, err
		}

		start := time.Now()
		fileRecords, result, err := e.consolidateFile(ctx, path, i, len(files), refs, pool, progress)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, results, err
			}
			log.Printf("文件处理失败，跳过: %s: %v", filepath.Base(path), err)
			results = append(results, model.FileResult{
				Filename: filepath.Base(path),
				Status:   "error",
				Errors:   []string{err.Error()},
				Duration: time.Since(start),
			})
			continue
		}

		result.Duration = time.Since(start)
		results = append(results, result)
		records = append(records, fileRecords...)
	}

	e.sortRecords(records)
	return records, results, nil
}

// consolidateFile 处理单个源文件
func (e *Engine) consolidateFile(ctx context.Context, path string, fileIdx, fileCount int, refs *model.ReferenceMaps, pool []string, progress ProgressFunc) ([]*model.CanonicalRecord, model.FileResult, error) {
	filename := filepath.Base(path)
	result := model.FileResult{Filename: filename}

	f, err := excelize.OpenFile(path)
	if err != nil {
		log.Printf("无法打开文件，跳过: %s: %v", filename, err)
		result.Status = "skipped"
		result.Errors = []string{fmt.Sprintf("open failed: %v", err)}
		return nil, result, nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		log.Printf("文件没有可读工作表，跳过: %s", filename)
		result.Status = "skipped"
		result.Errors = []string{"no readable sheet"}
		return nil, result, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) < 1 {
		log.Printf("读取工作表失败，跳过: %s: %v", filename, err)
		result.Status = "skipped"
		result.Errors = []string{fmt.Sprintf("read sheet failed: %v", err)}
		return nil, result, nil
	}

	if missing := missingColumns(rows[0]); len(missing) > 0 {
		log.Printf("表头缺少必需列，跳过: %s: %s", filename, strings.Join(missing, ", "))
		result.Status = "skipped"
		result.Errors = []string{"missing columns: " + strings.Join(missing, ", ")}
		return nil, result, nil
	}

	dataRows := rows[1:]
	rowCount := len(dataRows)

	var records []*model.CanonicalRecord
	for j, row := range dataRows {
		if j%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, result, err
			}
		}

		records = append(records, e.parseRow(row, refs, pool, filename))

		if progress != nil {
			percent := (float64(fileIdx) + float64(j+1)/float64(rowCount)) / float64(fileCount) * 100
			progress(clampPercent(percent))
		}
	}

	result.Status = "consolidated"
	result.Rows = len(records)
	return records, result, nil
}

// parseRow 把一行原始文本单元格解析为统一口径记录
//
// 字段级失败只替换为默认值/哨兵值，行永远会产出。
func (e *Engine) parseRow(row []string, refs *model.ReferenceMaps, pool []string, sourceFile string) *model.CanonicalRecord {
	rec := &model.CanonicalRecord{SourceFile: sourceFile}

	// 日期与月份名称
	if t, ok := e.locale.ParseDate(cell(row, colDate)); ok {
		rec.Date = &t
		rec.MonthName = e.locale.MonthName(t)
	} else {
		rec.MonthName = model.InvalidMonthName
	}

	rec.DeclarationNumber = parseIntField(cell(row, colDeclarationNum))
	rec.ImporterTaxID = parseIntField(cell(row, colImporterTaxID))
	rec.ImporterName = cell(row, colImporterName)

	// 供应商归一
	rec.SupplierName = e.resolveSupplier(
		cell(row, colSupplierName),
		cell(row, colSupplierAddress),
		cell(row, colSupplierContact),
		refs.Suppliers, pool)
	rec.SupplierAddress = cell(row, colSupplierAddress)
	rec.SupplierContact = cell(row, colSupplierContact)

	// 国家代码修复与名称富化
	rec.ExportCountryCode = repairCountryCode(cell(row, colExportCountry), e.defaultCountry)
	rec.OriginCountryCode = repairCountryCode(cell(row, colOriginCountry), e.defaultCountry)
	if name, ok := refs.Countries[rec.OriginCountryCode]; ok {
		rec.OriginCountryName = name
	} else {
		rec.OriginCountryName = model.UnknownValue
	}

	// 税则富化
	rec.TariffCode = parseIntField(cell(row, colTariffCode))
	if info, ok := refs.Tariffs[rec.TariffCode]; ok {
		rec.TariffGeneralDescription = info.GeneralDescription
		rec.TariffMeaning = info.Meaning
		rec.TariffSubMeaning = info.SubMeaning
		rec.TariffSubMeaningL1 = info.SubMeaningL1
		rec.TariffSubSubMeaningL2 = info.SubSubMeaningL2
		rec.TariffSubSubMeaningL3 = info.SubSubMeaningL3
	} else {
		rec.TariffGeneralDescription = model.UnknownValue
		rec.TariffMeaning = model.UnknownValue
		rec.TariffSubMeaning = model.UnknownValue
		rec.TariffSubMeaningL1 = model.UnknownValue
		rec.TariffSubSubMeaningL2 = model.UnknownValue
		rec.TariffSubSubMeaningL3 = model.UnknownValue
	}

	rec.PackageCount = cell(row, colPackageCount)

	// 数值字段与衍生值
	rec.NetWeightKg = parseAmount(cell(row, colNetWeight))
	rec.NetWeightTon = rec.NetWeightKg / 1000
	rec.FobValueUsd = parseAmount(cell(row, colFobValue))
	if rec.NetWeightTon != 0 {
		rec.FobPerTon = rec.FobValueUsd / rec.NetWeightTon
	}

	rec.GoodsDescription = cell(row, colGoodsDesc)

	return rec
}

// resolveSupplier 供应商名称归一
//
// 名称非空白时直接模糊归一；空白时依次用地址、联系方式做别名精确查找，
// 命中后再对查找结果做同样的模糊归一。
func (e *Engine) resolveSupplier(name, address, contact string, suppliers map[string]string, pool []string) string {
	if name != "" {
		return e.normalizeSupplier(name, pool)
	}
	if canonical, ok := suppliers[address]; ok {
		return e.normalizeSupplier(canonical, pool)
	}
	if canonical, ok := suppliers[contact]; ok {
		return e.normalizeSupplier(canonical, pool)
	}
	return name
}

// normalizeSupplier 相似度达到阈值时替换为规范名称，否则保留原文
func (e *Engine) normalizeSupplier(raw string, pool []string) string {
	match, score := e.matcher.BestMatch(raw, pool)
	if score >= e.threshold {
		return match
	}
	return raw
}

// sortRecords 全局排序：月序号升序（无效月份为 0，排最前），税号升序
func (e *Engine) sortRecords(records []*model.CanonicalRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		mi := e.locale.MonthNumber(records[i].MonthName)
		mj := e.locale.MonthNumber(records[j].MonthName)
		if mi != mj {
			return mi < mj
		}
		return records[i].TariffCode < records[j].TariffCode
	})
}

// listSpreadsheets 枚举目录下的表格文件，按文件名排序保证批次确定性
func listSpreadsheets(folderPath string) ([]string, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folderPath, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			files = append(files, filepath.Join(folderPath, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
