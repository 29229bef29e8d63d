package model

import "time"

// 解析失败或引用表缺失时写入的哨兵值
const (
	UnknownValue     = "Unknown"
	InvalidMonthName = "INVALID MONTH"
)

// CanonicalRecord 统一口径的报关记录（合并管道的输出单位）
//
// 每条记录来自且仅来自一个源文件的一行，生成后不再修改。
// 数值字段解析失败时写 0，文本富化字段缺失时写哨兵值，行本身永不丢弃。
type CanonicalRecord struct {
	Date      *time.Time `json:"date,omitempty"`
	MonthName string     `json:"monthName"`

	DeclarationNumber int64  `json:"declarationNumber"`
	ImporterTaxID     int64  `json:"importerTaxId"`
	ImporterName      string `json:"importerName"`

	SupplierName    string `json:"supplierName"`
	SupplierAddress string `json:"supplierAddress"`
	SupplierContact string `json:"supplierContact"`

	ExportCountryCode string `json:"exportCountryCode"`
	OriginCountryCode string `json:"originCountryCode"`
	OriginCountryName string `json:"originCountryName"`

	TariffCode   int64  `json:"tariffCode"`
	PackageCount string `json:"packageCount"`

	TariffGeneralDescription string `json:"tariffGeneralDescription"`
	TariffMeaning            string `json:"tariffMeaning"`
	TariffSubMeaning         string `json:"tariffSubMeaning"`
	TariffSubMeaningL1       string `json:"tariffSubMeaningL1"`
	TariffSubSubMeaningL2    string `json:"tariffSubSubMeaningL2"`
	TariffSubSubMeaningL3    string `json:"tariffSubSubMeaningL3"`

	NetWeightKg  float64 `json:"netWeightKg"`
	NetWeightTon float64 `json:"netWeightTon"`
	FobValueUsd  float64 `json:"fobValueUsd"`
	FobPerTon    float64 `json:"fobPerTon"`

	GoodsDescription string `json:"goodsDescription"`

	SourceFile string `json:"sourceFile"`
}
