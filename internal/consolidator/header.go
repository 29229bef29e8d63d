package consolidator

import "strings"

// 源文件表头必须包含的列名（大小写不敏感，去除首尾空白后精确匹配）
//
// 注意：表头校验按名称，数据单元格按固定列位（1-15）读取。
// 列顺序被打乱但名称齐全的文件会被错读，这是既有行为，保留不改。
var requiredColumns = []string{
	"FECHA DE DECLARACION",
	"NUMERO DE DECLARACION",
	"RUC IMPORTADOR",
	"IMPORTADOR",
	"PROVEEDOR",
	"DIRECCION PROVEEDOR",
	"CONTACTO PROVEEDOR",
	"PAIS DE EMBARQUE",
	"PAIS DE ORIGEN",
	"PARTIDA ARANCELARIA",
	"DESCRIPCION ARANCELARIA",
	"CANTIDAD DE BULTOS",
	"PESO NETO",
	"VALOR FOB USD",
	"DESCRIPCION DE MERCANCIA",
}

// RequiredColumns 返回表头契约要求的列名
func RequiredColumns() []string {
	out := make([]string, len(requiredColumns))
	copy(out, requiredColumns)
	return out
}

// missingColumns 返回表头行中缺失的必需列名
func missingColumns(headers []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.ToUpper(strings.TrimSpace(h))] = struct{}{}
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	return missing
}
