package consolidator

import (
	"strconv"
	"strings"
	"unicode"
)

// cell 按 1 基列位取单元格文本，越界返回空串
func cell(row []string, position int) string {
	idx := position - 1
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseIntField 解析整数型文本字段（申报号、税号、RUC）
//
// 表格导出会产生 "12345,00" 形态的数值，先截断首个逗号之后的部分，
// 再移除剩余逗号。解析失败或空白返回 0。
func parseIntField(s string) int64 {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseAmount 解析数值字段（净重、FOB），移除千分位逗号，失败返回 0
func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// containsDigit 文本中是否含数字
func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// repairCountryCode 修复录入错误的国家代码
//
// 非空白但含任何数字的代码视为录入错误，强制改为固定默认代码。
// 该启发式照搬既有行为，未重新解释其意图。
func repairCountryCode(code, defaultCode string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return code
	}
	if containsDigit(code) {
		return defaultCode
	}
	return code
}
