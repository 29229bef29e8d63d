package consolidator

import (
	"strings"
	"time"
)

// Locale 显式的区域解析配置（日期格式与月份名称）
//
// 解析函数只依赖传入的 Locale，不读取进程级区域状态。
type Locale struct {
	Name        string
	MonthNames  [12]string // 大写全称，顺序为 1-12 月
	DateLayouts []string   // ISO 之外按序尝试的本地日期格式
}

// SpanishLocale 西语区域（报关单的目标区域）
func SpanishLocale() Locale {
	return Locale{
		Name: "es",
		MonthNames: [12]string{
			"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
			"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
		},
		DateLayouts: []string{
			"02/01/2006",
			"2/1/2006",
			"02-01-2006",
			"2006/01/02",
		},
	}
}

// ParseDate 先按 ISO (yyyy-MM-dd) 精确解析，失败后按区域格式逐个尝试
func (l Locale) ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return t, true
	}
	for _, layout := range l.DateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthName 返回该区域的大写月份全称
func (l Locale) MonthName(t time.Time) string {
	return l.MonthNames[int(t.Month())-1]
}

// MonthNumber 把月份名称解析回月序号（1-12）；无法识别返回 0
//
// 哨兵值 "INVALID MONTH" 走 0 分支，排序时排在所有有效月份之前。
func (l Locale) MonthNumber(name string) int {
	name = strings.TrimSpace(strings.ToUpper(name))
	for i, m := range l.MonthNames {
		if m == name {
			return i + 1
		}
	}
	return 0
}
