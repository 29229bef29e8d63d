package model

import "time"

// FileResult 单个源文件的处理结果
type FileResult struct {
	Filename string        `json:"filename"`
	Status   string        `json:"status"` // consolidated/skipped/error
	Rows     int           `json:"rows"`
	Errors   []string      `json:"errors,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunReport 一次合并运行的汇总报告
type RunReport struct {
	RunID        string        `json:"runId"`
	FolderPath   string        `json:"folderPath"`
	TotalFiles   int           `json:"totalFiles"`
	Consolidated int           `json:"consolidatedFiles"`
	SkippedFiles int           `json:"skippedFiles"`
	TotalRows    int           `json:"totalRows"`
	OutputPath   string        `json:"outputPath,omitempty"`
	Duration     time.Duration `json:"duration"`
	Files        []FileResult  `json:"files"`
}

// Record 记录单个文件结果并累加计数
func (r *RunReport) Record(result FileResult) {
	r.Files = append(r.Files, result)
	switch result.Status {
	case "consolidated":
		r.Consolidated++
		r.TotalRows += result.Rows
	case "skipped", "error":
		r.SkippedFiles++
	}
}
