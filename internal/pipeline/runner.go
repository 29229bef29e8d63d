package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"aduanex/internal/consolidator"
	"aduanex/internal/exporter"
	"aduanex/internal/filter"
	"aduanex/internal/model"
	"aduanex/internal/reference"
	"aduanex/internal/table"
)

// CanonicalSheetName 主工作表名称
const CanonicalSheetName = "Consolidado"

// ProgressEvent 运行进度事件
type ProgressEvent struct {
	Type      string      `json:"type"` // start/progress/warning/done/error/canceled
	Message   string      `json:"message"`
	Percent   float64     `json:"percent,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Runner 运行协调器：引用表 -> 合并 -> 类目过滤 -> 导出
type Runner struct {
	loader *reference.Loader
	engine *consolidator.Engine
	export *exporter.Exporter
}

// NewRunner 创建协调器
func NewRunner(loader *reference.Loader, engine *consolidator.Engine, export *exporter.Exporter) *Runner {
	return &Runner{
		loader: loader,
		engine: engine,
		export: export,
	}
}

// RunOptions 运行选项
type RunOptions struct {
	FolderPath string
	OutputPath string // 为空则只合并不导出
}

// Run 在后台任务中执行整条管道，返回进度事件通道
func (r *Runner) Run(ctx context.Context, opts RunOptions) <-chan ProgressEvent {
	events := make(chan ProgressEvent, 100)

	go func() {
		defer close(events)
		r.doRun(ctx, opts, events)
	}()

	return events
}

// doRun 执行管道逻辑
func (r *Runner) doRun(ctx context.Context, opts RunOptions, events chan ProgressEvent) {
	startTime := time.Now()
	report := &model.RunReport{
		RunID:      uuid.New().String(),
		FolderPath: opts.FolderPath,
	}

	r.send(events, ProgressEvent{
		Type:      "start",
		Message:   fmt.Sprintf("开始合并报关文件: %s", opts.FolderPath),
		Data:      map[string]string{"runId": report.RunID},
		Timestamp: time.Now(),
	})

	// 引用表加载失败是致命错误
	refs, err := r.loader.LoadAll()
	if err != nil {
		r.send(events, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("引用表加载失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	// 进度只在整数百分比前进时发事件，避免淹没通道
	lastPercent := -1.0
	progress := func(percent float64) {
		if math.Floor(percent) <= math.Floor(lastPercent) {
			lastPercent = percent
			return
		}
		lastPercent = percent
		r.send(events, ProgressEvent{
			Type:      "progress",
			Percent:   percent,
			Timestamp: time.Now(),
		})
	}

	records, results, err := r.engine.Consolidate(ctx, opts.FolderPath, refs, progress)
	r.recordResults(report, results, events)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			r.sendCanceled(events, report, startTime)
			return
		}
		r.send(events, ProgressEvent{
			Type:      "error",
			Message:   fmt.Sprintf("合并失败: %v", err),
			Timestamp: time.Now(),
		})
		return
	}

	canonical := table.FromRecords(CanonicalSheetName, records)
	subviews := []*table.Table{
		filter.FlatHotRolledAndProfiles(canonical),
		filter.Angles(canonical),
		filter.Channels(canonical),
		filter.Beams(canonical),
		filter.ColdRolledSheets(canonical),
	}

	if opts.OutputPath != "" {
		if err := r.export.Export(ctx, canonical, subviews, opts.OutputPath); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.sendCanceled(events, report, startTime)
				return
			}
			r.send(events, ProgressEvent{
				Type:      "error",
				Message:   fmt.Sprintf("导出失败: %v", err),
				Timestamp: time.Now(),
			})
			return
		}
		report.OutputPath = opts.OutputPath
	}

	report.Duration = time.Since(startTime)
	log.Printf("合并完成: 文件 %d 个（跳过 %d 个），记录 %d 条，耗时 %s",
		report.TotalFiles, report.SkippedFiles, report.TotalRows, report.Duration)

	r.send(events, ProgressEvent{
		Type:      "done",
		Message:   fmt.Sprintf("合并完成: %d 条记录", report.TotalRows),
		Data:      report,
		Timestamp: time.Now(),
	})
}

// recordResults 把文件级结果并入报告，跳过的文件发警告事件
func (r *Runner) recordResults(report *model.RunReport, results []model.FileResult, events chan ProgressEvent) {
	report.TotalFiles = len(results)
	for _, result := range results {
		report.Record(result)
		if result.Status != "consolidated" {
			r.send(events, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("文件被跳过: %s", result.Filename),
				Data:      result,
				Timestamp: time.Now(),
			})
		}
	}
}

// sendCanceled 发送取消事件（已产出的记录由调用方丢弃）
func (r *Runner) sendCanceled(events chan ProgressEvent, report *model.RunReport, startTime time.Time) {
	report.Duration = time.Since(startTime)
	r.send(events, ProgressEvent{
		Type:      "canceled",
		Message:   "运行已取消，输出不完整",
		Data:      report,
		Timestamp: time.Now(),
	})
}

// send 非阻塞发送进度事件
func (r *Runner) send(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}
