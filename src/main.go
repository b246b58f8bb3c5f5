package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron"

	"DatasetQuality/src/config"
	"DatasetQuality/src/datasource/email"
	"DatasetQuality/src/datasource/file"
	"DatasetQuality/src/quality"
	"DatasetQuality/src/storage"
	"DatasetQuality/src/utils"
)

// ReportService 持有分析器和最近一次生成的报告。
// 核心分析器本身无状态，报告缓存只属于这层服务代码。
type ReportService struct {
	cfg      *config.Config
	analyzer *quality.Analyzer
	logger   *storage.Logger

	mu      sync.RWMutex
	reports map[string]*quality.QualityReport // 数据集文件名 -> 最近报告
}

func main() {
	jsonFolder := "./config"
	cfg, qcfg, err := config.LoadConfig(jsonFolder, "config.json", "qualityconfig.json")
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal("Failed to create data dir:", err)
	}
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		log.Fatal("Failed to create report dir:", err)
	}

	svc := &ReportService{
		cfg:      cfg,
		analyzer: quality.NewAnalyzer(thresholdsFrom(qcfg)),
		logger:   logger,
		reports:  make(map[string]*quality.QualityReport),
	}

	// 启动时先处理数据目录里已有的数据集
	svc.scanDataDir()

	// 目录监控：新数据集落盘即生成报告
	monitor, err := file.NewDirMonitor(cfg.DataDir)
	if err != nil {
		logger.Error("创建目录监控失败: " + err.Error())
	} else {
		go func() {
			if err := monitor.Watch(func(path string) {
				svc.generateFor(path)
			}); err != nil {
				logger.Error("目录监控错误: " + err.Error())
			}
		}()
	}

	// 定时任务：拉取邮箱里的数据集附件，顺便轮转日志
	c := cron.New()
	interval := time.Duration(cfg.Email.CheckInterval)
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	cronSpec := fmt.Sprintf("@every %s", interval)

	err = c.AddFunc(cronSpec, func() {
		if err := logger.CheckRotate(cfg.LogMaxSize); err != nil {
			logger.Warning("日志轮转失败: " + err.Error())
		}
		if cfg.Email.Enabled {
			svc.ingestFromMailbox()
		}
		// 兜底扫描，监控事件丢失时也能补上报告
		svc.scanDataDir()
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}

	c.Start()
	defer c.Stop()

	logger.Info(fmt.Sprintf("数据质量服务已启动(检查间隔: %v)，监听 %s", interval, cfg.HTTPAddr))
	startWebUI(svc)
}

// thresholdsFrom 把质量配置映射为分析器阈值，零值走默认
func thresholdsFrom(qcfg *config.QualityConfig) quality.Thresholds {
	t := quality.DefaultThresholds()
	if qcfg == nil {
		return t
	}
	if qcfg.DuplicatePreviewLimit > 0 {
		t.DuplicatePreviewLimit = qcfg.DuplicatePreviewLimit
	}
	if qcfg.LabelPreviewLimit > 0 {
		t.LabelPreviewLimit = qcfg.LabelPreviewLimit
	}
	if qcfg.IQRMultiplier > 0 {
		t.IQRMultiplier = qcfg.IQRMultiplier
	}
	if qcfg.SemanticPercentile > 0 && qcfg.SemanticPercentile < 1 {
		t.SemanticPercentile = qcfg.SemanticPercentile
	}
	if qcfg.SemanticMinRows > 0 {
		t.SemanticMinRows = qcfg.SemanticMinRows
	}
	if qcfg.LabelMinRows > 0 {
		t.LabelMinRows = qcfg.LabelMinRows
	}
	if qcfg.MaxTargetCardinality > 0 {
		t.MaxTargetCardinality = qcfg.MaxTargetCardinality
	}
	if len(qcfg.TargetNameTokens) > 0 {
		t.TargetNameTokens = qcfg.TargetNameTokens
	}
	return t
}

// scanDataDir 为目录里所有还没有报告的数据集补生成
func (s *ReportService) scanDataDir() {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		s.logger.Error("读取数据目录失败: " + err.Error())
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !utils.Contains(file.DatasetExtensions, file.FileExt(name)) {
			continue
		}

		s.mu.RLock()
		_, done := s.reports[name]
		s.mu.RUnlock()
		if done {
			continue
		}
		s.generateFor(filepath.Join(s.cfg.DataDir, name))
	}
}

// ingestFromMailbox 拉取主题匹配的未读邮件并保存数据集附件。
// 附件落盘后由目录监控触发分析，这里不直接生成报告。
func (s *ReportService) ingestFromMailbox() {
	emailClient := email.NewEmailClient(
		s.cfg.Email.Server,
		s.cfg.Email.Username,
		s.cfg.Email.Password)
	handler := email.NewAttachmentHandler(s.cfg.Email.TargetSubject, s.cfg.DataDir)

	emails, err := email.CheckAndProcessEmails(emailClient, s.cfg.Email.TargetSubject, s.logger)
	if err != nil {
		s.logger.Error("检查处理邮件失败: " + err.Error())
		return
	}

	for _, e := range emails {
		saved, err := handler.Handle(e)
		if err != nil {
			s.logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", e.UID, err))
			continue
		}
		for _, path := range saved {
			s.logger.Info("邮件附件已保存: " + path)
		}
	}
}

// generateFor 为单个数据集文件生成质量报告，缓存并落盘
func (s *ReportService) generateFor(filePath string) *quality.QualityReport {
	name := filepath.Base(filePath)
	t1 := time.Now()

	ds, report := s.buildReport(filePath, "")
	if report == nil {
		return nil
	}

	s.mu.Lock()
	s.reports[name] = report
	s.mu.Unlock()

	s.persistReport(name, ds, report)
	s.logger.Info(fmt.Sprintf("质量报告已生成(%s)，耗时: %v，离群行: %d，标签问题: %d",
		name, time.Since(t1), report.Outliers.TotalUnique, report.LabelIssues.IssueCount))

	return report
}

// buildReport 单次分析。手动目标列的结果不进缓存不落盘，
// 数据集加载失败是唯一的硬错误；分析内部的问题都以降级字段体现。
func (s *ReportService) buildReport(filePath, targetOverride string) (*quality.Dataset, *quality.QualityReport) {
	name := filepath.Base(filePath)

	df, err := file.LoadDataFrame(filePath, name)
	if err != nil {
		s.logger.Error(fmt.Sprintf("加载数据集失败(%s): %v", name, err))
		return nil, nil
	}

	ds := quality.NewDataset(df)

	// 语义检测和标签检测是仅有的重开销步骤，整体限时保护
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	opts := quality.ReportOptions{TargetOverride: targetOverride}
	profilePath := filepath.Join(s.cfg.ReportDir, "profile_"+name+".html")
	if _, err := os.Stat(profilePath); err == nil {
		opts.ProfileHTMLPath = profilePath
	}

	report := s.analyzer.GenerateReport(ctx, ds, opts)
	if report.ProfileNote != "" {
		s.logger.Warning(fmt.Sprintf("概览指标提取失败(%s): %s", name, report.ProfileNote))
	}
	return ds, report
}

// persistReport 报告JSON和离群行工作簿写入报告目录，
// 配置了发件邮箱时抄送一份文字摘要
func (s *ReportService) persistReport(name string, ds *quality.Dataset, report *quality.QualityReport) {
	jsonPath := filepath.Join(s.cfg.ReportDir, name+".quality.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		if werr := os.WriteFile(jsonPath, data, 0644); werr != nil {
			s.logger.Error("写入报告JSON失败: " + werr.Error())
		}
	}

	xlsxPath := filepath.Join(s.cfg.ReportDir, name+".outliers.xlsx")
	if err := quality.SaveOutliersToExcel(ds, report.Outliers, xlsxPath); err != nil {
		s.logger.Error("导出离群行工作簿失败: " + err.Error())
	}

	if s.cfg.SendEmail.Enabled {
		summary := fmt.Sprintf(
			"数据集: %s\n缺失单元格: %d\n重复行: %d\n离群行(去重): %d\n标签问题: %d\n目标列: %s\n",
			name,
			report.Missing.TotalMissingCells,
			report.Duplicates.DuplicateCount,
			report.Outliers.TotalUnique,
			report.LabelIssues.IssueCount,
			report.TargetColumn,
		)
		if err := email.SendReportSummary(s.cfg, "数据质量报告: "+name, summary, xlsxPath); err != nil {
			s.logger.Error("发送报告摘要失败: " + err.Error())
		}
	}
}

// startWebUI 启动报告查询接口和实时日志页面
func startWebUI(svc *ReportService) {
	// 质量报告查询：?name=数据集文件名&filter=类别&target=手动目标列
	http.HandleFunc("/quality", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Query().Get("name"))
		if name == "." || name == "/" {
			http.Error(w, "missing dataset name", http.StatusBadRequest)
			return
		}

		selector := r.URL.Query().Get("filter")
		target := r.URL.Query().Get("target")

		var report *quality.QualityReport
		if target != "" {
			// 手动目标列按请求传入，重新生成，结果不进缓存
			_, report = svc.buildReport(filepath.Join(svc.cfg.DataDir, name), target)
		} else {
			svc.mu.RLock()
			report = svc.reports[name]
			svc.mu.RUnlock()
			if report == nil {
				report = svc.generateFor(filepath.Join(svc.cfg.DataDir, name))
			}
		}

		if report == nil {
			http.Error(w, "dataset not found or unreadable", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"report":          report,
			"selected_filter": strings.ToLower(selector),
			"filtered_rows":   quality.FilterOutlierRows(report.Outliers, selector),
		})
	})

	// 实时日志流
	http.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		logChan := svc.logger.Subscribe()
		for {
			select {
			case msg := <-logChan:
				if _, err := fmt.Fprint(w, msg); err != nil {
					return
				}
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			case <-r.Context().Done():
				return
			}
		}
	})

	addr := svc.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	if err := http.ListenAndServe(addr, nil); err != nil {
		svc.logger.Fatal("HTTP服务退出: " + err.Error())
	}
}
