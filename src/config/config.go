package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config 结构体定义了服务的运行配置
type Config struct {
	DataDir    string `json:"data_dir"`     // 数据集存放目录
	ReportDir  string `json:"report_dir"`   // 报告输出目录
	LogName    string `json:"log_name"`     // 日志文件路径
	LogMaxSize string `json:"log_max_size"` // 日志轮转阈值，如 "10 * 1024 * 1024"
	HTTPAddr   string `json:"http_addr"`    // 报告查询接口监听地址

	Email struct {
		Enabled       bool     `json:"enabled"`        // 是否启用邮件拉取
		Server        string   `json:"server"`         // IMAP服务器地址
		Username      string   `json:"username"`       // 邮箱用户名
		Password      string   `json:"password"`       // 邮箱密码/授权码
		TargetSubject string   `json:"target_subject"` // 需要匹配的邮件主题
		CheckInterval Duration `json:"check_interval"` // 检查新邮件的间隔时间
	} `json:"email"`

	SendEmail struct {
		Enabled  bool   `json:"enabled"`  // 是否发送报告摘要邮件
		Server   string `json:"server"`   // SMTP服务器地址
		Username string `json:"username"` // 发件邮箱
		Password string `json:"password"` // 发件密码/授权码
		To       string `json:"to"`       // 收件人
	} `json:"send_email"`
}

// QualityConfig 各分析器的阈值参数，独立成文件便于调整
type QualityConfig struct {
	DuplicatePreviewLimit int      `json:"duplicate_preview_limit"`
	LabelPreviewLimit     int      `json:"label_preview_limit"`
	IQRMultiplier         float64  `json:"iqr_multiplier"`
	SemanticPercentile    float64  `json:"semantic_percentile"`
	SemanticMinRows       int      `json:"semantic_min_rows"`
	LabelMinRows          int      `json:"label_min_rows"`
	MaxTargetCardinality  int      `json:"max_target_cardinality"`
	TargetNameTokens      []string `json:"target_name_tokens"`
}

var (
	once                  sync.Once
	instance              *Config
	qualityConfigInstance *QualityConfig
)

func LoadConfig(jsonFolder, jsonFile, qualityJsonFile string) (*Config, *QualityConfig, error) {
	var err error
	once.Do(func() {
		instance, qualityConfigInstance, err = loadConfigs(jsonFolder, jsonFile, qualityJsonFile)
	})
	return instance, qualityConfigInstance, err
}

func loadConfigs(jsonFolder, jsonFile, qualityJsonFile string) (*Config, *QualityConfig, error) {
	configFile := filepath.Join(jsonFolder, jsonFile)
	qualityFile := filepath.Join(jsonFolder, qualityJsonFile)

	configData, err := readFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	qualityData, err := readFile(qualityFile)
	if err != nil {
		return nil, nil, fmt.Errorf("读取质量配置文件失败: %w", err)
	}

	cfgChan := make(chan *Config, 1)
	qcfgChan := make(chan *QualityConfig, 1)
	errChan := make(chan error, 2)

	go parseConfig(configData, cfgChan, errChan)
	go parseQualityConfig(qualityData, qcfgChan, errChan)

	return waitForResults(cfgChan, qcfgChan, errChan)
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("无法读取文件 %s: %w", filePath, err)
	}
	return data, nil
}

func parseConfig(data []byte, resultChan chan<- *Config, errChan chan<- error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		errChan <- fmt.Errorf("解析Config失败: %w", err)
		return
	}
	resultChan <- &cfg
}

func parseQualityConfig(data []byte, resultChan chan<- *QualityConfig, errChan chan<- error) {
	var qcfg QualityConfig
	if err := json.Unmarshal(data, &qcfg); err != nil {
		errChan <- fmt.Errorf("解析QualityConfig失败: %w", err)
		return
	}
	resultChan <- &qcfg
}

func waitForResults(
	cfgChan <-chan *Config,
	qcfgChan <-chan *QualityConfig,
	errChan <-chan error,
) (*Config, *QualityConfig, error) {
	var (
		cfg    *Config
		qcfg   *QualityConfig
		errors []error
	)

	for i := 0; i < 2; i++ {
		select {
		case c := <-cfgChan:
			cfg = c
		case q := <-qcfgChan:
			qcfg = q
		case err := <-errChan:
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return nil, nil, combineErrors(errors)
	}

	if cfg == nil || qcfg == nil {
		return nil, nil, fmt.Errorf("部分配置未加载成功")
	}

	return cfg, qcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	msg := "配置加载遇到多个错误:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// Duration 是time.Duration的自定义包装类型
// 用于支持JSON序列化和反序列化
type Duration time.Duration

// UnmarshalJSON 实现json.Unmarshaler接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON 实现json.Marshaler接口
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
