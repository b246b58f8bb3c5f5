package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfigJSON = `{
  "data_dir": "./data",
  "report_dir": "./reports",
  "log_name": "./logs/quality.log",
  "log_max_size": "10 * 1024 * 1024",
  "http_addr": ":9090",
  "email": {
    "enabled": true,
    "server": "imap.example.com:993",
    "username": "u",
    "password": "p",
    "target_subject": "数据集",
    "check_interval": "5m"
  },
  "send_email": {
    "enabled": false,
    "server": "smtp.example.com:465",
    "username": "s",
    "password": "p",
    "to": "team@example.com"
  }
}`

const testQualityJSON = `{
  "duplicate_preview_limit": 3,
  "label_preview_limit": 7,
  "iqr_multiplier": 2.0,
  "semantic_percentile": 0.9,
  "semantic_min_rows": 30,
  "label_min_rows": 10,
  "max_target_cardinality": 15,
  "target_name_tokens": ["label", "目标"]
}`

func writeConfigFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(testConfigJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "qualityconfig.json"), []byte(testQualityJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfigFiles(t)

	cfg, qcfg, err := LoadConfig(dir, "config.json", "qualityconfig.json")
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.DataDir != "./data" || cfg.HTTPAddr != ":9090" {
		t.Errorf("基础配置 = %+v", cfg)
	}
	if !cfg.Email.Enabled || cfg.Email.TargetSubject != "数据集" {
		t.Errorf("邮件配置 = %+v", cfg.Email)
	}
	if time.Duration(cfg.Email.CheckInterval) != 5*time.Minute {
		t.Errorf("CheckInterval = %v, 期望 5m", time.Duration(cfg.Email.CheckInterval))
	}

	if qcfg.DuplicatePreviewLimit != 3 || qcfg.IQRMultiplier != 2.0 {
		t.Errorf("质量配置 = %+v", qcfg)
	}
	if len(qcfg.TargetNameTokens) != 2 || qcfg.TargetNameTokens[1] != "目标" {
		t.Errorf("目标词表 = %v", qcfg.TargetNameTokens)
	}
}

// LoadConfig走sync.Once，错误路径直接测内部加载函数
func TestLoadConfigsMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := loadConfigs(dir, "config.json", "qualityconfig.json"); err == nil {
		t.Fatal("缺失配置文件应返回错误")
	}
}

func TestLoadConfigsBadJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{bad"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "qualityconfig.json"), []byte("{also bad"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := loadConfigs(dir, "config.json", "qualityconfig.json"); err == nil {
		t.Fatal("非法JSON应返回错误")
	}
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"1h30m"`), &d); err != nil {
		t.Fatal(err)
	}
	if time.Duration(d) != 90*time.Minute {
		t.Errorf("解析结果 = %v, 期望 1h30m", time.Duration(d))
	}

	data, err := json.Marshal(Duration(45 * time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"45s"` {
		t.Errorf("序列化 = %s, 期望 \"45s\"", data)
	}

	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Error("非法时长应返回错误")
	}
}
