package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirMonitor(t *testing.T) {
	dir := t.TempDir()

	monitor, err := NewDirMonitor(dir)
	if err != nil {
		t.Fatalf("创建监控失败: %v", err)
	}
	defer monitor.Close()

	triggered := make(chan string, 10)
	go func() {
		monitor.Watch(func(path string) {
			triggered <- path
		})
	}()

	// 数据集文件触发回调
	csvPath := filepath.Join(dir, "new.csv")
	if err := os.WriteFile(csvPath, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-triggered:
		if got != csvPath {
			t.Errorf("回调路径 = %q, 期望 %q", got, csvPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("写入数据集文件后回调未触发")
	}
}

func TestDirMonitorIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	monitor, err := NewDirMonitor(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer monitor.Close()

	triggered := make(chan string, 10)
	go func() {
		monitor.Watch(func(path string) {
			triggered <- path
		})
	}()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-triggered:
		t.Errorf("非数据集文件不应触发回调: %q", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestDirMonitorMissingDir(t *testing.T) {
	if _, err := NewDirMonitor("/nonexistent/path/for/sure"); err == nil {
		t.Fatal("不存在的目录应返回错误")
	}
}
