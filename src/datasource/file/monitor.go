// monitor.go
package file

import (
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"DatasetQuality/src/utils"
)

// DirMonitor 监控数据目录，新写入的数据集文件触发回调
type DirMonitor struct {
	watchDir string
	watcher  *fsnotify.Watcher
	lastSeen map[string]time.Time
	mu       sync.Mutex
}

func NewDirMonitor(dir string) (*DirMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		return nil, err
	}

	return &DirMonitor{
		watchDir: dir,
		watcher:  watcher,
		lastSeen: make(map[string]time.Time),
	}, nil
}

func (m *DirMonitor) Close() error {
	return m.watcher.Close()
}

// Watch 阻塞处理文件事件，直到watcher关闭。
// 同一文件的重复写入按修改时间去重，回调在独立goroutine执行。
func (m *DirMonitor) Watch(handler func(string)) error {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !utils.Contains(DatasetExtensions, FileExt(event.Name)) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			m.mu.Lock()
			if info.ModTime().After(m.lastSeen[event.Name]) {
				m.lastSeen[event.Name] = info.ModTime()
				go handler(event.Name)
			}
			m.mu.Unlock()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
