// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"DatasetQuality/src/utils"
)

// ====================== 附件处理器实现 ======================

// 可以入库分析的附件扩展名
var datasetExts = []string{".csv", ".xlsx", ".xls"}

// AttachmentHandler 把邮件里的数据集附件保存到数据目录。
// 保存动作会被目录监控捕获并触发质量分析。
type AttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex
}

func NewAttachmentHandler(subject, dataDir string) *AttachmentHandler {
	return &AttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

// isProcessed 检查邮件是否已处理过（线程安全）
func (h *AttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *AttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 处理单个邮件，返回保存成功的附件路径
func (h *AttachmentHandler) Handle(email *Email) ([]string, error) {
	if email == nil || h.isProcessed(email.UID) {
		return nil, nil
	}

	if h.TargetSubject != "" && !strings.Contains(email.Subject, h.TargetSubject) {
		return nil, nil
	}

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	var saved []string
	for _, attachment := range email.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if !utils.Contains(datasetExts, ext) {
			continue
		}

		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件失败: %w", err)
		}
		saved = append(saved, filePath)
	}

	if len(saved) > 0 {
		h.markAsProcessed(email.UID)
	}

	return saved, nil
}
