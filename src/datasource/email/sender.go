// sender.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"DatasetQuality/src/config"
)

// SendReportSummary 把一次质量分析的文字摘要发给配置的收件人，
// attachmentPath非空时附带导出的离群行工作簿。
func SendReportSummary(c *config.Config, subject, body, attachmentPath string) error {
	from := c.SendEmail.Username
	password := c.SendEmail.Password

	e := email.NewEmail()
	e.From = fmt.Sprintf("Dataset Quality <%s>", from)
	e.To = []string{c.SendEmail.To}
	e.Subject = subject
	e.Text = []byte(body)

	if attachmentPath != "" {
		if _, err := os.Stat(attachmentPath); err == nil {
			if _, err := e.AttachFile(attachmentPath); err != nil {
				return fmt.Errorf("附件添加失败: %w", err)
			}
		}
	}

	// 确保服务器地址包含端口
	smtpAddr := c.SendEmail.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认 SSL 端口
	}
	host := strings.Split(smtpAddr, ":")[0]

	if err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", from, password, host),
		&tls.Config{ServerName: host},
	); err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, smtpAddr)
	}
	return nil
}
