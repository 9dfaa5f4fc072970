package notification

import (
	"fmt"
	"strings"
	"time"

	"project-tracker/internal/model"
	"project-tracker/pkg/constants"
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Composer 生成客户消息文本
type Composer struct {
	Brand     string
	Signature string
	PublicURL string
}

// MagicLink 客户跟踪链接
func (c Composer) MagicLink(token string) string {
	return strings.TrimRight(c.PublicURL, "/") + "/track/" + token
}

// Welcome 新项目登记消息
func (c Composer) Welcome(p *model.Project) *NotificationMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo, *%s*! 👋\n\n", p.ClientName)
	fmt.Fprintf(&b, "Selamat! Proyek Anda telah terdaftar di sistem *%s*.\n", c.Brand)
	b.WriteString("Kami siap membantu mewujudkan ide digital Anda. 🚀\n\n")
	b.WriteString("📋 *Detail Proyek:*\n")
	fmt.Fprintf(&b, "Nama Proyek: *%s*\n", p.ProjectName)
	fmt.Fprintf(&b, "Deadline: %s\n\n", formatDate(time.Time(p.Deadline)))
	b.WriteString("🔗 *Pantau Progres:*\n")
	b.WriteString("Silakan klik tautan berikut untuk melihat update pengerjaan secara real-time:\n")
	fmt.Fprintf(&b, "%s\n\n", c.MagicLink(p.AccessToken))
	b.WriteString("Simpan pesan ini untuk kemudahan akses di masa mendatang.\n\n")
	c.sign(&b)
	return c.message(NotifyWelcome, p, b.String())
}

// ContactChanged 联系方式变更消息
func (c Composer) ContactChanged(p *model.Project) *NotificationMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Halo, *%s*! 👋\n\n", p.ClientName)
	fmt.Fprintf(&b, "Informasi kontak Anda telah berhasil diperbarui di sistem *%s*.\n\n", c.Brand)
	b.WriteString("🔗 *Akses Proyek Anda:*\n")
	b.WriteString("Gunakan tautan berikut untuk tetap memantau progres proyek Anda:\n")
	fmt.Fprintf(&b, "%s\n\n", c.MagicLink(p.AccessToken))
	b.WriteString("Jika Anda tidak merasa melakukan perubahan ini, silakan hubungi kami segera.\n\n")
	c.sign(&b)
	return c.message(NotifyContactChanged, p, b.String())
}

// LogUpdate 进度日志消息, 说明优先取图文描述
func (c Composer) LogUpdate(p *model.Project, title string, percentage int, workPhase constants.WorkPhase, narrative, description string) *NotificationMessage {
	detail := strings.TrimSpace(narrative)
	if detail == "" {
		detail = strings.TrimSpace(description)
	}
	if detail == "" {
		detail = "-"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Halo, *%s*! 👋\n\n", p.ClientName)
	b.WriteString("Ada update terbaru mengenai progres proyek Anda:\n")
	fmt.Fprintf(&b, "🔹 *%s*\n\n", p.ProjectName)
	fmt.Fprintf(&b, "📌 *Update:* %s\n", title)
	fmt.Fprintf(&b, "📊 *Progress:* %d%% (%s)\n\n", percentage, workPhase.Label())
	b.WriteString("📝 *Keterangan:*\n")
	fmt.Fprintf(&b, "%s\n\n", detail)
	b.WriteString("🔗 *Lihat Detail:*\n")
	fmt.Fprintf(&b, "%s\n\n", c.MagicLink(p.AccessToken))
	b.WriteString("Terima kasih atas kepercayaan Anda.\n\n")
	c.sign(&b)

	msg := c.message(NotifyLogUpdate, p, b.String())
	msg.Extra["percentage"] = percentage
	msg.Extra["work_phase"] = string(workPhase)
	return msg
}

func (c Composer) sign(b *strings.Builder) {
	b.WriteString("Salam,\n")
	fmt.Fprintf(b, "*%s*", c.Signature)
}

func (c Composer) message(t NotificationType, p *model.Project, content string) *NotificationMessage {
	return &NotificationMessage{
		Type:      t,
		To:        p.ClientPhone,
		Content:   content,
		Timestamp: time.Now(),
		Extra:     map[string]interface{}{"project_id": p.ID},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}
