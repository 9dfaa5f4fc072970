package notification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"project-tracker/internal/pkg/config"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotifyWelcome        NotificationType = "welcome"         // 新项目登记
	NotifyContactChanged NotificationType = "contact_changed" // 联系方式变更
	NotifyLogUpdate      NotificationType = "log_update"      // 进度日志
)

// NotificationMessage 通知消息
type NotificationMessage struct {
	Type      NotificationType       `json:"type"`
	To        string                 `json:"to"` // 62 开头的手机号
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// Notifier 通知器接口
type Notifier interface {
	// Send 发送通知, 超时由 ctx 控制
	Send(ctx context.Context, msg *NotificationMessage) error
	// Name 渠道名称, 用于日志与指标
	Name() string
}

// NewNotifier 按配置创建通知器
func NewNotifier(cfg *config.NotificationConfig, logger *zap.Logger) Notifier {
	if !cfg.Enabled {
		return NewLogNotifier(logger)
	}
	switch cfg.Provider {
	case "fonnte", "whatsapp":
		return NewWhatsAppNotifier(cfg.APIURL, cfg.APIKey, cfg.Timeout(), logger)
	}
	return NewLogNotifier(logger)
}

// ============= WhatsApp(Fonnte) 通知适配器 =============

// WhatsAppNotifier 通过 Fonnte 网关发送 WhatsApp 消息
type WhatsAppNotifier struct {
	apiURL string
	apiKey string
	logger *zap.Logger
	client *http.Client
}

// NewWhatsAppNotifier 创建 WhatsApp 通知器
func NewWhatsAppNotifier(apiURL, apiKey string, timeout time.Duration, logger *zap.Logger) *WhatsAppNotifier {
	if apiURL == "" {
		apiURL = config.DefaultFonnteURL
	}
	return &WhatsAppNotifier{
		apiURL: apiURL,
		apiKey: apiKey,
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (n *WhatsAppNotifier) Name() string {
	return "fonnte"
}

// Send 发送通知
func (n *WhatsAppNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	if n.apiKey == "" {
		return fmt.Errorf("FONNTE_API_KEY 未配置")
	}

	form := url.Values{}
	form.Set("target", msg.To)
	form.Set("message", msg.Content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", n.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Fonnte API返回错误状态码: %d, body: %s", resp.StatusCode, string(body))
	}

	n.logger.Info("WhatsApp通知发送成功",
		zap.String("type", string(msg.Type)),
		zap.String("to", msg.To))
	return nil
}

// ============= 多渠道通知器 =============

// MultiNotifier 依次发送到所有通知器
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多渠道通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

func (m *MultiNotifier) Name() string {
	names := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		names = append(names, n.Name())
	}
	return strings.Join(names, "+")
}

// Send 发送到所有通知器, 返回最后一个错误
func (m *MultiNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("发送通知失败", zap.String("notifier", notifier.Name()), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器(仅记录日志,不发送实际通知) =============

// LogNotifier 日志通知器
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

func (n *LogNotifier) Name() string {
	return "log"
}

// Send 记录通知到日志
func (n *LogNotifier) Send(_ context.Context, msg *NotificationMessage) error {
	n.logger.Info("📢 通知",
		zap.String("type", string(msg.Type)),
		zap.String("to", msg.To),
		zap.String("content", msg.Content),
		zap.Any("extra", msg.Extra))
	return nil
}
