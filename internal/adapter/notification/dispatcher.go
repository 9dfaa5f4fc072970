package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"project-tracker/internal/metrics"
)

// Dispatcher 异步发送通知, 失败只记录日志, 不影响调用方
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher 创建分发器
func NewDispatcher(notifier Notifier, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch 在独立 goroutine 中发送, 使用自己的超时而不是请求的 ctx
func (d *Dispatcher) Dispatch(msg *NotificationMessage) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("发送通知 panic", zap.Any("recover", r), zap.String("to", msg.To))
			}
		}()
		_ = d.send(context.Background(), msg)
	}()
}

// SendNow 同步发送并返回结果, 用于需要把发送状态回传给调用方的场景
func (d *Dispatcher) SendNow(ctx context.Context, msg *NotificationMessage) error {
	return d.send(ctx, msg)
}

// Wait 等待所有在途通知结束
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(parent context.Context, msg *NotificationMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	if err := d.notifier.Send(ctx, msg); err != nil {
		metrics.RecordNotification(d.notifier.Name(), "failed")
		d.logger.Error("客户通知发送失败",
			zap.String("type", string(msg.Type)),
			zap.String("to", msg.To),
			zap.Error(err))
		return err
	}
	metrics.RecordNotification(d.notifier.Name(), "success")
	return nil
}
