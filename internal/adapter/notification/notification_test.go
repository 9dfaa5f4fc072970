package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"project-tracker/internal/model"
	"project-tracker/pkg/constants"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, msg *NotificationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockNotifier) Name() string { return "mock" }

func TestWhatsAppNotifier_Send(t *testing.T) {
	var gotAuth, gotTarget, gotMessage, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotTarget = r.PostForm.Get("target")
		gotMessage = r.PostForm.Get("message")
		_, _ = w.Write([]byte(`{"status":true}`))
	}))
	defer srv.Close()

	n := NewWhatsAppNotifier(srv.URL, "secret-key", time.Second, zap.NewNop())
	err := n.Send(context.Background(), &NotificationMessage{To: "628123456789", Content: "halo"})
	require.NoError(t, err)

	assert.Equal(t, "secret-key", gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "628123456789", gotTarget)
	assert.Equal(t, "halo", gotMessage)
}

func TestWhatsAppNotifier_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWhatsAppNotifier(srv.URL, "k", time.Second, zap.NewNop())
	err := n.Send(context.Background(), &NotificationMessage{To: "62811", Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWhatsAppNotifier_MissingKey(t *testing.T) {
	n := NewWhatsAppNotifier("", "", time.Second, zap.NewNop())
	assert.Error(t, n.Send(context.Background(), &NotificationMessage{To: "62811"}))
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	m := &mockNotifier{}
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("gateway down")).Once()

	d := NewDispatcher(m, time.Second, zap.NewNop())
	d.Dispatch(&NotificationMessage{To: "62811", Content: "x"})
	d.Wait()

	m.AssertExpectations(t)
}

func TestDispatcher_UsesOwnTimeout(t *testing.T) {
	var deadlineSeen atomic.Bool
	m := &mockNotifier{}
	m.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		deadlineSeen.Store(ok)
		<-ctx.Done()
	}).Return(context.DeadlineExceeded)

	d := NewDispatcher(m, 50*time.Millisecond, zap.NewNop())
	start := time.Now()
	d.Dispatch(&NotificationMessage{To: "62811"})
	d.Wait()

	assert.True(t, deadlineSeen.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_SendNowReturnsError(t *testing.T) {
	m := &mockNotifier{}
	m.On("Send", mock.Anything, mock.Anything).Return(errors.New("boom"))
	d := NewDispatcher(m, time.Second, zap.NewNop())
	assert.Error(t, d.SendNow(context.Background(), &NotificationMessage{To: "62811"}))
}

func TestComposer_LogUpdate(t *testing.T) {
	c := Composer{Brand: "PAM Techno", Signature: "PAM Techno Team", PublicURL: "https://track.example/"}
	p := &model.Project{ClientName: "Budi", ClientPhone: "628111", ProjectName: "POS System", AccessToken: "tok-1"}

	msg := c.LogUpdate(p, "Checkout flow", 65, constants.WorkPhaseDevelopment, "", "Integrasi payment")
	assert.Equal(t, NotifyLogUpdate, msg.Type)
	assert.Equal(t, "628111", msg.To)
	assert.Contains(t, msg.Content, "Halo, *Budi*!")
	assert.Contains(t, msg.Content, "*Update:* Checkout flow")
	assert.Contains(t, msg.Content, "*Progress:* 65% (Development)")
	assert.Contains(t, msg.Content, "Integrasi payment")
	assert.Contains(t, msg.Content, "https://track.example/track/tok-1")
	assert.True(t, strings.HasSuffix(msg.Content, "*PAM Techno Team*"))

	msg = c.LogUpdate(p, "Patch", 10, constants.WorkPhaseMaintenance, "  Visual note ", "ignored")
	assert.Contains(t, msg.Content, "(Maintenance)")
	assert.Contains(t, msg.Content, "Visual note\n")
	assert.NotContains(t, msg.Content, "ignored")
}

func TestComposer_Welcome(t *testing.T) {
	c := Composer{Brand: "PAM Techno", Signature: "PAM Techno Team", PublicURL: "https://track.example"}
	p := &model.Project{
		ClientName:  "Sari",
		ProjectName: "Landing Page",
		AccessToken: "abc",
		Deadline:    datatypes.Date(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	msg := c.Welcome(p)
	assert.Contains(t, msg.Content, "Deadline: 2 Maret 2025")
	assert.Contains(t, msg.Content, "https://track.example/track/abc")
	assert.Contains(t, c.ContactChanged(p).Content, "Informasi kontak Anda")
}
