package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/database/dbtest"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

type stubNotifier struct {
	mu   sync.Mutex
	msgs []*notification.NotificationMessage
	err  error
}

func (n *stubNotifier) Send(_ context.Context, msg *notification.NotificationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

func (n *stubNotifier) Name() string { return "stub" }

func (n *stubNotifier) sent() []*notification.NotificationMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*notification.NotificationMessage(nil), n.msgs...)
}

type stubCache struct {
	tokens []string
}

func (c *stubCache) Invalidate(_ context.Context, token string) {
	c.tokens = append(c.tokens, token)
}

type env struct {
	db       *gorm.DB
	store    *storage.MemoryStore
	stager   *storage.MediaStager
	notifier *stubNotifier
	cache    *stubCache
	projects ProjectService
	logs     LogService
	updates  ProgressUpdateService
	pipeline *pipeline.Pipeline
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	store := storage.NewMemoryStore("http://cdn.test")
	stager := storage.NewMediaStager(store, zap.NewNop())
	notifier := &stubNotifier{}
	dispatcher := notification.NewDispatcher(notifier, time.Second, zap.NewNop())
	composer := notification.Composer{PublicURL: "http://track.test", Signature: "Team", Brand: "Brand"}
	cache := &stubCache{}
	p := pipeline.NewPipeline(db, stager, dispatcher, composer, cache, 3, zap.NewNop())

	return &env{
		db:       db,
		store:    store,
		stager:   stager,
		notifier: notifier,
		cache:    cache,
		projects: NewProjectService(db, stager, dispatcher, composer, cache, zap.NewNop()),
		logs:     NewLogService(p, repository.NewProjectRepository(db), repository.NewLogRepository(db)),
		updates:  NewProgressUpdateService(db, stager, cache, zap.NewNop()),
		pipeline: p,
	}
}

func (e *env) createProject(t *testing.T) *dto.ProjectResponse {
	t.Helper()
	resp, err := e.projects.Create(context.Background(), &dto.CreateProjectRequest{
		ClientName:  "Siti",
		ClientPhone: "0812-3456-7890",
		ProjectName: "Toko Online",
		Deadline:    "2025-03-02",
	})
	require.NoError(t, err)
	return resp.Project
}

func TestProjectService_CreateNormalizesAndWelcomes(t *testing.T) {
	e := newEnv(t)
	resp, err := e.projects.Create(context.Background(), &dto.CreateProjectRequest{
		ClientName:  "Siti",
		ClientPhone: "+62 812 3456 7890",
		ProjectName: "Toko Online",
		Deadline:    "2025-03-02",
	})
	require.NoError(t, err)

	p := resp.Project
	assert.Equal(t, "6281234567890", p.ClientPhone)
	assert.Equal(t, "2025-03-02", p.Deadline)
	assert.Equal(t, string(constants.WorkPhaseDevelopment), p.CurrentPhase)
	assert.Equal(t, string(constants.ProjectStatusOnProgress), p.Status)
	assert.Zero(t, p.DevelopmentProgress)
	assert.Len(t, p.AccessToken, 36)

	require.NotNil(t, resp.WhatsApp)
	assert.True(t, resp.WhatsApp.Sent)
	msgs := e.notifier.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, notification.NotifyWelcome, msgs[0].Type)
	assert.Contains(t, msgs[0].Content, "http://track.test/track/"+p.AccessToken)
}

func TestProjectService_CreateRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	_, err := e.projects.Create(context.Background(), &dto.CreateProjectRequest{
		ClientName: "A", ClientPhone: "12", ProjectName: "P", Deadline: "2025-03-02",
	})
	assert.ErrorIs(t, err, pkgErrors.ErrBadRequest)

	_, err = e.projects.Create(context.Background(), &dto.CreateProjectRequest{
		ClientName: "A", ClientPhone: "081234567890", ProjectName: "P", Deadline: "02/03/2025",
	})
	assert.ErrorIs(t, err, pkgErrors.ErrBadRequest)
}

func TestProjectService_CreateReportsNotificationFailure(t *testing.T) {
	e := newEnv(t)
	e.notifier.err = errors.New("quota exceeded")

	resp, err := e.projects.Create(context.Background(), &dto.CreateProjectRequest{
		ClientName: "Siti", ClientPhone: "081234567890", ProjectName: "P", Deadline: "2025-03-02",
	})
	require.NoError(t, err)
	assert.False(t, resp.WhatsApp.Sent)
	assert.Contains(t, resp.WhatsApp.Error, "quota exceeded")
}

func TestProjectService_UpdateNeverTouchesPhase(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	_, err := e.logs.Submit(context.Background(), p.ID, &pipeline.Submission{
		Title: "t", Description: "d", Percentage: "100", WorkPhase: constants.WorkPhaseDevelopment,
	})
	require.NoError(t, err)

	newName := "Toko Online v2"
	resp, err := e.projects.Update(context.Background(), p.ID, &dto.UpdateProjectRequest{ProjectName: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, resp.Project.ProjectName)
	assert.Equal(t, string(constants.WorkPhaseMaintenance), resp.Project.CurrentPhase)
	assert.Equal(t, 100, resp.Project.DevelopmentProgress)
	assert.NotNil(t, resp.Project.DevelopmentCompletedAt)
	assert.Nil(t, resp.WhatsApp)
	assert.Contains(t, e.cache.tokens, p.AccessToken)
}

func TestProjectService_UpdatePhoneNotifiesNewNumber(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	phone := "0899 1111 2222"
	resp, err := e.projects.Update(context.Background(), p.ID, &dto.UpdateProjectRequest{
		ClientPhone:                &phone,
		SendNotificationToNewPhone: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "6289911112222", resp.Project.ClientPhone)
	require.NotNil(t, resp.WhatsApp)
	assert.True(t, resp.WhatsApp.Sent)

	msgs := e.notifier.sent()
	require.Len(t, msgs, 2)
	assert.Equal(t, notification.NotifyContactChanged, msgs[1].Type)
	assert.Equal(t, "6289911112222", msgs[1].To)

	// 号码未变化时不发送
	same := "6289911112222"
	resp, err = e.projects.Update(context.Background(), p.ID, &dto.UpdateProjectRequest{
		ClientPhone:                &same,
		SendNotificationToNewPhone: true,
	})
	require.NoError(t, err)
	assert.Nil(t, resp.WhatsApp)
	assert.Len(t, e.notifier.sent(), 2)
}

func TestProjectService_GetAndListDeriveFields(t *testing.T) {
	e := newEnv(t)
	first := e.createProject(t)
	second := e.createProject(t)

	ctx := context.Background()
	_, err := e.logs.Submit(ctx, first.ID, &pipeline.Submission{Title: "a", Description: "d", Percentage: "100"})
	require.NoError(t, err)
	_, err = e.logs.Submit(ctx, first.ID, &pipeline.Submission{Title: "b", Description: "d", Percentage: "50", WorkPhase: constants.WorkPhaseMaintenance})
	require.NoError(t, err)

	got, err := e.projects.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, got.OverallProgress)
	assert.Equal(t, string(constants.ProjectStatusOnProgress), got.Status)
	require.NotNil(t, got.LatestPercentage)
	assert.Equal(t, 50, *got.LatestPercentage)

	list, err := e.projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Nil(t, list[0].LatestPercentage)

	_, err = e.projects.Get(ctx, 404)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
}

func TestProjectService_DeleteCascades(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	ctx := context.Background()

	_, err := e.logs.Submit(ctx, p.ID, &pipeline.Submission{
		Title: "t", Description: "d", Percentage: "10", Narrative: "n",
		Images: []storage.Upload{storage.BytesUpload("a.png", "image/png", []byte("a"))},
		Links:  []pipeline.Link{{Label: "x", URL: "https://x.example"}},
	})
	require.NoError(t, err)
	require.NoError(t, e.db.Create(&model.ClientFeedback{ProjectID: p.ID, Message: "ok"}).Error)
	require.NoError(t, e.db.Create(&model.DiscussionArtifact{ProjectID: p.ID, Title: "a", Phase: constants.ProjectPhaseDesign}).Error)
	require.Equal(t, 1, e.store.Len())

	require.NoError(t, e.projects.Delete(ctx, p.ID))

	for _, m := range []interface{}{&model.Project{}, &model.ProjectLog{}, &model.ProgressUpdate{}, &model.ProgressUpdateImage{},
		&model.ProgressUpdateLink{}, &model.ClientFeedback{}, &model.DiscussionArtifact{}} {
		var n int64
		require.NoError(t, e.db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
	assert.Zero(t, e.store.Len())
	assert.ErrorIs(t, e.projects.Delete(ctx, p.ID), pkgErrors.ErrProjectNotFound)
}

func TestProjectService_ChangePhase(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	ctx := context.Background()

	_, err := e.projects.ChangePhase(ctx, p.ID, constants.WorkPhaseMaintenance)
	assert.ErrorIs(t, err, pkgErrors.ErrIncompleteDevelopment)

	_, err = e.projects.ChangePhase(ctx, p.ID, constants.WorkPhaseDevelopment)
	assert.ErrorIs(t, err, pkgErrors.ErrSamePhase)

	require.NoError(t, e.db.Model(&model.Project{}).Where("id = ?", p.ID).Update("development_progress", 100).Error)
	resp, err := e.projects.ChangePhase(ctx, p.ID, constants.WorkPhaseMaintenance)
	require.NoError(t, err)
	assert.Equal(t, string(constants.WorkPhaseMaintenance), resp.CurrentPhase)
	assert.NotNil(t, resp.DevelopmentCompletedAt)

	_, err = e.projects.ChangePhase(ctx, p.ID, constants.WorkPhaseDevelopment)
	assert.ErrorIs(t, err, pkgErrors.ErrCannotRevert)
}

func TestLogService_ListNewestFirst(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	ctx := context.Background()

	for _, pct := range []string{"10", "20", "30"} {
		_, err := e.logs.Submit(ctx, p.ID, &pipeline.Submission{Title: "t" + pct, Description: "d", Percentage: pct})
		require.NoError(t, err)
	}

	logs, err := e.logs.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, []int{30, 20, 10}, []int{logs[0].Percentage, logs[1].Percentage, logs[2].Percentage})
	assert.Nil(t, logs[0].ProgressUpdate)

	_, err = e.logs.List(ctx, 999)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectNotFound)
}

func TestProgressUpdateService_CreateAndDelete(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	ctx := context.Background()

	created, err := e.updates.Create(ctx, p.ID, &dto.CreateProgressUpdateRequest{
		Description: "Wireframe final",
		Phase:       string(constants.ProjectPhaseDesign),
		Links: []dto.LinkInput{
			{Label: "", URL: "https://no-label.example"},
			{Label: "Figma", URL: "https://figma.example"},
		},
	}, []storage.Upload{storage.BytesUpload("wf.png", "image/png", []byte("w"))})
	require.NoError(t, err)
	assert.Equal(t, string(constants.ProjectPhaseDesign), created.Phase)
	require.Len(t, created.Links, 1)
	assert.Equal(t, "Figma", created.Links[0].Label)
	require.Len(t, created.Images, 1)

	url, err := e.updates.ImageURL(ctx, p.ID, created.Images[0].ID)
	require.NoError(t, err)
	assert.Equal(t, created.Images[0].URL, url)

	_, err = e.updates.ImageURL(ctx, p.ID+1, created.Images[0].ID)
	assert.ErrorIs(t, err, pkgErrors.ErrNotFound)

	require.NoError(t, e.updates.Delete(ctx, p.ID, created.ID))
	list, err := e.updates.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, e.store.Len())
}

func TestProgressUpdateService_DeleteKeepsLog(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)
	ctx := context.Background()

	entry, err := e.logs.Submit(ctx, p.ID, &pipeline.Submission{Title: "t", Description: "d", Percentage: "40", Narrative: "detail"})
	require.NoError(t, err)
	require.NotNil(t, entry.ProgressUpdate)

	require.NoError(t, e.updates.Delete(ctx, p.ID, entry.ProgressUpdate.ID))

	logs, err := e.logs.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 40, logs[0].Percentage)
	assert.Nil(t, logs[0].ProgressUpdate)
}

func TestProgressUpdateService_Validation(t *testing.T) {
	e := newEnv(t)
	p := e.createProject(t)

	_, err := e.updates.Create(context.Background(), p.ID, &dto.CreateProgressUpdateRequest{Description: "   "}, nil)
	assert.ErrorIs(t, err, pkgErrors.ErrBadRequest)

	var images []storage.Upload
	for i := 0; i < constants.MaxLogImages+1; i++ {
		images = append(images, storage.BytesUpload("x.png", "image/png", []byte("x")))
	}
	_, err = e.updates.Create(context.Background(), p.ID, &dto.CreateProgressUpdateRequest{Description: "ok"}, images)
	assert.ErrorIs(t, err, pkgErrors.ErrBadRequest)
}
