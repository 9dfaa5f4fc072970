package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/database/dbtest"
	"project-tracker/internal/service"
	"project-tracker/pkg/constants"
)

const sample = `
users:
  - username: admin
    password: admin123
    display_name: Administrator
projects:
  - client_name: Siti
    client_phone: "0812 3456 7890"
    project_name: Toko Online
    deadline: "2025-03-02"
    logs:
      - title: Kickoff
        description: Diskusi kebutuhan
        percentage: 20
      - title: Live
        description: Rilis
        percentage: 100
        narrative: Sudah online
        phase: LAUNCH
        links:
          - label: Situs
            url: https://toko.example
          - label: Bad
            url: ftp://nope
      - title: Bugfix
        description: Perbaikan
        percentage: 30
        work_phase: MAINTENANCE
`

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte("users:\n  - username: a\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("projects:\n  - project_name: p\n    logs:\n      - work_phase: LAUNCH\n"))
	assert.Error(t, err)

	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Projects, 1)
	assert.Equal(t, "https://toko.example", f.Projects[0].Logs[1].Links[0].URL)
}

func TestSeeder_ApplyIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	stager := storage.NewMediaStager(storage.NewMemoryStore("http://cdn.test"), zap.NewNop())
	composer := notification.Composer{}
	p := pipeline.NewPipeline(db, stager, nil, composer, nil, 3, zap.NewNop())
	projects := service.NewProjectService(db, stager, nil, composer, nil, zap.NewNop())
	seeder := NewSeeder(db, projects, p, zap.NewNop())

	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := seeder.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, &Result{UsersCreated: 1, ProjectsCreated: 1, LogsCreated: 3}, res)

	var project model.Project
	require.NoError(t, db.Where("project_name = ?", "Toko Online").First(&project).Error)
	assert.Equal(t, "6281234567890", project.ClientPhone)
	assert.Equal(t, constants.WorkPhaseMaintenance, project.CurrentPhase)
	assert.Equal(t, 100, project.DevelopmentProgress)
	assert.Equal(t, 30, project.MaintenanceProgress)
	assert.NotNil(t, project.DevelopmentCompletedAt)

	var links int64
	require.NoError(t, db.Model(&model.ProgressUpdateLink{}).Count(&links).Error)
	assert.Equal(t, int64(1), links)

	res, err = seeder.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Skipped: 2}, res)
}
