// Package seed 从 YAML 文件导入初始管理员与演示项目
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/dto"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/crypto"
	"project-tracker/internal/repository"
	"project-tracker/internal/service"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

// File 种子文件结构
type File struct {
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
}

type User struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Email       string `yaml:"email"`
	DisplayName string `yaml:"display_name"`
}

type Project struct {
	ClientName  string `yaml:"client_name"`
	ClientPhone string `yaml:"client_phone"`
	ProjectName string `yaml:"project_name"`
	Deadline    string `yaml:"deadline"` // YYYY-MM-DD
	Logs        []Log  `yaml:"logs"`
}

// Log 按顺序经流水线提交, 阶段自动切换与正式提交一致
type Log struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Percentage  int             `yaml:"percentage"`
	WorkPhase   string          `yaml:"work_phase"`
	Narrative   string          `yaml:"narrative"`
	Phase       string          `yaml:"phase"`
	Links       []pipeline.Link `yaml:"links"`
}

// Result 导入统计
type Result struct {
	UsersCreated    int
	ProjectsCreated int
	LogsCreated     int
	Skipped         int
}

// Load 读取并解析种子文件
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取种子文件失败: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}
	for i, u := range f.Users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("users[%d]: username 与 password 必填", i)
		}
	}
	for i, p := range f.Projects {
		if p.ProjectName == "" {
			return nil, fmt.Errorf("projects[%d]: project_name 必填", i)
		}
		for j, l := range p.Logs {
			if l.WorkPhase != "" && !constants.WorkPhase(l.WorkPhase).Valid() {
				return nil, fmt.Errorf("projects[%d].logs[%d]: 非法 work_phase %q", i, j, l.WorkPhase)
			}
		}
	}
	return &f, nil
}

// Seeder 幂等导入: 已存在的用户名与项目名跳过
type Seeder struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	service  service.ProjectService
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

func NewSeeder(db *gorm.DB, projectService service.ProjectService, p *pipeline.Pipeline, logger *zap.Logger) *Seeder {
	return &Seeder{
		users:    repository.NewUserRepository(db),
		projects: repository.NewProjectRepository(db),
		service:  projectService,
		pipeline: p,
		logger:   logger,
	}
}

func (s *Seeder) Apply(ctx context.Context, f *File) (*Result, error) {
	res := &Result{}

	for _, u := range f.Users {
		_, err := s.users.FindByUsername(ctx, u.Username)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return res, err
		}
		hash, err := crypto.HashPassword(u.Password)
		if err != nil {
			return res, err
		}
		user := &model.User{
			AuthProvider: constants.AuthTypeLocal,
			Username:     u.Username,
			Password:     hash,
			Email:        lo.EmptyableToPtr(u.Email),
			DisplayName:  lo.EmptyableToPtr(u.DisplayName),
			BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
		}
		if err := s.users.Create(ctx, user); err != nil {
			return res, err
		}
		res.UsersCreated++
		s.logger.Info("已创建管理员", zap.String("username", u.Username))
	}

	for _, p := range f.Projects {
		_, err := s.projects.FindByName(ctx, p.ProjectName)
		if err == nil {
			res.Skipped++
			continue
		}
		if !errors.Is(err, pkgErrors.ErrProjectNotFound) {
			return res, err
		}

		created, err := s.service.Create(ctx, &dto.CreateProjectRequest{
			ClientName:  p.ClientName,
			ClientPhone: p.ClientPhone,
			ProjectName: p.ProjectName,
			Deadline:    p.Deadline,
		})
		if err != nil {
			return res, fmt.Errorf("创建项目 %s 失败: %w", p.ProjectName, err)
		}
		res.ProjectsCreated++

		for _, l := range p.Logs {
			_, err := s.pipeline.SubmitLog(ctx, created.Project.ID, &pipeline.Submission{
				Title:          l.Title,
				Description:    l.Description,
				Percentage:     strconv.Itoa(l.Percentage),
				WorkPhase:      constants.WorkPhase(l.WorkPhase),
				Narrative:      l.Narrative,
				NarrativePhase: constants.ProjectPhase(l.Phase),
				Links:          l.Links,
			})
			if err != nil {
				return res, fmt.Errorf("导入项目 %s 日志 %q 失败: %w", p.ProjectName, l.Title, err)
			}
			res.LogsCreated++
		}
		s.logger.Info("已导入项目", zap.String("project_name", p.ProjectName), zap.Int("logs", len(p.Logs)))
	}

	return res, nil
}
