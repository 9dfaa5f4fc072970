package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/core/phase"
	"project-tracker/internal/metrics"
	"project-tracker/internal/model"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
	pkgErrors "project-tracker/pkg/errors"
)

const defaultMaxRetries = 3

var errVersionConflict = errors.New("project version conflict")

// Submission 一次进度日志提交
type Submission struct {
	Title          string
	Description    string
	Percentage     string // 原始输入, 由 ParseProgressValue 解析
	WorkPhase      constants.WorkPhase
	Narrative      string
	NarrativePhase constants.ProjectPhase
	Links          []Link
	Images         []storage.Upload
	Notify         bool
}

// CacheInvalidator 提交成功后失效客户跟踪页缓存
type CacheInvalidator interface {
	Invalidate(ctx context.Context, token string)
}

// Pipeline 进度日志流水线: 暂存媒体 -> 事务提交 -> 异步通知
type Pipeline struct {
	db         *gorm.DB
	projects   repository.ProjectRepository
	logs       repository.LogRepository
	updates    repository.ProgressUpdateRepository
	stager     *storage.MediaStager
	dispatcher *notification.Dispatcher
	composer   notification.Composer
	cache      CacheInvalidator
	maxRetries int
	logger     *zap.Logger
	now        func() time.Time

	// afterLoad 事务内读取项目后调用, 仅测试使用
	afterLoad func(tx *gorm.DB, attempt int)
}

// NewPipeline 创建流水线, dispatcher 与 cache 可为 nil
func NewPipeline(db *gorm.DB, stager *storage.MediaStager, dispatcher *notification.Dispatcher, composer notification.Composer, cache CacheInvalidator, maxRetries int, logger *zap.Logger) *Pipeline {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Pipeline{
		db:         db,
		projects:   repository.NewProjectRepository(db),
		logs:       repository.NewLogRepository(db),
		updates:    repository.NewProgressUpdateRepository(db),
		stager:     stager,
		dispatcher: dispatcher,
		composer:   composer,
		cache:      cache,
		maxRetries: maxRetries,
		logger:     logger,
		now:        time.Now,
	}
}

// commitResult 事务提交结果
type commitResult struct {
	log          *model.ProjectLog
	project      *model.Project
	transitioned bool
}

// SubmitLog 提交进度日志, 返回带图文说明的日志
func (p *Pipeline) SubmitLog(ctx context.Context, projectID int64, sub *Submission) (*model.ProjectLog, error) {
	workPhase := sub.WorkPhase
	if workPhase == "" {
		workPhase = constants.WorkPhaseDevelopment
	}
	log := p.logger.With(zap.Int64("project_id", projectID), zap.String("work_phase", string(workPhase)))

	if !workPhase.Valid() {
		metrics.RecordLogSubmission(string(workPhase), "invalid")
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "无效的工作阶段").WithReason(pkgErrors.ReasonValidation)
	}

	// 1. 读取项目
	project, err := p.projects.FindByID(ctx, projectID)
	if err != nil {
		metrics.RecordLogSubmission(string(workPhase), "not_found")
		return nil, err
	}

	// 2. 校验进度
	percentage, err := phase.ParseProgressValue(sub.Percentage)
	if err != nil {
		metrics.RecordLogSubmission(string(workPhase), "invalid")
		return nil, pkgErrors.WrapAs(pkgErrors.ErrInvalidPercentage, err)
	}

	// 3. 以持久化状态做阶段门禁
	if !phase.IsPhaseUnlocked(workPhase, project.DevelopmentProgress) {
		metrics.RecordLogSubmission(string(workPhase), "phase_locked")
		log.Info("维护阶段未解锁, 拒绝提交", zap.Int("development_progress", project.DevelopmentProgress))
		return nil, pkgErrors.ErrPhaseLocked
	}

	// 4. 事务前暂存媒体
	var staged []storage.StagedMedia
	if len(sub.Images) > 0 {
		if len(sub.Images) > constants.MaxLogImages {
			metrics.RecordLogSubmission(string(workPhase), "invalid")
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "图片数量超过上限").WithReason(pkgErrors.ReasonValidation)
		}
		staged, err = p.stager.StageImages(ctx, projectID, sub.Images)
		if err != nil {
			metrics.RecordLogSubmission(string(workPhase), "upload_failed")
			log.Error("媒体暂存失败", zap.Error(err))
			return nil, err
		}
	}

	// 5. 过滤链接
	links := NormalizeLinks(sub.Links, constants.DefaultLinkLabel)

	// 6. 事务提交
	result, err := p.commit(ctx, projectID, workPhase, percentage, sub, staged, links)
	if err != nil {
		outcome := "persistence_failed"
		if errors.Is(err, pkgErrors.ErrPhaseLocked) {
			outcome = "phase_locked"
		} else if errors.Is(err, pkgErrors.ErrProjectNotFound) {
			outcome = "not_found"
		}
		metrics.RecordLogSubmission(string(workPhase), outcome)
		if len(staged) > 0 {
			log.Warn("事务失败, 已暂存的媒体将由定时任务清理",
				zap.Strings("keys", stagedKeys(staged)), zap.Error(err))
		} else {
			log.Warn("进度日志提交失败", zap.Error(err))
		}
		return nil, err
	}

	metrics.RecordLogSubmission(string(workPhase), "created")
	if result.transitioned {
		metrics.RecordPhaseTransition("auto")
		log.Info("开发阶段完成, 自动进入维护阶段")
	}
	log.Info("进度日志已提交",
		zap.Int64("log_id", result.log.ID),
		zap.Int("percentage", percentage),
		zap.Int("images", len(staged)),
		zap.Int("links", len(links)))

	// 7. 提交后通知, 失败不影响结果
	if sub.Notify && result.project.ClientPhone != "" && p.dispatcher != nil {
		msg := p.composer.LogUpdate(result.project, sub.Title, percentage, workPhase, sub.Narrative, sub.Description)
		p.dispatcher.Dispatch(msg)
	}

	if p.cache != nil {
		p.cache.Invalidate(ctx, result.project.AccessToken)
	}

	return result.log, nil
}

// commit 在事务内重新读取项目并推进状态, 版本冲突时整体重试
func (p *Pipeline) commit(ctx context.Context, projectID int64, workPhase constants.WorkPhase, percentage int, sub *Submission, staged []storage.StagedMedia, links []Link) (*commitResult, error) {
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		var result *commitResult
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			projects := p.projects.WithTx(tx)
			current, err := projects.FindByID(ctx, projectID)
			if err != nil {
				return err
			}
			if p.afterLoad != nil {
				p.afterLoad(tx, attempt)
			}

			now := p.now()
			out, err := phase.Advance(phase.FromProject(current), phase.Entry{WorkPhase: workPhase, Percentage: percentage}, now)
			if err != nil {
				return err
			}

			update := buildProgressUpdate(projectID, sub, staged, links)
			if update != nil {
				if err := p.updates.WithTx(tx).Create(ctx, update); err != nil {
					return err
				}
			}

			entry := &model.ProjectLog{
				ProjectID:   projectID,
				Title:       sub.Title,
				Description: sub.Description,
				Percentage:  percentage,
				Phase:       workPhase,
			}
			if update != nil {
				entry.ProgressUpdateID = &update.ID
			}
			if err := p.logs.WithTx(tx).Create(ctx, entry); err != nil {
				return err
			}

			expected := current.Version
			phase.ApplyTo(current, out.Next)
			current.Status = out.Status
			current.UpdatedAt = now
			rows, err := projects.UpdateState(ctx, current, expected)
			if err != nil {
				return err
			}
			if rows == 0 {
				return errVersionConflict
			}

			entry.ProgressUpdate = update
			result = &commitResult{log: entry, project: current, transitioned: out.Transitioned}
			return nil
		})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, classify(err)
		}
		lastErr = err
		metrics.CommitRetries.Inc()
		p.logger.Warn("项目版本冲突, 重试提交",
			zap.Int64("project_id", projectID),
			zap.Int("attempt", attempt))
	}
	return nil, pkgErrors.WrapAs(pkgErrors.ErrPersistenceFailed, lastErr)
}

// classify 业务拒绝原样返回, 其余一律视为持久化失败
func classify(err error) error {
	for _, known := range []error{
		pkgErrors.ErrPhaseLocked,
		pkgErrors.ErrProjectNotFound,
		pkgErrors.ErrOutOfRange,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return pkgErrors.WrapAs(pkgErrors.ErrPersistenceFailed, err)
}

// buildProgressUpdate 没有叙述/图片/链接时返回 nil
func buildProgressUpdate(projectID int64, sub *Submission, staged []storage.StagedMedia, links []Link) *model.ProgressUpdate {
	narrative := strings.TrimSpace(sub.Narrative)
	if narrative == "" && len(staged) == 0 && len(links) == 0 {
		return nil
	}

	description := narrative
	if description == "" {
		description = strings.TrimSpace(sub.Description)
	}
	narrativePhase := sub.NarrativePhase
	if narrativePhase == "" {
		narrativePhase = constants.ProjectPhaseDevelopment
	}

	update := &model.ProgressUpdate{
		ProjectID:   projectID,
		Description: description,
		Phase:       narrativePhase,
	}
	for _, m := range staged {
		update.Images = append(update.Images, model.ProgressUpdateImage{
			FileURL:   m.URL,
			ObjectKey: m.Key,
			FileName:  m.FileName,
			MimeType:  m.MimeType,
			FileSize:  m.Size,
			SortOrder: m.SortOrder,
		})
	}
	for _, l := range links {
		update.Links = append(update.Links, model.ProgressUpdateLink{Label: l.Label, URL: l.URL})
	}
	return update
}

func stagedKeys(staged []storage.StagedMedia) []string {
	return lo.Map(staged, func(m storage.StagedMedia, _ int) string { return m.Key })
}
