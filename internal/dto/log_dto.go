package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/lo"

	"project-tracker/internal/model"
)

// PercentageValue 进度原始值, 兼容 JSON 数字与字符串
type PercentageValue struct {
	Raw string
	Set bool
}

func (p *PercentageValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = PercentageValue{}
		return nil
	}
	p.Set = true
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Raw = s
		return nil
	}
	p.Raw = string(data)
	return nil
}

// LinkInput 提交的链接
type LinkInput struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// CreateLogRequest 创建进度日志, 支持 JSON 与 multipart
type CreateLogRequest struct {
	Title             string          `json:"title" form:"title" binding:"required,max=200"`
	Description       string          `json:"description" form:"description" binding:"required"`
	Percentage        PercentageValue `json:"percentage" form:"-"`
	SendNotification  bool            `json:"sendNotification" form:"sendNotification"`
	WorkPhase         string          `json:"workPhase" form:"workPhase" binding:"omitempty,work_phase"`
	VisualDescription string          `json:"visualDescription" form:"visualDescription"`
	Phase             string          `json:"phase" form:"phase" binding:"omitempty,project_phase"`
	Links             []LinkInput     `json:"links" form:"-"`
}

// ParseLinks 解析 multipart 中的 links 字段, 非法 JSON 视为无链接
func ParseLinks(raw string) []LinkInput {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var links []LinkInput
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil
	}
	return links
}

// ImageResponse 进度图片
type ImageResponse struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	MimeType  string `json:"mimeType"`
	SortOrder int    `json:"sortOrder"`
}

// LinkResponse 进度链接
type LinkResponse struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ProgressUpdateResponse 图文进度说明
type ProgressUpdateResponse struct {
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	Phase       string           `json:"phase"`
	CreatedAt   time.Time        `json:"createdAt"`
	Images      []*ImageResponse `json:"images"`
	Links       []*LinkResponse  `json:"links"`
}

// LogResponse 进度日志
type LogResponse struct {
	ID             int64                   `json:"id"`
	Title          string                  `json:"title"`
	Description    string                  `json:"description"`
	Percentage     int                     `json:"percentage"`
	Phase          string                  `json:"phase"`
	CreatedAt      time.Time               `json:"createdAt"`
	ProgressUpdate *ProgressUpdateResponse `json:"progressUpdate"`
}

func ToProgressUpdateResponse(u *model.ProgressUpdate) *ProgressUpdateResponse {
	if u == nil {
		return nil
	}
	return &ProgressUpdateResponse{
		ID:          u.ID,
		Description: u.Description,
		Phase:       string(u.Phase),
		CreatedAt:   u.CreatedAt,
		Images: lo.Map(u.Images, func(img model.ProgressUpdateImage, _ int) *ImageResponse {
			return &ImageResponse{
				ID:        img.ID,
				URL:       img.FileURL,
				FileName:  img.FileName,
				MimeType:  img.MimeType,
				SortOrder: img.SortOrder,
			}
		}),
		Links: lo.Map(u.Links, func(l model.ProgressUpdateLink, _ int) *LinkResponse {
			return &LinkResponse{ID: l.ID, Label: l.Label, URL: l.URL}
		}),
	}
}

func ToLogResponse(l *model.ProjectLog) *LogResponse {
	return &LogResponse{
		ID:             l.ID,
		Title:          l.Title,
		Description:    l.Description,
		Percentage:     l.Percentage,
		Phase:          string(l.Phase),
		CreatedAt:      l.CreatedAt,
		ProgressUpdate: ToProgressUpdateResponse(l.ProgressUpdate),
	}
}

func ToLogResponses(logs []*model.ProjectLog) []*LogResponse {
	return lo.Map(logs, func(l *model.ProjectLog, _ int) *LogResponse {
		return ToLogResponse(l)
	})
}
