package model

import "project-tracker/pkg/constants"

// DiscussionArtifact 讨论归档资料, 上传文件或外部链接二选一
type DiscussionArtifact struct {
	BaseModel
	ProjectID     int64                   `gorm:"not null;index" json:"project_id"`
	Title         string                  `gorm:"size:200;not null" json:"title"`
	Description   *string                 `gorm:"type:text" json:"description"`
	Phase         constants.ProjectPhase  `gorm:"size:20;not null" json:"phase"`
	Type          *constants.ArtifactType `gorm:"size:20" json:"type"`
	SourceLinkURL *string                 `gorm:"column:source_link_url;size:2048" json:"source_link_url"`
	FileURL       *string                 `gorm:"column:file_url;size:1024" json:"file_url"`
	ObjectKey     *string                 `gorm:"size:512" json:"-"`
	FileName      *string                 `gorm:"size:255" json:"file_name"`
	MimeType      *string                 `gorm:"size:100" json:"mime_type"`
	FileSize      *int64                  `json:"file_size"`
}

func (DiscussionArtifact) TableName() string {
	return "discussion_artifacts"
}

// HasFile 是否为上传文件类资料
func (a *DiscussionArtifact) HasFile() bool {
	return a.FileName != nil && a.FileURL != nil
}
