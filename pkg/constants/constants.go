package constants

import "github.com/samber/lo"

// WorkPhase 项目工作阶段, 只能 DEVELOPMENT -> MAINTENANCE
type WorkPhase string

const (
	WorkPhaseDevelopment WorkPhase = "DEVELOPMENT"
	WorkPhaseMaintenance WorkPhase = "MAINTENANCE"
)

// Label 展示名称
func (p WorkPhase) Label() string {
	switch p {
	case WorkPhaseDevelopment:
		return "Development"
	case WorkPhaseMaintenance:
		return "Maintenance"
	}
	return string(p)
}

// Valid 是否为合法工作阶段
func (p WorkPhase) Valid() bool {
	return p == WorkPhaseDevelopment || p == WorkPhaseMaintenance
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusOnProgress ProjectStatus = "ON_PROGRESS"
	ProjectStatusDone       ProjectStatus = "DONE"
)

// ProjectPhase 叙述/资料归档使用的阶段标签
type ProjectPhase string

const (
	ProjectPhaseDiscovery   ProjectPhase = "DISCOVERY"
	ProjectPhaseDesign      ProjectPhase = "DESIGN"
	ProjectPhaseDevelopment ProjectPhase = "DEVELOPMENT"
	ProjectPhaseQA          ProjectPhase = "QA"
	ProjectPhaseLaunch      ProjectPhase = "LAUNCH"
	ProjectPhaseMaintenance ProjectPhase = "MAINTENANCE"
)

// ProjectPhases 全部阶段标签, 按流程顺序
var ProjectPhases = []ProjectPhase{
	ProjectPhaseDiscovery,
	ProjectPhaseDesign,
	ProjectPhaseDevelopment,
	ProjectPhaseQA,
	ProjectPhaseLaunch,
	ProjectPhaseMaintenance,
}

// IsProjectPhase 判断阶段标签是否合法
func IsProjectPhase(v string) bool {
	return lo.Contains(ProjectPhases, ProjectPhase(v))
}

// ArtifactType 讨论资料类型
type ArtifactType string

const (
	ArtifactTypeWireframe    ArtifactType = "WIREFRAME"
	ArtifactTypeUserFlow     ArtifactType = "USER_FLOW"
	ArtifactTypeMeetingNotes ArtifactType = "MEETING_NOTES"
	ArtifactTypeOther        ArtifactType = "OTHER"
)

var ArtifactTypes = []ArtifactType{
	ArtifactTypeWireframe,
	ArtifactTypeUserFlow,
	ArtifactTypeMeetingNotes,
	ArtifactTypeOther,
}

// IsArtifactType 判断资料类型是否合法
func IsArtifactType(v string) bool {
	return lo.Contains(ArtifactTypes, ArtifactType(v))
}

// 进度边界
const (
	ProgressMin = 0
	ProgressMax = 100
)

// 上传限制
const (
	MaxLogImages        = 5
	DefaultLinkLabel    = "Link"
	ArtifactKeyPrefix   = "docs"
	TrackCacheKeyPrefix = "track:"
)

// 认证类型
const (
	AuthTypeLDAP  = "ldap"
	AuthTypeLocal = "local"
)

// 状态
const (
	StatusEnabled  int8 = 1
	StatusDisabled int8 = 0
)

// JWT 相关
const (
	JWTContextKey  = "jwt_user"
	JWTTypeAccess  = "access"
	JWTTypeRefresh = "refresh"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)
