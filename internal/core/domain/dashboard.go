package domain

const AllDepartments = "全部部门"

// DeliveryMetrics is one department's monthly delivery snapshot. For the
// all-departments view the fields hold averages across departments.
type DeliveryMetrics struct {
	RequirementThroughput        int     `json:"requirementThroughput"`
	MonthlyDeliveredRequirements int     `json:"monthlyDeliveredRequirements"`
	MonthlyNewRequirements       int     `json:"monthlyNewRequirements"`
	DeliveryCycleP75             float64 `json:"deliveryCycleP75"`
	OnlineDefects                int     `json:"onlineDefects"`
	ReopenRate                   float64 `json:"reopenRate"`
	EmergencyReleases            int     `json:"emergencyReleases"`
	IncidentCount                int     `json:"incidentCount"`
	WorkSaturation               float64 `json:"workSaturation"`
	CodeEquivalent               int     `json:"codeEquivalent"`
}

type ProjectDetail struct {
	PersonName            string  `json:"personName"`
	PositionName          string  `json:"positionName"`
	ProjectName           string  `json:"projectName"`
	Saturation            float64 `json:"saturation"`
	CodeEquivalent        int     `json:"codeEquivalent"`
	DeliveredRequirements int     `json:"deliveredRequirements"`
	TotalHours            float64 `json:"totalHours"`
	AIUsageDays           float64 `json:"aiUsageDays"`
}

type RankingEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type RankingType string

const (
	RankByScore      RankingType = "score"
	RankBySaturation RankingType = "saturation"
	RankByCode       RankingType = "code"
	RankByDefects    RankingType = "defects"
)

type Settings struct {
	RefreshInterval    int  `json:"refreshInterval"`
	EmailNotifications bool `json:"emailNotifications"`
}
