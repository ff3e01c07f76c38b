package refurbish

// Severity 指标严重程度，info < warning < critical。
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank 返回用于比较的序数；未知取值按 0 处理。
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// Confidence 引擎对结论的置信度分层。
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// 替换部件标签
const (
	PartStorage = "storage"
	PartDisplay = "display"
)

// Indicator 单条规则的判定结果。
// Description 是机器可读的代码而不是文案，由 UI 层负责本地化。
type Indicator struct {
	Name        string   `json:"name"`
	Detected    bool     `json:"detected"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Details 由事实一对一转换得到的上下文信息，不参与打分。
// 字符串字段为指针，缺失时序列化为 null。
type Details struct {
	SerialManufactureDate  *string `json:"serial_manufacture_date"`
	OSInstallDate          *string `json:"os_install_date"`
	BatteryManufactureDate *string `json:"battery_manufacture_date"`
	StorageFirstUseDate    *string `json:"storage_first_use_date"`
	DateMismatch           bool    `json:"date_mismatch"`
	RefurbProgram          *string `json:"refurb_program"`
}

// Report 一次评估的最终结果，字段名即对 UI 层的线上契约。
type Report struct {
	IsRefurbished bool        `json:"is_refurbished"`
	Confidence    Confidence  `json:"confidence"`
	Indicators    []Indicator `json:"indicators"`
	ReplacedParts []string    `json:"replaced_parts"`
	Details       Details     `json:"details"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
