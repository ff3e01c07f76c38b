package refurbish

import (
	"strings"
)

// 指标名
const (
	IndicatorSerialRefurb      = "serial_refurb"
	IndicatorEnterpriseManaged = "enterprise_managed"
	IndicatorThirdPartyStorage = "third_party_storage"
	IndicatorThirdPartyDisplay = "third_party_display"
	IndicatorLowBatteryCycles  = "low_battery_cycles"
	IndicatorHighBatteryHealth = "high_battery_health"

	// 固件指标名为 <source> + FirmwareIndicatorSuffix。
	FirmwareIndicatorSuffix = "_refurb"
)

// 描述代码，保持与语言无关。
const (
	CodeSerialRefurbPrefix   = "serial_refurb_prefix"
	CodeFirmwareRefurbMarker = "firmware_refurb_marker"
	CodeEnrolledBoth         = "enrolled_dep_and_mdm"
	CodeEnrolledProgramOnly  = "enrolled_dep_only"
	CodeEnrolledMDMOnly      = "enrolled_mdm_only"
	CodeStorageNotFirstParty = "storage_model_not_first_party"
	CodeDisplayNotFirstParty = "display_vendor_not_first_party"
	CodeBatteryLowCycles     = "battery_cycles_below_threshold"
	CodeBatteryHighHealth    = "battery_health_above_threshold"
)

const defaultMinSerialLength = 4

// Outcome 单条规则的产出。
//
// Provisional 是与严重程度无关的“直接判定翻新”信号（序列号/固件标记），
// 由评分阶段与其他信号显式合并。
type Outcome struct {
	Indicators    []Indicator
	ReplacedParts []string
	Provisional   bool
	Program       string
}

// RuleFunc 规则是事实与判定表上的纯函数，对任何缺失输入都必须返回空结果。
type RuleFunc func(f *Facts, p *Profile) Outcome

// Rule 带名称的规则，名称只用于日志。
type Rule struct {
	Name string
	Eval RuleFunc
}

// DefaultRules 按固定顺序返回内置规则集。
func DefaultRules() []Rule {
	return []Rule{
		{Name: "serial", Eval: SerialRule},
		{Name: "firmware", Eval: FirmwareRule},
		{Name: "enrollment", Eval: EnrollmentRule},
		{Name: "storage", Eval: StorageRule},
		{Name: "display", Eval: DisplayRule},
		{Name: "battery_low_cycles", Eval: BatteryLowCyclesRule},
		{Name: "battery_high_health", Eval: BatteryHighHealthRule},
	}
}

// SerialRule 序列号前缀命中翻新计划时给出 info 指标，并记录计划名称。
// 前缀比较不区分大小写。
func SerialRule(f *Facts, p *Profile) Outcome {
	serial := strings.ToUpper(strings.TrimSpace(f.Serial))
	if len(serial) < minSerialLength(p) {
		return Outcome{}
	}
	program, ok := p.matchRefurbPrefix(serial)
	if !ok {
		return Outcome{}
	}
	return Outcome{
		Indicators: []Indicator{{
			Name:        IndicatorSerialRefurb,
			Detected:    true,
			Description: CodeSerialRefurbPrefix,
			Severity:    SeverityInfo,
		}},
		Provisional: true,
		Program:     program,
	}
}

// FirmwareRule 固件文本包含翻新标记时按来源各给出一条 info 指标。
// 这是子串启发式，平台换一种编码方式就会漏报。
func FirmwareRule(f *Facts, p *Profile) Outcome {
	if len(p.FirmwareMarkers) == 0 {
		return Outcome{}
	}
	markers := make([]string, 0, len(p.FirmwareMarkers))
	for _, m := range p.FirmwareMarkers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			markers = append(markers, m)
		}
	}

	var out Outcome
	for _, dump := range f.Firmware {
		if dump.Text == "" {
			continue
		}
		if !containsAny(strings.ToLower(dump.Text), markers) {
			continue
		}
		source := strings.TrimSpace(dump.Source)
		if source == "" {
			source = "firmware"
		}
		out.Indicators = append(out.Indicators, Indicator{
			Name:        source + FirmwareIndicatorSuffix,
			Detected:    true,
			Description: CodeFirmwareRefurbMarker,
			Severity:    SeverityInfo,
		})
		out.Provisional = true
	}
	return out
}

// EnrollmentRule 设备曾加入注册计划或 MDM 时给出 warning，描述区分三种组合。
func EnrollmentRule(f *Facts, _ *Profile) Outcome {
	e := f.Enrollment
	if e == nil {
		return Outcome{}
	}
	var code string
	switch {
	case e.DeviceEnrollmentProgram && e.DeviceManagement:
		code = CodeEnrolledBoth
	case e.DeviceEnrollmentProgram:
		code = CodeEnrolledProgramOnly
	case e.DeviceManagement:
		code = CodeEnrolledMDMOnly
	default:
		return Outcome{}
	}
	return Outcome{Indicators: []Indicator{{
		Name:        IndicatorEnterpriseManaged,
		Detected:    true,
		Description: code,
		Severity:    SeverityWarning,
	}}}
}

// StorageRule 内置存储型号不在原厂表中时，每块盘给出一条 warning 并记一次 storage 部件。
func StorageRule(f *Facts, p *Profile) Outcome {
	if len(p.FirstPartyStorage) == 0 {
		return Outcome{}
	}
	var out Outcome
	for _, d := range f.Storage {
		model := strings.TrimSpace(d.Model)
		if !d.Internal || model == "" {
			continue
		}
		if containsAny(model, p.StorageExempt) || containsAny(model, p.FirstPartyStorage) {
			continue
		}
		out.Indicators = append(out.Indicators, Indicator{
			Name:        IndicatorThirdPartyStorage,
			Detected:    true,
			Description: CodeStorageNotFirstParty,
			Severity:    SeverityWarning,
		})
		out.ReplacedParts = append(out.ReplacedParts, PartStorage)
	}
	return out
}

// DisplayRule 与 StorageRule 对称：每块非原厂内屏各计一次。
// 厂商字符串为空视为未知，不下结论。
func DisplayRule(f *Facts, p *Profile) Outcome {
	if len(p.FirstPartyDisplayVendors) == 0 {
		return Outcome{}
	}
	var out Outcome
	for _, d := range f.Displays {
		vendor := strings.TrimSpace(d.Vendor)
		if !d.Internal || vendor == "" {
			continue
		}
		if containsAny(vendor, p.FirstPartyDisplayVendors) {
			continue
		}
		out.Indicators = append(out.Indicators, Indicator{
			Name:        IndicatorThirdPartyDisplay,
			Detected:    true,
			Description: CodeDisplayNotFirstParty,
			Severity:    SeverityWarning,
		})
		out.ReplacedParts = append(out.ReplacedParts, PartDisplay)
	}
	return out
}

// BatteryLowCyclesRule 循环次数低于阈值时给出 info（可能新换电池）。
// 循环次数为 0 与“未上报”无法区分，此时不判断。
func BatteryLowCyclesRule(f *Facts, p *Profile) Outcome {
	b := f.Battery
	if !p.Battery.LowCyclesEnabled || b == nil || b.CycleCount <= 0 {
		return Outcome{}
	}
	if b.CycleCount >= p.Battery.LowCycleThreshold {
		return Outcome{}
	}
	return Outcome{Indicators: []Indicator{{
		Name:        IndicatorLowBatteryCycles,
		Detected:    true,
		Description: CodeBatteryLowCycles,
		Severity:    SeverityInfo,
	}}}
}

// BatteryHighHealthRule 健康度高于阈值时给出 info（可能新换电池）。
func BatteryHighHealthRule(f *Facts, p *Profile) Outcome {
	if !p.Battery.HighHealthEnabled {
		return Outcome{}
	}
	health, ok := f.Battery.HealthPercent()
	if !ok || health <= p.Battery.HighHealthThreshold {
		return Outcome{}
	}
	return Outcome{Indicators: []Indicator{{
		Name:        IndicatorHighBatteryHealth,
		Detected:    true,
		Description: CodeBatteryHighHealth,
		Severity:    SeverityInfo,
	}}}
}

func minSerialLength(p *Profile) int {
	if p.MinSerialLength > 0 {
		return p.MinSerialLength
	}
	return defaultMinSerialLength
}
