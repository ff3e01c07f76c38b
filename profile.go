package refurbish

import (
	"sort"
	"strings"
	"sync"
)

// 内置厂商配置名
const (
	ProfileApple   = "apple"
	ProfileWindows = "windows"
	ProfileGeneric = "generic"
)

// SerialDateAppleLegacy 解码 Apple 12 位旧式序列号中的年份/周次。
const SerialDateAppleLegacy = "apple-legacy"

// Profile 厂商相关的判定表。
//
// 规则逻辑只读取这些表，不内嵌任何厂商字符串；扩展新厂商只需注册新的 Profile。
// 某张“原厂”表为空时，对应的原装性规则不做判断（没有参照就不下结论）。
type Profile struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// RefurbSerialPrefixes 序列号前缀 -> 翻新计划名称。
	RefurbSerialPrefixes map[string]string `json:"refurb_serial_prefixes,omitempty" yaml:"refurb_serial_prefixes,omitempty" mapstructure:"refurb_serial_prefixes"`
	// MinSerialLength 序列号短于该长度时视为无效。
	MinSerialLength int `json:"min_serial_length" yaml:"min_serial_length" mapstructure:"min_serial_length"`
	// SerialDate 序列号日期解码方式，空表示不解码。
	SerialDate string `json:"serial_date,omitempty" yaml:"serial_date,omitempty" mapstructure:"serial_date"`

	// FirmwareMarkers 固件文本中的翻新标记（大小写不敏感的子串）。
	FirmwareMarkers []string `json:"firmware_markers,omitempty" yaml:"firmware_markers,omitempty" mapstructure:"firmware_markers"`

	// FirstPartyStorage 原厂存储型号（子串匹配）。
	FirstPartyStorage []string `json:"first_party_storage,omitempty" yaml:"first_party_storage,omitempty" mapstructure:"first_party_storage"`
	// StorageExempt 型号包含这些子串时跳过判断（例如卷名被误报为介质名）。
	StorageExempt []string `json:"storage_exempt,omitempty" yaml:"storage_exempt,omitempty" mapstructure:"storage_exempt"`

	// FirstPartyDisplayVendors 原厂屏幕厂商（子串匹配）。
	FirstPartyDisplayVendors []string `json:"first_party_display_vendors,omitempty" yaml:"first_party_display_vendors,omitempty" mapstructure:"first_party_display_vendors"`

	Battery BatteryPolicy `json:"battery" yaml:"battery" mapstructure:"battery"`
}

// BatteryPolicy 电池异常规则的开关与阈值。
//
// 低循环次数规则默认关闭：单凭循环次数低会把新机误报成换过电池。
type BatteryPolicy struct {
	LowCyclesEnabled    bool    `json:"low_cycles_enabled" yaml:"low_cycles_enabled" mapstructure:"low_cycles_enabled"`
	LowCycleThreshold   int     `json:"low_cycle_threshold" yaml:"low_cycle_threshold" mapstructure:"low_cycle_threshold"`
	HighHealthEnabled   bool    `json:"high_health_enabled" yaml:"high_health_enabled" mapstructure:"high_health_enabled"`
	HighHealthThreshold float64 `json:"high_health_threshold" yaml:"high_health_threshold" mapstructure:"high_health_threshold"`
}

// AppleProfile macOS 设备的判定表。
func AppleProfile() Profile {
	return Profile{
		Name: ProfileApple,
		RefurbSerialPrefixes: map[string]string{
			"F": "Apple Certified Refurbished",
		},
		MinSerialLength:          4,
		SerialDate:               SerialDateAppleLegacy,
		FirmwareMarkers:          []string{"refurbished", "renewed"},
		FirstPartyStorage:        []string{"APPLE SSD", "Apple SSD"},
		StorageExempt:            []string{"Macintosh"},
		FirstPartyDisplayVendors: []string{"Apple", "APP"},
		Battery: BatteryPolicy{
			LowCyclesEnabled:    false,
			LowCycleThreshold:   50,
			HighHealthEnabled:   false,
			HighHealthThreshold: 95,
		},
	}
}

// WindowsProfile Windows 设备的判定表。
// Windows 整机厂商众多，不设原厂存储/屏幕表。
func WindowsProfile() Profile {
	return Profile{
		Name:            ProfileWindows,
		MinSerialLength: 4,
		FirmwareMarkers: []string{"refurb", "renewed"},
		Battery: BatteryPolicy{
			LowCycleThreshold:   50,
			HighHealthEnabled:   true,
			HighHealthThreshold: 95,
		},
	}
}

// GenericProfile 其他平台的保守判定表：只保留与厂商无关的固件标记。
func GenericProfile() Profile {
	return Profile{
		Name:            ProfileGeneric,
		MinSerialLength: 4,
		FirmwareMarkers: []string{"refurb", "renewed"},
		Battery: BatteryPolicy{
			LowCycleThreshold:   50,
			HighHealthThreshold: 95,
		},
	}
}

// Clone 深拷贝，避免调用方修改注册表里的切片/映射。
func (p Profile) Clone() Profile {
	out := p
	if p.RefurbSerialPrefixes != nil {
		out.RefurbSerialPrefixes = make(map[string]string, len(p.RefurbSerialPrefixes))
		for k, v := range p.RefurbSerialPrefixes {
			out.RefurbSerialPrefixes[k] = v
		}
	}
	out.FirmwareMarkers = append([]string(nil), p.FirmwareMarkers...)
	out.FirstPartyStorage = append([]string(nil), p.FirstPartyStorage...)
	out.StorageExempt = append([]string(nil), p.StorageExempt...)
	out.FirstPartyDisplayVendors = append([]string(nil), p.FirstPartyDisplayVendors...)
	return out
}

// matchRefurbPrefix 返回命中的翻新计划，serial 须已转为大写。多个前缀同时命中时取最长者，等长按字典序，保证结果稳定。
func (p *Profile) matchRefurbPrefix(serial string) (program string, ok bool) {
	best := ""
	for prefix := range p.RefurbSerialPrefixes {
		if prefix == "" || !strings.HasPrefix(serial, strings.ToUpper(prefix)) {
			continue
		}
		if len(prefix) > len(best) || (len(prefix) == len(best) && prefix < best) {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return p.RefurbSerialPrefixes[best], true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	profilesMu sync.RWMutex
	profiles   = map[string]Profile{
		ProfileApple:   AppleProfile(),
		ProfileWindows: WindowsProfile(),
		ProfileGeneric: GenericProfile(),
	}
)

// RegisterProfile 注册或覆盖一个厂商判定表，名称为空时忽略。
func RegisterProfile(p Profile) {
	if p.Name == "" {
		return
	}
	profilesMu.Lock()
	defer profilesMu.Unlock()
	profiles[p.Name] = p.Clone()
}

// LookupProfile 按名称查找判定表，返回副本。
func LookupProfile(name string) (Profile, bool) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	p, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	return p.Clone(), true
}

// ProfileNames 返回已注册的判定表名称（已排序）。
func ProfileNames() []string {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
