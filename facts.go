package refurbish

// Facts 是一次评估的全部输入：由外部探针层（probe 包或调用方）采集，
// 引擎只读不写。
//
// 约定：所有字段都可能缺失。
//   - 字符串为空表示“未能确定”；
//   - 切片为 nil 或空表示“没有该类设备的描述”；
//   - 指针为 nil 表示该子系统未采集到。
//
// 任何采集/解析失败都必须在进入引擎前被折算为“缺失”，引擎不接收原始命令错误。
type Facts struct {
	// Serial 平台序列号（macOS IOPlatformSerialNumber / SMBIOS product serial）。
	Serial string `json:"serial,omitempty" yaml:"serial,omitempty"`

	// Firmware 固件/BIOS/OEM 原始文本，按来源区分。
	Firmware []FirmwareDump `json:"firmware,omitempty" yaml:"firmware,omitempty"`

	// Enrollment 企业注册（DEP/Autopilot、MDM）状态。
	Enrollment *Enrollment `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`

	Storage  []StorageDescriptor `json:"storage,omitempty" yaml:"storage,omitempty"`
	Displays []DisplayDescriptor `json:"displays,omitempty" yaml:"displays,omitempty"`
	Battery  *Battery            `json:"battery,omitempty" yaml:"battery,omitempty"`

	// OSInstallDate 系统安装时间（原样透传，格式由探针决定）。
	OSInstallDate string `json:"os_install_date,omitempty" yaml:"os_install_date,omitempty"`

	// StorageFirstUseDate 存储首次使用时间；多数平台采集不到。
	StorageFirstUseDate string `json:"storage_first_use_date,omitempty" yaml:"storage_first_use_date,omitempty"`
}

// Clone 深拷贝，nil 与空切片保持原样。
func (f Facts) Clone() Facts {
	out := f
	if f.Firmware != nil {
		out.Firmware = append([]FirmwareDump{}, f.Firmware...)
	}
	if f.Storage != nil {
		out.Storage = append([]StorageDescriptor{}, f.Storage...)
	}
	if f.Displays != nil {
		out.Displays = append([]DisplayDescriptor{}, f.Displays...)
	}
	if f.Enrollment != nil {
		e := *f.Enrollment
		out.Enrollment = &e
	}
	if f.Battery != nil {
		b := *f.Battery
		out.Battery = &b
	}
	return out
}

// FirmwareDump 一段固件侧原始文本。
// Source 决定指标名（<source>_refurb），例如 ioreg / bios / oem / dmi。
type FirmwareDump struct {
	Source string `json:"source" yaml:"source"`
	Text   string `json:"text" yaml:"text"`
}

// Enrollment 企业设备注册标志。
type Enrollment struct {
	// DeviceEnrollmentProgram 设备注册计划（Apple DEP / Windows Autopilot）。
	DeviceEnrollmentProgram bool `json:"device_enrollment_program" yaml:"device_enrollment_program"`
	// DeviceManagement MDM 管理注册。
	DeviceManagement bool `json:"device_management" yaml:"device_management"`
}

// StorageDescriptor 一块存储设备的身份描述。
type StorageDescriptor struct {
	Model    string `json:"model" yaml:"model"`
	Internal bool   `json:"internal" yaml:"internal"`
}

// DisplayDescriptor 一块显示屏的身份描述。
type DisplayDescriptor struct {
	Vendor   string `json:"vendor" yaml:"vendor"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Internal bool   `json:"internal" yaml:"internal"`
}

// Battery 电池相关事实。容量字段为 0 表示未知。
type Battery struct {
	CycleCount         int    `json:"cycle_count" yaml:"cycle_count"`
	DesignCapacity     int    `json:"design_capacity" yaml:"design_capacity"`
	FullChargeCapacity int    `json:"full_charge_capacity" yaml:"full_charge_capacity"`
	Serial             string `json:"serial,omitempty" yaml:"serial,omitempty"`
	ManufactureDate    string `json:"manufacture_date,omitempty" yaml:"manufacture_date,omitempty"`
}

// HealthPercent 返回满充容量相对设计容量的百分比；任一容量未知时 ok 为 false。
func (b *Battery) HealthPercent() (health float64, ok bool) {
	if b == nil || b.DesignCapacity <= 0 || b.FullChargeCapacity <= 0 {
		return 0, false
	}
	return float64(b.FullChargeCapacity) / float64(b.DesignCapacity) * 100, true
}
