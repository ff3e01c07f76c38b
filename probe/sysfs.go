package probe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/darkit/refurbish"
)

// sysfs 读取 Linux /sys 下的硬件信息。root 默认为 "/"，测试中指向临时目录。
type sysfs struct {
	root string
}

func (s sysfs) path(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

func (s sysfs) read(elem ...string) string {
	data, err := os.ReadFile(s.path(elem...))
	if err != nil {
		return ""
	}
	return cleanValue(string(data))
}

func (s sysfs) readInt(elem ...string) (int64, bool) {
	v := s.read(elem...)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s sysfs) glob(pattern ...string) []string {
	matches, _ := filepath.Glob(s.path(pattern...))
	sort.Strings(matches)
	return matches
}

const dmiDir = "sys/class/dmi/id"

// dmiSerial 整机序列号：product_serial 优先，其次机箱与主板。读取通常需要 root。
func (s sysfs) dmiSerial() string {
	for _, name := range []string{"product_serial", "chassis_serial", "board_serial"} {
		if v := serialOrEmpty(s.read(dmiDir, name)); v != "" {
			return v
		}
	}
	return ""
}

// dmiFirmwareText 拼接 SMBIOS 文本字段，供固件标记匹配（翻新商常改写 product_version 等字段）。
func (s sysfs) dmiFirmwareText() string {
	var parts []string
	for _, name := range []string{
		"sys_vendor", "product_name", "product_version", "product_family", "product_sku",
		"bios_vendor", "bios_version", "board_vendor", "board_name", "board_version",
		"chassis_vendor", "chassis_version",
	} {
		parts = append(parts, s.read(dmiDir, name))
	}
	return joinNonEmpty(parts...)
}

// linuxBattery 第一块 type=Battery 的电源。容量统一为 mAh 或 mWh（sysfs 为微单位）。
type linuxBattery struct {
	CycleCount      int
	DesignCapacity  int
	FullCapacity    int
	CurrentCapacity int
	Charging        bool
	Temperature     *float64
	Serial          string
	ManufactureDate string
}

func (s sysfs) battery() *linuxBattery {
	for _, dir := range s.glob("sys/class/power_supply", "*") {
		rel, err := filepath.Rel(s.root, dir)
		if err != nil {
			continue
		}
		if !strings.EqualFold(s.read(rel, "type"), "Battery") {
			continue
		}
		// 部分设备（鼠标、手柄）也以 Battery 暴露，scope=Device 时跳过
		if strings.EqualFold(s.read(rel, "scope"), "Device") {
			continue
		}

		b := &linuxBattery{}
		if n, ok := s.readInt(rel, "cycle_count"); ok && n > 0 {
			b.CycleCount = int(n)
		}
		prefix := "charge"
		if _, ok := s.readInt(rel, "charge_full_design"); !ok {
			prefix = "energy"
		}
		if n, ok := s.readInt(rel, prefix+"_full_design"); ok {
			b.DesignCapacity = int(n / 1000)
		}
		if n, ok := s.readInt(rel, prefix+"_full"); ok {
			b.FullCapacity = int(n / 1000)
		}
		if n, ok := s.readInt(rel, prefix+"_now"); ok {
			b.CurrentCapacity = int(n / 1000)
		}
		b.Charging = strings.EqualFold(s.read(rel, "status"), "Charging")
		if n, ok := s.readInt(rel, "temp"); ok {
			t := float64(n) / 10
			b.Temperature = &t
		}
		b.Serial = serialOrEmpty(s.read(rel, "serial_number"))
		y, yok := s.readInt(rel, "manufacture_year")
		m, mok := s.readInt(rel, "manufacture_month")
		d, dok := s.readInt(rel, "manufacture_day")
		if yok && mok && dok && y > 0 {
			b.ManufactureDate = fmt.Sprintf("%04d-%02d-%02d", y, m, d)
		}
		return b
	}
	return nil
}

func (b *linuxBattery) facts() *refurbish.Battery {
	if b == nil {
		return nil
	}
	return &refurbish.Battery{
		CycleCount:         b.CycleCount,
		DesignCapacity:     b.DesignCapacity,
		FullChargeCapacity: b.FullCapacity,
		Serial:             b.Serial,
		ManufactureDate:    b.ManufactureDate,
	}
}

func (b *linuxBattery) info() *BatteryInfo {
	if b == nil {
		return nil
	}
	return &BatteryInfo{
		Health:          batteryHealth(b.DesignCapacity, b.FullCapacity),
		CycleCount:      b.CycleCount,
		DesignCapacity:  b.DesignCapacity,
		MaxCapacity:     b.FullCapacity,
		CurrentCapacity: b.CurrentCapacity,
		IsCharging:      b.Charging,
		Temperature:     b.Temperature,
	}
}

var virtualBlockPrefixes = []string{"loop", "ram", "zram", "dm-", "md", "sr", "fd", "nbd"}

type blockDevice struct {
	Name string
	refurbish.StorageDescriptor
}

func (s sysfs) storage() []refurbish.StorageDescriptor {
	devs := s.blockDevices()
	if len(devs) == 0 {
		return nil
	}
	out := make([]refurbish.StorageDescriptor, 0, len(devs))
	for _, d := range devs {
		out = append(out, d.StorageDescriptor)
	}
	return out
}

// blockDevices 枚举 /sys/block 下的物理盘。removable=1 或挂在 USB 总线上的视为外置。
func (s sysfs) blockDevices() []blockDevice {
	var out []blockDevice
	for _, dir := range s.glob("sys/block", "*") {
		name := filepath.Base(dir)
		if hasAnyPrefix(name, virtualBlockPrefixes) {
			continue
		}
		model := s.read("sys/block", name, "device", "model")
		if model == "" {
			model = s.read("sys/block", name, "device", "name")
		}
		if model == "" {
			continue
		}
		internal := s.read("sys/block", name, "removable") != "1"
		if target, err := filepath.EvalSymlinks(filepath.Join(dir, "device")); err == nil &&
			strings.Contains(target, "/usb") {
			internal = false
		}
		out = append(out, blockDevice{
			Name:              name,
			StorageDescriptor: refurbish.StorageDescriptor{Model: model, Internal: internal},
		})
	}
	return out
}

// 内建面板使用的 DRM 连接器类型。
var internalConnectors = []string{"eDP", "LVDS", "DSI"}

// displays 读取 /sys/class/drm/card*-*/edid；EDID 为空的连接器没有接屏幕。
func (s sysfs) displays() []refurbish.DisplayDescriptor {
	var out []refurbish.DisplayDescriptor
	for _, dir := range s.glob("sys/class/drm", "card*-*") {
		edid, err := os.ReadFile(filepath.Join(dir, "edid"))
		if err != nil || len(edid) < 128 {
			continue
		}
		// card0-eDP-1 → eDP
		connector := filepath.Base(dir)
		if _, rest, ok := strings.Cut(connector, "-"); ok {
			connector = rest
		}
		vendor, name := parseEDID(edid)
		out = append(out, refurbish.DisplayDescriptor{
			Vendor:   vendor,
			Name:     name,
			Internal: hasAnyPrefix(connector, internalConnectors),
		})
	}
	return out
}

// parseEDID 取 EDID 的厂商码（字节 8-9）与显示器名称描述符（标签 0xFC）。
func parseEDID(edid []byte) (vendor, name string) {
	if len(edid) < 128 {
		return "", ""
	}
	vendor = decodePNPID(uint16(edid[8])<<8 | uint16(edid[9]))
	for off := 54; off+18 <= 126; off += 18 {
		d := edid[off : off+18]
		if d[0] == 0 && d[1] == 0 && d[3] == 0xFC {
			name = cleanValue(strings.SplitN(string(d[5:]), "\n", 2)[0])
			break
		}
	}
	return vendor, name
}

// decodePNPID 把压缩的 PNP 厂商 ID（三个 5 位字母，A=1）解码为三字母代码。
// 例如 0x0610 → "APP"。
func decodePNPID(id uint16) string {
	if id == 0 {
		return ""
	}
	letters := [3]byte{
		byte((id>>10)&0x1F) + 'A' - 1,
		byte((id>>5)&0x1F) + 'A' - 1,
		byte(id&0x1F) + 'A' - 1,
	}
	for _, c := range letters {
		if c < 'A' || c > 'Z' {
			return ""
		}
	}
	return string(letters[:])
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// smartctlReport `smartctl -H -A -i -j <dev>` 中用到的字段。
type smartctlReport struct {
	ModelName   string `json:"model_name"`
	SmartStatus *struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
	PowerOnTime *struct {
		Hours uint64 `json:"hours"`
	} `json:"power_on_time"`
	Temperature *struct {
		Current float64 `json:"current"`
	} `json:"temperature"`
}

// parseSmartctl 解析 smartctl 的 JSON 输出。smartctl 以位掩码退出码报告磁盘状态，
// 调用方在非零退出时也应尝试解析 stdout。
func parseSmartctl(data []byte) (*StorageHealth, error) {
	var r smartctlReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse smartctl json: %w", err)
	}
	h := &StorageHealth{Model: cleanValue(r.ModelName), SmartStatus: unknownValue}
	if h.Model == "" {
		h.Model = unknownValue
	}
	if r.SmartStatus != nil {
		if r.SmartStatus.Passed {
			h.SmartStatus = "Verified"
		} else {
			h.SmartStatus = "Failing"
		}
	}
	if r.PowerOnTime != nil {
		hours := r.PowerOnTime.Hours
		h.PowerOnHours = &hours
	}
	if r.Temperature != nil && r.Temperature.Current > 0 {
		t := r.Temperature.Current
		h.Temperature = &t
	}
	return h, nil
}
