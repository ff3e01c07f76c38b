package probe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/darkit/refurbish"
)

// macOS 命令输出解析。这里只做纯文本/JSON 处理，不执行命令，
// 以便在任意平台上测试；执行部分在 platform_darwin.go。

var ioregKeyValue = regexp.MustCompile(`^[\s|]*"([^"]+)"\s*=\s*(.+?)\s*$`)

// ioregPairs 把 ioreg 的 "Key" = value 行解析为有序键值对。
// 同名键保留第一次出现的值（ioreg -l 中外层对象先出现）。
func ioregPairs(output string) map[string]string {
	pairs := map[string]string{}
	for _, line := range strings.Split(output, "\n") {
		m := ioregKeyValue.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, seen := pairs[m[1]]; !seen {
			pairs[m[1]] = m[2]
		}
	}
	return pairs
}

func ioregString(v string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), `"`))
}

func ioregInt(v string) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// parseIORegSerial 从 IOPlatformExpertDevice 输出中取平台序列号。
func parseIORegSerial(output string) string {
	return ioregString(ioregPairs(output)["IOPlatformSerialNumber"])
}

// parseBatteryManufactureDate 在 ioreg -l 全量输出中查找电池生产日期。
func parseBatteryManufactureDate(output string) string {
	pairs := ioregPairs(output)
	for _, key := range []string{"BatteryManufactureDate", "ManufactureDate"} {
		if v, ok := pairs[key]; ok {
			return decodeManufactureDate(v)
		}
	}
	return ""
}

// decodeManufactureDate 智能电池规范中的日期编码：((year-1980)<<9) | (month<<5) | day。
// 无法解码时原样返回。
func decodeManufactureDate(v string) string {
	raw := ioregString(v)
	n, ok := ioregInt(raw)
	if !ok || n <= 0 {
		return raw
	}
	day := n & 0x1F
	month := (n >> 5) & 0x0F
	year := 1980 + (n >> 9)
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return raw
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// smartBattery AppleSmartBattery 中与判定/健康相关的字段。
type smartBattery struct {
	CycleCount      int
	DesignCapacity  int
	MaxCapacity     int
	RawMaxCapacity  int
	CurrentCapacity int
	IsCharging      bool
	Temperature     *float64
	Serial          string
	ManufactureDate string
	found           bool
}

// parseSmartBattery 解析 `ioreg -r -c AppleSmartBattery -w0` 输出。
func parseSmartBattery(output string) smartBattery {
	var b smartBattery
	pairs := ioregPairs(output)
	if len(pairs) == 0 {
		return b
	}
	ints := map[string]*int{
		"CycleCount":          &b.CycleCount,
		"DesignCapacity":      &b.DesignCapacity,
		"MaxCapacity":         &b.MaxCapacity,
		"AppleRawMaxCapacity": &b.RawMaxCapacity,
		"CurrentCapacity":     &b.CurrentCapacity,
	}
	for key, dst := range ints {
		if n, ok := ioregInt(pairs[key]); ok {
			*dst = n
			b.found = true
		}
	}
	if v, ok := pairs["IsCharging"]; ok {
		b.IsCharging = strings.Contains(v, "Yes")
	}
	if n, ok := ioregInt(pairs["Temperature"]); ok {
		t := float64(n) / 100
		b.Temperature = &t
	}
	for _, key := range []string{"Serial", "BatterySerialNumber"} {
		if s := ioregString(pairs[key]); s != "" {
			b.Serial = s
			break
		}
	}
	if v, ok := pairs["ManufactureDate"]; ok {
		b.ManufactureDate = decodeManufactureDate(v)
	}
	return b
}

// actualMaxCapacity 新版 macOS 以 AppleRawMaxCapacity 为真实最大容量；
// 旧版 MaxCapacity 为 mAh（> 100）；否则 MaxCapacity 是百分比，只能退回设计容量。
func (b smartBattery) actualMaxCapacity() int {
	switch {
	case b.RawMaxCapacity > 0:
		return b.RawMaxCapacity
	case b.MaxCapacity > 100:
		return b.MaxCapacity
	default:
		return b.DesignCapacity
	}
}

func (b smartBattery) facts() *refurbish.Battery {
	if !b.found {
		return nil
	}
	return &refurbish.Battery{
		CycleCount:         b.CycleCount,
		DesignCapacity:     b.DesignCapacity,
		FullChargeCapacity: b.actualMaxCapacity(),
		Serial:             b.Serial,
		ManufactureDate:    b.ManufactureDate,
	}
}

func (b smartBattery) info() *BatteryInfo {
	if !b.found {
		return nil
	}
	max := b.actualMaxCapacity()
	return &BatteryInfo{
		Health:          batteryHealth(b.DesignCapacity, max),
		CycleCount:      b.CycleCount,
		DesignCapacity:  b.DesignCapacity,
		MaxCapacity:     max,
		CurrentCapacity: b.CurrentCapacity,
		IsCharging:      b.IsCharging,
		Temperature:     b.Temperature,
	}
}

// diskutilInfo `diskutil info disk0` 中关心的字段。
type diskutilInfo struct {
	Model       string
	Internal    bool
	SmartStatus string
}

func parseDiskutilInfo(output string) diskutilInfo {
	var d diskutilInfo
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "Device Location":
			d.Internal = strings.Contains(value, "Internal")
		case "Device / Media Name":
			d.Model = value
		case "SMART Status":
			d.SmartStatus = value
		}
	}
	return d
}

// parseEnrollment 解析 `profiles status -type enrollment`。两行都缺失时返回 nil。
//
//	Enrolled via DEP: Yes
//	MDM enrollment: Yes (User Approved)
func parseEnrollment(output string) *refurbish.Enrollment {
	var e refurbish.Enrollment
	found := false
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		yes := strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "yes")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "enrolled via dep":
			e.DeviceEnrollmentProgram = yes
			found = true
		case "mdm enrollment":
			e.DeviceManagement = yes
			found = true
		}
	}
	if !found {
		return nil
	}
	return &e
}

// parseDisplays 解析 `system_profiler SPDisplaysDataType -json`。
//
// 顶层是显卡数组，每张卡的 spdisplays_ndrvs 是所连接的屏幕。
// 厂商优先取屏幕自身的 vendor-id（EDID 厂商码，0x610 即 APP），
// 其次取 spdisplays_vendor 字段。
func parseDisplays(data []byte) ([]refurbish.DisplayDescriptor, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse SPDisplaysDataType json: %w", err)
	}
	items, _ := payload["SPDisplaysDataType"].([]any)

	var out []refurbish.DisplayDescriptor
	for _, item := range items {
		gpu, _ := item.(map[string]any)
		if gpu == nil {
			continue
		}
		// 顶层对象的 spdisplays_vendor 是显卡厂商，不能当作屏幕
		screens, _ := gpu["spdisplays_ndrvs"].([]any)
		for _, s := range screens {
			screen, _ := s.(map[string]any)
			if screen == nil {
				continue
			}
			if d, ok := displayFromMap(screen); ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func displayFromMap(m map[string]any) (refurbish.DisplayDescriptor, bool) {
	vendor := ""
	if id := getStringFirst(m, "_spdisplays_display-vendor-id", "spdisplays_display-vendor-id"); id != "" {
		if n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(id), "0x"), 16, 16); err == nil {
			vendor = decodePNPID(uint16(n))
		}
	}
	if vendor == "" {
		vendor = getStringFirst(m, "spdisplays_vendor", "_spdisplays_vendor")
	}
	conn := strings.ToLower(getStringFirst(m, "spdisplays_connection_type"))
	if vendor == "" && conn == "" {
		return refurbish.DisplayDescriptor{}, false
	}
	return refurbish.DisplayDescriptor{
		Vendor:   vendor,
		Name:     getStringFirst(m, "_name"),
		Internal: strings.Contains(conn, "internal"),
	}, true
}

// parseStorageModel 从 SPStorageDataType 中取第一块物理盘的设备名。
func parseStorageModel(data []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	items, _ := payload["SPStorageDataType"].([]any)
	for _, item := range items {
		obj, _ := item.(map[string]any)
		physical, _ := obj["physical_drive"].(map[string]any)
		if physical == nil {
			continue
		}
		if name := getStringFirst(physical, "device_name"); name != "" {
			return name
		}
	}
	return ""
}

// parseSPHardwareSerial 从 SPHardwareDataType 中取序列号，作为 ioreg 的备选。
func parseSPHardwareSerial(data []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	items, _ := payload["SPHardwareDataType"].([]any)
	if len(items) == 0 {
		return ""
	}
	obj, _ := items[0].(map[string]any)
	if obj == nil {
		return ""
	}
	return getStringFirst(obj, "serial_number", "platform_serial_number", "serial_number_system")
}

func getStringFirst(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
