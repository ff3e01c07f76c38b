package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/darkit/refurbish"
)

// Windows 命令输出解析（wmic 表格与 PowerShell ConvertTo-Json）。
// 与 macos.go 一样不执行命令，执行部分在 platform_windows.go。

// parseWMICTable 把 wmic 表格输出解析为行映射。
// 第一行是表头；列之间至少两个空格，单个空格视为字段内容（如 "Samsung SSD 870"）。
func parseWMICTable(output string) []map[string]string {
	lines := wmicLines(output)
	if len(lines) < 2 {
		return nil
	}
	header := splitWMICColumns(lines[0])
	if len(header) == 0 {
		return nil
	}

	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitWMICColumns(line)
		if len(values) == 0 {
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(values) {
				row[col] = cleanValue(values[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func splitWMICColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var cols []string
	var cur strings.Builder
	gap := 0
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			cols = append(cols, s)
		}
		cur.Reset()
	}
	for _, r := range line {
		if r == ' ' || r == '\t' || r == '\r' {
			gap++
			if gap == 2 {
				flush()
			}
			continue
		}
		if gap == 1 {
			cur.WriteByte(' ')
		}
		gap = 0
		cur.WriteRune(r)
	}
	flush()
	return cols
}

func wmicLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// wmic 在无结果时输出 "No Instance(s) Available."
		if strings.Contains(strings.ToLower(line), "no instance") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// parseWMICSerial 取 `wmic bios get SerialNumber` 的第一行有效值。
func parseWMICSerial(output string) string {
	for _, row := range parseWMICTable(output) {
		if s := serialOrEmpty(row["SerialNumber"]); s != "" {
			return s
		}
	}
	return ""
}

// wmicText 把整张表拼成一段文本，供固件标记做子串匹配。
// 表头不参与匹配。
func wmicText(output string) string {
	lines := wmicLines(output)
	if len(lines) < 2 {
		return ""
	}
	return joinNonEmpty(lines[1:]...)
}

// wmicBIOSText 注册表里没有 BIOS 信息时，用 wmic 取一份固件文本。
func wmicBIOSText(ctx context.Context, run Runner) string {
	out, err := run(ctx, "wmic", "bios", "get", "Manufacturer,SMBIOSBIOSVersion,Version")
	if err != nil {
		return ""
	}
	return wmicText(out)
}

// parseWMICDiskDrives 解析 `wmic diskdrive get Model,InterfaceType,MediaType`。
// USB 接口或 "Removable"/"External" 介质视为外置盘。
func parseWMICDiskDrives(output string) []refurbish.StorageDescriptor {
	var out []refurbish.StorageDescriptor
	for _, row := range parseWMICTable(output) {
		if d, ok := diskDescriptor(row["Model"], row["InterfaceType"], row["MediaType"]); ok {
			out = append(out, d)
		}
	}
	return out
}

// parseDiskDrivesJSON Win32_DiskDrive 的 PowerShell 备选输出。
func parseDiskDrivesJSON(data []byte) ([]refurbish.StorageDescriptor, error) {
	type drive struct {
		Model         string `json:"Model"`
		InterfaceType string `json:"InterfaceType"`
		MediaType     string `json:"MediaType"`
	}
	list, err := decodeJSONList[drive](data)
	if err != nil {
		return nil, fmt.Errorf("parse disk drive json: %w", err)
	}
	var out []refurbish.StorageDescriptor
	for _, d := range list {
		if desc, ok := diskDescriptor(d.Model, d.InterfaceType, d.MediaType); ok {
			out = append(out, desc)
		}
	}
	return out, nil
}

func diskDescriptor(model, iface, media string) (refurbish.StorageDescriptor, bool) {
	model = cleanValue(model)
	if model == "" {
		return refurbish.StorageDescriptor{}, false
	}
	iface = strings.ToUpper(cleanValue(iface))
	media = strings.ToLower(media)
	external := iface == "USB" || iface == "1394" ||
		strings.Contains(media, "removable") || strings.Contains(media, "external")
	return refurbish.StorageDescriptor{Model: model, Internal: !external}, true
}

// decodeJSONList 兼容 ConvertTo-Json 的单对象与数组两种输出。
func decodeJSONList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// jsonNumber 兼容 PowerShell 把数字序列化为数字或字符串。
type jsonNumber float64

func (n *jsonNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*n = jsonNumber(v)
	return nil
}

// windowsBattery batteryScript 的输出。
type windowsBattery struct {
	DesignedCapacity         jsonNumber `json:"DesignedCapacity"`
	FullChargedCapacity      jsonNumber `json:"FullChargedCapacity"`
	CycleCount               jsonNumber `json:"CycleCount"`
	SerialNumber             string     `json:"SerialNumber"`
	ManufactureDate          string     `json:"ManufactureDate"`
	EstimatedChargeRemaining jsonNumber `json:"EstimatedChargeRemaining"`
	BatteryStatus            jsonNumber `json:"BatteryStatus"`
}

func parseWindowsBattery(data []byte) (*windowsBattery, error) {
	list, err := decodeJSONList[windowsBattery](data)
	if err != nil {
		return nil, fmt.Errorf("parse battery json: %w", err)
	}
	for i := range list {
		if list[i].DesignedCapacity > 0 || list[i].FullChargedCapacity > 0 || list[i].CycleCount > 0 {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (b *windowsBattery) facts() *refurbish.Battery {
	if b == nil {
		return nil
	}
	return &refurbish.Battery{
		CycleCount:         int(b.CycleCount),
		DesignCapacity:     int(b.DesignedCapacity),
		FullChargeCapacity: int(b.FullChargedCapacity),
		Serial:             serialOrEmpty(b.SerialNumber),
		ManufactureDate:    cleanValue(b.ManufactureDate),
	}
}

func (b *windowsBattery) info() *BatteryInfo {
	if b == nil {
		return nil
	}
	design, max := int(b.DesignedCapacity), int(b.FullChargedCapacity)
	current := 0
	if max > 0 && b.EstimatedChargeRemaining > 0 {
		current = int(float64(max) * float64(b.EstimatedChargeRemaining) / 100)
	}
	return &BatteryInfo{
		Health:          batteryHealth(design, max),
		CycleCount:      int(b.CycleCount),
		DesignCapacity:  design,
		MaxCapacity:     max,
		CurrentCapacity: current,
		// Win32_Battery.BatteryStatus: 2 = 接通电源，6-9 = 充电中
		IsCharging: b.BatteryStatus == 2 || (b.BatteryStatus >= 6 && b.BatteryStatus <= 9),
	}
}

// windowsMonitor monitorScript 的输出；名称字段是 UTF-16 码元数组，以 0 填充。
type windowsMonitor struct {
	InstanceName          string     `json:"InstanceName"`
	ManufacturerName      []int      `json:"ManufacturerName"`
	UserFriendlyName      []int      `json:"UserFriendlyName"`
	VideoOutputTechnology jsonNumber `json:"VideoOutputTechnology"`
}

// D3DKMDT_VIDEO_OUTPUT_TECHNOLOGY 中表示内建面板的取值。
const (
	votLVDS        = 6
	votDPEmbedded  = 11
	votUDIEmbedded = 13
	votInternal    = 0x80000000
)

func parseWindowsMonitors(data []byte) ([]refurbish.DisplayDescriptor, error) {
	list, err := decodeJSONList[windowsMonitor](data)
	if err != nil {
		return nil, fmt.Errorf("parse monitor json: %w", err)
	}
	out := make([]refurbish.DisplayDescriptor, 0, len(list))
	for _, m := range list {
		tech := uint32(m.VideoOutputTechnology)
		out = append(out, refurbish.DisplayDescriptor{
			Vendor: wmiString(m.ManufacturerName),
			Name:   wmiString(m.UserFriendlyName),
			Internal: tech == votLVDS || tech == votDPEmbedded ||
				tech == votUDIEmbedded || tech == votInternal,
		})
	}
	return out, nil
}

func wmiString(codes []int) string {
	var b strings.Builder
	for _, c := range codes {
		if c == 0 {
			break
		}
		b.WriteRune(rune(c))
	}
	return cleanValue(b.String())
}

// windowsDisk diskHealthScript 的输出。HealthStatus 可能是枚举值或名称。
type windowsDisk struct {
	FriendlyName string          `json:"FriendlyName"`
	HealthStatus json.RawMessage `json:"HealthStatus"`
	PowerOnHours *jsonNumber     `json:"PowerOnHours"`
	Temperature  *jsonNumber     `json:"Temperature"`
}

func parseWindowsDiskHealth(data []byte) (*StorageHealth, error) {
	list, err := decodeJSONList[windowsDisk](data)
	if err != nil {
		return nil, fmt.Errorf("parse disk health json: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	d := list[0]
	h := &StorageHealth{
		Model:       cleanValue(d.FriendlyName),
		SmartStatus: healthStatusName(d.HealthStatus),
	}
	if h.Model == "" {
		h.Model = unknownValue
	}
	if d.PowerOnHours != nil && *d.PowerOnHours > 0 {
		v := uint64(*d.PowerOnHours)
		h.PowerOnHours = &v
	}
	if d.Temperature != nil && *d.Temperature > 0 {
		v := float64(*d.Temperature)
		h.Temperature = &v
	}
	return h, nil
}

// healthStatusName MSFT_PhysicalDisk.HealthStatus：0 Healthy，1 Warning，2 Unhealthy，5 Unknown。
func healthStatusName(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 0:
			return "Healthy"
		case 1:
			return "Warning"
		case 2:
			return "Unhealthy"
		}
	}
	return unknownValue
}
