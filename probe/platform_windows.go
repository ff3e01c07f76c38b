//go:build windows
// +build windows

package probe

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/darkit/refurbish"
)

const (
	biosKey        = `HARDWARE\DESCRIPTION\System\BIOS`
	oemKey         = `SOFTWARE\Microsoft\Windows\CurrentVersion\OEMInformation`
	currentVersion = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`
	autopilotKey   = `SOFTWARE\Microsoft\Provisioning\Diagnostics\Autopilot`
	enrollmentsKey = `SOFTWARE\Microsoft\Enrollments`

	mdmProviderID = "MS DM Server"
)

// PowerShell 脚本统一输出 JSON，数值字段可能是数字也可能是字符串。
const (
	batteryScript = `$s = Get-CimInstance -Namespace root\wmi -ClassName BatteryStaticData -ErrorAction SilentlyContinue | Select-Object -First 1
$f = Get-CimInstance -Namespace root\wmi -ClassName BatteryFullChargedCapacity -ErrorAction SilentlyContinue | Select-Object -First 1
$c = Get-CimInstance -Namespace root\wmi -ClassName BatteryCycleCount -ErrorAction SilentlyContinue | Select-Object -First 1
$b = Get-CimInstance -ClassName Win32_Battery -ErrorAction SilentlyContinue | Select-Object -First 1
if ($b -or $s) {
  [pscustomobject]@{
    DesignedCapacity = $s.DesignedCapacity
    FullChargedCapacity = $f.FullChargedCapacity
    CycleCount = $c.CycleCount
    SerialNumber = $s.SerialNumber
    ManufactureDate = $s.ManufactureDate
    EstimatedChargeRemaining = $b.EstimatedChargeRemaining
    BatteryStatus = $b.BatteryStatus
  } | ConvertTo-Json -Compress
}`

	monitorScript = `$conn = Get-CimInstance -Namespace root\wmi -ClassName WmiMonitorConnectionParams -ErrorAction SilentlyContinue
Get-CimInstance -Namespace root\wmi -ClassName WmiMonitorID -ErrorAction SilentlyContinue | ForEach-Object {
  $i = $_.InstanceName
  [pscustomobject]@{
    InstanceName = $i
    ManufacturerName = $_.ManufacturerName
    UserFriendlyName = $_.UserFriendlyName
    VideoOutputTechnology = ($conn | Where-Object { $_.InstanceName -eq $i } | Select-Object -First 1).VideoOutputTechnology
  }
} | ConvertTo-Json -Compress`

	diskDriveScript = `Get-CimInstance -ClassName Win32_DiskDrive | Select-Object Model,InterfaceType,MediaType | ConvertTo-Json -Compress`

	diskHealthScript = `Get-PhysicalDisk | Sort-Object DeviceId | Select-Object -First 1 | ForEach-Object {
  $r = $_ | Get-StorageReliabilityCounter -ErrorAction SilentlyContinue
  [pscustomobject]@{
    FriendlyName = $_.FriendlyName
    HealthStatus = $_.HealthStatus
    PowerOnHours = $r.PowerOnHours
    Temperature = $r.Temperature
  }
} | ConvertTo-Json -Compress`
)

// windowsPlatform Windows 信号源：注册表 + wmic + PowerShell CIM。
//
// wmic 在新系统上可能被移除，因此序列号与磁盘都有 PowerShell 备选。
type windowsPlatform struct {
	run Runner
}

func newPlatform(run Runner) Platform {
	return &windowsPlatform{run: run}
}

func (p *windowsPlatform) Name() string    { return "windows" }
func (p *windowsPlatform) Profile() string { return refurbish.ProfileWindows }

func (p *windowsPlatform) Sources() []Source {
	return []Source{
		{Name: "serial", Probe: p.serial},
		{Name: "bios", Probe: p.bios},
		{Name: "oem", Probe: p.oem},
		{Name: "install_date", Probe: p.installDate},
		{Name: "enrollment", Probe: p.enrollment},
		{Name: "battery", Probe: p.battery},
		{Name: "storage", Probe: p.storage},
		{Name: "displays", Probe: p.displays},
	}
}

func (p *windowsPlatform) powershell(ctx context.Context, script string) (string, error) {
	return runFirst(ctx, p.run, []string{"powershell", "pwsh"},
		"-NoProfile", "-NonInteractive", "-Command", script)
}

func (p *windowsPlatform) serial(ctx context.Context) (Setter, error) {
	serial := ""
	out, err := p.run(ctx, "wmic", "bios", "get", "SerialNumber")
	if err == nil {
		serial = parseWMICSerial(out)
	}
	if serial == "" {
		ps, psErr := p.powershell(ctx, `(Get-CimInstance -ClassName Win32_BIOS).SerialNumber`)
		if psErr != nil {
			return nil, errors.Join(err, psErr)
		}
		serial = serialOrEmpty(ps)
	}
	if serial == "" {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Serial = serial }, nil
}

func (p *windowsPlatform) bios(ctx context.Context) (Setter, error) {
	text := registryText(registry.LOCAL_MACHINE, biosKey,
		"BIOSVendor", "BIOSVersion", "SystemManufacturer", "SystemProductName",
		"SystemFamily", "SystemSKU", "SystemVersion", "BaseBoardManufacturer", "BaseBoardProduct")
	if text == "" {
		text = wmicBIOSText(ctx, p.run)
	}
	return firmwareSetter("bios", text), nil
}

func (p *windowsPlatform) oem(context.Context) (Setter, error) {
	text := registryText(registry.LOCAL_MACHINE, oemKey,
		"Manufacturer", "Model", "SupportURL", "SupportProvider", "SupportPhone")
	return firmwareSetter("oem", text), nil
}

func firmwareSetter(source, text string) Setter {
	if text == "" {
		return nil
	}
	return func(f *refurbish.Facts) {
		f.Firmware = append(f.Firmware, refurbish.FirmwareDump{Source: source, Text: text})
	}
}

func (p *windowsPlatform) installDate(context.Context) (Setter, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersion, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return nil, err
	}
	defer k.Close()

	sec, _, err := k.GetIntegerValue("InstallDate")
	if err != nil {
		return nil, err
	}
	if sec == 0 {
		return nil, nil
	}
	date := formatUnixDate(int64(sec))
	return func(f *refurbish.Facts) { f.OSInstallDate = date }, nil
}

// enrollment Autopilot 分配的租户视为 DEP 等价物；Enrollments 下任一
// ProviderID 为 "MS DM Server" 的子键表示已注册 MDM。
func (p *windowsPlatform) enrollment(context.Context) (Setter, error) {
	e := &refurbish.Enrollment{}
	e.DeviceEnrollmentProgram = readRegistryString(registry.LOCAL_MACHINE, autopilotKey, "CloudAssignedTenantId") != ""

	k, err := registry.OpenKey(registry.LOCAL_MACHINE, enrollmentsKey, registry.ENUMERATE_SUB_KEYS|registry.WOW64_64KEY)
	if err == nil {
		defer k.Close()
		names, _ := k.ReadSubKeyNames(-1)
		for _, name := range names {
			if strings.EqualFold(readRegistryString(registry.LOCAL_MACHINE, enrollmentsKey+`\`+name, "ProviderID"), mdmProviderID) {
				e.DeviceManagement = true
				break
			}
		}
	}
	return func(f *refurbish.Facts) { f.Enrollment = e }, nil
}

func (p *windowsPlatform) batteryData(ctx context.Context) (*windowsBattery, error) {
	out, err := p.powershell(ctx, batteryScript)
	if err != nil {
		return nil, err
	}
	return parseWindowsBattery([]byte(out))
}

func (p *windowsPlatform) battery(ctx context.Context) (Setter, error) {
	b, err := p.batteryData(ctx)
	if err != nil || b == nil {
		return nil, err
	}
	bat := b.facts()
	return func(f *refurbish.Facts) { f.Battery = bat }, nil
}

func (p *windowsPlatform) storage(ctx context.Context) (Setter, error) {
	var disks []refurbish.StorageDescriptor
	out, err := p.run(ctx, "wmic", "diskdrive", "get", "Model,InterfaceType,MediaType")
	if err == nil {
		disks = parseWMICDiskDrives(out)
	}
	if len(disks) == 0 {
		js, psErr := p.powershell(ctx, diskDriveScript)
		if psErr != nil {
			return nil, errors.Join(err, psErr)
		}
		if disks, psErr = parseDiskDrivesJSON([]byte(js)); psErr != nil {
			return nil, psErr
		}
	}
	if len(disks) == 0 {
		return nil, nil
	}
	return func(f *refurbish.Facts) { f.Storage = append(f.Storage, disks...) }, nil
}

func (p *windowsPlatform) displays(ctx context.Context) (Setter, error) {
	out, err := p.powershell(ctx, monitorScript)
	if err != nil {
		return nil, err
	}
	displays, err := parseWindowsMonitors([]byte(out))
	if err != nil || len(displays) == 0 {
		return nil, err
	}
	return func(f *refurbish.Facts) { f.Displays = append(f.Displays, displays...) }, nil
}

func (p *windowsPlatform) Telemetry(ctx context.Context) Telemetry {
	var t Telemetry
	if b, err := p.batteryData(ctx); err == nil {
		t.Battery = b.info()
	}
	if out, err := p.powershell(ctx, diskHealthScript); err == nil {
		t.Storage, _ = parseWindowsDiskHealth([]byte(out))
	}
	return t
}

// readRegistryString 读取字符串值，失败返回空串。
func readRegistryString(root registry.Key, path, name string) string {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return ""
	}
	defer k.Close()

	value, _, err := k.GetStringValue(name)
	if err != nil {
		return ""
	}
	return cleanValue(value)
}

// registryText 读取同一键下的多个字符串值并拼接。
func registryText(root registry.Key, path string, names ...string) string {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return ""
	}
	defer k.Close()

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if v, _, err := k.GetStringValue(name); err == nil {
			parts = append(parts, v)
		}
	}
	return joinNonEmpty(parts...)
}
