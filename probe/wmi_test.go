package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkit/refurbish"
)

func TestParseWMICTable(t *testing.T) {
	out := "InterfaceType  MediaType              Model\r\n" +
		"SCSI           Fixed hard disk media  Samsung SSD 970 EVO Plus 1TB\r\n" +
		"USB            External hard disk media  WD My Passport 25E2\r\n" +
		"\r\n"
	rows := parseWMICTable(out)
	require.Len(t, rows, 2)
	assert.Equal(t, "SCSI", rows[0]["InterfaceType"])
	assert.Equal(t, "Fixed hard disk media", rows[0]["MediaType"])
	assert.Equal(t, "Samsung SSD 970 EVO Plus 1TB", rows[0]["Model"])
	assert.Equal(t, "USB", rows[1]["InterfaceType"])
}

func TestParseWMICTableNoInstance(t *testing.T) {
	assert.Nil(t, parseWMICTable("No Instance(s) Available.\r\n"))
	assert.Nil(t, parseWMICTable(""))
}

func TestParseWMICSerial(t *testing.T) {
	assert.Equal(t, "PF2ABCDE", parseWMICSerial("SerialNumber  \r\nPF2ABCDE      \r\n"))
	assert.Empty(t, parseWMICSerial("SerialNumber\r\nTo be filled by O.E.M.\r\n"))
	assert.Empty(t, parseWMICSerial("SerialNumber\r\n0000000000\r\n"))
}

func TestWMICText(t *testing.T) {
	out := "Manufacturer  Version\r\nLENOVO  LENOVO - 1 Renewed\r\n"
	assert.Equal(t, "LENOVO  LENOVO - 1 Renewed", wmicText(out))
	assert.Empty(t, wmicText("Manufacturer\r\n"))
}

func TestWMICBIOSText(t *testing.T) {
	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) (string, error) {
		gotArgs = append([]string{name}, args...)
		return "Manufacturer  SMBIOSBIOSVersion  Version\r\nLENOVO  N2HET77W (1.60 ) Renewed  LENOVO - 1160\r\n", nil
	}
	text := wmicBIOSText(context.Background(), run)
	assert.Equal(t, []string{"wmic", "bios", "get", "Manufacturer,SMBIOSBIOSVersion,Version"}, gotArgs)
	assert.Contains(t, text, "Renewed")
	assert.NotContains(t, text, "SMBIOSBIOSVersion")

	// 端到端：回退文本同样触发 bios_refurb
	facts := refurbish.Facts{Firmware: []refurbish.FirmwareDump{{Source: "bios", Text: text}}}
	report := refurbish.Assess(facts, refurbish.ProfileWindows)
	require.Len(t, report.Indicators, 1)
	assert.Equal(t, "bios_refurb", report.Indicators[0].Name)

	failing := func(context.Context, string, ...string) (string, error) {
		return "", errors.New("wmic: not found")
	}
	assert.Empty(t, wmicBIOSText(context.Background(), failing))
}

func TestParseWMICDiskDrives(t *testing.T) {
	out := "InterfaceType  MediaType              Model\r\n" +
		"SCSI           Fixed hard disk media  Samsung SSD 970 EVO Plus 1TB\r\n" +
		"USB            External hard disk media  WD My Passport 25E2\r\n"
	assert.Equal(t, []refurbish.StorageDescriptor{
		{Model: "Samsung SSD 970 EVO Plus 1TB", Internal: true},
		{Model: "WD My Passport 25E2", Internal: false},
	}, parseWMICDiskDrives(out))
}

func TestParseDiskDrivesJSON(t *testing.T) {
	one := `{"Model":"KXG60ZNV512G TOSHIBA","InterfaceType":"SCSI","MediaType":"Fixed hard disk media"}`
	got, err := parseDiskDrivesJSON([]byte(one))
	require.NoError(t, err)
	assert.Equal(t, []refurbish.StorageDescriptor{{Model: "KXG60ZNV512G TOSHIBA", Internal: true}}, got)

	many := `[{"Model":"KXG60ZNV512G TOSHIBA","InterfaceType":"SCSI"},{"Model":"SanDisk Cruzer","InterfaceType":"USB","MediaType":"Removable Media"},{"Model":""}]`
	got, err = parseDiskDrivesJSON([]byte(many))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[1].Internal)

	got, err = parseDiskDrivesJSON(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseWindowsBattery(t *testing.T) {
	js := `{"DesignedCapacity":57000,"FullChargedCapacity":"55860","CycleCount":42,"SerialNumber":" 0123 ","ManufactureDate":null,"EstimatedChargeRemaining":50,"BatteryStatus":2}`
	b, err := parseWindowsBattery([]byte(js))
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Equal(t, &refurbish.Battery{
		CycleCount:         42,
		DesignCapacity:     57000,
		FullChargeCapacity: 55860,
		Serial:             "0123",
	}, b.facts())

	info := b.info()
	assert.InDelta(t, 98.0, info.Health, 1e-9)
	assert.Equal(t, 27930, info.CurrentCapacity)
	assert.True(t, info.IsCharging)
}

func TestParseWindowsBatteryAbsent(t *testing.T) {
	b, err := parseWindowsBattery([]byte(""))
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Nil(t, b.facts())
	assert.Nil(t, b.info())

	_, err = parseWindowsBattery([]byte("{"))
	assert.Error(t, err)
}

func TestParseWindowsMonitors(t *testing.T) {
	// "BOE" / "SDC" 以 UTF-16 码元数组表示，尾部 0 填充
	js := `[
 {"InstanceName":"DISPLAY\\BOE0867\\4&1_0","ManufacturerName":[66,79,69,0,0],"UserFriendlyName":[],"VideoOutputTechnology":2147483648},
 {"InstanceName":"DISPLAY\\DEL41A8\\5&2_0","ManufacturerName":[68,69,76,0],"UserFriendlyName":[68,69,76,76,32,85,50,55,50,48,81,0],"VideoOutputTechnology":10}
]`
	got, err := parseWindowsMonitors([]byte(js))
	require.NoError(t, err)
	assert.Equal(t, []refurbish.DisplayDescriptor{
		{Vendor: "BOE", Name: "", Internal: true},
		{Vendor: "DEL", Name: "DELL U2720Q", Internal: false},
	}, got)
}

func TestParseWindowsDiskHealth(t *testing.T) {
	h, err := parseWindowsDiskHealth([]byte(`{"FriendlyName":"Samsung SSD 980","HealthStatus":0,"PowerOnHours":1234,"Temperature":38}`))
	require.NoError(t, err)
	assert.Equal(t, "Samsung SSD 980", h.Model)
	assert.Equal(t, "Healthy", h.SmartStatus)
	require.NotNil(t, h.PowerOnHours)
	assert.Equal(t, uint64(1234), *h.PowerOnHours)
	require.NotNil(t, h.Temperature)
	assert.InDelta(t, 38.0, *h.Temperature, 1e-9)

	h, err = parseWindowsDiskHealth([]byte(`{"FriendlyName":"","HealthStatus":"Warning"}`))
	require.NoError(t, err)
	assert.Equal(t, unknownValue, h.Model)
	assert.Equal(t, "Warning", h.SmartStatus)
	assert.Nil(t, h.PowerOnHours)
}

func TestIsPlaceholderSerial(t *testing.T) {
	for _, s := range []string{"", "  ", "To Be Filled By O.E.M.", "Default string", "00000000", "FFFFFFFF", "System Serial Number"} {
		assert.True(t, isPlaceholderSerial(s), s)
	}
	for _, s := range []string{"C02XK0ABJ1WK", "PF2ABCDE", "5CD1234XYZ"} {
		assert.False(t, isPlaceholderSerial(s), s)
	}
}
