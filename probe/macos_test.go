package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkit/refurbish"
)

const ioregPlatformOutput = `+-o MacBookPro15,1  <class IOPlatformExpertDevice, id 0x100000110, registered, matched, active, busy 0 (3 ms), retain 35>
    {
      "IOPlatformUUID" = "5B5E2C4A-0000-0000-0000-000000000000"
      "IOPlatformSerialNumber" = "C02XK0ABJ1WK"
      "manufacturer" = <"Apple Inc.">
    }
`

const smartBatteryOutput = `+-o AppleSmartBattery  <class AppleSmartBattery, id 0x100000258, registered, matched, active, busy 0 (0 ms), retain 8>
    {
      "CycleCount" = 123
      "DesignCapacity" = 5103
      "AppleRawMaxCapacity" = 4500
      "MaxCapacity" = 100
      "CurrentCapacity" = 88
      "IsCharging" = Yes
      "Temperature" = 3050
      "Serial" = "D86912345ABCDE"
      "ManufactureDate" = 19781
    }
`

func TestParseIORegSerial(t *testing.T) {
	assert.Equal(t, "C02XK0ABJ1WK", parseIORegSerial(ioregPlatformOutput))
	assert.Empty(t, parseIORegSerial(""))

	// ioreg -l 的树形前缀
	nested := `    | |   "IOPlatformSerialNumber" = "FVFXXXXXXXXX"`
	assert.Equal(t, "FVFXXXXXXXXX", parseIORegSerial(nested))
}

func TestDecodeManufactureDate(t *testing.T) {
	// (2018-1980)<<9 | 10<<5 | 5
	assert.Equal(t, "2018-10-05", decodeManufactureDate("19781"))
	assert.Equal(t, "2018-10-05", decodeManufactureDate(`"19781"`))
	assert.Equal(t, "0x4d5", decodeManufactureDate("0x4d5"))
	// 月份为 0，无法解码时原样返回
	assert.Equal(t, "19456", decodeManufactureDate("19456"))
}

func TestParseBatteryManufactureDate(t *testing.T) {
	out := `    | |   "BatteryManufactureDate" = 19781
    | |   "ManufactureDate" = 1`
	assert.Equal(t, "2018-10-05", parseBatteryManufactureDate(out))
	assert.Empty(t, parseBatteryManufactureDate(ioregPlatformOutput))
}

func TestParseSmartBattery(t *testing.T) {
	b := parseSmartBattery(smartBatteryOutput)

	facts := b.facts()
	require.NotNil(t, facts)
	assert.Equal(t, refurbish.Battery{
		CycleCount:         123,
		DesignCapacity:     5103,
		FullChargeCapacity: 4500,
		Serial:             "D86912345ABCDE",
		ManufactureDate:    "2018-10-05",
	}, *facts)

	info := b.info()
	require.NotNil(t, info)
	assert.InDelta(t, 4500.0/5103.0*100, info.Health, 1e-9)
	assert.Equal(t, 88, info.CurrentCapacity)
	assert.True(t, info.IsCharging)
	require.NotNil(t, info.Temperature)
	assert.InDelta(t, 30.5, *info.Temperature, 1e-9)
}

func TestParseSmartBatteryDesktop(t *testing.T) {
	b := parseSmartBattery("")
	assert.Nil(t, b.facts())
	assert.Nil(t, b.info())
}

func TestActualMaxCapacity(t *testing.T) {
	tests := []struct {
		name string
		b    smartBattery
		want int
	}{
		{"raw preferred", smartBattery{RawMaxCapacity: 4200, MaxCapacity: 4300, DesignCapacity: 5000}, 4200},
		{"legacy mAh", smartBattery{MaxCapacity: 4300, DesignCapacity: 5000}, 4300},
		{"percent falls back to design", smartBattery{MaxCapacity: 100, DesignCapacity: 5000}, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.actualMaxCapacity())
		})
	}
}

func TestParseDiskutilInfo(t *testing.T) {
	out := `   Device Identifier:         disk0
   Device Node:               /dev/disk0
   Whole:                     Yes
   Device / Media Name:       APPLE SSD AP0512M
   Protocol:                  Apple Fabric
   SMART Status:              Verified
   Device Location:           Internal
   Removable Media:           Fixed
`
	d := parseDiskutilInfo(out)
	assert.Equal(t, "APPLE SSD AP0512M", d.Model)
	assert.True(t, d.Internal)
	assert.Equal(t, "Verified", d.SmartStatus)

	ext := parseDiskutilInfo("   Device / Media Name:       Samsung T7\n   Device Location:           External\n")
	assert.False(t, ext.Internal)
}

func TestParseEnrollment(t *testing.T) {
	e := parseEnrollment("Enrolled via DEP: Yes\nMDM enrollment: Yes (User Approved)\n")
	require.NotNil(t, e)
	assert.True(t, e.DeviceEnrollmentProgram)
	assert.True(t, e.DeviceManagement)

	e = parseEnrollment("Enrolled via DEP: No\nMDM enrollment: No\n")
	require.NotNil(t, e)
	assert.False(t, e.DeviceEnrollmentProgram)
	assert.False(t, e.DeviceManagement)

	assert.Nil(t, parseEnrollment("profiles: command not supported"))
}

func TestParseDisplays(t *testing.T) {
	js := `{
  "SPDisplaysDataType" : [
    {
      "_name" : "Apple M1 Pro",
      "spdisplays_vendor" : "sppci_vendor_Apple",
      "spdisplays_ndrvs" : [
        {
          "_name" : "Color LCD",
          "_spdisplays_display-vendor-id" : "610",
          "spdisplays_connection_type" : "spdisplays_internal"
        },
        {
          "_name" : "DELL U2720Q",
          "_spdisplays_display-vendor-id" : "10ac"
        }
      ]
    },
    {
      "_name" : "Intel UHD Graphics 630",
      "spdisplays_vendor" : "Intel"
    }
  ]
}`
	got, err := parseDisplays([]byte(js))
	require.NoError(t, err)
	assert.Equal(t, []refurbish.DisplayDescriptor{
		{Vendor: "APP", Name: "Color LCD", Internal: true},
		{Vendor: "DEL", Name: "DELL U2720Q", Internal: false},
	}, got)

	_, err = parseDisplays([]byte("not json"))
	assert.Error(t, err)
}

func TestParseDisplaysVendorFallback(t *testing.T) {
	js := `{"SPDisplaysDataType":[{"spdisplays_ndrvs":[{"_name":"Built-in Retina Display","spdisplays_vendor":"Apple","spdisplays_connection_type":"spdisplays_internal"}]}]}`
	got, err := parseDisplays([]byte(js))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Apple", got[0].Vendor)
	assert.True(t, got[0].Internal)
}

func TestParseStorageModel(t *testing.T) {
	js := `{"SPStorageDataType":[{"_name":"Macintosh HD","physical_drive":{"device_name":"APPLE SSD AP0512Q","is_internal_disk":"yes"}}]}`
	assert.Equal(t, "APPLE SSD AP0512Q", parseStorageModel([]byte(js)))
	assert.Empty(t, parseStorageModel([]byte(`{"SPStorageDataType":[]}`)))
	assert.Empty(t, parseStorageModel([]byte("{")))
}

func TestParseSPHardwareSerial(t *testing.T) {
	js := `{"SPHardwareDataType":[{"machine_model":"MacBookPro18,3","serial_number":"FVFXXXXXXXXX"}]}`
	assert.Equal(t, "FVFXXXXXXXXX", parseSPHardwareSerial([]byte(js)))
	assert.Empty(t, parseSPHardwareSerial([]byte(`{}`)))
}
