package refurbish

import (
	"fmt"
	"strings"
)

const (
	// 旧式 12 位 Apple 序列号：第 4 位为半年代码，第 5 位为半年内周次。
	appleYearCodes = "CDFGHJKLMNPQRSTVWXYZ"
	appleWeekCodes = "123456789CDFGHJKLMNPQRTVWXY"
	appleBaseYear  = 2010

	serialPrefixLabel = "serial-prefix:"
)

// buildDetails 把日期类事实一对一搬运到 Details。
//
// date_mismatch 目前只是“电池日期与系统安装日期同时存在”，并不比较两个日期。
func buildDetails(f *Facts, p *Profile, program string) Details {
	batteryDate := ""
	if f.Battery != nil {
		batteryDate = strings.TrimSpace(f.Battery.ManufactureDate)
	}
	installDate := strings.TrimSpace(f.OSInstallDate)

	return Details{
		SerialManufactureDate:  optionalString(serialManufactureDate(f.Serial, p)),
		OSInstallDate:          optionalString(installDate),
		BatteryManufactureDate: optionalString(batteryDate),
		StorageFirstUseDate:    optionalString(strings.TrimSpace(f.StorageFirstUseDate)),
		DateMismatch:           batteryDate != "" && installDate != "",
		RefurbProgram:          optionalString(program),
	}
}

// serialManufactureDate 按判定表的解码方式从序列号推出生产日期。
// 无法解码时退化为前四位序列号，保留“序列号可用”这一信息。
func serialManufactureDate(serial string, p *Profile) string {
	serial = strings.ToUpper(strings.TrimSpace(serial))
	if p.SerialDate == "" || len(serial) < minSerialLength(p) {
		return ""
	}
	if p.SerialDate == SerialDateAppleLegacy {
		if date, ok := decodeAppleLegacySerial(serial); ok {
			return date
		}
	}
	if len(serial) < 4 {
		return ""
	}
	return serialPrefixLabel + serial[:4]
}

// decodeAppleLegacySerial 解码 12 位序列号，返回 YYYY-Www。
// 年份代码十年一循环，这里固定解释为 2010 年代。
func decodeAppleLegacySerial(serial string) (string, bool) {
	if len(serial) != 12 {
		return "", false
	}
	yi := strings.IndexByte(appleYearCodes, serial[3])
	wi := strings.IndexByte(appleWeekCodes, serial[4])
	if yi < 0 || wi < 0 {
		return "", false
	}
	year := appleBaseYear + yi/2
	week := wi + 1
	if yi%2 == 1 {
		week += 26
	}
	if week > 53 {
		return "", false
	}
	return fmt.Sprintf("%d-W%02d", year, week), true
}
