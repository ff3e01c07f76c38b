package probe

import (
	"strings"
)

// cleanValue 去掉两侧空白与 NUL（WMI、sysfs、EDID 字段里都很常见）。
func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\u0000"))
}

// isPlaceholderSerial 识别 OEM 未填写时的占位序列号。
func isPlaceholderSerial(s string) bool {
	l := strings.ToLower(cleanValue(s))
	if l == "" {
		return true
	}
	switch l {
	case "none", "to be filled by o.e.m.", "to be filled by oem", "default string",
		"unknown", "not specified", "not applicable", "system serial number",
		"0123456789", "na", "n/a":
		return true
	}
	// 全 0 / 全 F
	return strings.Trim(l, "0") == "" || strings.Trim(l, "f") == ""
}

// serialOrEmpty 占位值按缺失处理。
func serialOrEmpty(s string) string {
	s = cleanValue(s)
	if isPlaceholderSerial(s) {
		return ""
	}
	return s
}

// joinNonEmpty 以换行拼接非空片段，用于组装固件文本。
func joinNonEmpty(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = cleanValue(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p)
	}
	return b.String()
}
