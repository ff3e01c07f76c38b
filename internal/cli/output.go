package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/darkit/refurbish"
)

var (
	bold     = color.New(color.Bold)
	red      = color.New(color.FgRed, color.Bold)
	green    = color.New(color.FgGreen, color.Bold)
	yellow   = color.New(color.FgYellow)
	faint    = color.New(color.Faint)
	sevColor = map[refurbish.Severity]*color.Color{
		refurbish.SeverityInfo:     color.New(color.FgCyan),
		refurbish.SeverityWarning:  color.New(color.FgYellow),
		refurbish.SeverityCritical: color.New(color.FgRed, color.Bold),
	}
)

// 描述代码对应的英文说明。报告本身只携带代码，文案只在终端输出时使用。
var descriptionText = map[string]string{
	refurbish.CodeSerialRefurbPrefix:   "serial number carries a refurbished-program prefix",
	refurbish.CodeFirmwareRefurbMarker: "firmware strings contain a refurbishment marker",
	refurbish.CodeEnrolledBoth:         "enrolled in a device enrollment program and managed by MDM",
	refurbish.CodeEnrolledProgramOnly:  "enrolled in a device enrollment program",
	refurbish.CodeEnrolledMDMOnly:      "managed by MDM",
	refurbish.CodeStorageNotFirstParty: "internal storage is not a first-party part",
	refurbish.CodeDisplayNotFirstParty: "internal display is not a first-party panel",
	refurbish.CodeBatteryLowCycles:     "battery cycle count is unusually low",
	refurbish.CodeBatteryHighHealth:    "battery health is unusually high",
}

// writeReportText 以人类可读的形式输出报告。
func writeReportText(w io.Writer, r refurbish.Report, profile string) {
	verdict := green.Sprint("NOT REFURBISHED")
	if r.IsRefurbished {
		verdict = red.Sprint("REFURBISHED")
	}
	fmt.Fprintf(w, "%s %s (confidence: %s, profile: %s)\n", bold.Sprint("Verdict:"), verdict, r.Confidence, profile)

	if r.Details.RefurbProgram != nil {
		fmt.Fprintf(w, "%s %s\n", bold.Sprint("Program:"), *r.Details.RefurbProgram)
	}

	fmt.Fprintln(w)
	if len(r.Indicators) == 0 {
		fmt.Fprintln(w, faint.Sprint("No indicators detected."))
	} else {
		fmt.Fprintln(w, bold.Sprint("Indicators:"))
		for _, ind := range bySeverity(r.Indicators) {
			c, ok := sevColor[ind.Severity]
			if !ok {
				c = faint
			}
			desc := descriptionText[ind.Description]
			if desc == "" {
				desc = ind.Description
			}
			fmt.Fprintf(w, "  %-10s %-24s %s\n", c.Sprintf("[%s]", strings.ToUpper(string(ind.Severity))), ind.Name, desc)
		}
	}

	if len(r.ReplacedParts) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", bold.Sprint("Replaced parts:"), yellow.Sprint(strings.Join(r.ReplacedParts, ", ")))
	}

	d := r.Details
	rows := []struct {
		label string
		value *string
	}{
		{"Serial manufacture date", d.SerialManufactureDate},
		{"OS install date", d.OSInstallDate},
		{"Battery manufacture date", d.BatteryManufactureDate},
		{"Storage first use date", d.StorageFirstUseDate},
	}
	fmt.Fprintf(w, "\n%s\n", bold.Sprint("Details:"))
	for _, row := range rows {
		v := faint.Sprint("unknown")
		if row.value != nil {
			v = *row.value
		}
		fmt.Fprintf(w, "  %-26s %s\n", row.label+":", v)
	}
	if d.DateMismatch {
		fmt.Fprintf(w, "  %s\n", yellow.Sprint("Battery manufacture date and OS install date are both known; compare them."))
	}
}

// bySeverity 按严重程度从高到低排列，同级保持规则顺序。不修改报告本身。
func bySeverity(indicators []refurbish.Indicator) []refurbish.Indicator {
	out := append([]refurbish.Indicator(nil), indicators...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}
