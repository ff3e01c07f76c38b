package refurbish

// Counts 指标按严重程度的计数。
type Counts struct {
	Critical int
	Warning  int
	Total    int
}

// Tally 统计指标严重程度。
func Tally(indicators []Indicator) Counts {
	c := Counts{Total: len(indicators)}
	for _, ind := range indicators {
		switch ind.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityWarning:
			c.Warning++
		}
	}
	return c
}

// Signals 与严重程度无关、直接参与翻新判定的布尔信号。
// 分开传入，便于单独验证每一路来源。
type Signals struct {
	// Program 序列号/固件规则直接判定为翻新计划。
	Program bool
	// PartsReplaced 至少记录了一个替换部件。
	PartsReplaced bool
}

// Verdict 评分结果。
type Verdict struct {
	IsRefurbished bool
	Confidence    Confidence
}

// ConfidenceOf 置信度：
//   - high:   存在 critical，或 warning >= 2
//   - medium: warning >= 1，或指标总数 >= 2
//   - low:    其他
func ConfidenceOf(indicators []Indicator) Confidence {
	c := Tally(indicators)
	switch {
	case c.Critical > 0 || c.Warning >= 2:
		return ConfidenceHigh
	case c.Warning >= 1 || c.Total >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Score 是全函数：没有指标、没有信号时返回 (false, low)。
func Score(indicators []Indicator, s Signals) Verdict {
	warnings := Tally(indicators).Warning > 0
	return Verdict{
		IsRefurbished: s.Program || s.PartsReplaced || warnings,
		Confidence:    ConfidenceOf(indicators),
	}
}
