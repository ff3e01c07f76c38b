// Package refurbish judges whether a machine is a refurbished or part-swapped
// unit from one batch of hardware/firmware/OS facts.
//
// https://github.com/darkit/refurbish
//
// The engine is a pure, synchronous computation: it never runs OS commands and
// never fails. Facts are gathered by the probe package (or any other
// collaborator), then folded by a fixed set of indicator rules into a Report
// carrying a verdict, a confidence tier and the evidence that led to it.
//
// Vendor-specific knowledge (first-party storage models, display vendors,
// refurbished serial prefixes) lives in named Profiles so new vendors can be
// added without touching rule logic.
package refurbish // import "github.com/darkit/refurbish"

import (
	"fmt"
	"log/slog"
)

// Evidence 聚合阶段的产物：所有规则的指标、替换部件和派生的日期信息。
type Evidence struct {
	Indicators    []Indicator
	ReplacedParts []string
	Details       Details
	// Provisional 序列号/固件规则给出的直接翻新信号（OR 合并）。
	Provisional bool
}

// Engine 按判定表运行规则集。Engine 创建后只读，可被并发使用。
type Engine struct {
	profile Profile
	rules   []Rule
	logger  *slog.Logger
}

// Option 配置 Engine。
type Option func(*Engine)

// WithRules 替换规则集；顺序即指标输出顺序。
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// WithLogger 输出每条规则的调试信息。
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine 以给定判定表创建引擎。
func NewEngine(profile Profile, opts ...Option) *Engine {
	e := &Engine{
		profile: profile.Clone(),
		rules:   DefaultRules(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Profile 返回引擎使用的判定表副本。
func (e *Engine) Profile() Profile {
	return e.profile.Clone()
}

// Evaluate 以固定顺序运行全部规则并拼接结果。
// 单条规则出问题只会让它自己没有产出，不会中断聚合。
func (e *Engine) Evaluate(f Facts) Evidence {
	ev := Evidence{
		Indicators:    []Indicator{},
		ReplacedParts: []string{},
	}
	program := ""
	for _, rule := range e.rules {
		out := e.run(rule, &f)
		ev.Indicators = append(ev.Indicators, out.Indicators...)
		ev.ReplacedParts = append(ev.ReplacedParts, out.ReplacedParts...)
		ev.Provisional = ev.Provisional || out.Provisional
		if program == "" && out.Program != "" {
			program = out.Program
		}
	}
	ev.Details = buildDetails(&f, &e.profile, program)
	return ev
}

// Assess 单次评估入口：聚合、评分、组装。相同输入总是得到逐字段相等的报告。
func (e *Engine) Assess(f Facts) Report {
	ev := e.Evaluate(f)
	verdict := Score(ev.Indicators, Signals{
		Program:       ev.Provisional,
		PartsReplaced: len(ev.ReplacedParts) > 0,
	})
	return Report{
		IsRefurbished: verdict.IsRefurbished,
		Confidence:    verdict.Confidence,
		Indicators:    ev.Indicators,
		ReplacedParts: ev.ReplacedParts,
		Details:       ev.Details,
	}
}

// Assess 使用已注册的判定表评估；未知名称退回 generic。
func Assess(f Facts, profileName string) Report {
	p, ok := LookupProfile(profileName)
	if !ok {
		p = GenericProfile()
	}
	return NewEngine(p).Assess(f)
}

func (e *Engine) run(rule Rule, f *Facts) (out Outcome) {
	if rule.Eval == nil {
		return Outcome{}
	}
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{}
			if e.logger != nil {
				e.logger.Warn("rule panicked", "rule", rule.Name, "error", fmt.Sprint(r))
			}
		}
	}()
	out = rule.Eval(f, &e.profile)
	if e.logger != nil {
		e.logger.Debug("rule evaluated",
			"rule", rule.Name,
			"indicators", len(out.Indicators),
			"replaced_parts", len(out.ReplacedParts),
			"provisional", out.Provisional,
		)
	}
	return out
}
