package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Duration 从自由文本（如 "4 weeks"、"2-3 weeks"）解析出的时长。
// 解析失败时调用方保留原文本，不视为错误。
type Duration struct {
	Low  int
	High int // 无区间时等于 Low
	Unit string
}

var (
	durationPattern = regexp.MustCompile(`^\s*(\d+)(?:\s*-\s*(\d+))?\s*([A-Za-z]+)\s*$`)
	hoursPattern    = regexp.MustCompile(`(?i)(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m)\b`)
)

func ParseDuration(text string) (Duration, bool) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return Duration{}, false
	}

	low, _ := strconv.Atoi(m[1])
	high := low
	if m[2] != "" {
		high, _ = strconv.Atoi(m[2])
	}

	return Duration{Low: low, High: high, Unit: m[3]}, true
}

// Scale 按系数缩放每个数值边界，向上取整
func (d Duration) Scale(factor float64) Duration {
	return Duration{
		Low:  int(math.Ceil(float64(d.Low) * factor)),
		High: int(math.Ceil(float64(d.High) * factor)),
		Unit: d.Unit,
	}
}

// String 输出单位统一为复数形式（"week"→"weeks"）
func (d Duration) String() string {
	unit := d.Unit
	if !strings.HasSuffix(strings.ToLower(unit), "s") {
		unit += "s"
	}
	if d.High != d.Low {
		return fmt.Sprintf("%d-%d %s", d.Low, d.High, unit)
	}
	return fmt.Sprintf("%d %s", d.Low, unit)
}

// ScaleDurationText 缩放时长文本；无法解析时原样返回
func ScaleDurationText(text string, factor float64) string {
	d, ok := ParseDuration(text)
	if !ok {
		return text
	}
	return d.Scale(factor).String()
}

const defaultModuleHours = 2

// ParseHours 提取前导整数及其小时/分钟单位，无法解析时默认 2 小时
func ParseHours(text string) float64 {
	m := hoursPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultModuleHours
	}

	n, _ := strconv.Atoi(m[1])
	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "m") {
		return float64(n) / 60.0
	}
	return float64(n)
}
