package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	d, ok := ParseDuration("4 weeks")
	assert.True(t, ok)
	assert.Equal(t, Duration{Low: 4, High: 4, Unit: "weeks"}, d)

	d, ok = ParseDuration("2-3 weeks")
	assert.True(t, ok)
	assert.Equal(t, Duration{Low: 2, High: 3, Unit: "weeks"}, d)

	d, ok = ParseDuration("1 week")
	assert.True(t, ok)
	assert.Equal(t, Duration{Low: 1, High: 1, Unit: "week"}, d)

	_, ok = ParseDuration("约两周")
	assert.False(t, ok)

	_, ok = ParseDuration("soon")
	assert.False(t, ok)
}

func TestScaleDurationText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4 weeks", "4 weeks"},   // 3.2 向上取整回 4
		{"5 weeks", "4 weeks"},   // 4.0
		{"10 hours", "8 hours"},  // 8.0
		{"2-3 weeks", "2-3 weeks"},
		{"1 week", "1 weeks"},    // 单位统一复数
		{"视情况而定", "视情况而定"}, // 解析失败原样返回
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ScaleDurationText(c.in, 0.8), "input %q", c.in)
	}
}

func TestParseHours(t *testing.T) {
	assert.Equal(t, 10.0, ParseHours("10 hours"))
	assert.Equal(t, 3.0, ParseHours("3h"))
	assert.Equal(t, 0.5, ParseHours("30 minutes"))
	assert.Equal(t, 0.75, ParseHours("45 min"))

	// 无法识别的单位走默认值，"months" 不能当作分钟
	assert.Equal(t, 2.0, ParseHours("3 months"))
	assert.Equal(t, 2.0, ParseHours("2 weeks"))
	assert.Equal(t, 2.0, ParseHours(""))
}
