package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONBlock(t *testing.T) {
	// ```json 围栏优先
	text := "说明文字\n```json\n{\"a\": 1}\n```\n其他内容\n```\n{\"b\": 2}\n```"
	assert.Equal(t, `{"a": 1}`, ExtractJSONBlock(text))

	// 没有 json 围栏时取任意围栏
	text = "来看结果：\n```\n{\"b\": 2}\n```"
	assert.Equal(t, `{"b": 2}`, ExtractJSONBlock(text))

	text = "```text\n{\"c\": 3}\n```"
	assert.Equal(t, `{"c": 3}`, ExtractJSONBlock(text))

	// 无围栏返回去除空白的原文
	assert.Equal(t, `{"d": 4}`, ExtractJSONBlock("  {\"d\": 4}\n"))
	assert.Equal(t, "not json at all", ExtractJSONBlock("not json at all"))
}
