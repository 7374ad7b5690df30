package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty reply", input: "", want: ""},
		{name: "chinese paragraph", input: "你好，我是智谱助手。", want: "你好，我是智谱助手。\n"},
		{name: "inline code in reply", input: "调用 `rerank` 接口", want: "调用 <code>rerank</code> 接口\n"},
		{name: "fenced code keeps language", input: "```python\nprint(1)\n```", want: "<pre><code class=\"language-python\">print(1)\n</code></pre>\n"},
		{name: "link loses target", input: "[文档](https://open.bigmodel.cn/dev/api)", want: "<a href=\"https://open.bigmodel.cn/dev/api\">文档</a>\n"},
		{name: "script removed", input: "<script>fetch('/steal')</script>", want: "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkdownToHTML([]byte(tt.input)))
		})
	}
}

func TestMarkdownToHTML_FlattensBlocks(t *testing.T) {
	reply := "## 总结\n\n1. 第一步：准备数据\n2. 第二步：调用 **rerank**\n\n| 模型 | 用途 |\n|---|---|\n| glm-4v | 图像 |\n"
	got := MarkdownToHTML([]byte(reply))

	for _, text := range []string{"总结", "第一步：准备数据", "第二步：调用", "<strong>rerank</strong>", "glm-4v", "图像"} {
		assert.Contains(t, got, text)
	}
	for _, tag := range []string{"<h2", "<ol", "<li", "<table", "<td", "<p>"} {
		assert.NotContains(t, got, tag)
	}
}

func TestMarkdownToHTML_Links(t *testing.T) {
	got := MarkdownToHTML([]byte("详见 https://open.bigmodel.cn 或 [控制台](https://bigmodel.cn/console \"console\")"))

	assert.Contains(t, got, `<a href="https://open.bigmodel.cn">https://open.bigmodel.cn</a>`)
	assert.Contains(t, got, `<a href="https://bigmodel.cn/console">控制台</a>`)
	assert.NotContains(t, got, "target=")
	assert.NotContains(t, got, "title=")
}

func TestMarkdownToHTML_QuotedAnswer(t *testing.T) {
	got := MarkdownToHTML([]byte("> 原文：模型*不会*记住对话\n\n~~旧答案~~"))

	assert.Contains(t, got, "<blockquote>")
	assert.Contains(t, got, "<em>不会</em>")
	assert.Contains(t, got, "<del>旧答案</del>")
}
