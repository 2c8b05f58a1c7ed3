// Package markup 将课程正文使用的受限标记语法转换为可直接展示的 HTML。
//
// 支持的语法：围栏代码块、行内代码、管道表格、一到三级标题、加粗、无序列表和换行。
// 转换是纯函数，任何输入都会得到一个字符串结果，无法识别的语法按原文输出。
package markup

import (
	"strconv"
	"strings"
)

// 占位符使用 Unicode 私有区字符，后续的文本规则不会匹配到它们
const (
	blockMarker  = "\uE000"
	inlineMarker = "\uE001"
	markerEnd    = "\uE002"
)

// document 是流水线各阶段共享的中间表示
// text 中的代码片段已被占位符替换，原内容保存在 blocks / inlines 中。
// literals 是正文自带占位符字符的 token 与原字符对照，成对存放
type document struct {
	text     string
	blocks   []string
	inlines  []string
	literals []string
}

type stage struct {
	name  string
	apply func(*document)
}

// 阶段顺序不可调整：换行规则最宽松，必须在标题、加粗、列表之后执行
var pipeline = []stage{
	{name: "markers", apply: escapeMarkers},
	{name: "code-blocks", apply: extractCodeBlocks},
	{name: "inline-code", apply: extractInlineCode},
	{name: "tables", apply: renderTables},
	{name: "headings", apply: renderHeadings},
	{name: "bold", apply: renderBold},
	{name: "lists", apply: renderLists},
	{name: "line-breaks", apply: renderLineBreaks},
	{name: "restore", apply: restorePlaceholders},
}

// Render 将受限标记文本转换为 HTML
func Render(text string) string {
	doc := &document{text: text}
	for _, s := range pipeline {
		s.apply(doc)
	}
	return doc.text
}

// StageNames 返回流水线阶段名称（按执行顺序）
func StageNames() []string {
	names := make([]string, 0, len(pipeline))
	for _, s := range pipeline {
		names = append(names, s.name)
	}
	return names
}

func (d *document) addBlock(html string) string {
	d.blocks = append(d.blocks, html)
	return blockToken(len(d.blocks) - 1)
}

func (d *document) addInline(html string) string {
	d.inlines = append(d.inlines, html)
	return inlineToken(len(d.inlines) - 1)
}

func blockToken(i int) string {
	return blockMarker + strconv.Itoa(i) + markerEnd
}

func inlineToken(i int) string {
	return inlineMarker + strconv.Itoa(i) + markerEnd
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
