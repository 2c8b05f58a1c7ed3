package markup

import (
	"regexp"
	"strings"
)

var (
	codeBlockPattern  = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	paragraphPattern  = regexp.MustCompile(`\n\n+`)
)

var markerEntities = []struct{ marker, entity string }{
	{blockMarker, "&#xE000;"},
	{inlineMarker, "&#xE001;"},
	{markerEnd, "&#xE002;"},
}

// escapeMarkers 把正文中本身出现的占位符字符换成行内片段：
// 正文中还原为字符实体，代码片段中还原为原字符
func escapeMarkers(doc *document) {
	if !strings.ContainsAny(doc.text, blockMarker+inlineMarker+markerEnd) {
		return
	}

	pairs := make([]string, 0, 2*len(markerEntities))
	for _, m := range markerEntities {
		if !strings.Contains(doc.text, m.marker) {
			continue
		}
		token := doc.addInline(m.entity)
		pairs = append(pairs, m.marker, token)
		doc.literals = append(doc.literals, token, m.marker)
	}
	doc.text = strings.NewReplacer(pairs...).Replace(doc.text)
}

// rawCode 还原代码片段中被 escapeMarkers 替换的占位符字符
func (d *document) rawCode(code string) string {
	if len(d.literals) == 0 {
		return code
	}
	return strings.NewReplacer(d.literals...).Replace(code)
}

func extractCodeBlocks(doc *document) {
	doc.text = replaceSubmatches(codeBlockPattern, doc.text, func(groups []string) string {
		lang, code := groups[1], groups[2]
		code = doc.rawCode(strings.Trim(code, "\r\n"))

		open := `<pre class="code-block">`
		if lang != "" {
			open = `<pre class="code-block" data-lang="` + lang + `">`
		}
		return doc.addBlock(open + "<code>" + escapeHTML(code) + "</code></pre>")
	})
}

func extractInlineCode(doc *document) {
	doc.text = replaceSubmatches(inlineCodePattern, doc.text, func(groups []string) string {
		return doc.addInline(`<code class="inline-code">` + escapeHTML(doc.rawCode(groups[1])) + "</code>")
	})
}

func renderHeadings(doc *document) {
	lines := strings.Split(doc.text, "\n")
	for i, line := range lines {
		if level, title := headingLevel(line); level > 0 {
			tag := "h" + string(rune('0'+level))
			lines[i] = "<" + tag + ">" + title + "</" + tag + ">"
		}
	}
	doc.text = strings.Join(lines, "\n")
}

// headingLevel 识别行首的 1~3 个 # 加空格，返回级别和去掉标记后的内容
func headingLevel(line string) (int, string) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 3 || n >= len(line) || line[n] != ' ' {
		return 0, ""
	}
	return n, line[n+1:]
}

func renderBold(doc *document) {
	doc.text = boldPattern.ReplaceAllString(doc.text, "<strong>$1</strong>")
}

func renderLists(doc *document) {
	lines := strings.Split(doc.text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if !strings.HasPrefix(lines[i], "- ") {
			out = append(out, lines[i])
			i++
			continue
		}

		var b strings.Builder
		b.WriteString("<ul>")
		for i < len(lines) && strings.HasPrefix(lines[i], "- ") {
			b.WriteString("<li>" + strings.TrimPrefix(lines[i], "- ") + "</li>")
			i++
		}
		b.WriteString("</ul>")
		out = append(out, b.String())
	}

	doc.text = strings.Join(out, "\n")
}

func renderLineBreaks(doc *document) {
	text := paragraphPattern.ReplaceAllString(doc.text, "<br/><br/>")
	doc.text = strings.ReplaceAll(text, "\n", "<br/>")
}

func restorePlaceholders(doc *document) {
	if len(doc.blocks) == 0 && len(doc.inlines) == 0 {
		return
	}

	pairs := make([]string, 0, 2*(len(doc.blocks)+len(doc.inlines)))
	for i, html := range doc.inlines {
		pairs = append(pairs, inlineToken(i), html)
	}
	for i, html := range doc.blocks {
		pairs = append(pairs, blockToken(i), html)
	}
	doc.text = strings.NewReplacer(pairs...).Replace(doc.text)
}

// replaceSubmatches 与 ReplaceAllStringFunc 类似，但回调可以拿到捕获组
func replaceSubmatches(re *regexp.Regexp, src string, repl func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(src[last:m[0]])

		groups := make([]string, len(m)/2)
		for g := range groups {
			if m[2*g] >= 0 {
				groups[g] = src[m[2*g]:m[2*g+1]]
			}
		}
		b.WriteString(repl(groups))
		last = m[1]
	}
	b.WriteString(src[last:])
	return b.String()
}
