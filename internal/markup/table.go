package markup

import "strings"

// renderTables 将连续的管道行转换为表格，第一行为表头，分隔行不输出
func renderTables(doc *document) {
	lines := strings.Split(doc.text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); {
		if !isTableRow(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}

		start := i
		for i < len(lines) && isTableRow(lines[i]) {
			i++
		}
		out = append(out, buildTable(lines[start:i]))

		// 表格之后的空行并入表格
		for i < len(lines)-1 && strings.TrimSpace(lines[i]) == "" {
			i++
		}
	}

	doc.text = strings.Join(out, "\n")
}

func isTableRow(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 3 && t[0] == '|' && t[len(t)-1] == '|'
}

func isSeparatorRow(row string) bool {
	for _, r := range row {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}

func buildTable(rows []string) string {
	var b strings.Builder
	b.WriteString("<table>")

	for idx, row := range rows {
		row = strings.TrimSpace(row)
		if isSeparatorRow(row) {
			continue
		}

		tag := "td"
		if idx == 0 {
			tag = "th"
		}

		b.WriteString("<tr>")
		for _, cell := range splitCells(row) {
			b.WriteString("<" + tag + ">" + cell + "</" + tag + ">")
		}
		b.WriteString("</tr>")
	}

	b.WriteString("</table>")
	return b.String()
}

// splitCells 按 | 切分，丢弃首尾的空片段
func splitCells(row string) []string {
	parts := strings.Split(row, "|")
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}
