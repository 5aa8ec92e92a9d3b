package docs_tools

import (
	"strings"

	docs "google.golang.org/api/docs/v1"
)

var headingLevels = map[string]int{
	"TITLE":     1,
	"HEADING_1": 1,
	"HEADING_2": 2,
	"HEADING_3": 3,
	"HEADING_4": 4,
	"HEADING_5": 5,
	"HEADING_6": 6,
}

// Markdown renders the document body as Markdown. Headings, bullets,
// bold, italic, monospace runs, links and tables are kept; everything else
// is reduced to its text.
func Markdown(doc *docs.Document) string {
	if doc.Body == nil {
		return ""
	}
	var md strings.Builder
	for _, el := range doc.Body.Content {
		switch {
		case el.Paragraph != nil:
			writeMarkdownParagraph(&md, el.Paragraph)
		case el.Table != nil:
			writeMarkdownTable(&md, el.Table)
		}
	}
	return md.String()
}

func writeMarkdownParagraph(md *strings.Builder, p *docs.Paragraph) {
	var line strings.Builder
	for _, pe := range p.Elements {
		if pe.TextRun != nil {
			writeMarkdownRun(&line, pe.TextRun)
		}
	}
	text := strings.TrimRight(line.String(), "\n")
	if text == "" {
		return
	}

	level := 0
	if p.ParagraphStyle != nil {
		level = headingLevels[p.ParagraphStyle.NamedStyleType]
	}
	switch {
	case level > 0:
		md.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
	case p.Bullet != nil:
		md.WriteString(strings.Repeat("  ", int(p.Bullet.NestingLevel)) + "- " + text + "\n")
	default:
		md.WriteString(text + "\n\n")
	}
}

func writeMarkdownRun(md *strings.Builder, run *docs.TextRun) {
	content := run.Content
	style := run.TextStyle
	core := strings.TrimRight(content, "\n")
	if style == nil || strings.TrimSpace(core) == "" {
		md.WriteString(content)
		return
	}
	trailer := content[len(core):]

	switch {
	case style.Link != nil && style.Link.Url != "":
		md.WriteString("[" + strings.TrimSpace(core) + "](" + style.Link.Url + ")")
	case style.WeightedFontFamily != nil && isMonospace(style.WeightedFontFamily.FontFamily):
		md.WriteString("`" + strings.TrimSpace(core) + "`")
	default:
		marker := ""
		if style.Bold {
			marker += "**"
		}
		if style.Italic {
			marker += "*"
		}
		md.WriteString(marker + core + reverse(marker))
	}
	md.WriteString(trailer)
}

func writeMarkdownTable(md *strings.Builder, t *docs.Table) {
	for i, row := range t.TableRows {
		md.WriteString("|")
		for _, cell := range row.TableCells {
			var text strings.Builder
			writeContent(&text, cell.Content)
			md.WriteString(" " + strings.Join(strings.Fields(text.String()), " ") + " |")
		}
		md.WriteString("\n")
		if i == 0 {
			md.WriteString("|" + strings.Repeat(" --- |", len(row.TableCells)) + "\n")
		}
	}
	md.WriteString("\n")
}

func isMonospace(family string) bool {
	switch family {
	case "Courier New", "Consolas", "Roboto Mono", "Source Code Pro", "Inconsolata":
		return true
	}
	return false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
