package codec

import "strings"

const indentUnit = "    "

type attr struct {
	name  string
	value string
}

// xmlWriter emits indented markup line by line. Element and attribute
// order is exactly the order of the calls, which keeps output byte-stable.
type xmlWriter struct {
	b     strings.Builder
	depth int
}

func (w *xmlWriter) line(s string) {
	for i := 0; i < w.depth; i++ {
		w.b.WriteString(indentUnit)
	}
	w.b.WriteString(s)
	w.b.WriteByte('\n')
}

func (w *xmlWriter) open(name string, attrs ...attr) {
	w.line("<" + name + formatAttrs(attrs) + ">")
	w.depth++
}

func (w *xmlWriter) close(name string) {
	w.depth--
	w.line("</" + name + ">")
}

func (w *xmlWriter) empty(name string, attrs ...attr) {
	w.line("<" + name + formatAttrs(attrs) + " />")
}

func (w *xmlWriter) text(name, text string) {
	w.line("<" + name + ">" + EscapeXML(text) + "</" + name + ">")
}

func (w *xmlWriter) cdata(name, data string) {
	w.line("<" + name + "><![CDATA[" + cdataSafe(data) + "]]></" + name + ">")
}

// cdataBlock writes a multi-line CDATA section, indenting each line of data
// one level below the element.
func (w *xmlWriter) cdataBlock(name, data string) {
	w.line("<" + name + "><![CDATA[")
	w.depth++
	for _, l := range strings.Split(strings.TrimRight(cdataSafe(data), "\n"), "\n") {
		w.line(l)
	}
	w.depth--
	w.line("]]></" + name + ">")
}

func (w *xmlWriter) String() string {
	return w.b.String()
}

func formatAttrs(attrs []attr) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(EscapeXML(a.value))
		b.WriteByte('"')
	}
	return b.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// cdataSafe splits any "]]>" so it cannot terminate the section early.
func cdataSafe(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
