package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Minimal OOXML writer: one document part plus the styles part that pins
// the body font. Enough WordprocessingML for headings, runs and the
// highlight/bold/italic/color run properties the options need.

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

// Arial 11pt document default (half-point units).
const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:docDefaults><w:rPrDefault><w:rPr>
<w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/>
<w:sz w:val="22"/><w:szCs w:val="22"/>
</w:rPr></w:rPrDefault></w:docDefaults>
</w:styles>`

// runProps builds <w:rPr> content for one run.
type runProps struct {
	bold      bool
	italic    bool
	color     string // hex RGB, no '#'
	highlight string // e.g. "yellow"
	halfSize  int    // font size in half points, 0 keeps the default
}

type docRun struct {
	text  string
	props runProps
}

type docBuilder struct {
	body strings.Builder
}

func (b *docBuilder) paragraph(runs ...docRun) {
	b.body.WriteString("<w:p>")
	for _, r := range runs {
		b.body.WriteString("<w:r>")
		props := r.props.marshal()
		if props != "" {
			b.body.WriteString("<w:rPr>" + props + "</w:rPr>")
		}
		b.body.WriteString(`<w:t xml:space="preserve">` + escapeXML(r.text) + `</w:t>`)
		b.body.WriteString("</w:r>")
	}
	b.body.WriteString("</w:p>")
}

func (b *docBuilder) blank() {
	b.body.WriteString("<w:p/>")
}

func (p runProps) marshal() string {
	var sb strings.Builder
	if p.bold {
		sb.WriteString("<w:b/>")
	}
	if p.italic {
		sb.WriteString("<w:i/>")
	}
	if p.color != "" {
		fmt.Fprintf(&sb, `<w:color w:val=%q/>`, p.color)
	}
	if p.highlight != "" {
		fmt.Fprintf(&sb, `<w:highlight w:val=%q/>`, p.highlight)
	}
	if p.halfSize > 0 {
		fmt.Fprintf(&sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, p.halfSize, p.halfSize)
	}
	return sb.String()
}

func (b *docBuilder) bytes() ([]byte, error) {
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		"<w:body>" + b.body.String() + "</w:body></w:document>"

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name, data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func escapeXML(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
