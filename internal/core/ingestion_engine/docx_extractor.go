package ingestion_engine

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

var errNoDocumentPart = errors.New("missing " + docxBodyPart)

// documentXML represents the structure of word/document.xml.
// Only paragraphs that are direct children of the body are read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

// paragraph collects every w:r under a w:p in document order, including
// runs wrapped in hyperlinks, insertions, smart tags, fields and content
// controls. Deleted and moved-from runs are not visible and are skipped.
type paragraph struct {
	text string
}

func (p *paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "r":
				var r run
				if err := d.DecodeElement(&r, &el); err != nil {
					return err
				}
				b.WriteString(r.text)
			case "pPr", "del", "moveFrom":
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				p.text = b.String()
				return nil
			}
			depth--
		}
	}
}

// run collects the text of a w:r element. w:tab becomes "\t" and
// w:br / w:cr become "\n"; run properties are skipped.
type run struct {
	text string
}

func (r *run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var s string
				if err := d.DecodeElement(&s, &el); err != nil {
					return err
				}
				b.WriteString(s)
				continue
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			r.text = b.String()
			return nil
		}
	}
}

// extractDOCX joins body paragraphs with a single space, in document order.
// Empty paragraphs still contribute their separator.
func extractDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != docxBodyPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", docxBodyPart, err)
		}

		return parseDocumentXML(content)
	}
	return "", errNoDocumentPart
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
	}

	texts := make([]string, 0, len(doc.Body.Paragraphs))
	for _, para := range doc.Body.Paragraphs {
		texts = append(texts, para.text)
	}
	return strings.Join(texts, " "), nil
}
