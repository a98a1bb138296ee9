package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/resumeflow/resumeflow-backend/internal/resume/domain"
)

const documentPart = "word/document.xml"

// DOCXExtractor returns the text of every body-level paragraph, each followed by a newline.
// Legacy binary .doc files are not zip archives and fail here.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (e *DOCXExtractor) Strategy() domain.Strategy { return domain.StrategyDOCX }

func (e *DOCXExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("file is not a docx package: %w", err)
	}

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()
		return paragraphs(ctx, rc)
	}

	return "", errors.New("no " + documentPart + " found in docx")
}

// paragraphs walks document.xml and collects w:p elements that are direct children of w:body
func paragraphs(ctx context.Context, r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		sb       strings.Builder
		stack    []string
		paraAt   = -1 // stack depth of the open body-level paragraph
		inText   bool
		skipping int // depth of an open text box inside the paragraph
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			if paraAt < 0 {
				if name == "p" && parent == "body" {
					if err := ctx.Err(); err != nil {
						return "", err
					}
					paraAt = len(stack)
				}
				continue
			}
			if skipping > 0 {
				continue
			}
			if name == "txbxContent" {
				skipping = len(stack)
				continue
			}
			// Text content only lives in runs; pPr/rPr tab stops are formatting
			if parent != "r" {
				continue
			}
			switch name {
			case "t":
				inText = true
			case "tab", "ptab":
				sb.WriteString("\t")
			case "cr":
				sb.WriteString("\n")
			case "br":
				if lineBreak(t) {
					sb.WriteString("\n")
				}
			}

		case xml.EndElement:
			depth := len(stack)
			if depth == 0 {
				continue
			}
			stack = stack[:depth-1]

			switch {
			case depth == paraAt:
				sb.WriteString("\n")
				paraAt = -1
				inText = false
			case depth == skipping:
				skipping = 0
			case t.Name.Local == "t":
				inText = false
			}

		case xml.CharData:
			if inText && skipping == 0 {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}

// lineBreak reports whether a w:br is a text-wrapping break. Page and column breaks carry no text.
func lineBreak(el xml.StartElement) bool {
	for _, a := range el.Attr {
		if a.Name.Local == "type" {
			return a.Value == "" || a.Value == "textWrapping"
		}
	}
	return true
}
