// Package extract turns uploaded documents into prompt-ready text.
// Prose formats yield their text; spreadsheets yield a structured
// summary since raw cells make poor prompt material.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"aivan/internal/logger"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// sampleRows is how many data rows the spreadsheet summary quotes.
const sampleRows = 5

// FromUpload extracts text from an uploaded file based on its
// extension. Supported: pdf, docx, txt, csv, xlsx, xls.
func FromUpload(filename string, data []byte) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return fromPDF(data)
	case "docx":
		return fromDocx(data)
	case "txt":
		return string(data), nil
	case "csv":
		return fromCSV(data)
	case "xlsx", "xls":
		return fromWorkbook(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

// fromPDF extracts text from all pages of a PDF.
func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var textBuilder strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract text from PDF page", "page", i)
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return cleanExtractedText(textBuilder.String()), nil
}

// fromDocx pulls paragraph text out of word/document.xml.
func fromDocx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	var text strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return cleanExtractedText(text.String()), nil
}

// fromCSV summarizes a CSV file: shape, columns, sample rows, numeric
// statistics.
func fromCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse CSV: %w", err)
	}
	return summarizeTable(rows)
}

// fromWorkbook summarizes the first sheet of an xlsx/xls workbook.
func fromWorkbook(data []byte) (string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := book.Close(); err != nil {
			logger.Warn("failed to close workbook", "error", err.Error())
		}
	}()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return summarizeTable(rows)
}

// cleanExtractedText drops noise lines and collapses whitespace the
// same way PDF extraction has always been cleaned here.
func cleanExtractedText(raw string) string {
	lines := strings.Split(raw, "\n")
	var cleanLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && len(trimmed) > 2 {
			cleanLines = append(cleanLines, trimmed)
		}
	}
	cleanText := strings.Join(cleanLines, "\n")
	cleanText = strings.ReplaceAll(cleanText, "\n\n\n", "\n\n")
	return strings.TrimSpace(cleanText)
}
