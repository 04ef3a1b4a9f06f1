package invoice

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

const pdfLineHeight = 6.0

// 基本HTMLをA4縦のPDFに流し込む
func htmlToPDF(html string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)

	writer := pdf.HTMLBasicNew()
	writer.Write(pdfLineHeight, html)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
