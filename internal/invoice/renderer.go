package invoice

import (
	"bytes"
	"html/template"

	"app/internal/usecase"
)

// 注文の標準HTML表現。
// PDF変換側が扱える基本タグ（b/i/br/center）だけで書く。
const orderTemplate = `<center><b>Order #{{.ID}}</b></center><br>
Date: {{.CreatedAt.Format "2006-01-02"}}<br>
Status: {{.Status}}<br>
<br>
<b>Items</b><br>
{{range .Items}}{{.Name}} x {{.Quantity}} @ {{.Price}} (discount {{.Discount}})<br>
{{end}}<br>
<b>Total: {{.TotalPrice}}</b><br>
`

// 注文→HTML→PDFバイト列の変換。状態は一切変えない。
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("order").Parse(orderTemplate)),
	}
}

// RenderHTML は注文の標準HTML表現を返す。
func (r *Renderer) RenderHTML(o usecase.OrderOutput) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, o); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPDF はHTML表現をPDFバイト列に変換する。
func (r *Renderer) RenderPDF(o usecase.OrderOutput) ([]byte, error) {
	html, err := r.RenderHTML(o)
	if err != nil {
		return nil, err
	}
	return htmlToPDF(html)
}
