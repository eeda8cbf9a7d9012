package infra

// pdf.go — PDF generation using go-pdf/fpdf.
// Two documents come out of here:
//   - recibo de venda: A7-size thermal-style receipt mailed to the guardian
//   - relatório de fechamento: A5 summary of a closed register session
//
// Output files are written under storagePath.

import (
	"fmt"
	"os"
	"path/filepath"

	"cantina/internal/model"

	"github.com/go-pdf/fpdf"
)

// GerarReciboPDF renders the receipt for a completed Venda.
// storagePath is created if needed. Returns the absolute path of the file.
func GerarReciboPDF(venda *model.Venda, alunoNome, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%d.pdf", venda.Numero)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper (custom size, "A7" is not in fpdf's named list)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Cantina Escolar", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Compra", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Venda info ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Venda Nº %d", venda.Numero), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venda.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if alunoNome != "" {
		pdf.CellFormat(contentW, 4, "Aluno: "+alunoNome, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venda.Itens {
		nome := ""
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		// Truncate long names
		if len(nome) > 22 {
			nome = nome[:21] + "…"
		}
		pdf.CellFormat(col1, 5, nome, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantidade), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$ "+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "R$ "+venda.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Forma de pagamento:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, venda.FormaPagamento, "", 1, "R", false, 0, "")
	if venda.Troco != nil && !venda.Troco.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Troco:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "R$ "+venda.Troco.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Documento sem valor fiscal", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// GerarFechamentoPDF renders the closing report of a register session:
// opening float, totals by payment method, expected cash and the difference
// against what the operator counted.
func GerarFechamentoPDF(abertura *model.AberturaCaixa, fechamento *model.FechamentoCaixa, caixaNome, operadorNome, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("fechamento_%s.pdf", fechamento.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Fechamento de Caixa", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Caixa: "+caixaNome, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Operador: "+operadorNome, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Abertura: "+abertura.OpenedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if abertura.ClosedAt != nil {
		pdf.CellFormat(contentW, 5, "Fechamento: "+abertura.ClosedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	linha := func(label string, valor string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.6, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.4, 6, valor, "", 1, "R", false, 0, "")
	}

	linha("Valor de abertura", "R$ "+abertura.ValorAbertura.StringFixed(2), false)
	linha("Total de vendas", "R$ "+fechamento.TotalVendas.StringFixed(2), false)
	linha("Dinheiro", "R$ "+fechamento.TotalDinheiro.StringFixed(2), false)
	linha("Cartão", "R$ "+fechamento.TotalCartao.StringFixed(2), false)
	linha("Pix", "R$ "+fechamento.TotalPix.StringFixed(2), false)
	linha("Troco entregue", "R$ "+fechamento.TotalTroco.StringFixed(2), false)
	pdf.Ln(2)
	linha("Valor esperado em caixa", "R$ "+fechamento.ValorEsperado.StringFixed(2), true)
	linha("Valor contado", "R$ "+fechamento.ValorContado.StringFixed(2), true)
	linha("Diferença", "R$ "+fechamento.Diferenca.StringFixed(2), true)

	if fechamento.Observacao != nil && *fechamento.Observacao != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Obs.: "+*fechamento.Observacao, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
