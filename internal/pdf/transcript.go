package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Renderer is implemented by TranscriptGenerator; handy to stub in tests.
type Renderer interface {
	RenderTranscript(w io.Writer, data TranscriptData) error
}

type TranscriptLine struct {
	At     time.Time
	Author string
	Text   string
}

type TranscriptData struct {
	ChatID      string
	Title       string
	GeneratedAt time.Time
	Lines       []TranscriptLine
}

// TranscriptGenerator writes chat transcripts. With an empty FontPath the
// Helvetica core font is used, which only covers Latin-1.
type TranscriptGenerator struct {
	FontPath string
	fontName string
}

func NewTranscriptGenerator(fontPath string) *TranscriptGenerator {
	g := &TranscriptGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *TranscriptGenerator) RenderTranscript(w io.Writer, data TranscriptData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, true)
	pdf.SetAuthor("whatsclone", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, "Exported "+data.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	if len(data.Lines) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 8, "No messages yet.", "", 1, "L", false, 0, "")
	}
	for _, line := range data.Lines {
		pdf.SetFont(g.fontName, "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s  %s", line.At.Format("2006-01-02 15:04"), line.Author), "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, line.Text, "", "L", false)
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render transcript %s: %w", data.ChatID, err)
	}
	return nil
}

func (g *TranscriptGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func (g *TranscriptGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}
