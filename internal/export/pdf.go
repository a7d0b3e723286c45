package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"studentportal/internal/card"
	"studentportal/internal/photo"
)

// PDFName is the download name of the card document.
const PDFName = card.Title + ".pdf"

const (
	pageMargin = 10.0
	cardWidth  = 190.0
	photoSize  = 32.0
	lineHeight = 6.0
)

// CardPDF writes c as a single A4 portrait page. The photo is embedded when
// it decodes; an unreadable photo leaves a placeholder frame.
func CardPDF(w io.Writer, c card.Card) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(card.Title, true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if c.Empty {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(cardWidth, 12, "No biodata found", "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(cardWidth, 8, "Please complete your biodata form first", "", 1, "C", false, 0, "")
		return output(pdf, w)
	}

	top := pdf.GetY()
	drawPhoto(pdf, c.Front.Photo, pageMargin+4, top+4)

	left := pageMargin + photoSize + 10
	pdf.SetXY(left, top+4)
	pdf.SetTextColor(13, 110, 253)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(strings.ToUpper(c.Institution)), "", 2, "L", false, 0, "")
	pdf.SetTextColor(108, 117, 125)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, "Official Student Identity Card", "", 2, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Valid through: "+c.ValidThrough), "", 2, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	rows := [][4]string{
		{"Name:", c.Front.FullName, "Course:", c.Front.Course},
		{"Father's Name:", c.Front.FatherName, "Semester:", c.Front.Semester},
		{"Roll No:", c.Front.RollNumber, "Blood Group:", c.Front.BloodGroup},
		{"CNIC:", c.Front.CNIC, "Gender:", c.Front.Gender},
	}
	for _, r := range rows {
		pdf.SetX(left)
		labelValue(pdf, tr, r[0], r[1], 28, 42)
		labelValue(pdf, tr, r[2], r[3], 24, 44)
		pdf.Ln(lineHeight)
	}

	frontBottom := top + 4 + photoSize + 14
	if y := pdf.GetY() + 4; y > frontBottom {
		frontBottom = y
	}
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(pageMargin, top, cardWidth, frontBottom-top, "D")

	pdf.SetXY(pageMargin, frontBottom+4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(cardWidth, 8, "Student Information", "B", 1, "C", false, 0, "")
	pdf.Ln(2)

	contact := [][2]string{
		{"Phone:", c.Back.Phone},
		{"Email:", c.Back.Email},
		{"Address:", c.Back.Address},
		{"Emergency Contact:", c.Back.EmergencyContact},
	}
	personal := [][2]string{
		{"Date of Birth:", c.Back.DateOfBirth},
		{"Religion:", c.Back.Religion},
		{"Nationality:", c.Back.Nationality},
		{"Domicile:", c.Back.Domicile},
	}
	for i := range contact {
		pdf.SetX(pageMargin + 2)
		labelValue(pdf, tr, contact[i][0], contact[i][1], 36, 59)
		labelValue(pdf, tr, personal[i][0], personal[i][1], 28, 63)
		pdf.Ln(lineHeight)
	}

	if len(c.Courses) > 0 {
		pdf.Ln(3)
		pdf.SetX(pageMargin)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(cardWidth, 7, "Current Courses", "B", 1, "L", false, 0, "")
		pdf.Ln(2)
		boxW := (cardWidth - 4*float64(len(c.Courses)-1)) / float64(len(c.Courses))
		y := pdf.GetY()
		pdf.SetFillColor(248, 249, 250)
		for i, course := range c.Courses {
			x := pageMargin + float64(i)*(boxW+4)
			pdf.Rect(x, y, boxW, 14, "FD")
			pdf.SetXY(x+2, y+1)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(boxW-4, 6, tr(course.Code), "", 2, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(boxW-4, 5, tr(course.Name), "", 0, "L", false, 0, "")
		}
		pdf.SetXY(pageMargin, y+16)
	}

	pdf.Ln(4)
	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Courier", "B", 13)
	tokenW := pdf.GetStringWidth(c.Token) + 16
	pdf.SetX(pageMargin + (cardWidth-tokenW)/2)
	pdf.CellFormat(tokenW, 10, tr(c.Token), "", 1, "C", true, 0, "")
	pdf.SetTextColor(108, 117, 125)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(cardWidth, 5, "Scan this barcode for verification", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.Ln(14)
	y := pdf.GetY()
	half := cardWidth / 2
	for i, label := range []string{"Student Signature", "Registrar Signature"} {
		cx := pageMargin + half*float64(i) + half/2
		pdf.Line(cx-25, y, cx+25, y)
		pdf.SetXY(pageMargin+half*float64(i), y+1)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(half, 5, label, "", 2, "C", false, 0, "")
	}
	pdf.SetX(pageMargin + half)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(half, 4, tr(c.Institution), "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetX(pageMargin)
	pdf.SetFillColor(248, 249, 250)
	pdf.SetTextColor(108, 117, 125)
	pdf.MultiCell(cardWidth, 4, tr(c.Footer), "", "C", true)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(pageMargin, frontBottom+2, cardWidth, pdf.GetY()-frontBottom, "D")
	return output(pdf, w)
}

func labelValue(pdf *fpdf.Fpdf, tr func(string) string, label, value string, labelW, valueW float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, lineHeight, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(valueW, lineHeight, tr(value), "", 0, "L", false, 0, "")
}

func drawPhoto(pdf *fpdf.Fpdf, dataURL string, x, y float64) {
	pdf.SetDrawColor(200, 200, 200)
	if dataURL != "" {
		if img, err := photo.Decode(dataURL); err == nil {
			if jpg, err := photo.JPEG(img); err == nil {
				opts := fpdf.ImageOptions{ImageType: "JPG"}
				pdf.RegisterImageOptionsReader("photo", opts, bytes.NewReader(jpg))
				if pdf.Ok() {
					pdf.ImageOptions("photo", x, y, photoSize, photoSize, false, opts, 0, "")
					return
				}
				pdf.ClearError()
			}
		}
	}
	pdf.SetFillColor(233, 236, 239)
	pdf.Rect(x, y, photoSize, photoSize, "FD")
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write card pdf: %w", err)
	}
	return nil
}
