package printer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/xelth-com/ecktables/internal/floorplan"
)

// DefaultQRPrefix is prepended to the table id in every table tag.
const DefaultQRPrefix = "ECK1.COM/T/"

// FloorPlanConfig holds configuration for the floor plan export
type FloorPlanConfig struct {
	Title    string
	Canvas   floorplan.Canvas
	QRPrefix string
	Margin   float64 // mm, defaults to 10
}

// A4 landscape
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	headerHeight = 14.0
	footerHeight = 8.0
)

// FloorPlanPDF draws every placed table at its committed position,
// coloured by status, with a QR tag carrying the table id.
func FloorPlanPDF(tables []floorplan.Entity, cfg FloorPlanConfig) ([]byte, error) {
	if cfg.Canvas.Extent.Width <= 0 || cfg.Canvas.Extent.Height <= 0 {
		cfg.Canvas = floorplan.DefaultCanvas()
	}
	if cfg.QRPrefix == "" {
		cfg.QRPrefix = DefaultQRPrefix
	}
	if cfg.Margin <= 0 {
		cfg.Margin = 10
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(cfg.Margin, cfg.Margin/2)
	pdf.CellFormat(pageWidth-2*cfg.Margin, headerHeight/2, cfg.Title, "", 0, "L", false, 0, "")

	// Fit the logical canvas into the printable area
	availW := pageWidth - 2*cfg.Margin
	availH := pageHeight - headerHeight - footerHeight - cfg.Margin
	scale := availW / cfg.Canvas.Extent.Width
	if s := availH / cfg.Canvas.Extent.Height; s < scale {
		scale = s
	}
	originX := cfg.Margin
	originY := headerHeight

	pdf.SetDrawColor(156, 163, 175)
	pdf.SetLineWidth(0.3)
	pdf.Rect(originX, originY, cfg.Canvas.Extent.Width*scale, cfg.Canvas.Extent.Height*scale, "D")

	scene := floorplan.Render(tables, floorplan.State{}, cfg.Canvas)
	for i, item := range scene.Items {
		pos := item.Displayed.Point()
		x := originX + pos.X*scale
		y := originY + pos.Y*scale
		w := item.Size.Width * scale
		h := item.Size.Height * scale

		fr, fg, fb := hexColor(item.Style.Fill)
		sr, sg, sb := hexColor(item.Style.Stroke)
		pdf.SetFillColor(fr, fg, fb)
		pdf.SetDrawColor(sr, sg, sb)
		pdf.SetLineWidth(0.4)

		pdf.TransformBegin()
		if item.Rotation != 0 {
			// gofpdf rotates counter-clockwise, the UI clockwise
			pdf.TransformRotate(-item.Rotation, x+w/2, y+h/2)
		}
		switch item.Shape {
		case floorplan.ShapeRound, floorplan.ShapeOval:
			pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, "FD")
		default:
			pdf.Rect(x, y, w, h, "FD")
		}
		pdf.TransformEnd()

		// QR tag in the upper part of the footprint
		qrPng, err := qrcode.Encode(cfg.QRPrefix+item.ID, qrcode.Low, 256)
		if err != nil {
			return nil, fmt.Errorf("qr for table %s: %w", item.ID, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		qrSize := minFloat(w, h) * 0.45
		pdf.ImageOptions(imgName, x+(w-qrSize)/2, y+h/2-qrSize+1, qrSize, qrSize, false, imgOptions, 0, "")

		pdf.SetTextColor(17, 24, 39)
		pdf.SetFont("Arial", "B", 7)
		pdf.SetXY(x, y+h/2+1)
		pdf.CellFormat(w, 3, tableLabel(item), "", 0, "C", false, 0, "")
		pdf.SetFont("Arial", "", 6)
		pdf.SetXY(x, y+h/2+4)
		pdf.CellFormat(w, 3, fmt.Sprintf("%d seats", item.Capacity), "", 0, "C", false, 0, "")
	}

	// Footer: status legend and unplaced notice
	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(75, 85, 99)
	footerY := pageHeight - footerHeight
	legendX := cfg.Margin
	for _, st := range []floorplan.Status{floorplan.StatusAvailable, floorplan.StatusOccupied, floorplan.StatusReserved, floorplan.StatusInactive} {
		style := floorplan.StyleFor(st)
		r, g, b := hexColor(style.Fill)
		pdf.SetFillColor(r, g, b)
		r, g, b = hexColor(style.Stroke)
		pdf.SetDrawColor(r, g, b)
		pdf.Rect(legendX, footerY+1, 4, 4, "FD")
		pdf.SetXY(legendX+5, footerY+1)
		pdf.CellFormat(25, 4, style.Label, "", 0, "L", false, 0, "")
		legendX += 30
	}
	if scene.Warning != "" {
		pdf.SetXY(legendX, footerY+1)
		pdf.CellFormat(pageWidth-cfg.Margin-legendX, 4, scene.Warning, "", 0, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func tableLabel(item floorplan.SceneItem) string {
	if item.Name != "" {
		return item.Name
	}
	if len(item.ID) > 8 {
		return item.ID[:8]
	}
	return item.ID
}

// hexColor parses "#rrggbb"; anything else is mid grey.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
