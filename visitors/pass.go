package visitors

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"nivaas/db"
	"nivaas/middleware"
	"nivaas/models"
	"nivaas/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// PrintPass renders a printable gate pass PDF with the QR the guard scans.
func PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	passID := ps.ByName("passId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var pass models.VisitorPass
	err := db.VisitorPassCollection.FindOne(ctx, bson.M{
		"passid":      passID,
		"communityid": middleware.RequesterCommunity(r),
	}).Decode(&pass)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "pass not found")
		return
	}
	// only the issuing resident may print it
	if pass.ResidentID != middleware.RequesterID(r) {
		utils.RespondWithError(w, http.StatusForbidden, "pass was issued by another resident")
		return
	}

	qrCode, err := qrcode.Encode(qrPayload(pass.PassID, pass.Code), qrcode.Medium, 128)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate QR")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 15, "Visitor Gate Pass", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 10, fmt.Sprintf(
		"Visitor: %s\nPhone: %s\nExpected: %s\nPass ID: %s\nIssued: %s",
		pass.VisitorName,
		pass.VisitorPhone,
		pass.ExpectedDate.Format("02 Jan 2006"),
		pass.PassID,
		pass.CreatedAt.Format("02 Jan 2006 15:04"),
	), "", "L", false)

	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qrCode))
	pdf.ImageOptions("qr", 150, 60, 40, 40, false, imgOpts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, "Show this pass at the gate. Security will scan the QR code.", "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate pass")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=gatepass-"+pass.PassID+".pdf")
	w.Write(buf.Bytes())
}
