package pay

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"curemedix/models"
	"curemedix/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReceiptPayload builds the signed string embedded in a receipt's QR code:
// email|transactionId|signature.
func ReceiptPayload(secret []byte, email, transactionID string) string {
	data := email + "|" + transactionID
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return data + "|" + sig
}

// VerifyReceiptPayload checks a scanned QR payload against the secret.
func VerifyReceiptPayload(secret []byte, payload string) bool {
	idx := strings.LastIndex(payload, "|")
	if idx < 0 {
		return false
	}
	data, sig := payload[:idx], payload[idx+1:]
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}

// Receipt renders a PDF receipt for one ledger entry, with a QR code a
// pharmacist can scan to verify the purchase.
func (s *Service) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email := ps.ByName("email")
	transactionID := ps.ByName("transactionId")

	var payment models.Payment
	err := s.store.Payments.FindOne(r.Context(), bson.M{
		"email":         email,
		"transactionId": transactionID,
	}).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "payment not found")
		return
	}
	if err != nil {
		log.Println("receipt lookup error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "could not retrieve payment")
		return
	}

	qrPNG, err := qrcode.Encode(ReceiptPayload(s.receiptSecret, payment.Email, payment.TransactionID), qrcode.Medium, 256)
	if err != nil {
		log.Println("receipt QR error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate receipt")
		return
	}

	pdfBytes, err := renderReceiptPDF(payment, qrPNG)
	if err != nil {
		log.Println("receipt PDF error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+payment.TransactionID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

func renderReceiptPDF(payment models.Payment, qrPNG []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "CureMedix Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Buyer: %s", payment.Email))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Transaction: %s", payment.TransactionID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f", payment.Price))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", payment.Status))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Items: %d", len(payment.CartIDs)))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", payment.CreatedAt.Format(time.RFC1123)))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
