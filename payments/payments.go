package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nivaas/db"
	"nivaas/middleware"
	"nivaas/models"
	"nivaas/mq"
	"nivaas/policy"
	"nivaas/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordPayment creates a due ledger row for a resident. Ledger only; no
// gateway integration.
func RecordPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpRecordPayment, "") {
		return
	}

	var body struct {
		ResidentID  string    `json:"residentId"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		DueDate     time.Time `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.ResidentID == "" || body.Description == "" || body.Amount <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}

	p := models.Payment{
		PaymentID:   utils.GenerateID(14),
		CommunityID: middleware.RequesterCommunity(r),
		ResidentID:  body.ResidentID,
		Description: body.Description,
		Amount:      body.Amount,
		DueDate:     body.DueDate,
		Status:      "due",
		CreatedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.PaymentsCollection.InsertOne(ctx, p); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "payment_due",
		UserID:   p.ResidentID,
		Message:  p.Description,
		EntityID: p.PaymentID,
	})
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"payment": p})
}

// ListPayments returns the caller's ledger; admins see the whole community.
func ListPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"communityid": middleware.RequesterCommunity(r)}
	if middleware.RequesterRole(r) != policy.RoleAdmin {
		filter["residentid"] = middleware.RequesterID(r)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.PaymentsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	for cur.Next(ctx) {
		var p models.Payment
		if err := cur.Decode(&p); err == nil {
			payments = append(payments, p)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"payments": payments})
}

// MarkPaid lets the resident mark their own due row paid.
func MarkPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.PaymentsCollection.FindOneAndUpdate(ctx,
		bson.M{
			"paymentid":   ps.ByName("paymentId"),
			"communityid": middleware.RequesterCommunity(r),
			"residentid":  middleware.RequesterID(r),
			"status":      "due",
		},
		bson.M{"$set": bson.M{"status": "paid", "paidAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Payment
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "payment not found or already paid")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"payment": updated})
}
