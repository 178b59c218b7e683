package visitors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"nivaas/db"
	"nivaas/middleware"
	"nivaas/models"
	"nivaas/mq"
	"nivaas/policy"
	"nivaas/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func hmacSecret() []byte {
	if s := os.Getenv("PASS_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev_only_pass_secret")
}

// qrPayload returns passId|code|timestamp|signature.
func qrPayload(passID, code string) string {
	data := fmt.Sprintf("%s|%s|%d", passID, code, time.Now().Unix())
	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

func verifyPayload(payload string) (passID, code string, ok bool) {
	parts := strings.Split(payload, "|")
	if len(parts) != 4 {
		return "", "", false
	}
	data := strings.Join(parts[:3], "|")
	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(want), []byte(parts[3])) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// IssuePass pre-authorizes a visitor.
func IssuePass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpIssueVisitorPass, "") {
		return
	}

	var body struct {
		VisitorName  string    `json:"visitorName"`
		VisitorPhone string    `json:"visitorPhone"`
		ExpectedDate time.Time `json:"expectedDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.VisitorName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing visitorName")
		return
	}
	if body.ExpectedDate.Before(time.Now().Truncate(24 * time.Hour)) {
		utils.RespondWithError(w, http.StatusBadRequest, "expectedDate must not be in the past")
		return
	}

	pass := models.VisitorPass{
		PassID:       utils.GenerateID(14),
		CommunityID:  middleware.RequesterCommunity(r),
		ResidentID:   middleware.RequesterID(r),
		VisitorName:  body.VisitorName,
		VisitorPhone: body.VisitorPhone,
		ExpectedDate: body.ExpectedDate,
		Code:         uuid.NewString(),
		Status:       "issued",
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.VisitorPassCollection.InsertOne(ctx, pass); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"pass":      pass,
		"qrPayload": qrPayload(pass.PassID, pass.Code),
	})
}

func ListPasses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"communityid": middleware.RequesterCommunity(r)}
	// residents see their own passes; admins and security see all
	if middleware.RequesterRole(r) == policy.RoleResident {
		filter["residentid"] = middleware.RequesterID(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.VisitorPassCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var passes []models.VisitorPass
	for cur.Next(ctx) {
		var p models.VisitorPass
		if err := cur.Decode(&p); err == nil {
			passes = append(passes, p)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"passes": passes})
}

// ScanPass verifies a QR payload at the gate and marks the visitor entered.
func ScanPass(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpScanVisitorPass, "") {
		return
	}

	var body struct {
		QRPayload string `json:"qrPayload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.QRPayload == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing qrPayload")
		return
	}

	passID, code, ok := verifyPayload(body.QRPayload)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid or tampered payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.VisitorPassCollection.FindOneAndUpdate(ctx,
		bson.M{
			"passid":      passID,
			"code":        code,
			"communityid": middleware.RequesterCommunity(r),
			"status":      "issued",
		},
		bson.M{"$set": bson.M{"status": "entered", "enteredAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var pass models.VisitorPass
	if err := res.Decode(&pass); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "pass not found or already used")
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "visitor_entered",
		UserID:   pass.ResidentID,
		Message:  pass.VisitorName + " has entered the gate",
		EntityID: pass.PassID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"pass": pass})
}
