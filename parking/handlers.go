package parking

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
	"nivaas/reserve"
	"nivaas/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var Mgr = NewManager(&MongoStore{})

// ---------- Slot CRUD ----------

func CreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpManageParkingSlot, "") {
		return
	}

	var body struct {
		SlotNumber string `json:"slotNumber"`
		Type       string `json:"type"`
		ResidentID string `json:"residentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.SlotNumber == "" || (body.Type != TypeResident && body.Type != TypeGuest) {
		utils.RespondWithError(w, http.StatusBadRequest, "missing slotNumber or bad type")
		return
	}
	if body.Type == TypeGuest && body.ResidentID != "" {
		utils.RespondWithError(w, http.StatusBadRequest, "guest slots cannot have a resident")
		return
	}

	communityID := middleware.RequesterCommunity(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// slotNumber is unique per community
	count, err := db.ParkingSlotCollection.CountDocuments(ctx, bson.M{
		"communityid": communityID, "slotNumber": body.SlotNumber,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "slot number already exists in this community")
		return
	}

	slot := models.ParkingSlot{
		SlotID:        utils.GenerateID(14),
		CommunityID:   communityID,
		SlotNumber:    body.SlotNumber,
		Type:          body.Type,
		ResidentID:    body.ResidentID,
		IsAvailable:   body.Type == TypeResident && body.ResidentID == "",
		GuestRequests: []models.GuestRequest{},
		CreatedAt:     time.Now(),
	}
	if _, err := db.ParkingSlotCollection.InsertOne(ctx, slot); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"slot": slot})
}

func ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"communityid": middleware.RequesterCommunity(r)}
	if slotType := r.URL.Query().Get("type"); slotType != "" {
		filter["type"] = slotType
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.ParkingSlotCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var slots []models.ParkingSlot
	for cur.Next(ctx) {
		var slot models.ParkingSlot
		if err := cur.Decode(&slot); err == nil {
			slots = append(slots, slot)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slots": slots})
}

// SetSlotAvailability toggles isAvailable on a resident slot.
func SetSlotAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	slot, ok := loadAuthorized(w, r, slotID, policy.OpManageParkingSlot)
	if !ok {
		return
	}
	if slot.Type != TypeResident {
		utils.RespondWithError(w, http.StatusBadRequest, "availability applies to resident slots only")
		return
	}

	var body struct {
		IsAvailable bool `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	updated, err := Mgr.store.Update(r.Context(), slotID, func(s *models.ParkingSlot) error {
		s.IsAvailable = body.IsAvailable
		return nil
	})
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"slot": updated})
}

// ---------- Guest request operations ----------

func CreateGuestRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	if _, ok := loadAuthorized(w, r, slotID, policy.OpCreateGuestRequest); !ok {
		return
	}

	var body struct {
		FromDate time.Time `json:"fromDate"`
		ToDate   time.Time `json:"toDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	req, err := Mgr.CreateGuestRequest(r.Context(), slotID, middleware.RequesterID(r), body.FromDate, body.ToDate)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"request": req})
}

func ApproveGuestRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	if _, ok := loadAuthorized(w, r, slotID, policy.OpApproveGuestRequest); !ok {
		return
	}

	req, err := Mgr.ApproveGuestRequest(r.Context(), slotID, ps.ByName("id"), middleware.RequesterID(r))
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "guest_request_approved",
		UserID:   req.RequestedBy,
		Message:  "Your guest parking request was approved",
		EntityID: req.ID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"request": req})
}

func RejectGuestRequest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	if _, ok := loadAuthorized(w, r, slotID, policy.OpRejectGuestRequest); !ok {
		return
	}

	req, err := Mgr.RejectGuestRequest(r.Context(), slotID, ps.ByName("id"), middleware.RequesterID(r))
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "guest_request_rejected",
		UserID:   req.RequestedBy,
		Message:  "Your guest parking request was rejected",
		EntityID: req.ID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"request": req})
}

func ListGuestRequests(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID := ps.ByName("slotId")

	if _, ok := loadAuthorized(w, r, slotID, policy.OpListGuestRequests); !ok {
		return
	}

	reqs, err := Mgr.Requests(r.Context(), slotID)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"requests": reqs})
}

func loadAuthorized(w http.ResponseWriter, r *http.Request, slotID, op string) (*models.ParkingSlot, bool) {
	slot, err := Mgr.store.Get(r.Context(), slotID)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return nil, false
	}
	if !policy.Authorize(w, r, op, slot.CommunityID) {
		return nil, false
	}
	return slot, true
}
