package facilities

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

// ---------- Facility CRUD ----------

func CreateFacility(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpManageFacility, "") {
		return
	}

	var body struct {
		Name         string              `json:"name"`
		Capacity     int                 `json:"capacity"`
		WorkingHours models.WorkingHours `json:"workingHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}

	facility := models.Facility{
		FacilityID:   utils.GenerateID(14),
		CommunityID:  middleware.RequesterCommunity(r),
		Name:         body.Name,
		Capacity:     body.Capacity,
		WorkingHours: body.WorkingHours,
		Bookings:     []models.Booking{},
		CreatedAt:    time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.FacilityCollection.InsertOne(ctx, facility); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"facility": facility})
}

func UpdateFacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("facilityId")

	f, ok := loadAuthorized(w, r, facilityID, policy.OpManageFacility)
	if !ok {
		return
	}

	var body struct {
		Name         *string              `json:"name"`
		Capacity     *int                 `json:"capacity"`
		WorkingHours *models.WorkingHours `json:"workingHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	set := bson.M{}
	if body.Name != nil {
		set["name"] = *body.Name
	}
	if body.Capacity != nil {
		set["capacity"] = *body.Capacity
	}
	if body.WorkingHours != nil {
		set["workingHours"] = *body.WorkingHours
	}
	if len(set) == 0 {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"facility": f})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.FacilityCollection.UpdateOne(ctx, bson.M{"facilityid": facilityID}, bson.M{"$set": set}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	updated, err := Mgr.store.Get(ctx, facilityID)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"facility": updated})
}

func GetFacility(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	f, ok := loadAuthorized(w, r, ps.ByName("facilityId"), policy.OpListBookings)
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"facility": f})
}

func ListFacilities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.FacilityCollection.Find(ctx, bson.M{"communityid": middleware.RequesterCommunity(r)})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var facilities []models.Facility
	for cur.Next(ctx) {
		var f models.Facility
		if err := cur.Decode(&f); err == nil {
			facilities = append(facilities, f)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"facilities": facilities})
}

// ---------- Booking operations ----------

func CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("facilityId")

	if _, ok := loadAuthorized(w, r, facilityID, policy.OpCreateBooking); !ok {
		return
	}

	var body struct {
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	booking, err := Mgr.CreateBooking(r.Context(), facilityID, middleware.RequesterID(r), body.StartTime, body.EndTime)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"booking": booking})
}

func ConfirmBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("facilityId")

	if _, ok := loadAuthorized(w, r, facilityID, policy.OpConfirmBooking); !ok {
		return
	}

	booking, err := Mgr.ConfirmBooking(r.Context(), facilityID, ps.ByName("id"), middleware.RequesterID(r))
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "booking_confirmed",
		UserID:   booking.ResidentID,
		Message:  "Your facility booking was confirmed",
		EntityID: booking.ID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"booking": booking})
}

func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("facilityId")

	if _, ok := loadAuthorized(w, r, facilityID, policy.OpCancelBooking); !ok {
		return
	}

	booking, err := Mgr.CancelBooking(r.Context(), facilityID, ps.ByName("id"), middleware.RequesterID(r))
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "booking_cancelled",
		UserID:   booking.ResidentID,
		Message:  "Your facility booking was cancelled",
		EntityID: booking.ID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"booking": booking})
}

func ListBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("facilityId")

	if _, ok := loadAuthorized(w, r, facilityID, policy.OpListBookings); !ok {
		return
	}

	bookings, err := Mgr.Bookings(r.Context(), facilityID)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}

// loadAuthorized fetches the facility and runs the role + community checks
// before any booking logic sees the request.
func loadAuthorized(w http.ResponseWriter, r *http.Request, facilityID, op string) (*models.Facility, bool) {
	f, err := Mgr.store.Get(r.Context(), facilityID)
	if err != nil {
		utils.RespondWithError(w, reserve.HTTPStatus(err), err.Error())
		return nil, false
	}
	if !policy.Authorize(w, r, op, f.CommunityID) {
		return nil, false
	}
	return f, true
}
