package announcements

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

func CreateAnnouncement(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpPostAnnouncement, "") {
		return
	}

	var body struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == "" || body.Body == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing title or body")
		return
	}

	communityID := middleware.RequesterCommunity(r)
	a := models.Announcement{
		AnnouncementID: utils.GenerateID(14),
		CommunityID:    communityID,
		Title:          body.Title,
		Body:           body.Body,
		PostedBy:       middleware.RequesterID(r),
		CreatedAt:      time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.AnnouncementsCollection.InsertOne(ctx, a); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	// fan a notification out to every member except the poster
	var com models.Community
	if err := db.CommunityCollection.FindOne(ctx, bson.M{"communityid": communityID}).Decode(&com); err == nil {
		for _, m := range com.Members {
			if m.UserID == a.PostedBy {
				continue
			}
			mq.Emit(r.Context(), mq.Event{
				Kind:     "announcement",
				UserID:   m.UserID,
				Message:  a.Title,
				EntityID: a.AnnouncementID,
			})
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"announcement": a})
}

func ListAnnouncements(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.AnnouncementsCollection.Find(ctx,
		bson.M{"communityid": middleware.RequesterCommunity(r)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var announcements []models.Announcement
	for cur.Next(ctx) {
		var a models.Announcement
		if err := cur.Decode(&a); err == nil {
			announcements = append(announcements, a)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"announcements": announcements})
}

func DeleteAnnouncement(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpPostAnnouncement, "") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.AnnouncementsCollection.DeleteOne(ctx, bson.M{
		"announcementid": ps.ByName("announcementId"),
		"communityid":    middleware.RequesterCommunity(r),
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "announcement not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
