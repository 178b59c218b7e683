package polls

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nivaas/db"
	"nivaas/middleware"
	"nivaas/models"
	"nivaas/policy"
	"nivaas/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func CreatePoll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpManagePoll, "") {
		return
	}

	var body struct {
		Question string    `json:"question"`
		Options  []string  `json:"options"`
		ClosesAt time.Time `json:"closesAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		body.Question == "" || len(body.Options) < 2 {
		utils.RespondWithError(w, http.StatusBadRequest, "need a question and at least two options")
		return
	}
	if body.ClosesAt.Before(time.Now()) {
		utils.RespondWithError(w, http.StatusBadRequest, "closesAt must be in the future")
		return
	}

	poll := models.Poll{
		PollID:      utils.GenerateID(14),
		CommunityID: middleware.RequesterCommunity(r),
		Question:    body.Question,
		VotedBy:     map[string]string{},
		ClosesAt:    body.ClosesAt,
		CreatedBy:   middleware.RequesterID(r),
		CreatedAt:   time.Now(),
	}
	for _, text := range body.Options {
		poll.Options = append(poll.Options, models.PollOption{
			ID:   utils.GenerateID(8),
			Text: text,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.PollsCollection.InsertOne(ctx, poll); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"poll": poll})
}

func ListPolls(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.PollsCollection.Find(ctx,
		bson.M{"communityid": middleware.RequesterCommunity(r)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var polls []models.Poll
	for cur.Next(ctx) {
		var p models.Poll
		if err := cur.Decode(&p); err == nil {
			polls = append(polls, p)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"polls": polls})
}

// Vote records or replaces the caller's vote on an open poll.
func Vote(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpVote, "") {
		return
	}

	var body struct {
		OptionID string `json:"optionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OptionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing optionId")
		return
	}

	userID := middleware.RequesterID(r)
	pollID := ps.ByName("pollId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var poll models.Poll
	err := db.PollsCollection.FindOne(ctx, bson.M{
		"pollid": pollID, "communityid": middleware.RequesterCommunity(r),
	}).Decode(&poll)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "poll not found")
		return
	}
	if time.Now().After(poll.ClosesAt) {
		utils.RespondWithError(w, http.StatusConflict, "poll is closed")
		return
	}

	valid := false
	for _, opt := range poll.Options {
		if opt.ID == body.OptionID {
			valid = true
			break
		}
	}
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, "unknown option")
		return
	}

	// changing a vote replaces the previous one
	update := bson.M{"$set": bson.M{"votedBy." + userID: body.OptionID}}
	inc := bson.M{"options.$[chosen].votes": 1}
	arrayFilters := []interface{}{bson.M{"chosen.id": body.OptionID}}
	if prev, voted := poll.VotedBy[userID]; voted {
		if prev == body.OptionID {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
			return
		}
		inc["options.$[prev].votes"] = -1
		arrayFilters = append(arrayFilters, bson.M{"prev.id": prev})
	}
	update["$inc"] = inc

	_, err = db.PollsCollection.UpdateOne(ctx,
		bson.M{"pollid": pollID},
		update,
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: arrayFilters}),
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}

func DeletePoll(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpManagePoll, "") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := db.PollsCollection.DeleteOne(ctx, bson.M{
		"pollid":      ps.ByName("pollId"),
		"communityid": middleware.RequesterCommunity(r),
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "poll not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
