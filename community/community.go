package community

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
)

// CreateCommunity is open to any authenticated user; the creator becomes the
// community's first admin. Role and community land in the token on the next
// login or refresh.
func CreateCommunity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.RequesterID(r)

	var body struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing name")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// one community per user
	count, err := db.CommunityCollection.CountDocuments(ctx, bson.M{"members.userid": userID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "you already belong to a community")
		return
	}

	com := models.Community{
		CommunityID: utils.GenerateID(14),
		Name:        body.Name,
		Address:     body.Address,
		CreatedBy:   userID,
		Members: []models.Member{
			{UserID: userID, Role: policy.RoleAdmin, AddedAt: time.Now()},
		},
		CreatedAt: time.Now(),
	}
	if _, err := db.CommunityCollection.InsertOne(ctx, com); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"community": com})
}

func GetCommunity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	communityID := ps.ByName("communityId")
	if middleware.RequesterCommunity(r) != communityID {
		utils.RespondWithError(w, http.StatusForbidden, "resource belongs to another community")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var com models.Community
	if err := db.CommunityCollection.FindOne(ctx, bson.M{"communityid": communityID}).Decode(&com); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "community not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"community": com})
}

func AddMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	communityID := ps.ByName("communityId")
	if !policy.Authorize(w, r, policy.OpManageCommunity, communityID) {
		return
	}

	var body struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing userId")
		return
	}
	if body.Role == "" {
		body.Role = policy.RoleResident
	}
	if body.Role != policy.RoleAdmin && body.Role != policy.RoleResident && body.Role != policy.RoleSecurity {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// the user must exist and not already be a member anywhere
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": body.UserID}).Err(); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "user not found")
		return
	}
	count, err := db.CommunityCollection.CountDocuments(ctx, bson.M{"members.userid": body.UserID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "user already belongs to a community")
		return
	}

	member := models.Member{UserID: body.UserID, Role: body.Role, AddedAt: time.Now()}
	res, err := db.CommunityCollection.UpdateOne(ctx,
		bson.M{"communityid": communityID},
		bson.M{"$push": bson.M{"members": member}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "community not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"member": member})
}

func RemoveMember(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	communityID := ps.ByName("communityId")
	if !policy.Authorize(w, r, policy.OpManageCommunity, communityID) {
		return
	}
	userID := ps.ByName("userId")
	if userID == middleware.RequesterID(r) {
		utils.RespondWithError(w, http.StatusBadRequest, "cannot remove yourself")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.CommunityCollection.UpdateOne(ctx,
		bson.M{"communityid": communityID},
		bson.M{"$pull": bson.M{"members": bson.M{"userid": userID}}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func SetMemberRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	communityID := ps.ByName("communityId")
	if !policy.Authorize(w, r, policy.OpManageCommunity, communityID) {
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Role != policy.RoleAdmin && body.Role != policy.RoleResident && body.Role != policy.RoleSecurity {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.CommunityCollection.UpdateOne(ctx,
		bson.M{"communityid": communityID, "members.userid": ps.ByName("userId")},
		bson.M{"$set": bson.M{"members.$.role": body.Role}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "member not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true})
}
