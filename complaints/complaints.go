package complaints

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"nivaas/db"
	"nivaas/middleware"
	"nivaas/models"
	"nivaas/mq"
	"nivaas/policy"
	"nivaas/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const uploadDir = "static/complaintpic"

var validStatus = map[string]bool{"open": true, "in_progress": true, "resolved": true}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// FileComplaint accepts multipart form data: category, description, and an
// optional photo.
func FileComplaint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpFileComplaint, "") {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}
	category := r.FormValue("category")
	description := r.FormValue("description")
	if category == "" || description == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing category or description")
		return
	}

	complaint := models.Complaint{
		ComplaintID: utils.GenerateID(14),
		CommunityID: middleware.RequesterCommunity(r),
		ResidentID:  middleware.RequesterID(r),
		Category:    category,
		Description: description,
		Status:      "open",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photoPath, thumbPath, err := savePhoto(file, header.Filename, complaint.ComplaintID)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to save photo")
			return
		}
		complaint.PhotoPath = photoPath
		complaint.ThumbPath = thumbPath
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := db.ComplaintsCollection.InsertOne(ctx, complaint); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"complaint": complaint})
}

// savePhoto stores the original and a 320px-wide thumbnail.
func savePhoto(file io.Reader, filename, complaintID string) (string, string, error) {
	if err := utils.EnsureDir(uploadDir); err != nil {
		return "", "", err
	}

	clean := complaintID + "_" + utils.SanitizeFilename(filename)
	photoPath := filepath.Join(uploadDir, clean)

	out, err := os.Create(photoPath)
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", "", err
	}
	out.Close()

	img, err := imaging.Open(photoPath)
	if err != nil {
		// not an image we can thumbnail; keep the original only
		log.Printf("thumbnail skipped for %s: %v", photoPath, err)
		return photoPath, "", nil
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	thumbPath := filepath.Join(uploadDir, "thumb_"+clean)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return photoPath, "", nil
	}
	return photoPath, thumbPath, nil
}

// ListComplaints returns the caller's own complaints; admins see all of the
// community's.
func ListComplaints(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := bson.M{"communityid": middleware.RequesterCommunity(r)}
	if middleware.RequesterRole(r) != policy.RoleAdmin {
		filter["residentid"] = middleware.RequesterID(r)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	cur, err := db.ComplaintsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var complaints []models.Complaint
	for cur.Next(ctx) {
		var c models.Complaint
		if err := cur.Decode(&c); err == nil {
			complaints = append(complaints, c)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"complaints": complaints})
}

// UpdateComplaintStatus moves a complaint through open -> in_progress ->
// resolved (admins only; any of the three statuses may be set directly).
func UpdateComplaintStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if !policy.Authorize(w, r, policy.OpResolveComplaint, "") {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &body); err != nil || !validStatus[body.Status] {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.ComplaintsCollection.FindOneAndUpdate(ctx,
		bson.M{"complaintid": ps.ByName("complaintId"), "communityid": middleware.RequesterCommunity(r)},
		bson.M{"$set": bson.M{"status": body.Status, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Complaint
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "complaint not found")
		return
	}

	mq.Emit(r.Context(), mq.Event{
		Kind:     "complaint_" + body.Status,
		UserID:   updated.ResidentID,
		Message:  "Your complaint is now " + body.Status,
		EntityID: updated.ComplaintID,
	})
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"complaint": updated})
}
