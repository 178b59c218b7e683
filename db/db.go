package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection          *mongo.Collection
	CommunityCollection     *mongo.Collection
	FacilityCollection      *mongo.Collection
	ParkingSlotCollection   *mongo.Collection
	ComplaintsCollection    *mongo.Collection
	AnnouncementsCollection *mongo.Collection
	VisitorPassCollection   *mongo.Collection
	PaymentsCollection      *mongo.Collection
	PollsCollection         *mongo.Collection
	NotificationsCollection *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("nivaasdb")
	UserCollection = database.Collection("users")
	CommunityCollection = database.Collection("communities")
	FacilityCollection = database.Collection("facilities")
	ParkingSlotCollection = database.Collection("parkingslots")
	ComplaintsCollection = database.Collection("complaints")
	AnnouncementsCollection = database.Collection("announcements")
	VisitorPassCollection = database.Collection("visitorpasses")
	PaymentsCollection = database.Collection("payments")
	PollsCollection = database.Collection("polls")
	NotificationsCollection = database.Collection("notifications")
}
