package models

import "time"

// ---------- Users & communities ----------

type User struct {
	UserID        string    `json:"userId" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email" bson:"email"`
	Password      string    `json:"-" bson:"password"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	FlatNumber    string    `json:"flatNumber,omitempty" bson:"flatNumber,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type Member struct {
	UserID  string    `json:"userId" bson:"userid"`
	Role    string    `json:"role" bson:"role"` // admin, resident, security
	AddedAt time.Time `json:"addedAt" bson:"addedAt"`
}

type Community struct {
	CommunityID string    `json:"communityId" bson:"communityid"`
	Name        string    `json:"name" bson:"name"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	CreatedBy   string    `json:"createdBy" bson:"createdBy"`
	Members     []Member  `json:"members" bson:"members"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// ---------- Facilities ----------

type WorkingHours struct {
	Open  string `json:"open,omitempty" bson:"open,omitempty"`   // "06:00"
	Close string `json:"close,omitempty" bson:"close,omitempty"` // "22:00"
}

type Booking struct {
	ID         string    `json:"id" bson:"id"`
	ResidentID string    `json:"residentId" bson:"residentid"`
	StartTime  time.Time `json:"startTime" bson:"startTime"`
	EndTime    time.Time `json:"endTime" bson:"endTime"`
	Status     string    `json:"status" bson:"status"` // pending, confirmed, cancelled
	BookedAt   time.Time `json:"bookedAt" bson:"bookedAt"`
}

// Facility is one document; its bookings ride along and are only ever
// mutated through a version-guarded update of the whole document.
type Facility struct {
	FacilityID   string       `json:"facilityId" bson:"facilityid"`
	CommunityID  string       `json:"communityId" bson:"communityid"`
	Name         string       `json:"name" bson:"name"`
	Capacity     int          `json:"capacity,omitempty" bson:"capacity,omitempty"` // 0 = unlimited
	WorkingHours WorkingHours `json:"workingHours,omitempty" bson:"workingHours,omitempty"`
	Bookings     []Booking    `json:"bookings" bson:"bookings"`
	Version      int64        `json:"-" bson:"version"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
}

// ---------- Parking ----------

type GuestRequest struct {
	ID          string    `json:"id" bson:"id"`
	RequestedBy string    `json:"requestedBy" bson:"requestedBy"`
	FromDate    time.Time `json:"fromDate" bson:"fromDate"`
	ToDate      time.Time `json:"toDate" bson:"toDate"`
	Status      string    `json:"status" bson:"status"` // pending, approved, rejected
	ApprovedBy  string    `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt" bson:"requestedAt"`
}

type ParkingSlot struct {
	SlotID        string         `json:"slotId" bson:"slotid"`
	CommunityID   string         `json:"communityId" bson:"communityid"`
	SlotNumber    string         `json:"slotNumber" bson:"slotNumber"`
	Type          string         `json:"type" bson:"type"` // resident, guest
	ResidentID    string         `json:"residentId,omitempty" bson:"residentid,omitempty"`
	IsAvailable   bool           `json:"isAvailable" bson:"isAvailable"`
	GuestRequests []GuestRequest `json:"guestRequests" bson:"guestRequests"`
	Version       int64          `json:"-" bson:"version"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
}

// ---------- Plain CRUD resources ----------

type Complaint struct {
	ComplaintID string    `json:"complaintId" bson:"complaintid"`
	CommunityID string    `json:"communityId" bson:"communityid"`
	ResidentID  string    `json:"residentId" bson:"residentid"`
	Category    string    `json:"category" bson:"category"`
	Description string    `json:"description" bson:"description"`
	PhotoPath   string    `json:"photoPath,omitempty" bson:"photoPath,omitempty"`
	ThumbPath   string    `json:"thumbPath,omitempty" bson:"thumbPath,omitempty"`
	Status      string    `json:"status" bson:"status"` // open, in_progress, resolved
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Announcement struct {
	AnnouncementID string    `json:"announcementId" bson:"announcementid"`
	CommunityID    string    `json:"communityId" bson:"communityid"`
	Title          string    `json:"title" bson:"title"`
	Body           string    `json:"body" bson:"body"`
	PostedBy       string    `json:"postedBy" bson:"postedBy"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

type VisitorPass struct {
	PassID       string    `json:"passId" bson:"passid"`
	CommunityID  string    `json:"communityId" bson:"communityid"`
	ResidentID   string    `json:"residentId" bson:"residentid"`
	VisitorName  string    `json:"visitorName" bson:"visitorName"`
	VisitorPhone string    `json:"visitorPhone,omitempty" bson:"visitorPhone,omitempty"`
	ExpectedDate time.Time `json:"expectedDate" bson:"expectedDate"`
	Code         string    `json:"code" bson:"code"`
	Status       string    `json:"status" bson:"status"` // issued, entered, expired
	EnteredAt    time.Time `json:"enteredAt,omitempty" bson:"enteredAt,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

type Payment struct {
	PaymentID   string    `json:"paymentId" bson:"paymentid"`
	CommunityID string    `json:"communityId" bson:"communityid"`
	ResidentID  string    `json:"residentId" bson:"residentid"`
	Description string    `json:"description" bson:"description"`
	Amount      float64   `json:"amount" bson:"amount"`
	DueDate     time.Time `json:"dueDate" bson:"dueDate"`
	Status      string    `json:"status" bson:"status"` // due, paid
	PaidAt      time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

type PollOption struct {
	ID    string `json:"id" bson:"id"`
	Text  string `json:"text" bson:"text"`
	Votes int    `json:"votes" bson:"votes"`
}

type Poll struct {
	PollID      string            `json:"pollId" bson:"pollid"`
	CommunityID string            `json:"communityId" bson:"communityid"`
	Question    string            `json:"question" bson:"question"`
	Options     []PollOption      `json:"options" bson:"options"`
	VotedBy     map[string]string `json:"-" bson:"votedBy"` // userId -> optionId
	ClosesAt    time.Time         `json:"closesAt" bson:"closesAt"`
	CreatedBy   string            `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
}

type Notification struct {
	NotificationID string    `json:"notificationId" bson:"notificationid"`
	UserID         string    `json:"userId" bson:"userid"`
	Kind           string    `json:"kind" bson:"kind"`
	Message        string    `json:"message" bson:"message"`
	EntityID       string    `json:"entityId,omitempty" bson:"entityid,omitempty"`
	Read           bool      `json:"read" bson:"read"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}
