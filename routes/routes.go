package routes

import (
	"nivaas/announcements"
	"nivaas/auth"
	"nivaas/community"
	"nivaas/complaints"
	"nivaas/facilities"
	"nivaas/middleware"
	"nivaas/notify"
	"nivaas/parking"
	"nivaas/payments"
	"nivaas/polls"
	"nivaas/ratelim"
	"nivaas/visitors"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
}

func AddCommunityRoutes(router *httprouter.Router) {
	router.POST("/api/communities", middleware.Authenticate(community.CreateCommunity))
	router.GET("/api/communities/:communityId", middleware.Authenticate(community.GetCommunity))
	router.POST("/api/communities/:communityId/members", middleware.Authenticate(community.AddMember))
	router.DELETE("/api/communities/:communityId/members/:userId", middleware.Authenticate(community.RemoveMember))
	router.PUT("/api/communities/:communityId/members/:userId/role", middleware.Authenticate(community.SetMemberRole))
}

func AddFacilityRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/facilities", middleware.Authenticate(facilities.CreateFacility))
	router.GET("/api/facilities", middleware.Authenticate(facilities.ListFacilities))
	router.GET("/api/facilities/:facilityId", middleware.Authenticate(facilities.GetFacility))
	router.PUT("/api/facilities/:facilityId", middleware.Authenticate(facilities.UpdateFacility))

	router.POST("/api/facilities/:facilityId/bookings", rl.Limit(middleware.Authenticate(facilities.CreateBooking)))
	router.GET("/api/facilities/:facilityId/bookings", middleware.Authenticate(facilities.ListBookings))
	router.POST("/api/facilities/:facilityId/bookings/:id/confirm", middleware.Authenticate(facilities.ConfirmBooking))
	router.POST("/api/facilities/:facilityId/bookings/:id/cancel", middleware.Authenticate(facilities.CancelBooking))
}

func AddParkingRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/parking/slots", middleware.Authenticate(parking.CreateSlot))
	router.GET("/api/parking/slots", middleware.Authenticate(parking.ListSlots))
	router.PUT("/api/parking/slots/:slotId/availability", middleware.Authenticate(parking.SetSlotAvailability))

	router.POST("/api/parking/slots/:slotId/requests", rl.Limit(middleware.Authenticate(parking.CreateGuestRequest)))
	router.GET("/api/parking/slots/:slotId/requests", middleware.Authenticate(parking.ListGuestRequests))
	router.POST("/api/parking/slots/:slotId/requests/:id/approve", middleware.Authenticate(parking.ApproveGuestRequest))
	router.POST("/api/parking/slots/:slotId/requests/:id/reject", middleware.Authenticate(parking.RejectGuestRequest))
}

func AddComplaintRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/complaints", rl.Limit(middleware.Authenticate(complaints.FileComplaint)))
	router.GET("/api/complaints", middleware.Authenticate(complaints.ListComplaints))
	router.PUT("/api/complaints/:complaintId/status", middleware.Authenticate(complaints.UpdateComplaintStatus))
}

func AddAnnouncementRoutes(router *httprouter.Router) {
	router.POST("/api/announcements", middleware.Authenticate(announcements.CreateAnnouncement))
	router.GET("/api/announcements", middleware.Authenticate(announcements.ListAnnouncements))
	router.DELETE("/api/announcements/:announcementId", middleware.Authenticate(announcements.DeleteAnnouncement))
}

func AddVisitorRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/visitors/passes", rl.Limit(middleware.Authenticate(visitors.IssuePass)))
	router.GET("/api/visitors/passes", middleware.Authenticate(visitors.ListPasses))
	router.GET("/api/visitors/passes/:passId/print", middleware.Authenticate(visitors.PrintPass))
	router.POST("/api/visitors/scan", middleware.Authenticate(visitors.ScanPass))
}

func AddPaymentRoutes(router *httprouter.Router) {
	router.POST("/api/payments", middleware.Authenticate(payments.RecordPayment))
	router.GET("/api/payments", middleware.Authenticate(payments.ListPayments))
	router.POST("/api/payments/:paymentId/paid", middleware.Authenticate(payments.MarkPaid))
}

func AddPollRoutes(router *httprouter.Router) {
	router.POST("/api/polls", middleware.Authenticate(polls.CreatePoll))
	router.GET("/api/polls", middleware.Authenticate(polls.ListPolls))
	router.POST("/api/polls/:pollId/vote", middleware.Authenticate(polls.Vote))
	router.DELETE("/api/polls/:pollId", middleware.Authenticate(polls.DeletePoll))
}

func AddNotificationRoutes(router *httprouter.Router, hub *notify.Hub) {
	router.GET("/api/notifications", middleware.Authenticate(notify.ListNotifications))
	router.PUT("/api/notifications/:notificationId/read", middleware.Authenticate(notify.MarkNotificationRead))
	router.GET("/ws/notifications", notify.WebSocketHandler(hub))
}
