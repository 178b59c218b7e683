// Package policy is the authorization table keyed by (role, operation).
// Handlers consult it instead of branching on role strings inline.
package policy

// Roles
const (
	RoleAdmin    = "admin"
	RoleResident = "resident"
	RoleSecurity = "security"
)

// Operations
const (
	OpCreateBooking       = "booking.create"
	OpConfirmBooking      = "booking.confirm"
	OpCancelBooking       = "booking.cancel"
	OpListBookings        = "booking.list"
	OpCreateGuestRequest  = "parking.request"
	OpApproveGuestRequest = "parking.approve"
	OpRejectGuestRequest  = "parking.reject"
	OpListGuestRequests   = "parking.list"
	OpManageFacility      = "facility.manage"
	OpManageParkingSlot   = "parkingslot.manage"
	OpManageCommunity     = "community.manage"
	OpFileComplaint       = "complaint.file"
	OpResolveComplaint    = "complaint.resolve"
	OpPostAnnouncement    = "announcement.post"
	OpIssueVisitorPass    = "visitorpass.issue"
	OpScanVisitorPass     = "visitorpass.scan"
	OpRecordPayment       = "payment.record"
	OpManagePoll          = "poll.manage"
	OpVote                = "poll.vote"
)

var allowed = map[string]map[string]bool{
	OpCreateBooking:       {RoleResident: true, RoleAdmin: true},
	OpConfirmBooking:      {RoleAdmin: true},
	OpCancelBooking:       {RoleAdmin: true},
	OpListBookings:        {RoleResident: true, RoleAdmin: true, RoleSecurity: true},
	OpCreateGuestRequest:  {RoleResident: true, RoleAdmin: true},
	OpApproveGuestRequest: {RoleAdmin: true},
	OpRejectGuestRequest:  {RoleAdmin: true},
	OpListGuestRequests:   {RoleResident: true, RoleAdmin: true, RoleSecurity: true},
	OpManageFacility:      {RoleAdmin: true},
	OpManageParkingSlot:   {RoleAdmin: true},
	OpManageCommunity:     {RoleAdmin: true},
	OpFileComplaint:       {RoleResident: true, RoleAdmin: true},
	OpResolveComplaint:    {RoleAdmin: true},
	OpPostAnnouncement:    {RoleAdmin: true},
	OpIssueVisitorPass:    {RoleResident: true, RoleAdmin: true},
	OpScanVisitorPass:     {RoleSecurity: true, RoleAdmin: true},
	OpRecordPayment:       {RoleAdmin: true},
	OpManagePoll:          {RoleAdmin: true},
	OpVote:                {RoleResident: true, RoleAdmin: true, RoleSecurity: true},
}

// Can reports whether role may perform op.
func Can(role, op string) bool {
	return allowed[op][role]
}
