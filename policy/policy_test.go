package policy

import "testing"

func TestCan(t *testing.T) {
	cases := []struct {
		role, op string
		want     bool
	}{
		{RoleResident, OpCreateBooking, true},
		{RoleResident, OpConfirmBooking, false},
		{RoleAdmin, OpConfirmBooking, true},
		{RoleSecurity, OpCreateBooking, false},
		{RoleSecurity, OpScanVisitorPass, true},
		{RoleResident, OpScanVisitorPass, false},
		{RoleAdmin, OpApproveGuestRequest, true},
		{RoleResident, OpApproveGuestRequest, false},
		{"", OpCreateBooking, false},
		{RoleAdmin, "unknown.op", false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.op); got != tc.want {
			t.Errorf("Can(%q, %q) = %v, want %v", tc.role, tc.op, got, tc.want)
		}
	}
}
