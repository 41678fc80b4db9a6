package auth

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

const (
	PermTimesheetRead   = "timesheet.read"
	PermTimesheetWrite  = "timesheet.write"
	PermPaymentsRead    = "payments.read"
	PermPayRateWrite    = "payments.payrate.write"
	PermPayoutRun       = "payout.run"
	PermInquiriesManage = "inquiries.manage"
	PermAuditRead       = "audit.read"
)

var DefaultPermissions = []string{
	PermTimesheetRead,
	PermTimesheetWrite,
	PermPaymentsRead,
	PermPayRateWrite,
	PermPayoutRun,
	PermInquiriesManage,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermTimesheetRead,
		PermTimesheetWrite,
		PermPaymentsRead,
		PermPayRateWrite,
		PermPayoutRun,
	},
	RoleAdmin: DefaultPermissions,
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
