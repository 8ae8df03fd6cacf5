// internal/app/system/authz/policy.go
package authz

import "github.com/adeoluwa/flocktrack/internal/domain/models"

// rolePolicy maps each action to the non-admin roles permitted to
// attempt it. Admin is handled in CanAct and passes everything.
// Changing a row here changes who may act everywhere; there are no
// per-route role checks outside this table.
var rolePolicy = map[Action]map[string]bool{
	ActionSubmitReport: {
		models.RoleCentreLeader: true,
	},
	ActionAreaApprove: {
		models.RoleAreaSupervisor:  true,
		models.RoleZonalSupervisor: true,
	},
	ActionDistrictApprove: {
		models.RoleDistrictPastor: true,
	},
	ActionReject: {
		models.RoleAreaSupervisor:  true,
		models.RoleZonalSupervisor: true,
		models.RoleDistrictPastor:  true,
	},
	ActionEditReport: {
		models.RoleCentreLeader: true,
	},
	ActionViewReport: {
		models.RoleCentreLeader:    true,
		models.RoleAreaSupervisor:  true,
		models.RoleZonalSupervisor: true,
		models.RoleDistrictPastor:  true,
	},
	ActionRequestPositionChange: {
		models.RoleCentreLeader:    true,
		models.RoleAreaSupervisor:  true,
		models.RoleZonalSupervisor: true,
		models.RoleDistrictPastor:  true,
	},
	ActionReviewPositionChange: {
		// admin only
	},
	ActionSendMessage: {
		models.RoleCentreLeader:    true,
		models.RoleAreaSupervisor:  true,
		models.RoleZonalSupervisor: true,
		models.RoleDistrictPastor:  true,
	},
}
