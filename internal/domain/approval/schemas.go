package approval

import "github.com/garyjia/hr-portal/internal/domain/entity"

// Stage labels shared across form types
const (
	LabelLineManager       = "Line Manager"
	LabelFinance           = "Finance"
	LabelHR                = "HR"
	LabelIT                = "IT"
	LabelITHelpdesk        = "IT Helpdesk"
	LabelITSupport         = "IT Support"
	LabelFacilitiesDesk    = "Facilities Desk"
	LabelFacilitiesManager = "Facilities Manager"
	LabelAdmin             = "Admin"
)

// IncidentStatusMap normalizes IT incident ticket statuses
var IncidentStatusMap = StatusMap{
	"":            StatusPending,
	"open":        StatusPending,
	"in progress": StatusPending,
	"resolved":    StatusApproved,
	"closed":      StatusApproved,
	"completed":   StatusApproved,
}

// GenericStatusMap normalizes the overall status of submissions whose form
// type has no declared schema
var GenericStatusMap = StatusMap{
	"approved":  StatusApproved,
	"completed": StatusApproved,
	"closed":    StatusApproved,
	"resolved":  StatusApproved,
	"rejected":  StatusRejected,
	"cancelled": StatusRejected,
}

func stringStage(field, label, reasonField string) StageSpec {
	return StageSpec{FieldName: field, Label: label, Encoding: EncodingStringEnum, ReasonField: reasonField}
}

func clearanceStage(field, label, reasonField string) StageSpec {
	return StageSpec{FieldName: field, Label: label, Encoding: EncodingBoolean, ReasonField: reasonField}
}

// defaultSchemas is the built-in form type table. Adding a form type is a
// table entry, not a code path.
func defaultSchemas() map[string][]StageSpec {
	lineManager := stringStage("line_manager_approval", LabelLineManager, "line_manager_rejected_reason")
	finance := stringStage("finance_approval", LabelFinance, "finance_rejected_reason")
	hr := stringStage("hr_approval", LabelHR, "hr_rejected_reason")
	it := stringStage("it_approval", LabelIT, "it_rejected_reason")
	facilitiesDesk := stringStage("facilities_desk_approval", LabelFacilitiesDesk, "facilities_desk_rejected_reason")
	facilitiesManager := stringStage("facilities_manager_approval", LabelFacilitiesManager, "facilities_manager_rejected_reason")

	return map[string][]StageSpec{
		entity.FormPurchaseRequisition: {lineManager, finance},
		entity.FormExpenseClaim:        {lineManager, finance},
		entity.FormBusinessTravel:      {lineManager, finance},
		entity.FormTrainingRequest:     {lineManager, hr},
		entity.FormLeaveRequest:        {lineManager, hr},
		entity.FormSickLeave:           {lineManager, hr},
		entity.FormWorkFromHome:        {lineManager, hr},
		entity.FormOvertimeRequest:     {lineManager, hr},
		entity.FormMeetingRoom:         {facilitiesDesk, facilitiesManager},
		entity.FormFacilityAccess:      {facilitiesDesk, facilitiesManager},
		entity.FormEquipmentRequest:    {lineManager, it},
		entity.FormITAccess:            {lineManager, it},
		entity.FormPasswordReset: {
			stringStage("it_helpdesk_approval", LabelITHelpdesk, "it_helpdesk_rejected_reason"),
		},
		entity.FormInfoUpdate: {hr},
		entity.FormITIncident: {
			{FieldName: entity.FieldStatus, Label: LabelITSupport, Encoding: EncodingStatusMap, StatusMap: IncidentStatusMap},
		},
		entity.FormExitClearance: {
			clearanceStage("line_manager_clearance", LabelLineManager, "line_manager_rejected_reason"),
			clearanceStage("it_clearance", LabelIT, "it_rejected_reason"),
			clearanceStage("finance_clearance", LabelFinance, "finance_rejected_reason"),
			clearanceStage("admin_clearance", LabelAdmin, "admin_rejected_reason"),
		},
	}
}
