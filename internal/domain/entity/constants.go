package entity

// Form type identifiers served by the forms API
const (
	FormPurchaseRequisition = "purchase-requisition"
	FormExpenseClaim        = "expense-claim"
	FormBusinessTravel      = "business-travel"
	FormTrainingRequest     = "training-request"
	FormLeaveRequest        = "leave-request"
	FormSickLeave           = "sick-leave"
	FormWorkFromHome        = "work-from-home"
	FormOvertimeRequest     = "overtime-request"
	FormMeetingRoom         = "meeting-room"
	FormFacilityAccess      = "facility-access"
	FormEquipmentRequest    = "equipment-request"
	FormITAccess            = "it-access"
	FormPasswordReset       = "password-reset"
	FormInfoUpdate          = "info-update"
	FormITIncident          = "it-incident"
	FormExitClearance       = "exit-clearance"
)

// Raw stage values used by string-enum approval fields
const (
	StageValueApproved = "Approved"
	StageValueRejected = "Rejected"
	StageValuePending  = "Pending"
)

// IT incident ticket statuses
const (
	IncidentStatusOpen       = "Open"
	IncidentStatusInProgress = "In Progress"
	IncidentStatusResolved   = "Resolved"
	IncidentStatusClosed     = "Closed"
)

// Employee confirmation statuses recorded on IT incidents
const (
	ConfirmationConfirmed = "Confirmed"
	ConfirmationRejected  = "Rejected"
)
