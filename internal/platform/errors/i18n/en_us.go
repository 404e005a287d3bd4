package i18n

// Message codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodePoolInsufficient            = "POOL_INSUFFICIENT"
	CodePoolInvalidAmount           = "POOL_INVALID_AMOUNT"
	CodeWorkIneligible              = "WORK_INELIGIBLE"
	CodeWorkImpossible              = "WORK_IMPOSSIBLE"
	CodeWorkTaskBusy                = "WORK_TASK_BUSY"
	CodeMedicalCaseloadFull         = "MEDICAL_CASELOAD_FULL"
	CodeMedicalIneligible           = "MEDICAL_INELIGIBLE"
	CodeDayAdvanceOverdueLoans      = "DAY_ADVANCE_OVERDUE_LOANS"
	CodeDayAdvanceRetirementPending = "DAY_ADVANCE_RETIREMENT_PENDING"
	CodeDayAdvanceRetirementRoll    = "DAY_ADVANCE_RETIREMENT_ROLL_DUE"
	CodeDayAdvanceUnmaintained      = "DAY_ADVANCE_UNMAINTAINED_UNITS"
	CodeDayAdvanceAstechShortfall   = "DAY_ADVANCE_ASTECH_SHORTFALL"
	CodeDayAdvanceUnderDeployed     = "DAY_ADVANCE_UNDER_DEPLOYED"
	CodeDayAdvancePendingBattle     = "DAY_ADVANCE_PENDING_BATTLE"
	CodeDayAdvanceDeclined          = "DAY_ADVANCE_DECLINED"
)

var enUSMessages = map[Code]string{
	CodePoolInsufficient:  "The {{.Pool}} pool has {{number .Available}} available but {{number .Requested}} is required.",
	CodePoolInvalidAmount: "Pool amounts must be greater than zero.",
	CodeWorkIneligible:    "{{.Agent}} cannot work on {{.Task}}.",
	CodeWorkImpossible:    "{{.Task}} cannot be attempted: {{.Reason}}.",
	CodeWorkTaskBusy:      "{{.Task}} is already being worked on by another technician.",
	CodeMedicalCaseloadFull: "{{.Doctor}} already has {{.Caseload}} patients; " +
		"the limit is {{.Limit}}.",
	CodeMedicalIneligible: "{{.Doctor}} cannot treat {{.Patient}}.",
	CodeDayAdvanceOverdueLoans: "You have overdue loan payments totaling {{number .Amount}} C-bills. " +
		"You must resolve them before advancing the day. Options: pay off the loan from your " +
		"current balance, sell units or parts to raise funds, or take a new loan to cover the debt.",
	CodeDayAdvanceRetirementPending: "{{.Count}} personnel have retired or been dismissed without a finalized payout. " +
		"Resolve their payouts now?",
	CodeDayAdvanceRetirementRoll: "It has been a year since the last retirement roll. " +
		"You may want to roll for retirements before continuing.",
	CodeDayAdvanceUnmaintained: "You have {{.Count}} unit(s) requiring maintenance with no tech assigned. " +
		"Advance the day anyway?",
	CodeDayAdvanceAstechShortfall: "Maintenance requires {{number .Needed}} astech minutes but only " +
		"{{number .Available}} are available ({{number .Shortfall}} short). Advance the day anyway?",
	CodeDayAdvanceUnderDeployed: "Contract {{.Contract}} requires {{.Required}} deployed lance(s) but only " +
		"{{.Deployed}} are deployed. Advance the day anyway?",
	CodeDayAdvancePendingBattle: "Scenario {{.Scenario}} is scheduled for today. Advance the day without resolving it?",
	CodeDayAdvanceDeclined:      "The day was not advanced.",
}
