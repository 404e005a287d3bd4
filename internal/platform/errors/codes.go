// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Pool errors
	CodePoolInvalidAmount Code = "POOL_INVALID_AMOUNT"
	CodePoolInsufficient  Code = "POOL_INSUFFICIENT"
	CodePoolNegativeCap   Code = "POOL_NEGATIVE_CAPACITY"

	// Roster errors
	CodeRosterNotFound      Code = "ROSTER_NOT_FOUND"
	CodeRosterDuplicateID   Code = "ROSTER_DUPLICATE_ID"
	CodeRosterInvalidEntity Code = "ROSTER_INVALID_ENTITY"

	// Work errors
	CodeWorkMissingTask   Code = "WORK_MISSING_TASK"
	CodeWorkMissingAgent  Code = "WORK_MISSING_AGENT"
	CodeWorkIneligible    Code = "WORK_INELIGIBLE"
	CodeWorkImpossible    Code = "WORK_IMPOSSIBLE"
	CodeWorkNotAcquirable Code = "WORK_NOT_ACQUIRABLE"
	CodeWorkTaskBusy      Code = "WORK_TASK_BUSY"

	// Medical errors
	CodeMedicalCaseloadFull   Code = "MEDICAL_CASELOAD_FULL"
	CodeMedicalNoCareNeeded   Code = "MEDICAL_NO_CARE_NEEDED"
	CodeMedicalDoctorInactive Code = "MEDICAL_DOCTOR_INACTIVE"
	CodeMedicalIneligible     Code = "MEDICAL_INELIGIBLE"

	// Bonus part errors
	CodeBonusNoCredit Code = "BONUS_NO_CREDIT"

	// Finance errors
	CodeFinanceInvalidAmount Code = "FINANCE_INVALID_AMOUNT"
	CodeFinanceUnknownLoan   Code = "FINANCE_UNKNOWN_LOAN"

	// Contract errors
	CodeContractNegativeBonus Code = "CONTRACT_NEGATIVE_BONUS"

	// Day advance errors
	CodeDayAdvanceOverdueLoans      Code = "DAY_ADVANCE_OVERDUE_LOANS"
	CodeDayAdvanceRetirementPending Code = "DAY_ADVANCE_RETIREMENT_PENDING"
	CodeDayAdvanceRetirementRoll    Code = "DAY_ADVANCE_RETIREMENT_ROLL_DUE"
	CodeDayAdvanceUnmaintained      Code = "DAY_ADVANCE_UNMAINTAINED_UNITS"
	CodeDayAdvanceAstechShortfall   Code = "DAY_ADVANCE_ASTECH_SHORTFALL"
	CodeDayAdvanceUnderDeployed     Code = "DAY_ADVANCE_UNDER_DEPLOYED"
	CodeDayAdvancePendingBattle     Code = "DAY_ADVANCE_PENDING_BATTLE"
	CodeDayAdvanceDeclined          Code = "DAY_ADVANCE_DECLINED"
	CodeDayAdvanceNotReady          Code = "DAY_ADVANCE_NOT_READY"

	// Dice/mechanics errors
	CodeDiceMissing     Code = "DICE_MISSING"
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodePoolInvalidAmount,
		CodePoolNegativeCap,
		CodeRosterInvalidEntity,
		CodeFinanceInvalidAmount,
		CodeContractNegativeBonus,
		CodeDiceMissing,
		CodeDiceInvalidSpec,
		CodeSeedOutOfRange:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodePoolInsufficient,
		CodeWorkIneligible,
		CodeWorkImpossible,
		CodeWorkNotAcquirable,
		CodeWorkTaskBusy,
		CodeMedicalCaseloadFull,
		CodeMedicalNoCareNeeded,
		CodeMedicalDoctorInactive,
		CodeMedicalIneligible,
		CodeBonusNoCredit,
		CodeDayAdvanceOverdueLoans,
		CodeDayAdvanceRetirementPending,
		CodeDayAdvanceRetirementRoll,
		CodeDayAdvanceUnmaintained,
		CodeDayAdvanceAstechShortfall,
		CodeDayAdvanceUnderDeployed,
		CodeDayAdvancePendingBattle,
		CodeDayAdvanceNotReady:
		return codes.FailedPrecondition

	// Aborted - the operator declined a confirmation
	case CodeDayAdvanceDeclined:
		return codes.Aborted

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeRosterNotFound,
		CodeWorkMissingTask,
		CodeWorkMissingAgent,
		CodeFinanceUnknownLoan:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeRosterDuplicateID:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
