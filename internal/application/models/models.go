// Package models defines the patient financing application draft: the single
// mutable aggregate collected across the wizard steps.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Step identifies the wizard step currently collecting data.
type Step int

const (
	StepPatientInfo Step = iota + 1
	StepReferral
	StepFinancial
	StepDecision
	StepCompliance

	// StepConfirmation is the terminal confirmation position broadcast after
	// a successful submission. It never collects data.
	StepConfirmation
)

// FirstStep and LastCollectingStep bound the collecting range.
const (
	FirstStep          = StepPatientInfo
	LastCollectingStep = StepCompliance
)

func (s Step) Title() string {
	switch s {
	case StepPatientInfo:
		return "Patient Information"
	case StepReferral:
		return "Treatment & Referral"
	case StepFinancial:
		return "Employment & Financial"
	case StepDecision:
		return "Your Decision"
	case StepCompliance:
		return "Review & Sign"
	case StepConfirmation:
		return "Confirmation"
	default:
		return "Unknown"
	}
}

// Status is the wizard lifecycle state of a draft.
type Status string

const (
	StatusCollecting Status = "collecting" // steps 1..5, including retry-after-error
	StatusSubmitting Status = "submitting" // sign action in flight, further signs rejected
	StatusComplete   Status = "complete"   // terminal, submission accepted
)

// Identity holds legal identity fields collected on the first step.
type Identity struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`

	// Date of birth parts are collected as separate strings and only composed
	// into a date at submission time, when all three are present.
	BirthDay   string `json:"birth_day"`
	BirthMonth string `json:"birth_month"`
	BirthYear  string `json:"birth_year"`

	SSN            string `json:"ssn"`
	DriversLicense string `json:"drivers_license"`
	Sex            string `json:"sex"`
	MaritalStatus  string `json:"marital_status"`
}

// Contact holds reachability and residence fields.
type Contact struct {
	Phone           string `json:"phone"`
	SecondaryPhone  string `json:"secondary_phone"`
	Email           string `json:"email"`
	Street          string `json:"street"`
	City            string `json:"city"`
	State           string `json:"state"`
	Zip             string `json:"zip"`
	TimeAtAddress   string `json:"time_at_address"`
	RentOrOwn       string `json:"rent_or_own"`
	PreviousAddress string `json:"previous_address"`
}

// EmergencyContact is an alternate contact captured with the patient info.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Referral describes the referring dental practice and estimated treatment.
type Referral struct {
	PracticeName    string `json:"practice_name"`
	ProviderName    string `json:"provider_name"`
	ProviderContact string `json:"provider_contact"`
	ProviderEmail   string `json:"provider_email"`

	// Free-text currency, e.g. "$4,500". Parsed to numeric at submission.
	EstimatedCost string `json:"estimated_cost"`
}

// Employment holds income and balance fields. All monetary values are
// free-text until submission-time parsing.
type Employment struct {
	Employer           string `json:"employer"`
	JobTitle           string `json:"job_title"`
	GrossMonthlyIncome string `json:"gross_monthly_income"`
	NetMonthlyIncome   string `json:"net_monthly_income"`
	PayFrequency       string `json:"pay_frequency"`
	SecondaryIncome    string `json:"secondary_income"`
	HouseholdIncome    string `json:"household_income"`
	SpouseEmployer     string `json:"spouse_employer"`
	SpouseIncome       string `json:"spouse_income"`
	CheckingBalance    string `json:"checking_balance"`
	SavingsBalance     string `json:"savings_balance"`
	RetirementBalance  string `json:"retirement_balance"`
	InvestmentBalance  string `json:"investment_balance"`
	HousingCost        string `json:"housing_cost"`
	CreditScore        string `json:"credit_score"`
}

// Decision captures the emotional/decision step.
type Decision struct {
	TimeConsidering  string   `json:"time_considering"`
	Priority         string   `json:"priority"`
	TreatmentReasons []string `json:"treatment_reasons"`
	Urgency          string   `json:"urgency"` // 1-10 scale, kept as entered
	Readiness        string   `json:"readiness"`
}

// Compliance holds the consent gate. Submission is blocked unless the four
// consent booleans are all true, plus the distinct final consent captured with
// the signature.
type Compliance struct {
	AuthorizeCreditReport     bool `json:"authorize_credit_report"`
	ConsentToCommunications   bool `json:"consent_to_communications"`
	AcknowledgeNoCreditImpact bool `json:"acknowledge_no_credit_impact"`
	ConfirmAccuracy           bool `json:"confirm_accuracy"`

	// Captured by the sign action.
	FinalConsent   bool   `json:"final_consent"`
	SignerName     string `json:"signer_name"`
	SignerEmail    string `json:"signer_email"`
	TypedSignature string `json:"typed_signature"`
}

// Draft is the single mutable aggregate for one application attempt. It is
// owned by the wizard controller and mutated only through merge patches; it is
// never persisted remotely until final submission.
type Draft struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	Step      Step
	Status    Status
	LastError string

	Identity   Identity
	Contact    Contact
	Emergency  EmergencyContact
	Referral   Referral
	Employment Employment
	Decision   Decision
	Compliance Compliance
}

// Clone returns a deep copy so callers never hold a live pointer into the store.
func (d *Draft) Clone() *Draft {
	out := *d
	if d.Decision.TreatmentReasons != nil {
		out.Decision.TreatmentReasons = make([]string, len(d.Decision.TreatmentReasons))
		copy(out.Decision.TreatmentReasons, d.Decision.TreatmentReasons)
	}
	return &out
}

// PageContext is the step-changed broadcast consumed by the assistant bridge.
// Fields carries per-field fill state, never field values, so no PII crosses
// into the assistant session.
type PageContext struct {
	StepNumber int               `json:"step_number"`
	StepTitle  string            `json:"step_title"`
	Fields     map[string]string `json:"fields"`
}

const (
	FieldFilled = "filled"
	FieldEmpty  = "empty"
)

// ContextFor derives the page context broadcast for the draft's current step.
func ContextFor(d *Draft) PageContext {
	pc := PageContext{
		StepNumber: int(d.Step),
		StepTitle:  d.Step.Title(),
		Fields:     map[string]string{},
	}
	switch d.Step {
	case StepPatientInfo:
		pc.Fields["first_name"] = fillState(d.Identity.FirstName)
		pc.Fields["last_name"] = fillState(d.Identity.LastName)
		pc.Fields["date_of_birth"] = fillStateAll(d.Identity.BirthDay, d.Identity.BirthMonth, d.Identity.BirthYear)
		pc.Fields["email"] = fillState(d.Contact.Email)
		pc.Fields["phone"] = fillState(d.Contact.Phone)
		pc.Fields["address"] = fillStateAll(d.Contact.Street, d.Contact.City, d.Contact.State, d.Contact.Zip)
	case StepReferral:
		pc.Fields["practice_name"] = fillState(d.Referral.PracticeName)
		pc.Fields["estimated_cost"] = fillState(d.Referral.EstimatedCost)
	case StepFinancial:
		pc.Fields["employer"] = fillState(d.Employment.Employer)
		pc.Fields["gross_monthly_income"] = fillState(d.Employment.GrossMonthlyIncome)
		pc.Fields["pay_frequency"] = fillState(d.Employment.PayFrequency)
	case StepDecision:
		reasons := FieldEmpty
		if len(d.Decision.TreatmentReasons) > 0 {
			reasons = FieldFilled
		}
		pc.Fields["treatment_reasons"] = reasons
		pc.Fields["urgency"] = fillState(d.Decision.Urgency)
		pc.Fields["readiness"] = fillState(d.Decision.Readiness)
	case StepCompliance:
		pc.Fields["authorize_credit_report"] = boolState(d.Compliance.AuthorizeCreditReport)
		pc.Fields["consent_to_communications"] = boolState(d.Compliance.ConsentToCommunications)
		pc.Fields["acknowledge_no_credit_impact"] = boolState(d.Compliance.AcknowledgeNoCreditImpact)
		pc.Fields["confirm_accuracy"] = boolState(d.Compliance.ConfirmAccuracy)
		pc.Fields["signer_name"] = fillState(d.Compliance.SignerName)
	}
	return pc
}

func fillState(v string) string {
	if v == "" {
		return FieldEmpty
	}
	return FieldFilled
}

func fillStateAll(vs ...string) string {
	for _, v := range vs {
		if v == "" {
			return FieldEmpty
		}
	}
	return FieldFilled
}

func boolState(v bool) string {
	if v {
		return FieldFilled
	}
	return FieldEmpty
}
