// Package validate holds the step-scoped validation rules gating forward
// navigation through the wizard. Rules are evaluated only when the user
// attempts to advance; validation never mutates the draft and repeated calls
// produce identical results.
package validate

import (
	"brightpath/internal/application/models"
	"brightpath/pkg/validation"
)

// Step returns the validation failures for the given step as a
// field-name → message map. An empty map means the step is valid.
func Step(step models.Step, draft *models.Draft) map[string]string {
	switch step {
	case models.StepPatientInfo:
		return validation.FieldErrors(patientInfoRules(draft))
	case models.StepReferral:
		return validation.FieldErrors(referralRules(draft))
	case models.StepFinancial:
		return validation.FieldErrors(financialRules(draft))
	case models.StepDecision:
		return validation.FieldErrors(decisionRules(draft))
	case models.StepCompliance:
		return validation.FieldErrors(complianceRules(draft))
	default:
		return map[string]string{}
	}
}

// Rule structs are read-only views over the draft. Field names mirror the
// JSON wire format after snake_casing.

type patientInfoStep struct {
	FirstName  string `validate:"notblank"`
	LastName   string `validate:"notblank"`
	BirthDay   string `validate:"notblank"`
	BirthMonth string `validate:"notblank"`
	BirthYear  string `validate:"notblank"`
	Email      string `validate:"required,email"`
	Phone      string `validate:"notblank"`
	Street     string `validate:"notblank"`
	City       string `validate:"notblank"`
	State      string `validate:"notblank"`
	Zip        string `validate:"notblank"`
}

func patientInfoRules(d *models.Draft) patientInfoStep {
	return patientInfoStep{
		FirstName:  d.Identity.FirstName,
		LastName:   d.Identity.LastName,
		BirthDay:   d.Identity.BirthDay,
		BirthMonth: d.Identity.BirthMonth,
		BirthYear:  d.Identity.BirthYear,
		Email:      d.Contact.Email,
		Phone:      d.Contact.Phone,
		Street:     d.Contact.Street,
		City:       d.Contact.City,
		State:      d.Contact.State,
		Zip:        d.Contact.Zip,
	}
}

type referralStep struct {
	PracticeName  string `validate:"notblank"`
	EstimatedCost string `validate:"notblank"`
}

func referralRules(d *models.Draft) referralStep {
	return referralStep{
		PracticeName:  d.Referral.PracticeName,
		EstimatedCost: d.Referral.EstimatedCost,
	}
}

type financialStep struct {
	Employer           string `validate:"notblank"`
	GrossMonthlyIncome string `validate:"notblank"`
	PayFrequency       string `validate:"notblank"`
}

func financialRules(d *models.Draft) financialStep {
	return financialStep{
		Employer:           d.Employment.Employer,
		GrossMonthlyIncome: d.Employment.GrossMonthlyIncome,
		PayFrequency:       d.Employment.PayFrequency,
	}
}

type decisionStep struct {
	TreatmentReasons []string `validate:"min=1"`
	Urgency          string   `validate:"notblank"`
	Readiness        string   `validate:"notblank"`
}

func decisionRules(d *models.Draft) decisionStep {
	return decisionStep{
		TreatmentReasons: d.Decision.TreatmentReasons,
		Urgency:          d.Decision.Urgency,
		Readiness:        d.Decision.Readiness,
	}
}

// complianceStep enforces the consent gate: the four compliance consents, the
// distinct final consent, and a non-blank signer name and email. The sign
// action must short-circuit before any pipeline work when any of these fail.
type complianceStep struct {
	AuthorizeCreditReport     bool   `validate:"eq=true"`
	ConsentToCommunications   bool   `validate:"eq=true"`
	AcknowledgeNoCreditImpact bool   `validate:"eq=true"`
	ConfirmAccuracy           bool   `validate:"eq=true"`
	FinalConsent              bool   `validate:"eq=true"`
	SignerName                string `validate:"notblank"`
	SignerEmail               string `validate:"required,email"`
}

func complianceRules(d *models.Draft) complianceStep {
	return complianceStep{
		AuthorizeCreditReport:     d.Compliance.AuthorizeCreditReport,
		ConsentToCommunications:   d.Compliance.ConsentToCommunications,
		AcknowledgeNoCreditImpact: d.Compliance.AcknowledgeNoCreditImpact,
		ConfirmAccuracy:           d.Compliance.ConfirmAccuracy,
		FinalConsent:              d.Compliance.FinalConsent,
		SignerName:                d.Compliance.SignerName,
		SignerEmail:               d.Compliance.SignerEmail,
	}
}
