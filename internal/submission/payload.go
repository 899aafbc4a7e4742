package submission

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"brightpath/internal/application/models"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/signing/document"
	"brightpath/pkg/strutil"
)

// Payload is the normalized application record handed to the remote intake
// endpoint. Every optional field is an explicit null when absent, never
// omitted, so downstream bookkeeping sees a stable shape.
type Payload struct {
	FirstName  string  `json:"first_name"`
	MiddleName *string `json:"middle_name"`
	LastName   string  `json:"last_name"`

	DateOfBirth    *string `json:"date_of_birth"`
	SSN            *string `json:"ssn"`
	DriversLicense *string `json:"drivers_license"`
	Sex            *string `json:"sex"`
	MaritalStatus  *string `json:"marital_status"`

	Phone           string  `json:"phone"`
	SecondaryPhone  *string `json:"secondary_phone"`
	Email           string  `json:"email"`
	Street          *string `json:"street"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	Zip             *string `json:"zip"`
	TimeAtAddress   *string `json:"time_at_address"`
	RentOrOwn       *string `json:"rent_or_own"`
	PreviousAddress *string `json:"previous_address"`

	EmergencyContactName         *string `json:"emergency_contact_name"`
	EmergencyContactRelationship *string `json:"emergency_contact_relationship"`
	EmergencyContactPhone        *string `json:"emergency_contact_phone"`

	ReferringPractice *string  `json:"referring_practice"`
	EstimatedCost     *float64 `json:"estimated_cost"`

	Employer           *string  `json:"employer"`
	JobTitle           *string  `json:"job_title"`
	GrossMonthlyIncome *float64 `json:"gross_monthly_income"`
	NetMonthlyIncome   *float64 `json:"net_monthly_income"`
	PayFrequency       *string  `json:"pay_frequency"`
	SecondaryIncome    *float64 `json:"secondary_income"`
	HouseholdIncome    *float64 `json:"household_income"`
	SpouseEmployer     *string  `json:"spouse_employer"`
	SpouseIncome       *float64 `json:"spouse_income"`
	CheckingBalance    *float64 `json:"checking_balance"`
	SavingsBalance     *float64 `json:"savings_balance"`
	RetirementBalance  *float64 `json:"retirement_balance"`
	InvestmentBalance  *float64 `json:"investment_balance"`
	HousingCost        *float64 `json:"housing_cost"`
	CreditScore        *int     `json:"credit_score"`

	Urgency   *string `json:"urgency"`
	Readiness *string `json:"readiness"`

	// AdditionalInfo is a structured side channel carrying the compliance
	// flags, decision context, and referral metadata as serialized JSON.
	AdditionalInfo string `json:"additional_info"`

	SignerName     string `json:"signer_name"`
	SignerEmail    string `json:"signer_email"`
	TypedSignature string `json:"typed_signature"`
	SignatureDate  string `json:"signature_date"`

	DocumentID     string `json:"document_id"`
	DocumentBase64 string `json:"document_base64"`
	DocumentDigest string `json:"document_digest"`

	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Device    string `json:"device"`
}

// AdditionalInfo is the side-channel record serialized into the payload.
type AdditionalInfo struct {
	AuthorizeCreditReport     bool     `json:"authorize_credit_report"`
	ConsentToCommunications   bool     `json:"consent_to_communications"`
	AcknowledgeNoCreditImpact bool     `json:"acknowledge_no_credit_impact"`
	ConfirmAccuracy           bool     `json:"confirm_accuracy"`
	FinalConsent              bool     `json:"final_consent"`
	TreatmentReasons          []string `json:"treatment_reasons"`
	TimeConsidering           string   `json:"time_considering"`
	Priority                  string   `json:"priority"`
	ProviderName              string   `json:"provider_name"`
	ProviderContact           string   `json:"provider_contact"`
	ProviderEmail             string   `json:"provider_email"`
}

// BuildPayload flattens the draft, artifact, and trail into the wire shape.
func BuildPayload(draft *models.Draft, artifact *document.Artifact, trail audittrail.Trail) Payload {
	info := AdditionalInfo{
		AuthorizeCreditReport:     draft.Compliance.AuthorizeCreditReport,
		ConsentToCommunications:   draft.Compliance.ConsentToCommunications,
		AcknowledgeNoCreditImpact: draft.Compliance.AcknowledgeNoCreditImpact,
		ConfirmAccuracy:           draft.Compliance.ConfirmAccuracy,
		FinalConsent:              draft.Compliance.FinalConsent,
		TreatmentReasons:          draft.Decision.TreatmentReasons,
		TimeConsidering:           draft.Decision.TimeConsidering,
		Priority:                  draft.Decision.Priority,
		ProviderName:              draft.Referral.ProviderName,
		ProviderContact:           draft.Referral.ProviderContact,
		ProviderEmail:             draft.Referral.ProviderEmail,
	}
	// Marshal of a struct with json-safe fields cannot fail.
	infoJSON, _ := json.Marshal(info)

	return Payload{
		FirstName:  draft.Identity.FirstName,
		MiddleName: optString(draft.Identity.MiddleName),
		LastName:   draft.Identity.LastName,

		DateOfBirth:    composeDate(draft.Identity.BirthDay, draft.Identity.BirthMonth, draft.Identity.BirthYear),
		SSN:            optString(draft.Identity.SSN),
		DriversLicense: optString(draft.Identity.DriversLicense),
		Sex:            optString(draft.Identity.Sex),
		MaritalStatus:  optString(draft.Identity.MaritalStatus),

		Phone:           draft.Contact.Phone,
		SecondaryPhone:  optString(draft.Contact.SecondaryPhone),
		Email:           draft.Contact.Email,
		Street:          optString(draft.Contact.Street),
		City:            optString(draft.Contact.City),
		State:           optString(draft.Contact.State),
		Zip:             optString(draft.Contact.Zip),
		TimeAtAddress:   optString(draft.Contact.TimeAtAddress),
		RentOrOwn:       optString(draft.Contact.RentOrOwn),
		PreviousAddress: optString(draft.Contact.PreviousAddress),

		EmergencyContactName:         optString(draft.Emergency.Name),
		EmergencyContactRelationship: optString(draft.Emergency.Relationship),
		EmergencyContactPhone:        optString(draft.Emergency.Phone),

		ReferringPractice: optString(draft.Referral.PracticeName),
		EstimatedCost:     parseCurrency(draft.Referral.EstimatedCost),

		Employer:           optString(draft.Employment.Employer),
		JobTitle:           optString(draft.Employment.JobTitle),
		GrossMonthlyIncome: parseCurrency(draft.Employment.GrossMonthlyIncome),
		NetMonthlyIncome:   parseCurrency(draft.Employment.NetMonthlyIncome),
		PayFrequency:       optString(draft.Employment.PayFrequency),
		SecondaryIncome:    parseCurrency(draft.Employment.SecondaryIncome),
		HouseholdIncome:    parseCurrency(draft.Employment.HouseholdIncome),
		SpouseEmployer:     optString(draft.Employment.SpouseEmployer),
		SpouseIncome:       parseCurrency(draft.Employment.SpouseIncome),
		CheckingBalance:    parseCurrency(draft.Employment.CheckingBalance),
		SavingsBalance:     parseCurrency(draft.Employment.SavingsBalance),
		RetirementBalance:  parseCurrency(draft.Employment.RetirementBalance),
		InvestmentBalance:  parseCurrency(draft.Employment.InvestmentBalance),
		HousingCost:        parseCurrency(draft.Employment.HousingCost),
		CreditScore:        parseScore(draft.Employment.CreditScore),

		Urgency:   optString(draft.Decision.Urgency),
		Readiness: optString(draft.Decision.Readiness),

		AdditionalInfo: string(infoJSON),

		SignerName:     draft.Compliance.SignerName,
		SignerEmail:    draft.Compliance.SignerEmail,
		TypedSignature: draft.Compliance.TypedSignature,
		SignatureDate:  artifact.SignedAt.Format("2006-01-02"),

		DocumentID:     artifact.DocumentID,
		DocumentBase64: base64.StdEncoding.EncodeToString(artifact.PDF),
		DocumentDigest: artifact.Digest,

		IPAddress: trail.IPAddress,
		UserAgent: trail.UserAgent,
		Device:    trail.Device,
	}
}

func optString(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

// parseCurrency turns free-text money like "$4,500.00" into a number.
// Unparseable or empty input maps to null, never zero.
func parseCurrency(v string) *float64 {
	cleaned := strutil.DigitsAndDot(v)
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseScore(v string) *int {
	cleaned := strutil.DigitsAndDot(v)
	if cleaned == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.SplitN(cleaned, ".", 2)[0])
	if err != nil {
		return nil
	}
	return &n
}

// composeDate joins the day/month/year parts into an ISO date only when all
// three are present; otherwise the date stays null.
func composeDate(day, month, year string) *string {
	day, month, year = strings.TrimSpace(day), strings.TrimSpace(month), strings.TrimSpace(year)
	if day == "" || month == "" || year == "" {
		return nil
	}
	d, derr := strconv.Atoi(day)
	m, merr := strconv.Atoi(month)
	if derr != nil || merr != nil {
		return nil
	}
	composed := fmt.Sprintf("%s-%02d-%02d", year, m, d)
	return &composed
}
