package models

// Patch is a merge-style partial update of a Draft. Nil pointers mean
// "leave this field untouched"; every non-nil pointer overwrites exactly one
// field. No validation happens here.
type Patch struct {
	Identity   *IdentityPatch   `json:"identity,omitempty"`
	Contact    *ContactPatch    `json:"contact,omitempty"`
	Emergency  *EmergencyPatch  `json:"emergency,omitempty"`
	Referral   *ReferralPatch   `json:"referral,omitempty"`
	Employment *EmploymentPatch `json:"employment,omitempty"`
	Decision   *DecisionPatch   `json:"decision,omitempty"`
	Compliance *CompliancePatch `json:"compliance,omitempty"`
}

type IdentityPatch struct {
	FirstName      *string `json:"first_name,omitempty"`
	MiddleName     *string `json:"middle_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	BirthDay       *string `json:"birth_day,omitempty"`
	BirthMonth     *string `json:"birth_month,omitempty"`
	BirthYear      *string `json:"birth_year,omitempty"`
	SSN            *string `json:"ssn,omitempty"`
	DriversLicense *string `json:"drivers_license,omitempty"`
	Sex            *string `json:"sex,omitempty"`
	MaritalStatus  *string `json:"marital_status,omitempty"`
}

type ContactPatch struct {
	Phone           *string `json:"phone,omitempty"`
	SecondaryPhone  *string `json:"secondary_phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Street          *string `json:"street,omitempty"`
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	Zip             *string `json:"zip,omitempty"`
	TimeAtAddress   *string `json:"time_at_address,omitempty"`
	RentOrOwn       *string `json:"rent_or_own,omitempty"`
	PreviousAddress *string `json:"previous_address,omitempty"`
}

type EmergencyPatch struct {
	Name         *string `json:"name,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type ReferralPatch struct {
	PracticeName    *string `json:"practice_name,omitempty"`
	ProviderName    *string `json:"provider_name,omitempty"`
	ProviderContact *string `json:"provider_contact,omitempty"`
	ProviderEmail   *string `json:"provider_email,omitempty"`
	EstimatedCost   *string `json:"estimated_cost,omitempty"`
}

type EmploymentPatch struct {
	Employer           *string `json:"employer,omitempty"`
	JobTitle           *string `json:"job_title,omitempty"`
	GrossMonthlyIncome *string `json:"gross_monthly_income,omitempty"`
	NetMonthlyIncome   *string `json:"net_monthly_income,omitempty"`
	PayFrequency       *string `json:"pay_frequency,omitempty"`
	SecondaryIncome    *string `json:"secondary_income,omitempty"`
	HouseholdIncome    *string `json:"household_income,omitempty"`
	SpouseEmployer     *string `json:"spouse_employer,omitempty"`
	SpouseIncome       *string `json:"spouse_income,omitempty"`
	CheckingBalance    *string `json:"checking_balance,omitempty"`
	SavingsBalance     *string `json:"savings_balance,omitempty"`
	RetirementBalance  *string `json:"retirement_balance,omitempty"`
	InvestmentBalance  *string `json:"investment_balance,omitempty"`
	HousingCost        *string `json:"housing_cost,omitempty"`
	CreditScore        *string `json:"credit_score,omitempty"`
}

type DecisionPatch struct {
	TimeConsidering  *string   `json:"time_considering,omitempty"`
	Priority         *string   `json:"priority,omitempty"`
	TreatmentReasons *[]string `json:"treatment_reasons,omitempty"`
	Urgency          *string   `json:"urgency,omitempty"`
	Readiness        *string   `json:"readiness,omitempty"`
}

type CompliancePatch struct {
	AuthorizeCreditReport     *bool   `json:"authorize_credit_report,omitempty"`
	ConsentToCommunications   *bool   `json:"consent_to_communications,omitempty"`
	AcknowledgeNoCreditImpact *bool   `json:"acknowledge_no_credit_impact,omitempty"`
	ConfirmAccuracy           *bool   `json:"confirm_accuracy,omitempty"`
	FinalConsent              *bool   `json:"final_consent,omitempty"`
	SignerName                *string `json:"signer_name,omitempty"`
	SignerEmail               *string `json:"signer_email,omitempty"`
	TypedSignature            *string `json:"typed_signature,omitempty"`
}

// Apply merges the patch into the draft, overwriting only the keys present.
func (p Patch) Apply(d *Draft) {
	if p.Identity != nil {
		applyIdentity(&d.Identity, p.Identity)
	}
	if p.Contact != nil {
		applyContact(&d.Contact, p.Contact)
	}
	if p.Emergency != nil {
		setStr(&d.Emergency.Name, p.Emergency.Name)
		setStr(&d.Emergency.Relationship, p.Emergency.Relationship)
		setStr(&d.Emergency.Phone, p.Emergency.Phone)
	}
	if p.Referral != nil {
		setStr(&d.Referral.PracticeName, p.Referral.PracticeName)
		setStr(&d.Referral.ProviderName, p.Referral.ProviderName)
		setStr(&d.Referral.ProviderContact, p.Referral.ProviderContact)
		setStr(&d.Referral.ProviderEmail, p.Referral.ProviderEmail)
		setStr(&d.Referral.EstimatedCost, p.Referral.EstimatedCost)
	}
	if p.Employment != nil {
		applyEmployment(&d.Employment, p.Employment)
	}
	if p.Decision != nil {
		setStr(&d.Decision.TimeConsidering, p.Decision.TimeConsidering)
		setStr(&d.Decision.Priority, p.Decision.Priority)
		if p.Decision.TreatmentReasons != nil {
			reasons := make([]string, len(*p.Decision.TreatmentReasons))
			copy(reasons, *p.Decision.TreatmentReasons)
			d.Decision.TreatmentReasons = reasons
		}
		setStr(&d.Decision.Urgency, p.Decision.Urgency)
		setStr(&d.Decision.Readiness, p.Decision.Readiness)
	}
	if p.Compliance != nil {
		setBool(&d.Compliance.AuthorizeCreditReport, p.Compliance.AuthorizeCreditReport)
		setBool(&d.Compliance.ConsentToCommunications, p.Compliance.ConsentToCommunications)
		setBool(&d.Compliance.AcknowledgeNoCreditImpact, p.Compliance.AcknowledgeNoCreditImpact)
		setBool(&d.Compliance.ConfirmAccuracy, p.Compliance.ConfirmAccuracy)
		setBool(&d.Compliance.FinalConsent, p.Compliance.FinalConsent)
		setStr(&d.Compliance.SignerName, p.Compliance.SignerName)
		setStr(&d.Compliance.SignerEmail, p.Compliance.SignerEmail)
		setStr(&d.Compliance.TypedSignature, p.Compliance.TypedSignature)
	}
}

func applyIdentity(dst *Identity, p *IdentityPatch) {
	setStr(&dst.FirstName, p.FirstName)
	setStr(&dst.MiddleName, p.MiddleName)
	setStr(&dst.LastName, p.LastName)
	setStr(&dst.BirthDay, p.BirthDay)
	setStr(&dst.BirthMonth, p.BirthMonth)
	setStr(&dst.BirthYear, p.BirthYear)
	setStr(&dst.SSN, p.SSN)
	setStr(&dst.DriversLicense, p.DriversLicense)
	setStr(&dst.Sex, p.Sex)
	setStr(&dst.MaritalStatus, p.MaritalStatus)
}

func applyContact(dst *Contact, p *ContactPatch) {
	setStr(&dst.Phone, p.Phone)
	setStr(&dst.SecondaryPhone, p.SecondaryPhone)
	setStr(&dst.Email, p.Email)
	setStr(&dst.Street, p.Street)
	setStr(&dst.City, p.City)
	setStr(&dst.State, p.State)
	setStr(&dst.Zip, p.Zip)
	setStr(&dst.TimeAtAddress, p.TimeAtAddress)
	setStr(&dst.RentOrOwn, p.RentOrOwn)
	setStr(&dst.PreviousAddress, p.PreviousAddress)
}

func applyEmployment(dst *Employment, p *EmploymentPatch) {
	setStr(&dst.Employer, p.Employer)
	setStr(&dst.JobTitle, p.JobTitle)
	setStr(&dst.GrossMonthlyIncome, p.GrossMonthlyIncome)
	setStr(&dst.NetMonthlyIncome, p.NetMonthlyIncome)
	setStr(&dst.PayFrequency, p.PayFrequency)
	setStr(&dst.SecondaryIncome, p.SecondaryIncome)
	setStr(&dst.HouseholdIncome, p.HouseholdIncome)
	setStr(&dst.SpouseEmployer, p.SpouseEmployer)
	setStr(&dst.SpouseIncome, p.SpouseIncome)
	setStr(&dst.CheckingBalance, p.CheckingBalance)
	setStr(&dst.SavingsBalance, p.SavingsBalance)
	setStr(&dst.RetirementBalance, p.RetirementBalance)
	setStr(&dst.InvestmentBalance, p.InvestmentBalance)
	setStr(&dst.HousingCost, p.HousingCost)
	setStr(&dst.CreditScore, p.CreditScore)
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
