package model

// TenancyType classifies the tenancy arrangement
type TenancyType string

const (
	TenancyFixedTerm TenancyType = "fixed_term"
	TenancyPeriodic  TenancyType = "periodic"
	TenancyUnknown   TenancyType = "unknown"
)

// RentFrequency is how often rent is due
type RentFrequency string

const (
	RentWeekly      RentFrequency = "weekly"
	RentFortnightly RentFrequency = "fortnightly"
	RentMonthly     RentFrequency = "monthly"
)

// PaymentMethod is how rent is paid
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
	PaymentOther        PaymentMethod = "other"
	PaymentUnknown      PaymentMethod = "unknown"
)

// SpecialTermCategory classifies a special term clause
type SpecialTermCategory string

const (
	TermPets           SpecialTermCategory = "pets"
	TermMaxOccupants   SpecialTermCategory = "max_occupants"
	TermRightOfRenewal SpecialTermCategory = "right_of_renewal"
	TermRecoveryCosts  SpecialTermCategory = "recovery_costs"
	TermOther          SpecialTermCategory = "other"
)

// Fallback text for list-entry identifying fields and the disclaimer.
// List rows always need something to display, so these fields never
// fall back to null.
const (
	FallbackExcessItem   = "Unnamed item"
	FallbackSpecialTerm  = "Special term"
	FallbackReceiptLabel = "Receipt item"
	FallbackKeyPoint     = "Key point"
	FallbackKeyDate      = "Date"
	DefaultDisclaimer    = "Summary generated from the agreement text."
)

// LeaseReport is the canonical, fully-defaulted report produced by
// report.Normalize. Tri-state booleans are *bool, nullable numbers are
// *float64 and nullable strings are *string; nil means the analyzer did
// not determine the value. Slices are never nil.
type LeaseReport struct {
	LeaseSummary         LeaseSummary        `json:"leaseSummary"`
	InsuranceDisclosure  InsuranceDisclosure `json:"insuranceDisclosure"`
	HealthyHomes         HealthyHomes        `json:"healthyHomes"`
	UnitTitle            UnitTitle           `json:"unitTitle"`
	SublettingAssignment Subletting          `json:"sublettingAssignment"`
	SpecialTerms         []SpecialTerm       `json:"specialTerms"`
	NoticeRules          NoticeRules         `json:"noticeRules"`
	Checklist            Checklist           `json:"checklist"`
	KeyPoints            []KeyPoint          `json:"keyPoints"`
	KeyDates             []KeyDate           `json:"keyDates"`
	Disclaimer           string              `json:"disclaimer"`
	RiskFlags            RiskFlags           `json:"riskFlags"`
}

type LeaseSummary struct {
	Address               *string        `json:"address"`
	TenancyType           TenancyType    `json:"tenancyType"`
	StartDate             *string        `json:"startDate"`
	EndDate               *string        `json:"endDate"`
	RentAmount            *float64       `json:"rentAmount"`
	RentFrequency         *RentFrequency `json:"rentFrequency"`
	BondAmount            *float64       `json:"bondAmount"`
	RentPaymentMethod     PaymentMethod  `json:"rentPaymentMethod"`
	RentBankAccountNumber *string        `json:"rentBankAccountNumber"`
	RentBankAccountName   *string        `json:"rentBankAccountName"`
}

type InsuranceDisclosure struct {
	PropertyInsured          *bool    `json:"propertyInsured"`
	PolicyAvailableOnRequest *bool    `json:"policyAvailableOnRequest"`
	Excesses                 []Excess `json:"excesses"`
}

type Excess struct {
	Item   string   `json:"item"`
	Amount *float64 `json:"amount"`
	Notes  *string  `json:"notes"`
}

type HealthyHomes struct {
	StatementProvided *bool   `json:"statementProvided"`
	Compliant         *bool   `json:"compliant"`
	Heating           *string `json:"heating"`
	Insulation        *string `json:"insulation"`
	Ventilation       *string `json:"ventilation"`
	MoistureDrainage  *string `json:"moistureDrainage"`
	DraughtStopping   *string `json:"draughtStopping"`
}

type UnitTitle struct {
	IsUnitTitle                *bool `json:"isUnitTitle"`
	BodyCorporateRulesAttached *bool `json:"bodyCorporateRulesAttached"`
}

type Subletting struct {
	SublettingRequiresConsent *bool   `json:"sublettingRequiresConsent"`
	AssignmentRequiresConsent *bool   `json:"assignmentRequiresConsent"`
	Notes                     *string `json:"notes"`
}

type SpecialTerm struct {
	Category         SpecialTermCategory `json:"category"`
	Title            string              `json:"title"`
	Detail           string              `json:"detail"`
	MayBeRestrictive *bool               `json:"mayBeRestrictive"`
}

type NoticeRules struct {
	TenantPeriodicNoticeDays         *float64              `json:"tenantPeriodicNoticeDays"`
	FixedTermNonRenewalWindowDaysMin *float64              `json:"fixedTermNonRenewalWindowDaysMin"`
	FixedTermNonRenewalWindowDaysMax *float64              `json:"fixedTermNonRenewalWindowDaysMax"`
	LandlordNoticeReasons            LandlordNoticeReasons `json:"landlordNoticeReasons"`
}

type LandlordNoticeReasons struct {
	SaleOfProperty              *bool   `json:"saleOfProperty"`
	OwnerOccupation             *bool   `json:"ownerOccupation"`
	ExtensiveAlterations        *bool   `json:"extensiveAlterations"`
	ChangeOfUse                 *bool   `json:"changeOfUse"`
	Demolition                  *bool   `json:"demolition"`
	RepeatedAntiSocialBehaviour *bool   `json:"repeatedAntiSocialBehaviour"`
	FamilyViolence              *bool   `json:"familyViolence"`
	EmploymentTenancyEnding     *bool   `json:"employmentTenancyEnding"`
	OtherReasonText             *string `json:"otherReasonText"`
}

type Checklist struct {
	InspectionReportProvided *bool     `json:"inspectionReportProvided"`
	KeysSupplied             []string  `json:"keysSupplied"`
	Chattels                 []string  `json:"chattels"`
	WaterMeterReading        *string   `json:"waterMeterReading"`
	ReceiptAmounts           []Receipt `json:"receiptAmounts"`
}

type Receipt struct {
	Label  string   `json:"label"`
	Amount *float64 `json:"amount"`
}

type KeyPoint struct {
	Title        string  `json:"title"`
	WhyItMatters string  `json:"whyItMatters"`
	Confidence   float64 `json:"confidence"`
}

type KeyDate struct {
	Label string  `json:"label"`
	Date  *string `json:"date"`
	Notes *string `json:"notes"`
}

// RiskFlags are analyzer-declared structural concerns. Unlike the
// tri-state fields these are plain booleans; absent or non-boolean
// input coerces to false.
type RiskFlags struct {
	MissingHealthyHomesStatement bool `json:"missingHealthyHomesStatement"`
	MissingInsuranceStatement    bool `json:"missingInsuranceStatement"`
	BondExceedsFourWeeks         bool `json:"bondExceedsFourWeeks"`
	NoInspectionReport           bool `json:"noInspectionReport"`
	HasSpecialTerms              bool `json:"hasSpecialTerms"`
	SublettingRequiresConsent    bool `json:"sublettingRequiresConsent"`
	UnitTitleRulesMissing        bool `json:"unitTitleRulesMissing"`
}
