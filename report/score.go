package report

import (
	"github.com/NewtonYuan/BYS.FE/model"
)

// Score deduction weights. A risk flag is a heavy analyzer-declared
// concern, a statement penalty is an explicit "no" on a disclosure
// statement, and a warning indicator is one field worth a second look.
const (
	riskFlagPenalty  = 12
	statementPenalty = 6
)

// Indicator is one "needs review" signal. The same list drives both
// the score and the per-field explanation the API returns.
type Indicator struct {
	Section string `json:"section"`
	Field   string `json:"field"`
	Reason  string `json:"reason"` // missing, caution, incomplete, review
}

const (
	reasonMissing    = "missing"
	reasonCaution    = "caution"
	reasonIncomplete = "incomplete"
	reasonReview     = "review"
)

// Indicators enumerates every warning indicator in the report. A field
// missing its value counts once, unless the matching risk flag already
// classified that absence as a danger; a cautionary true counts once;
// an incomplete list entry counts once; key points and key dates count
// once per entry, since their presence alone is worth checking.
func Indicators(r model.LeaseReport) []Indicator {
	out := []Indicator{}
	missing := func(section, field string, absent bool) {
		if absent {
			out = append(out, Indicator{Section: section, Field: field, Reason: reasonMissing})
		}
	}
	caution := func(section, field string, fired bool) {
		if fired {
			out = append(out, Indicator{Section: section, Field: field, Reason: reasonCaution})
		}
	}

	s := r.LeaseSummary
	missing("leaseSummary", "address", s.Address == nil)
	missing("leaseSummary", "tenancyType", s.TenancyType == model.TenancyUnknown)
	missing("leaseSummary", "startDate", s.StartDate == nil)
	missing("leaseSummary", "endDate", s.EndDate == nil)
	missing("leaseSummary", "rentAmount", s.RentAmount == nil)
	missing("leaseSummary", "rentFrequency", s.RentFrequency == nil)
	missing("leaseSummary", "bondAmount", s.BondAmount == nil)
	missing("leaseSummary", "rentPaymentMethod", s.RentPaymentMethod == model.PaymentUnknown)
	if s.RentPaymentMethod == model.PaymentBankTransfer {
		missing("leaseSummary", "rentBankAccountNumber", s.RentBankAccountNumber == nil)
		missing("leaseSummary", "rentBankAccountName", s.RentBankAccountName == nil)
	}

	ins := r.InsuranceDisclosure
	if !r.RiskFlags.MissingInsuranceStatement {
		missing("insuranceDisclosure", "propertyInsured", ins.PropertyInsured == nil)
		missing("insuranceDisclosure", "policyAvailableOnRequest", ins.PolicyAvailableOnRequest == nil)
	}
	for _, excess := range ins.Excesses {
		if excess.Amount == nil || excess.Notes == nil {
			out = append(out, Indicator{Section: "insuranceDisclosure", Field: "excesses", Reason: reasonIncomplete})
		}
	}

	hh := r.HealthyHomes
	if !r.RiskFlags.MissingHealthyHomesStatement {
		missing("healthyHomes", "statementProvided", hh.StatementProvided == nil)
		missing("healthyHomes", "compliant", hh.Compliant == nil)
		missing("healthyHomes", "heating", hh.Heating == nil)
		missing("healthyHomes", "insulation", hh.Insulation == nil)
		missing("healthyHomes", "ventilation", hh.Ventilation == nil)
		missing("healthyHomes", "moistureDrainage", hh.MoistureDrainage == nil)
		missing("healthyHomes", "draughtStopping", hh.DraughtStopping == nil)
	}
	caution("healthyHomes", "compliant", hh.Compliant != nil && !*hh.Compliant)

	ut := r.UnitTitle
	missing("unitTitle", "isUnitTitle", ut.IsUnitTitle == nil)
	if ut.IsUnitTitle != nil && *ut.IsUnitTitle && !r.RiskFlags.UnitTitleRulesMissing {
		if ut.BodyCorporateRulesAttached == nil || !*ut.BodyCorporateRulesAttached {
			out = append(out, Indicator{Section: "unitTitle", Field: "bodyCorporateRulesAttached", Reason: reasonMissing})
		}
	}

	sub := r.SublettingAssignment
	missing("sublettingAssignment", "sublettingRequiresConsent", sub.SublettingRequiresConsent == nil)
	if !r.RiskFlags.SublettingRequiresConsent {
		caution("sublettingAssignment", "sublettingRequiresConsent",
			sub.SublettingRequiresConsent != nil && *sub.SublettingRequiresConsent)
	}
	missing("sublettingAssignment", "assignmentRequiresConsent", sub.AssignmentRequiresConsent == nil)
	caution("sublettingAssignment", "assignmentRequiresConsent",
		sub.AssignmentRequiresConsent != nil && *sub.AssignmentRequiresConsent)

	for _, term := range r.SpecialTerms {
		caution("specialTerms", "mayBeRestrictive", term.MayBeRestrictive != nil && *term.MayBeRestrictive)
	}

	nr := r.NoticeRules
	missing("noticeRules", "tenantPeriodicNoticeDays", nr.TenantPeriodicNoticeDays == nil)
	missing("noticeRules", "fixedTermNonRenewalWindowDaysMin", nr.FixedTermNonRenewalWindowDaysMin == nil)
	missing("noticeRules", "fixedTermNonRenewalWindowDaysMax", nr.FixedTermNonRenewalWindowDaysMax == nil)
	lr := nr.LandlordNoticeReasons
	for _, reason := range []struct {
		field string
		value *bool
	}{
		{"saleOfProperty", lr.SaleOfProperty},
		{"ownerOccupation", lr.OwnerOccupation},
		{"extensiveAlterations", lr.ExtensiveAlterations},
		{"changeOfUse", lr.ChangeOfUse},
		{"demolition", lr.Demolition},
		{"repeatedAntiSocialBehaviour", lr.RepeatedAntiSocialBehaviour},
		{"familyViolence", lr.FamilyViolence},
		{"employmentTenancyEnding", lr.EmploymentTenancyEnding},
	} {
		caution("noticeRules", "landlordNoticeReasons."+reason.field, reason.value != nil && *reason.value)
	}

	cl := r.Checklist
	if !r.RiskFlags.NoInspectionReport {
		if cl.InspectionReportProvided == nil {
			missing("checklist", "inspectionReportProvided", true)
		} else if !*cl.InspectionReportProvided {
			caution("checklist", "inspectionReportProvided", true)
		}
	}
	missing("checklist", "waterMeterReading", cl.WaterMeterReading == nil)
	for _, receipt := range cl.ReceiptAmounts {
		if receipt.Amount == nil {
			out = append(out, Indicator{Section: "checklist", Field: "receiptAmounts", Reason: reasonIncomplete})
		}
	}

	for range r.KeyPoints {
		out = append(out, Indicator{Section: "keyPoints", Field: "keyPoints", Reason: reasonReview})
	}
	for range r.KeyDates {
		out = append(out, Indicator{Section: "keyDates", Field: "keyDates", Reason: reasonReview})
	}

	return out
}

func riskFlagCount(f model.RiskFlags) int {
	count := 0
	for _, flag := range []bool{
		f.MissingHealthyHomesStatement,
		f.MissingInsuranceStatement,
		f.BondExceedsFourWeeks,
		f.NoInspectionReport,
		f.HasSpecialTerms,
		f.SublettingRequiresConsent,
		f.UnitTitleRulesMissing,
	} {
		if flag {
			count++
		}
	}
	return count
}

func statementPenaltyCount(r model.LeaseReport) int {
	count := 0
	if hh := r.HealthyHomes.StatementProvided; hh != nil && !*hh {
		count++
	}
	if ins := r.InsuranceDisclosure.PropertyInsured; ins != nil && !*ins {
		count++
	}
	return count
}

// Score is the 0-100 agreement score: 100 minus 12 per risk flag,
// 6 per explicit-false disclosure statement and 1 per warning
// indicator, floored at 0. Deterministic for structurally equal
// reports, so the gauge never flickers on re-render.
func Score(r model.LeaseReport) int {
	deductions := riskFlagPenalty*riskFlagCount(r.RiskFlags) +
		statementPenalty*statementPenaltyCount(r) +
		len(Indicators(r))

	score := 100 - deductions
	if score < 0 {
		return 0
	}
	return score
}
