// Package report converts raw analyzer output into the canonical
// LeaseReport and derives the agreement score from it.
package report

import (
	"math"
	"strings"

	"github.com/NewtonYuan/BYS.FE/model"
)

var tenancyTypes = map[string]bool{
	string(model.TenancyFixedTerm): true,
	string(model.TenancyPeriodic):  true,
	string(model.TenancyUnknown):   true,
}

var rentFrequencies = map[string]bool{
	string(model.RentWeekly):      true,
	string(model.RentFortnightly): true,
	string(model.RentMonthly):     true,
}

var paymentMethods = map[string]bool{
	string(model.PaymentBankTransfer): true,
	string(model.PaymentCash):         true,
	string(model.PaymentOther):        true,
	string(model.PaymentUnknown):      true,
}

var specialTermCategories = map[string]bool{
	string(model.TermPets):           true,
	string(model.TermMaxOccupants):   true,
	string(model.TermRightOfRenewal): true,
	string(model.TermRecoveryCosts):  true,
	string(model.TermOther):          true,
}

// asObject guards nested field lookups: anything that is not a plain
// object (arrays included) becomes an empty map, so every subsequent
// key access is safe.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asString trims and rejects empty-after-trim values to nil.
func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// asNumber rejects non-numbers and non-finite values to nil.
func asNumber(v any) *float64 {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

// asBoolean accepts exactly true or false. Strings like "true" and
// numbers like 1 are not determinations, so they map to nil.
func asBoolean(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

// asStringArray keeps only non-empty strings, preserving order.
func asStringArray(v any) []string {
	items, ok := v.([]any)
	result := []string{}
	if !ok {
		return result
	}
	for _, item := range items {
		if s := asString(item); s != nil {
			result = append(result, *s)
		}
	}
	return result
}

func asEnum(v any, allowed map[string]bool, fallback string) string {
	if s, ok := v.(string); ok && allowed[s] {
		return s
	}
	return fallback
}

// asEnumOrNil is asEnum for enum fields whose fallback is the null
// marker rather than an in-set default.
func asEnumOrNil(v any, allowed map[string]bool) *string {
	if s, ok := v.(string); ok && allowed[s] {
		return &s
	}
	return nil
}

// asFlag coerces risk-flag input the way a truthiness check would:
// absent, false, 0, NaN and "" are false, everything else is true.
func asFlag(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func stringOr(v any, fallback string) string {
	if s := asString(v); s != nil {
		return *s
	}
	return fallback
}

func asList(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	return nil
}

// Normalize converts an arbitrary decoded JSON value into a canonical
// LeaseReport. It is total: for any input, including nil and
// primitives, it returns a fully-populated report in which every enum
// holds an in-set value, every slice is non-nil and every nullable
// field is either well-typed or nil. A malformed list entry degrades
// only that entry, never the whole list.
func Normalize(raw any) model.LeaseReport {
	root := asObject(raw)
	leaseSummary := asObject(root["leaseSummary"])
	insurance := asObject(root["insuranceDisclosure"])
	healthyHomes := asObject(root["healthyHomes"])
	unitTitle := asObject(root["unitTitle"])
	subletting := asObject(root["sublettingAssignment"])
	noticeRules := asObject(root["noticeRules"])
	noticeReasons := asObject(noticeRules["landlordNoticeReasons"])
	checklist := asObject(root["checklist"])
	riskFlags := asObject(root["riskFlags"])

	var rentFrequency *model.RentFrequency
	if s := asEnumOrNil(leaseSummary["rentFrequency"], rentFrequencies); s != nil {
		f := model.RentFrequency(*s)
		rentFrequency = &f
	}

	excesses := []model.Excess{}
	for _, entry := range asList(insurance["excesses"]) {
		item := asObject(entry)
		excesses = append(excesses, model.Excess{
			Item:   stringOr(item["item"], model.FallbackExcessItem),
			Amount: asNumber(item["amount"]),
			Notes:  asString(item["notes"]),
		})
	}

	specialTerms := []model.SpecialTerm{}
	for _, term := range asList(root["specialTerms"]) {
		entry := asObject(term)
		specialTerms = append(specialTerms, model.SpecialTerm{
			Category:         model.SpecialTermCategory(asEnum(entry["category"], specialTermCategories, string(model.TermOther))),
			Title:            stringOr(entry["title"], model.FallbackSpecialTerm),
			Detail:           stringOr(entry["detail"], ""),
			MayBeRestrictive: asBoolean(entry["mayBeRestrictive"]),
		})
	}

	receipts := []model.Receipt{}
	for _, receipt := range asList(checklist["receiptAmounts"]) {
		entry := asObject(receipt)
		receipts = append(receipts, model.Receipt{
			Label:  stringOr(entry["label"], model.FallbackReceiptLabel),
			Amount: asNumber(entry["amount"]),
		})
	}

	keyPoints := []model.KeyPoint{}
	for _, point := range asList(root["keyPoints"]) {
		entry := asObject(point)
		confidence := 0.0
		if n := asNumber(entry["confidence"]); n != nil {
			confidence = *n
		}
		keyPoints = append(keyPoints, model.KeyPoint{
			Title:        stringOr(entry["title"], model.FallbackKeyPoint),
			WhyItMatters: stringOr(entry["whyItMatters"], ""),
			Confidence:   confidence,
		})
	}

	keyDates := []model.KeyDate{}
	for _, date := range asList(root["keyDates"]) {
		entry := asObject(date)
		keyDates = append(keyDates, model.KeyDate{
			Label: stringOr(entry["label"], model.FallbackKeyDate),
			Date:  asString(entry["date"]),
			Notes: asString(entry["notes"]),
		})
	}

	return model.LeaseReport{
		LeaseSummary: model.LeaseSummary{
			Address:               asString(leaseSummary["address"]),
			TenancyType:           model.TenancyType(asEnum(leaseSummary["tenancyType"], tenancyTypes, string(model.TenancyUnknown))),
			StartDate:             asString(leaseSummary["startDate"]),
			EndDate:               asString(leaseSummary["endDate"]),
			RentAmount:            asNumber(leaseSummary["rentAmount"]),
			RentFrequency:         rentFrequency,
			BondAmount:            asNumber(leaseSummary["bondAmount"]),
			RentPaymentMethod:     model.PaymentMethod(asEnum(leaseSummary["rentPaymentMethod"], paymentMethods, string(model.PaymentUnknown))),
			RentBankAccountNumber: asString(leaseSummary["rentBankAccountNumber"]),
			RentBankAccountName:   asString(leaseSummary["rentBankAccountName"]),
		},
		InsuranceDisclosure: model.InsuranceDisclosure{
			PropertyInsured:          asBoolean(insurance["propertyInsured"]),
			PolicyAvailableOnRequest: asBoolean(insurance["policyAvailableOnRequest"]),
			Excesses:                 excesses,
		},
		HealthyHomes: model.HealthyHomes{
			StatementProvided: asBoolean(healthyHomes["statementProvided"]),
			Compliant:         asBoolean(healthyHomes["compliant"]),
			Heating:           asString(healthyHomes["heating"]),
			Insulation:        asString(healthyHomes["insulation"]),
			Ventilation:       asString(healthyHomes["ventilation"]),
			MoistureDrainage:  asString(healthyHomes["moistureDrainage"]),
			DraughtStopping:   asString(healthyHomes["draughtStopping"]),
		},
		UnitTitle: model.UnitTitle{
			IsUnitTitle:                asBoolean(unitTitle["isUnitTitle"]),
			BodyCorporateRulesAttached: asBoolean(unitTitle["bodyCorporateRulesAttached"]),
		},
		SublettingAssignment: model.Subletting{
			SublettingRequiresConsent: asBoolean(subletting["sublettingRequiresConsent"]),
			AssignmentRequiresConsent: asBoolean(subletting["assignmentRequiresConsent"]),
			Notes:                     asString(subletting["notes"]),
		},
		SpecialTerms: specialTerms,
		NoticeRules: model.NoticeRules{
			TenantPeriodicNoticeDays:         asNumber(noticeRules["tenantPeriodicNoticeDays"]),
			FixedTermNonRenewalWindowDaysMin: asNumber(noticeRules["fixedTermNonRenewalWindowDaysMin"]),
			FixedTermNonRenewalWindowDaysMax: asNumber(noticeRules["fixedTermNonRenewalWindowDaysMax"]),
			LandlordNoticeReasons: model.LandlordNoticeReasons{
				SaleOfProperty:              asBoolean(noticeReasons["saleOfProperty"]),
				OwnerOccupation:             asBoolean(noticeReasons["ownerOccupation"]),
				ExtensiveAlterations:        asBoolean(noticeReasons["extensiveAlterations"]),
				ChangeOfUse:                 asBoolean(noticeReasons["changeOfUse"]),
				Demolition:                  asBoolean(noticeReasons["demolition"]),
				RepeatedAntiSocialBehaviour: asBoolean(noticeReasons["repeatedAntiSocialBehaviour"]),
				FamilyViolence:              asBoolean(noticeReasons["familyViolence"]),
				EmploymentTenancyEnding:     asBoolean(noticeReasons["employmentTenancyEnding"]),
				OtherReasonText:             asString(noticeReasons["otherReasonText"]),
			},
		},
		Checklist: model.Checklist{
			InspectionReportProvided: asBoolean(checklist["inspectionReportProvided"]),
			KeysSupplied:             asStringArray(checklist["keysSupplied"]),
			Chattels:                 asStringArray(checklist["chattels"]),
			WaterMeterReading:        asString(checklist["waterMeterReading"]),
			ReceiptAmounts:           receipts,
		},
		KeyPoints:  keyPoints,
		KeyDates:   keyDates,
		Disclaimer: stringOr(root["disclaimer"], model.DefaultDisclaimer),
		RiskFlags: model.RiskFlags{
			MissingHealthyHomesStatement: asFlag(riskFlags["missingHealthyHomesStatement"]),
			MissingInsuranceStatement:    asFlag(riskFlags["missingInsuranceStatement"]),
			BondExceedsFourWeeks:         asFlag(riskFlags["bondExceedsFourWeeks"]),
			NoInspectionReport:           asFlag(riskFlags["noInspectionReport"]),
			HasSpecialTerms:              asFlag(riskFlags["hasSpecialTerms"]),
			SublettingRequiresConsent:    asFlag(riskFlags["sublettingRequiresConsent"]),
			UnitTitleRulesMissing:        asFlag(riskFlags["unitTitleRulesMissing"]),
		},
	}
}
