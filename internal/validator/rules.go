package validator

import (
	"log"

	"rentproof_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует правила для закрытых наборов значений из models.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правил приложение запускаться не должно.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-phase", stringRule(func(s string) bool { return models.Phase(s).Valid() }))
	mustRegister("is-party", stringRule(func(s string) bool { return models.Party(s).Valid() }))
	mustRegister("is-evidence-kind", stringRule(func(s string) bool { return models.EvidenceKind(s).Valid() }))
	mustRegister("is-review-kind", stringRule(func(s string) bool { return models.ReviewKind(s).Valid() }))
	mustRegister("is-party-role", stringRule(func(s string) bool { return models.PartyRole(s).Valid() }))
	mustRegister("is-rental-status", stringRule(func(s string) bool { return models.RentalStatus(s).Valid() }))
}

// stringRule skips empty values; 'required' handles those.
func stringRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}
