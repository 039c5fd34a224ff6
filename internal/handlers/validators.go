package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"marketplace-service/internal/models"
)

// RegisterValidators installs the custom binding validators. Call once
// before building the router.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("liststatus", func(fl validator.FieldLevel) bool {
		return lo.Contains([]string{models.ListingActive, models.ListingInactive, models.ListingDeleted}, fl.Field().String())
	})
	_ = v.RegisterValidation("paystatus", func(fl validator.FieldLevel) bool {
		return lo.Contains([]string{models.PaymentPending, models.PaymentCompleted, models.PaymentFailed}, fl.Field().String())
	})
	_ = v.RegisterValidation("reportkind", func(fl validator.FieldLevel) bool {
		return lo.Contains([]string{
			models.ReportUsers, models.ReportListings, models.ReportPayments,
			models.ReportMessages, models.ReportRatings,
		}, fl.Field().String())
	})
}
