package rest

import (
	boModels "github.com/zarbox/backoffice-integration/models"
)

// GenericErrorMessage is the last-resort user-facing message.
const GenericErrorMessage = "خطایی رخ داده است"

// ErrorMessagesFa maps backend error codes to the Persian messages shown in
// the panels. Unknown codes fall back to the raw server message.
var ErrorMessagesFa = map[string]string{
	"UNAUTHORIZED":            "نشست شما منقضی شده است، دوباره وارد شوید",
	"FORBIDDEN":               "دسترسی به این بخش مجاز نیست",
	"NOT_FOUND":               "موردی یافت نشد",
	"VALIDATION_ERROR":        "اطلاعات وارد شده معتبر نیست",
	"CONFLICT":                "درخواست تکراری است",
	"RATE_LIMITED":            "تعداد درخواست بیش از حد مجاز است، کمی بعد تلاش کنید",
	"INTERNAL":                "خطای داخلی سرور",
	"KYC_NOT_APPROVED":        "احراز هویت کاربر تایید نشده است",
	"DEPOSIT_NOT_POOLED":      "واریزی انتخابی در استخر تخصیص نیست",
	"P2P_INSUFFICIENT_POOL":   "موجودی استخر واریزی برای تخصیص کافی نیست",
	"P2P_ALLOCATION_EXPIRED":  "مهلت این تخصیص به پایان رسیده است",
	"P2P_ALREADY_CONFIRMED":   "این تخصیص قبلا تایید شده است",
	"P2P_PROOF_REQUIRED":      "ابتدا رسید پرداخت را ثبت کنید",
	"P2P_ALLOCATION_DISPUTED": "این تخصیص در وضعیت اختلاف است",
	"TAHESAB_OUTBOX_LOCKED":   "این رکورد در صف تاحساب در حال پردازش است",
	"TAHESAB_MAPPING_MISSING": "کد تاحساب برای این کاربر ثبت نشده است",
	"WITHDRAW_LIMIT_EXCEEDED": "مبلغ برداشت از سقف روزانه گروه بیشتر است",
	"GROUP_HAS_MEMBERS":       "گروه دارای اعضا را نمی‌توان حذف کرد",
}

// LocalizeError resolves the user-visible message for an error: code lookup
// first, then the raw server message, then the generic fallback.
func LocalizeError(err error) string {
	apiErr, ok := boModels.AsAPIError(err)
	if !ok {
		return GenericErrorMessage
	}
	if msg, ok := ErrorMessagesFa[apiErr.Code]; ok {
		return msg
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}
