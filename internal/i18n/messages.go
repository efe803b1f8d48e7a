// Package i18n holds the user-facing strings of the admin and overlay pages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a translated message.
type Key string

const (
	NoticeCreated      Key = "notice.created"
	NoticeUpdated      Key = "notice.updated"
	NoticeDeleted      Key = "notice.deleted"
	NoticeSaveFailed   Key = "notice.save_failed"
	NoticeDeleteFailed Key = "notice.delete_failed"
	NoticeLoadFailed   Key = "notice.load_failed"
	NoticeNotFound     Key = "notice.not_found"
	NoticeSettings     Key = "notice.settings_saved"
	NoticeConfirm      Key = "notice.confirm_delete"
	ValidationRequired Key = "validation.required"
	ValidationAmount   Key = "validation.amount"
	AdminTitle         Key = "admin.title"
	AdminListTitle     Key = "admin.list_title"
	AdminLoading       Key = "admin.loading"
	OverlayEmpty       Key = "overlay.empty"
	TemplateClassic    Key = "template.classic"
	TemplatePurple     Key = "template.purple"
	TemplateGold       Key = "template.gold"
	FormAddTitle       Key = "form.add_title"
	FormEditTitle      Key = "form.edit_title"
	LabelName          Key = "label.name"
	LabelAmount        Key = "label.amount"
	LabelMessage       Key = "label.message"
	LabelConfirm       Key = "label.confirm_delete"
	LabelBannerTitle   Key = "label.banner_title"
	LabelTemplate      Key = "label.template"
	LabelToken         Key = "label.token"
	ActionAdd          Key = "action.add"
	ActionSave         Key = "action.save"
	ActionCancel       Key = "action.cancel"
	ActionEdit         Key = "action.edit"
	ActionDelete       Key = "action.delete"
	ActionLogin        Key = "action.login"
	ActionLogout       Key = "action.logout"
	ActionOpenOverlay  Key = "action.open_overlay"
	SettingsTitle      Key = "settings.title"
	LoginTitle         Key = "login.title"
	LoginFailed        Key = "login.failed"
	SettingsInvalid    Key = "settings.invalid"
)

const (
	Arabic  = "ar"
	English = "en"
)

var messages = map[Key][2]string{
	NoticeCreated:      {"تمت الإضافة بنجاح", "Supporter added"},
	NoticeUpdated:      {"تم التحديث بنجاح", "Supporter updated"},
	NoticeDeleted:      {"تم الحذف بنجاح", "Supporter deleted"},
	NoticeSaveFailed:   {"فشل في حفظ البيانات", "Failed to save supporter"},
	NoticeDeleteFailed: {"فشل في الحذف", "Failed to delete supporter"},
	NoticeLoadFailed:   {"فشل تحميل البيانات", "Failed to load supporters"},
	NoticeNotFound:     {"الداعم غير موجود", "Supporter not found"},
	NoticeSettings:     {"تم حفظ الإعدادات", "Settings saved"},
	NoticeConfirm:      {"يرجى تأكيد الحذف", "Please confirm the deletion"},
	ValidationRequired: {"الرجاء إدخال الاسم والمبلغ", "Please enter a name and an amount"},
	ValidationAmount:   {"الرجاء إدخال مبلغ صحيح", "Please enter a valid amount"},
	AdminTitle:         {"لوحة تحكم الداعمين", "Supporters dashboard"},
	AdminListTitle:     {"قائمة الداعمين (%d)", "Supporters (%d)"},
	AdminLoading:       {"جاري التحميل...", "Loading..."},
	OverlayEmpty:       {"لا يوجد داعمين حالياً", "No supporters yet"},
	TemplateClassic:    {"كلاسيكي", "Classic"},
	TemplatePurple:     {"بنفسجي", "Purple"},
	TemplateGold:       {"ذهبي", "Gold"},
	FormAddTitle:       {"إضافة داعم جديد", "Add a supporter"},
	FormEditTitle:      {"تعديل الداعم", "Edit supporter"},
	LabelName:          {"الاسم", "Name"},
	LabelAmount:        {"المبلغ ($)", "Amount ($)"},
	LabelMessage:       {"رسالة (اختياري)", "Message (optional)"},
	LabelConfirm:       {"تأكيد الحذف", "Confirm deletion"},
	LabelBannerTitle:   {"عنوان الشريط", "Banner title"},
	LabelTemplate:      {"القالب", "Template"},
	LabelToken:         {"رمز الدخول", "Access token"},
	ActionAdd:          {"إضافة", "Add"},
	ActionSave:         {"حفظ", "Save"},
	ActionCancel:       {"إلغاء", "Cancel"},
	ActionEdit:         {"تعديل", "Edit"},
	ActionDelete:       {"حذف", "Delete"},
	ActionLogin:        {"دخول", "Sign in"},
	ActionLogout:       {"خروج", "Sign out"},
	ActionOpenOverlay:  {"فتح شريط OBS", "Open OBS overlay"},
	SettingsTitle:      {"إعدادات العرض", "Display settings"},
	LoginTitle:         {"تسجيل الدخول للوحة الإدارة", "Admin sign in"},
	LoginFailed:        {"رمز الدخول غير صالح", "Invalid access token"},
	SettingsInvalid:    {"قيمة غير صالحة في الإعدادات", "Invalid settings value"},
}

var (
	supported = []language.Tag{language.Arabic, language.English}
	matcher   = language.NewMatcher(supported)
	cat       = mustCatalog()
)

func mustCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Arabic))
	for key, text := range messages {
		if err := b.SetString(language.Arabic, string(key), text[0]); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, string(key), text[1]); err != nil {
			panic(err)
		}
	}
	return b
}

// Normalize maps any BCP 47 tag or Accept-Language value to "ar" or "en".
// Unknown or empty input yields fallback when it is supported, else "ar".
func Normalize(locale, fallback string) string {
	if base, ok := Match(locale); ok {
		return base
	}
	return normalizeFallback(fallback)
}

// Match reports the supported locale closest to locale, if any.
func Match(locale string) (string, bool) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", false
	}
	base, _ := supported[idx].Base()
	return base.String(), true
}

func normalizeFallback(fallback string) string {
	switch strings.ToLower(strings.TrimSpace(fallback)) {
	case English:
		return English
	default:
		return Arabic
	}
}

// T renders key in locale.
func T(locale string, key Key, args ...any) string {
	tag := language.Arabic
	if Normalize(locale, Arabic) == English {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(cat)).Sprintf(string(key), args...)
}

// Dir returns the text direction for locale.
func Dir(locale string) string {
	if Normalize(locale, Arabic) == Arabic {
		return "rtl"
	}
	return "ltr"
}
