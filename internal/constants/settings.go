package constants

// Setting names. Values are stored as strings.
const (
	SettingSSOProcess       = "sso_process"
	SettingSSOTimespan      = "sso_timespan"
	SettingSSODataLimit     = "sso_data_limit"
	SettingSSORefreshConfig = "sso_refresh_config"
	SettingSSOLastUpdate    = "sso_lastupdate"

	SettingContactEmail    = "contact_email"
	SettingContactPhone    = "contact_phone"
	SettingContactWhatsapp = "contact_whatsapp"
	SettingPrivacyPolicy   = "privacy_policy"
	SettingTermsOfService  = "terms_of_service"

	SettingPrefixSSO = "sso_"
)

// PublicSettingNames are readable without authentication.
var PublicSettingNames = []string{
	SettingContactEmail,
	SettingContactPhone,
	SettingContactWhatsapp,
	SettingPrivacyPolicy,
	SettingTermsOfService,
}

// DefaultSettings are seeded when missing.
var DefaultSettings = map[string]string{
	SettingSSOProcess:       "0",
	SettingSSOTimespan:      "60",
	SettingSSODataLimit:     "100",
	SettingSSORefreshConfig: "300",
	SettingSSOLastUpdate:    "1970-01-01 07:00:00.000",
	SettingContactEmail:     "",
	SettingContactPhone:     "",
	SettingContactWhatsapp:  "",
	SettingPrivacyPolicy:    "",
	SettingTermsOfService:   "",
}
