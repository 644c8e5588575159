package dto

type DailyRegistration struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type CustomerReportResponse struct {
	StartDate     string              `json:"start_date,omitempty"`
	EndDate       string              `json:"end_date,omitempty"`
	Total         int64               `json:"total"`
	Active        int64               `json:"active"`
	Inactive      int64               `json:"inactive"`
	Deleted       int64               `json:"deleted"`
	EmailVerified int64               `json:"email_verified"`
	PhoneVerified int64               `json:"phone_verified"`
	SSOLinked     int64               `json:"sso_linked"`
	Registrations []DailyRegistration `json:"registrations"`
}
