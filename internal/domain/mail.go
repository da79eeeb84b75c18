package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type SummaryMailData struct {
	Date          string         `json:"date"`
	Solicitations []Solicitation `json:"solicitations"`
}

type MagicLinkMailData struct {
	Link       string `json:"link"`
	Expiration int    `json:"expiration"`
}

type FailureMailData struct {
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}
