package models

// CompanyInfo identifies the issuer printed on documents and emails.
type CompanyInfo struct {
	Name    string `json:"name"`
	Website string `json:"website"`
	Phone   string `json:"phone"`
	Kvk     string `json:"kvk"`
	VatID   string `json:"vatId"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	IBAN    string `json:"iban,omitempty"`
}
