package extract

const (
	KindEmail = "email"
	KindPhone = "phone"
)

// ScrapedContact is one email or phone candidate found on a page.
type ScrapedContact struct {
	Kind       string `json:"kind"`
	Value      string `json:"value"`
	E164       string `json:"e164,omitempty"`
	SourcePage string `json:"source_page"`
	Context    string `json:"context,omitempty"`
}

// ScrapedAddress is a postal address candidate with whatever breakdown could be recovered.
type ScrapedAddress struct {
	FullAddress  string `json:"full_address,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	SourcePage   string `json:"source_page"`
}

// Completeness counts the non-empty text fields.
func (a *ScrapedAddress) Completeness() int {
	if a == nil {
		return 0
	}
	count := 0
	for _, field := range []string{a.FullAddress, a.AddressLine1, a.AddressLine2, a.City, a.Region, a.PostalCode, a.Country} {
		if field != "" {
			count++
		}
	}
	return count
}

// PageFindings groups the candidates extracted from a single page.
type PageFindings struct {
	Emails      []ScrapedContact
	Phones      []ScrapedContact
	LinkedInURL string
	Address     *ScrapedAddress
}
