package dto

import (
	"time"

	"github.com/octobees/leads-generator/sitescan/internal/scanner"
)

// ScanRequest is the payload accepted by POST /scans.
type ScanRequest struct {
	Website        string `json:"website"`
	OrgHasEmail    bool   `json:"org_has_email"`
	OrgHasPhone    bool   `json:"org_has_phone"`
	OrgHasLinkedIn bool   `json:"org_has_linkedin"`
	OrgHasAddress  bool   `json:"org_has_address"`
}

// Flags converts the request annotations into scanner flags.
func (r ScanRequest) Flags() scanner.ExistingFlags {
	return scanner.ExistingFlags{
		HasEmail:    r.OrgHasEmail,
		HasPhone:    r.OrgHasPhone,
		HasLinkedIn: r.OrgHasLinkedIn,
		HasAddress:  r.OrgHasAddress,
	}
}

// ScanResponse wraps a scan result with its stored id, when history is enabled.
// It is also the body delivered to the result webhook.
type ScanResponse struct {
	ScanID string              `json:"scan_id,omitempty"`
	Result *scanner.ScanResult `json:"result"`
}

// ScanSummary is one row of the admin history listing.
type ScanSummary struct {
	ScanID       string    `json:"scan_id"`
	Website      string    `json:"website"`
	RootDomain   string    `json:"root_domain"`
	EmailsFound  int       `json:"emails_found"`
	PhonesFound  int       `json:"phones_found"`
	PagesScanned int       `json:"pages_scanned"`
	PagesFailed  int       `json:"pages_failed"`
	CreatedAt    time.Time `json:"created_at"`
}
