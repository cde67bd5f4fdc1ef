package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebsiteScan is one stored scan run with its serialized result.
type WebsiteScan struct {
	ID           uuid.UUID       `json:"id"`
	Website      string          `json:"website"`
	RootDomain   string          `json:"root_domain"`
	Result       json.RawMessage `json:"result"`
	EmailsFound  int             `json:"emails_found"`
	PhonesFound  int             `json:"phones_found"`
	PagesScanned int             `json:"pages_scanned"`
	PagesFailed  int             `json:"pages_failed"`
	CreatedAt    time.Time       `json:"created_at"`
}
