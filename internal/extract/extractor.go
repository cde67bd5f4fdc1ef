package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Extractor runs the email, phone, LinkedIn and address extractors over one page.
type Extractor struct {
	region string
	logger *zap.Logger
}

// New builds an Extractor. region is the default phone region used for E.164 annotation.
func New(region string, logger *zap.Logger) *Extractor {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{region: region, logger: logger}
}

// Extract parses rawHTML and collects its findings. A failing extractor contributes
// nothing and is logged; it never aborts the others.
func (e *Extractor) Extract(rawHTML, pageURL string) PageFindings {
	var findings PageFindings

	doc, err := Parse(rawHTML, pageURL)
	if err != nil {
		e.logger.Warn("parse page", zap.String("page", pageURL), zap.Error(err))
		return findings
	}

	e.guard("emails", pageURL, func() { findings.Emails = extractEmails(doc) })
	e.guard("phones", pageURL, func() { findings.Phones = extractPhones(doc, e.region) })
	e.guard("linkedin", pageURL, func() { findings.LinkedInURL = extractLinkedIn(doc) })
	e.guard("address", pageURL, func() { findings.Address = extractAddress(doc) })
	return findings
}

func (e *Extractor) guard(name, pageURL string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extractor panicked",
				zap.String("extractor", name),
				zap.String("page", pageURL),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn()
}
