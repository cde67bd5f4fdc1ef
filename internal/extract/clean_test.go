package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanAddressText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "labels contacts and copyright",
			text: "Visit us: 10 Downing Street | London SW1A 2AA • United Kingdom\nEmail: info@gov.uk Tel: +44 20 7946 0958\n© 2024 Gov",
			want: "10 Downing Street, London SW1A 2AA, United Kingdom",
		},
		{
			name: "keeps postal codes that look like short numbers",
			text: "Headquarters: 500 Oak Avenue; Springfield, IL 62704 - www.acme.com",
			want: "500 Oak Avenue, Springfield, IL 62704",
		},
		{
			name: "keeps zip plus four",
			text: "123 Main St, Suite 200\nSpringfield, IL 62704-1234",
			want: "123 Main St, Suite 200, Springfield, IL 62704-1234",
		},
		{
			name: "keeps zip run together with a phone",
			text: "123 Main St, Springfield, IL 62704 217-555-1234",
			want: "123 Main St, Springfield, IL 62704",
		},
		{
			name: "collapses repeated separators",
			text: "123 Main St,, ,\n\nAustin, TX 78701",
			want: "123 Main St, Austin, TX 78701",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanAddressText(tt.text))
		})
	}
}
