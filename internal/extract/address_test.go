package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAddressFromJSONLDGraph(t *testing.T) {
	doc := mustParse(t, `<html><head>
		<script type="Application/LD+JSON">
		{"@context":"https://schema.org","@graph":[
			{"@type":"WebSite","name":"Acme"},
			{"@type":["Organization","LocalBusiness"],"address":{
				"@type":"PostalAddress","streetAddress":"1 Infinite Loop","addressLocality":"Cupertino",
				"addressRegion":"CA","postalCode":95014,"addressCountry":{"@type":"Country","name":"US"}}}
		]}
		</script></head><body><footer>Somewhere else 10001</footer></body></html>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "1 Infinite Loop", addr.AddressLine1)
	assert.Equal(t, "Cupertino", addr.City)
	assert.Equal(t, "CA", addr.Region)
	assert.Equal(t, "95014", addr.PostalCode)
	assert.Equal(t, "US", addr.Country)
	assert.Equal(t, "1 Infinite Loop, Cupertino, CA 95014, US", addr.FullAddress)
	assert.Equal(t, "https://x.com/contact", addr.SourcePage)
}

func TestExtractAddressFromJSONLDStringAddress(t *testing.T) {
	doc := mustParse(t, `<script type="application/ld+json">
		[{"@type":"Organization","location":{"@type":"Place","address":"45 Harbor Road, Portland, OR 97201"}}]
		</script>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "45 Harbor Road", addr.AddressLine1)
	assert.Equal(t, "Portland", addr.City)
	assert.Equal(t, "97201", addr.PostalCode)
}

func TestExtractAddressFromMicrodata(t *testing.T) {
	doc := mustParse(t, `<div itemscope itemtype="https://schema.org/PostalAddress">
		<span itemprop="streetAddress">500 Oak Avenue</span>
		<span itemprop="addressLocality">Springfield</span>
		<span itemprop="addressRegion">IL</span>
		<meta itemprop="postalCode" content="62704">
	</div>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "500 Oak Avenue", addr.AddressLine1)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.Region)
	assert.Equal(t, "62704", addr.PostalCode)
}

func TestExtractAddressHeuristicPicksContactBlock(t *testing.T) {
	doc := mustParse(t, `<body>
		<header>Welcome to Acme</header>
		<div class="contact-info">
			<p>Call us: (650) 253-0000</p>
			<p>123 Main St, Suite 200</p>
			<p>Springfield, IL 62704</p>
		</div>
		<footer><p>© 2024 Acme Inc. All rights reserved.</p></footer>
	</body>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "123 Main St", addr.AddressLine1)
	assert.Equal(t, "Suite 200", addr.AddressLine2)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.Region)
	assert.Equal(t, "62704", addr.PostalCode)
	assert.Equal(t, 6, addr.Completeness())
}

func TestExtractAddressKeepsZipPlusFour(t *testing.T) {
	doc := mustParse(t, `<div class="contact-info">
		<p>123 Main St, Suite 200</p>
		<p>Springfield, IL 62704-1234</p>
	</div>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "123 Main St", addr.AddressLine1)
	assert.Equal(t, "Suite 200", addr.AddressLine2)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "IL", addr.Region)
	assert.Equal(t, "62704-1234", addr.PostalCode)
	assert.Equal(t, 6, addr.Completeness())
}

func TestExtractAddressSplitsZipFromTrailingPhone(t *testing.T) {
	doc := mustParse(t, `<footer><p>123 Main St, Springfield, IL 62704 217-555-1234</p></footer>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "123 Main St", addr.AddressLine1)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "62704", addr.PostalCode)
	assert.Equal(t, []string{"217-555-1234"}, contactValues(extractPhones(doc, "US")))
}

func TestExtractAddressFromKeywordParent(t *testing.T) {
	doc := mustParse(t, `<section>
		<h4>Our Office</h4>
		<p>77 Harbor Road</p>
		<p>Portland, OR 97201</p>
	</section>`)

	addr := extractAddress(doc)

	require.NotNil(t, addr)
	assert.Equal(t, "77 Harbor Road", addr.AddressLine1)
	assert.Equal(t, "Portland", addr.City)
	assert.Equal(t, "OR", addr.Region)
	assert.Equal(t, "97201", addr.PostalCode)
}

func TestExtractAddressNoneFound(t *testing.T) {
	doc := mustParse(t, `<p>Hello world, we make widgets.</p><footer>Thanks for visiting</footer>`)
	assert.Nil(t, extractAddress(doc))
}

func TestCompletenessCountsNonEmptyFields(t *testing.T) {
	var missing *ScrapedAddress
	assert.Equal(t, 0, missing.Completeness())

	addr := &ScrapedAddress{City: "Austin", Region: "TX", PostalCode: "78701", SourcePage: "https://x.com"}
	assert.Equal(t, 3, addr.Completeness())
}
