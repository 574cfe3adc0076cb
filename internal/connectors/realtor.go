package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
	"github.com/wonny/realdeal/pkg/config"
	"github.com/wonny/realdeal/pkg/httputil"
	"github.com/wonny/realdeal/pkg/logger"
)

const realtorSource = "rapidapi_realtor"

// boundingBoxDelta is roughly a 30km box around the city center.
const boundingBoxDelta = 0.15

// cityCoords centers the search bounding box per city. Cities not listed
// fall back to defaultCoords.
var cityCoords = map[string][2]float64{
	"windsor":          {42.3171, -83.0361},
	"sarnia":           {42.9995, -82.3089},
	"chatham-kent":     {42.4053, -82.1850},
	"sudbury":          {46.4900, -81.0100},
	"north bay":        {46.3092, -79.4608},
	"thunder bay":      {48.3809, -89.2477},
	"timmins":          {48.4766, -81.3307},
	"sault ste. marie": {46.4953, -84.3453},
	"cornwall":         {45.0181, -74.7282},
	"welland":          {42.9928, -79.2483},
	"st. catharines":   {43.1594, -79.2466},
	"niagara falls":    {43.0896, -79.0849},
	"brantford":        {43.1394, -80.2644},
	"peterborough":     {44.3001, -78.3162},
	"belleville":       {44.1628, -77.3832},
	"kingston":         {44.2312, -76.4860},
	"london":           {42.9849, -81.2453},
	"oshawa":           {43.8971, -78.8658},
	"hamilton":         {43.2557, -79.8711},
	"elliot lake":      {46.3834, -82.6543},
	"kapuskasing":      {49.4167, -82.4333},
	"cochrane":         {49.0667, -81.0167},
	"pembroke":         {45.8168, -77.1162},
	"owen sound":       {44.5678, -80.9435},
	"stratford":        {43.3695, -80.9820},
	"leamington":       {42.0526, -82.5995},
	"amherstburg":      {42.1028, -83.1098},
	"kincardine":       {44.1767, -81.6333},
	"walkerton":        {44.1333, -81.1500},
	"hanover":          {44.1500, -81.0333},
	"port elgin":       {44.4333, -81.3833},
	"southampton":      {44.5000, -81.3667},
}

var defaultCoords = [2]float64{42.3171, -83.0361}

var nonNumericRe = regexp.MustCompile(`[^\d.]`)

// RealtorConnector fetches listings from the RapidAPI Realtor.ca scraper
// via /properties/search, one bounding-box query per city.
type RealtorConnector struct {
	client              *httputil.Client
	logger              *logger.Logger
	apiKey              string
	host                string
	baseURL             string
	minPrice            float64
	propertyTypeGroupID string
}

// NewRealtor builds the connector. The host comes from the deal config
// when set, otherwise from the environment config; the per-request delay
// from the deal config drives the client's rate limiter.
func NewRealtor(appCfg *config.Config, dealCfg *dealconfig.Config, log *logger.Logger) *RealtorConnector {
	host := dealCfg.DataSource.RapidAPIHost
	if host == "" {
		host = appCfg.RapidAPI.Host
	}

	delay := time.Duration(dealCfg.DataSource.DelaySeconds * float64(time.Second))
	client := httputil.NewWithTimeout(log, 60*time.Second).
		WithHeader("X-RapidAPI-Key", appCfg.RapidAPI.Key).
		WithHeader("X-RapidAPI-Host", host)
	if delay > 0 {
		client = client.WithRateLimit(delay)
	}

	return &RealtorConnector{
		client:              client,
		logger:              log,
		apiKey:              appCfg.RapidAPI.Key,
		host:                host,
		baseURL:             "https://" + host,
		minPrice:            dealCfg.DataSource.MinPrice,
		propertyTypeGroupID: "1",
	}
}

// WithBaseURL overrides the endpoint. For tests.
func (c *RealtorConnector) WithBaseURL(baseURL string) *RealtorConnector {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *RealtorConnector) SourceName() string {
	return realtorSource
}

// Fetch queries every city in turn. A failing city is recorded in
// Errors and the fetch moves on; only a missing API key fails outright.
func (c *RealtorConnector) Fetch(ctx context.Context, cities []string, maxPrice float64, province string) (*FetchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("RAPIDAPI_KEY not set")
	}

	result := &FetchResult{Source: realtorSource}

	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		listings, rawCount, err := c.fetchCity(ctx, city, maxPrice, province)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", city, err))
			c.logger.WithError(err).WithField("city", city).Warn("City fetch failed")
			continue
		}

		result.Listings = append(result.Listings, listings...)
		result.RawCount += rawCount

		c.logger.WithFields(map[string]interface{}{
			"city":     city,
			"raw":      rawCount,
			"listings": len(listings),
		}).Info("City fetched")
	}

	return result, nil
}

// searchQuery is the /properties/search request body.
type searchQuery struct {
	ZoomLevel           string `json:"ZoomLevel"`
	Center              string `json:"Center"`
	LatitudeMax         string `json:"LatitudeMax"`
	LongitudeMax        string `json:"LongitudeMax"`
	LatitudeMin         string `json:"LatitudeMin"`
	LongitudeMin        string `json:"LongitudeMin"`
	Sort                string `json:"Sort"`
	Currency            string `json:"Currency"`
	PriceMin            string `json:"PriceMin"`
	PriceMax            string `json:"PriceMax"`
	PropertyTypeGroupID string `json:"PropertyTypeGroupID,omitempty"`
}

func (c *RealtorConnector) buildSearchQuery(city string, maxPrice float64) searchQuery {
	coords, ok := cityCoords[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		coords = defaultCoords
	}
	lat, lng := coords[0], coords[1]

	return searchQuery{
		ZoomLevel:           "10",
		Center:              fmt.Sprintf("%g,%g", lat, lng),
		LatitudeMax:         fmt.Sprintf("%g", lat+boundingBoxDelta),
		LongitudeMax:        fmt.Sprintf("%g", lng+boundingBoxDelta),
		LatitudeMin:         fmt.Sprintf("%g", lat-boundingBoxDelta),
		LongitudeMin:        fmt.Sprintf("%g", lng-boundingBoxDelta),
		Sort:                "6-D",
		Currency:            "CAD",
		PriceMin:            strconv.Itoa(int(c.minPrice)),
		PriceMax:            strconv.Itoa(int(maxPrice)),
		PropertyTypeGroupID: c.propertyTypeGroupID,
	}
}

func (c *RealtorConnector) fetchCity(ctx context.Context, city string, maxPrice float64, province string) ([]contracts.Listing, int, error) {
	payload := map[string]interface{}{
		"SearchQuery": c.buildSearchQuery(city, maxPrice),
	}

	resp, err := c.client.PostJSON(ctx, c.baseURL+"/properties/search", payload)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	return c.normalizeResponse(body, city, province)
}

// normalizeResponse accepts both a bare array and the wrapped shapes the
// API has been seen returning (Results, Result, data, listings).
func (c *RealtorConnector) normalizeResponse(body []byte, city, province string) ([]contracts.Listing, int, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	items, ok := root.([]interface{})
	if !ok {
		if wrapper, isMap := root.(map[string]interface{}); isMap {
			for _, key := range []string{"Results", "Result", "data", "listings"} {
				if arr, found := wrapper[key].([]interface{}); found {
					items = arr
					break
				}
			}
		}
	}

	now := time.Now().UTC()
	listings := make([]contracts.Listing, 0, len(items))
	raw := 0
	for _, entry := range items {
		item, isMap := entry.(map[string]interface{})
		if !isMap {
			continue
		}
		raw++
		if listing, ok := c.itemToListing(item, city, province, now); ok {
			listings = append(listings, listing)
		}
	}
	return listings, raw, nil
}

// itemToListing maps one API item onto the shared schema. Field names
// vary between API versions, so each field tries several keys.
func (c *RealtorConnector) itemToListing(item map[string]interface{}, defaultCity, defaultProvince string, fetchedAt time.Time) (contracts.Listing, bool) {
	id := firstString(item, "MslNumber", "MlsNumber", "Id", "id", "ListingId")
	if id == "" {
		return contracts.Listing{}, false
	}

	price := parsePrice(firstValue(item, "PriceUnformatted", "Price", "price", "ListPrice"))
	if price <= 0 || price < c.minPrice {
		return contracts.Listing{}, false
	}

	address, cityFromAddr := splitAddress(firstString(item, "Address", "address", "UnparsedAddress"))
	city := firstString(item, "City", "city")
	if city == "" {
		city = cityFromAddr
	}
	if city == "" {
		city = defaultCity
	}

	province := firstString(item, "Province", "province", "ProvinceCode")
	if province == "" {
		province = defaultProvince
	}

	description := firstString(item, "Description", "description", "PublicRemarks", "PublicRemarksEn")
	if description == "" {
		if leaseRent := firstString(item, "LeaseRent"); leaseRent != "" {
			description = "Rent: " + leaseRent
		}
	}

	url := firstString(item, "URL", "url", "PermaLink", "RelativeURL")
	if url != "" && !strings.HasPrefix(url, "http") {
		url = "https://www.realtor.ca/" + strings.TrimPrefix(url, "/")
	}

	listing := contracts.Listing{
		ID:           id,
		Source:       realtorSource,
		Address:      address,
		City:         city,
		Province:     province,
		PostalCode:   firstString(item, "PostalCode", "postal_code", "PostalCode1"),
		Price:        price,
		Bedrooms:     firstInt(item, 1, "Bedrooms", "bedrooms", "BedsTotal", "BedroomsTotal"),
		Bathrooms:    firstFloat(item, 1, "Bathrooms", "bathrooms", "BathTotal", "BathroomTotal"),
		PropertyType: firstStringDefault(item, "Residential", "PropertyType", "property_type", "PropertyTypeName"),
		Description:  description,
		URL:          url,
		FetchedAt:    fetchedAt,
	}
	return listing, listing.Validate() == nil
}

// splitAddress handles the "street|city, province" format some payloads use.
func splitAddress(raw string) (address, city string) {
	parts := strings.SplitN(raw, "|", 2)
	address = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		loc := strings.TrimSpace(parts[1])
		if idx := strings.Index(loc, ","); idx >= 0 {
			loc = loc[:idx]
		}
		city = strings.TrimSpace(loc)
	}
	return address, city
}

// parsePrice accepts 550000, "$550,000" and "$2,600/Monthly".
func parsePrice(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case string:
		cleaned := nonNumericRe.ReplaceAllString(v, "")
		if cleaned == "" {
			return 0
		}
		price, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return price
	default:
		return 0
	}
}

func firstValue(item map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := item[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(item map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstStringDefault(item map[string]interface{}, fallback string, keys ...string) string {
	if s := firstString(item, keys...); s != "" {
		return s
	}
	return fallback
}

func firstInt(item map[string]interface{}, fallback int, keys ...string) int {
	for _, key := range keys {
		switch v := item[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return fallback
}

func firstFloat(item map[string]interface{}, fallback float64, keys ...string) float64 {
	for _, key := range keys {
		switch v := item[key].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return fallback
}
