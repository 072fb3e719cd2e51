package lake

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Resource ID of the property transactions dataset on data.gov.il.
const nadlanTransactionsResourceID = "da54c6e7-6c2c-4e7b-9eae-32f7e7fb1317"

// NadlanGovTransactions downloads property transactions for a year from the
// data.gov.il datastore and writes them as nadlan_transactions_{year}.json.
func (c *Client) NadlanGovTransactions(ctx context.Context, year int, dest string) (string, error) {
	q := url.Values{}
	q.Set("resource_id", nadlanTransactionsResourceID)
	q.Set("limit", "100000")
	q.Set("filters", fmt.Sprintf(`{"year":%d}`, year))
	u := fmt.Sprintf("%s/api/3/action/datastore_search?%s", c.cfg.DataGovBaseURL, q.Encode())

	path, err := c.fetchToFile(ctx, u, dest, fmt.Sprintf("nadlan_transactions_%d.json", year))
	if err != nil {
		return "", eris.Wrapf(err, "lake: nadlan transactions %d", year)
	}
	return path, nil
}

// NadlanTaxesTransactions scrapes one page of tax-related property data from
// nadlan.taxes.gov.il. The endpoint is not documented and the page is saved
// as raw HTML.
func (c *Client) NadlanTaxesTransactions(ctx context.Context, page int, dest string) (string, error) {
	u := fmt.Sprintf("%s/some_endpoint?page=%d", c.cfg.TaxesBaseURL, page)

	path, err := c.fetchToFile(ctx, u, dest, fmt.Sprintf("nadlan_taxes_page_%d.html", page))
	if err != nil {
		return "", eris.Wrapf(err, "lake: nadlan taxes page %d", page)
	}
	return path, nil
}

// DatagovResource downloads a resource from data.gov.il by resource id. The
// datastore is asked for the resource's file URL first, then the file itself
// is downloaded; its name is taken from the last URL segment.
func (c *Client) DatagovResource(ctx context.Context, resourceID string, dest string) (string, error) {
	infoURL := fmt.Sprintf("%s/api/3/action/resource_show?id=%s", c.cfg.DataGovBaseURL, url.QueryEscape(resourceID))

	body, err := c.http.Download(ctx, infoURL)
	if err != nil {
		return "", eris.Wrapf(err, "lake: resource_show %s", resourceID)
	}
	defer body.Close() //nolint:errcheck

	var info struct {
		Result struct {
			URL string `json:"url"`
		} `json:"result"`
	}
	if err := json.NewDecoder(body).Decode(&info); err != nil {
		return "", eris.Wrapf(err, "lake: decode resource_show %s", resourceID)
	}
	if info.Result.URL == "" {
		return "", eris.Errorf("lake: resource %s has no file url", resourceID)
	}

	name := lastSegment(info.Result.URL)
	path, err := c.fetchToFile(ctx, info.Result.URL, dest, name)
	if err != nil {
		return "", eris.Wrapf(err, "lake: datagov resource %s", resourceID)
	}
	return path, nil
}

// CBSTable downloads a table (XLSX, CSV) from the cbs.gov.il open-data
// document library. The file is named after the last segment of the table id.
func (c *Client) CBSTable(ctx context.Context, tableID string, dest string) (string, error) {
	u := fmt.Sprintf("%s/%s", c.cfg.CBSBaseURL, tableID)

	path, err := c.fetchToFile(ctx, u, dest, lastSegment(u))
	if err != nil {
		return "", eris.Wrapf(err, "lake: cbs table %s", tableID)
	}
	return path, nil
}

// OpentabaPlan downloads zoning plan data (JSON) from opentaba.
func (c *Client) OpentabaPlan(ctx context.Context, planID string, dest string) (string, error) {
	u := fmt.Sprintf("%s/api/plans/%s", c.cfg.OpentabaBaseURL, url.PathEscape(planID))

	path, err := c.fetchToFile(ctx, u, dest, fmt.Sprintf("opentaba_plan_%s.json", planID))
	if err != nil {
		return "", eris.Wrapf(err, "lake: opentaba plan %s", planID)
	}
	return path, nil
}

// Citizens4CitizensProjects scrapes community engagement projects from
// citizens4citizens. The endpoint is not officially documented; anything but
// an exact 200 fails with ErrEndpointUnavailable.
func (c *Client) Citizens4CitizensProjects(ctx context.Context, dest string) (string, error) {
	u := c.cfg.C4CBaseURL + "/api/projects"

	path, err := c.fetchExact(ctx, u, dest, "c4c_projects.json")
	if err != nil {
		return "", eris.Wrap(err, "lake: c4c projects")
	}
	return path, nil
}

// AskdataHousingPlans downloads housing plans from askdata. The endpoint is
// not officially documented; anything but an exact 200 fails with
// ErrEndpointUnavailable.
func (c *Client) AskdataHousingPlans(ctx context.Context, dest string) (string, error) {
	u := c.cfg.AskdataBaseURL + "/api/plans?limit=1000"

	path, err := c.fetchExact(ctx, u, dest, "askdata_housing_plans.json")
	if err != nil {
		return "", eris.Wrap(err, "lake: askdata housing plans")
	}
	return path, nil
}

// HasadnaOpenPoliceCrime downloads crime data for a city from the Hasadna
// OpenPolice API. The city name is passed as it appears in the API, Hebrew
// included.
func (c *Client) HasadnaOpenPoliceCrime(ctx context.Context, city string, dest string) (string, error) {
	u := fmt.Sprintf("%s/api/events/?city=%s", c.cfg.OpenPoliceBaseURL, url.QueryEscape(city))

	path, err := c.fetchToFile(ctx, u, dest, fmt.Sprintf("hasadna_openpolice_%s.json", city))
	if err != nil {
		return "", eris.Wrapf(err, "lake: hasadna openpolice %s", city)
	}
	return path, nil
}

// HasadnaMunicipalAir downloads air quality data for a city code from the
// Hasadna OpenMunicipality API.
func (c *Client) HasadnaMunicipalAir(ctx context.Context, cityCode int, dest string) (string, error) {
	u := fmt.Sprintf("%s/api/air_quality/%d", c.cfg.MunicipalBaseURL, cityCode)

	path, err := c.fetchToFile(ctx, u, dest, fmt.Sprintf("hasadna_openmunicipality_air_%d.json", cityCode))
	if err != nil {
		return "", eris.Wrapf(err, "lake: hasadna municipal air %d", cityCode)
	}
	return path, nil
}

// lastSegment returns the final path segment of a URL or slash-separated id.
func lastSegment(u string) string {
	trimmed := strings.TrimSuffix(u, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
