package lake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadlan-group/lake-cli/internal/config"
	"github.com/nadlan-group/lake-cli/internal/fetcher"
)

// newTestClient points every source at baseURL and writes into a temp dir.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.LakeConfig{
		DataDir:           t.TempDir(),
		DataGovBaseURL:    baseURL,
		TaxesBaseURL:      baseURL,
		CBSBaseURL:        baseURL + "/he/publications/doclib",
		OpentabaBaseURL:   baseURL,
		C4CBaseURL:        baseURL,
		AskdataBaseURL:    baseURL,
		OpenPoliceBaseURL: baseURL,
		MunicipalBaseURL:  baseURL,
	}
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{UserAgent: "test-agent", Timeout: 5 * time.Second})
	return New(cfg, f, NewKaggleCLI("kaggle"))
}

func TestNadlanGovTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/3/action/datastore_search", r.URL.Path)
		assert.Equal(t, nadlanTransactionsResourceID, r.URL.Query().Get("resource_id"))
		assert.Equal(t, `{"year":2023}`, r.URL.Query().Get("filters"))
		w.Write([]byte(`{"result":{"records":[]}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.NadlanGovTransactions(context.Background(), 2023, "")
	require.NoError(t, err)
	assert.Equal(t, "nadlan_transactions_2023.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"result":{"records":[]}}`, string(data))
}

func TestNadlanGovTransactions_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.NadlanGovTransactions(context.Background(), 2023, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrBadStatus))
}

func TestNadlanTaxesTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte("<html>page two</html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.NadlanTaxesTransactions(context.Background(), 2, "")
	require.NoError(t, err)
	assert.Equal(t, "nadlan_taxes_page_2.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html>page two</html>", string(data))
}

func TestDatagovResource(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/3/action/resource_show":
			assert.Equal(t, "abc-123", r.URL.Query().Get("id"))
			w.Write([]byte(`{"result":{"url":"` + srv.URL + `/download/permits_2023.csv"}}`))
		case "/download/permits_2023.csv":
			w.Write([]byte("city,permits\nHaifa,12\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.DatagovResource(context.Background(), "abc-123", "")
	require.NoError(t, err)
	assert.Equal(t, "permits_2023.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "city,permits\nHaifa,12\n", string(data))
}

func TestDatagovResource_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.DatagovResource(context.Background(), "abc-123", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file url")
}

func TestCBSTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/he/publications/doclib/shnaton/2023/06_01.xlsx", r.URL.Path)
		w.Write([]byte("xlsx-bytes"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	dest := filepath.Join(t.TempDir(), "tmp")
	path, err := c.CBSTable(context.Background(), "shnaton/2023/06_01.xlsx", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "06_01.xlsx"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}

func TestOpentabaPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/plans/100-0136956", r.URL.Path)
		w.Write([]byte(`{"plan":"100-0136956"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.OpentabaPlan(context.Background(), "100-0136956", "")
	require.NoError(t, err)
	assert.Equal(t, "opentaba_plan_100-0136956.json", filepath.Base(path))
}

func TestCitizens4CitizensProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects", r.URL.Path)
		w.Write([]byte(`[{"project":"one"}]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.Citizens4CitizensProjects(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "c4c_projects.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[{"project":"one"}]`, string(data))
}

func TestCitizens4CitizensProjects_NotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Citizens4CitizensProjects(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEndpointUnavailable))
	assert.False(t, errors.Is(err, fetcher.ErrBadStatus))
}

func TestAskdataHousingPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/plans", r.URL.Path)
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"plans":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.AskdataHousingPlans(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "askdata_housing_plans.json", filepath.Base(path))
}

func TestAskdataHousingPlans_RedirectToError(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/plans" {
			http.Redirect(w, r, srv.URL+"/moved", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	// The redirect is followed; the final non-200 still counts as unavailable.
	c := newTestClient(t, srv.URL)
	_, err := c.AskdataHousingPlans(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEndpointUnavailable))
}

func TestHasadnaOpenPoliceCrime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/", r.URL.Path)
		assert.Equal(t, "Haifa", r.URL.Query().Get("city"))
		w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.HasadnaOpenPoliceCrime(context.Background(), "Haifa", "")
	require.NoError(t, err)
	assert.Equal(t, "hasadna_openpolice_Haifa.json", filepath.Base(path))
}

func TestHasadnaMunicipalAir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/air_quality/5000", r.URL.Path)
		w.Write([]byte(`{"pm25":14}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path, err := c.HasadnaMunicipalAir(context.Background(), 5000, "")
	require.NoError(t, err)
	assert.Equal(t, "hasadna_openmunicipality_air_5000.json", filepath.Base(path))
}

func TestFetch_SameParamsOverwrite(t *testing.T) {
	body := "first"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	path1, err := c.OpentabaPlan(context.Background(), "100-1", "")
	require.NoError(t, err)

	body = "second"
	path2, err := c.OpentabaPlan(context.Background(), "100-1", "")
	require.NoError(t, err)
	assert.Equal(t, path1, path2)

	data, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestDestDir_CreatedRecursively(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	dest := filepath.Join(t.TempDir(), "a", "b", "c")
	path, err := c.OpentabaPlan(context.Background(), "100-2", dest)
	require.NoError(t, err)
	assert.Equal(t, dest, filepath.Dir(path))
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "data.csv", lastSegment("https://host/a/b/data.csv"))
	assert.Equal(t, "06_01.xlsx", lastSegment("shnaton/2023/06_01.xlsx"))
	assert.Equal(t, "plain", lastSegment("plain"))
	assert.Equal(t, "dir", lastSegment("some/dir/"))
}
