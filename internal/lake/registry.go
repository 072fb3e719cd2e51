package lake

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Source identifies one of the known dataset sources. The set is closed;
// Fetch dispatches over it with a switch.
type Source string

const (
	SourceKaggleDataset     Source = "kaggle_dataset"
	SourceKaggleCompetition Source = "kaggle_competition"
	SourceKaggleZillow      Source = "kaggle_zillow"
	SourceKaggleCalifornia  Source = "kaggle_california"
	SourceKaggleAmes        Source = "kaggle_ames"
	SourceNadlanGov         Source = "nadlan_gov"
	SourceNadlanTaxes       Source = "nadlan_taxes"
	SourceDatagov           Source = "datagov"
	SourceCBS               Source = "cbs"
	SourceOpentaba          Source = "opentaba"
	SourceC4C               Source = "c4c"
	SourceAskdata           Source = "askdata"
	SourceHasadnaCrime      Source = "hasadna_crime"
	SourceHasadnaAir        Source = "hasadna_air"
)

// Sources returns all known sources in display order.
func Sources() []Source {
	return []Source{
		SourceKaggleDataset,
		SourceKaggleCompetition,
		SourceKaggleZillow,
		SourceKaggleCalifornia,
		SourceKaggleAmes,
		SourceNadlanGov,
		SourceNadlanTaxes,
		SourceDatagov,
		SourceCBS,
		SourceOpentaba,
		SourceC4C,
		SourceAskdata,
		SourceHasadnaCrime,
		SourceHasadnaAir,
	}
}

// ParseSource resolves a source name. Unknown names fail with an error
// listing the known sources.
func ParseSource(name string) (Source, error) {
	for _, s := range Sources() {
		if string(s) == name {
			return s, nil
		}
	}

	known := make([]string, 0, len(Sources()))
	for _, s := range Sources() {
		known = append(known, string(s))
	}
	return "", eris.Errorf("lake: unknown source %q (known: %s)", name, strings.Join(known, ", "))
}

// Fetch runs the fetcher for src with positional params, writing the artifact
// under dest (or the configured data directory when dest is empty) and
// returning its path.
func (c *Client) Fetch(ctx context.Context, src Source, params []string, dest string) (string, error) {
	switch src {
	case SourceKaggleDataset:
		slug, err := oneParam(src, params, "dataset slug")
		if err != nil {
			return "", err
		}
		return c.KaggleDataset(ctx, slug, dest)

	case SourceKaggleCompetition:
		slug, err := oneParam(src, params, "competition slug")
		if err != nil {
			return "", err
		}
		return c.KaggleCompetition(ctx, slug, dest)

	case SourceKaggleZillow:
		return c.KaggleZillowPrize(ctx, dest)

	case SourceKaggleCalifornia:
		return c.KaggleCaliforniaHousing(ctx, dest)

	case SourceKaggleAmes:
		return c.KaggleAmesIowa(ctx, dest)

	case SourceNadlanGov:
		year, err := intParam(src, params, "year")
		if err != nil {
			return "", err
		}
		return c.NadlanGovTransactions(ctx, year, dest)

	case SourceNadlanTaxes:
		page := 1
		if len(params) > 0 {
			p, err := intParam(src, params, "page")
			if err != nil {
				return "", err
			}
			page = p
		}
		return c.NadlanTaxesTransactions(ctx, page, dest)

	case SourceDatagov:
		id, err := oneParam(src, params, "resource id")
		if err != nil {
			return "", err
		}
		return c.DatagovResource(ctx, id, dest)

	case SourceCBS:
		id, err := oneParam(src, params, "table id")
		if err != nil {
			return "", err
		}
		return c.CBSTable(ctx, id, dest)

	case SourceOpentaba:
		id, err := oneParam(src, params, "plan id")
		if err != nil {
			return "", err
		}
		return c.OpentabaPlan(ctx, id, dest)

	case SourceC4C:
		return c.Citizens4CitizensProjects(ctx, dest)

	case SourceAskdata:
		return c.AskdataHousingPlans(ctx, dest)

	case SourceHasadnaCrime:
		city, err := oneParam(src, params, "city")
		if err != nil {
			return "", err
		}
		return c.HasadnaOpenPoliceCrime(ctx, city, dest)

	case SourceHasadnaAir:
		code, err := intParam(src, params, "city code")
		if err != nil {
			return "", err
		}
		return c.HasadnaMunicipalAir(ctx, code, dest)
	}

	return "", eris.Errorf("lake: unknown source %q", src)
}

func oneParam(src Source, params []string, what string) (string, error) {
	if len(params) < 1 || params[0] == "" {
		return "", eris.Errorf("lake: %s requires a %s", src, what)
	}
	return params[0], nil
}

func intParam(src Source, params []string, what string) (int, error) {
	raw, err := oneParam(src, params, what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Wrapf(err, "lake: %s: %s must be an integer", src, what)
	}
	return n, nil
}
