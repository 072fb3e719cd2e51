package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nadlan-group/lake-cli/internal/fetcher"
	"github.com/nadlan-group/lake-cli/internal/lake"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <source> [params...]",
	Short: "Download a dataset from a named source",
	Long: `Downloads one artifact from a known source into the data directory
(or --dest) and prints the resulting file path.

Sources and their parameters:
  kaggle_dataset <slug>        kaggle_competition <slug>
  kaggle_zillow                kaggle_california          kaggle_ames
  nadlan_gov <year>            nadlan_taxes [page]        datagov <resource-id>
  cbs <table-id>               opentaba <plan-id>
  c4c                          askdata
  hasadna_crime <city>         hasadna_air <city-code>`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := lake.ParseSource(args[0])
		if err != nil {
			return err
		}

		dest, _ := cmd.Flags().GetString("dest")
		preview, _ := cmd.Flags().GetInt("preview")

		log := zap.L().With(
			zap.String("run_id", uuid.NewString()),
			zap.String("source", string(src)),
		)

		client := lake.New(
			cfg.Lake,
			fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
				UserAgent: cfg.Lake.UserAgent,
				Timeout:   time.Duration(cfg.Lake.TimeoutSecs) * time.Second,
			}),
			lake.NewKaggleCLI(cfg.Kaggle.Bin),
		)

		path, err := client.Fetch(cmd.Context(), src, args[1:], dest)
		if err != nil {
			return eris.Wrapf(err, "fetch %s", src)
		}

		log.Info("fetch complete", zap.String("path", path))
		fmt.Println(path)

		if preview > 0 && strings.HasSuffix(path, ".xlsx") {
			if err := printXLSXPreview(path, preview); err != nil {
				return eris.Wrap(err, "preview")
			}
		}

		return nil
	},
}

func init() {
	fetchCmd.Flags().String("dest", "", "destination directory (default: configured data dir)")
	fetchCmd.Flags().Int("preview", 0, "print the first N rows of a fetched XLSX table")
	rootCmd.AddCommand(fetchCmd)
}

// printXLSXPreview prints the first n rows of an XLSX file, tab-separated.
func printXLSXPreview(path string, n int) error {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{MaxRows: n})
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Println(strings.Join(row, "\t"))
	}
	return nil
}
