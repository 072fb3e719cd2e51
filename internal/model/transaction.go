// Package model holds the domain types shared across the lake tooling.
package model

// Transaction is one property deal as stored in the lake's tabular datasets.
// Field tags define the Parquet column names.
type Transaction struct {
	DealDate string  `parquet:"deal_date" json:"deal_date"`
	City     string  `parquet:"city" json:"city"`
	Address  string  `parquet:"address" json:"address"`
	Rooms    float64 `parquet:"rooms" json:"rooms"`
	Floor    int32   `parquet:"floor" json:"floor"`
	AreaSqm  float64 `parquet:"area_sqm" json:"area_sqm"`
	PriceILS int64   `parquet:"price_ils" json:"price_ils"`
}
