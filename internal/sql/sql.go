package sql

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_load_file.sql
var RegisterLoadFile string

//go:embed queries/lookup_load_file.sql
var LookupLoadFile string

//go:embed queries/update_load_status.sql
var UpdateLoadStatus string

//go:embed queries/merge_claims.sql
var MergeClaims string

//go:embed queries/merge_baseline_prices.sql
var MergeBaselinePrices string

//go:embed queries/merge_wholesale_prices.sql
var MergeWholesalePrices string

//go:embed queries/merge_payers.sql
var MergePayers string
