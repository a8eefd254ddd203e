package model

// Catalogue lists the canonical raw metrics produced by upstream ingestion,
// in the order percentile tables are emitted.
var Catalogue = []string{ //nolint:gochecknoglobals // fixed metric catalogue
	"pass_cmp_pct",
	"passes_att_p90",
	"prog_passes_p90",
	"passes_final_third_p90",
	"long_pass_cmp_pct",
	"key_passes_p90",
	"xa_p90",
	"crosses_pa_p90",
	"tkl_int_p90",
	"clr_p90",
	"errors_p90",
	"aerial_win_pct",
	"prog_carries_p90",
	"carries_pa_p90",
	"succ_takeons_p90",
	"takeon_succ_pct",
	"sca_p90",
	"mis_dis_p90",
	"fouls_p90",
	"Per_90_Minutes_npxG",
}

// IsCatalogued reports whether name is a canonical metric.
func IsCatalogued(name string) bool {
	for _, m := range Catalogue {
		if m == name {
			return true
		}
	}
	return false
}

// PctColumn renders the wide percentile column name for metric.
func PctColumn(metric string) string { return "pct_" + metric }

// ScoreColumn renders the score column name for roleID.
func ScoreColumn(roleID string) string { return "score_" + roleID }
