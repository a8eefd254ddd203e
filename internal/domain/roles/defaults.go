package roles

// Built-in archetypes: ball-playing centre-back, deep-lying playmaker and
// wide carrier/creator.
const (
	BallPlayingCB  = "BPCB"
	DeepPlaymaker  = "DLP"
	WideCarrier    = "WCR"
	defaultMinutes = 900
	bucketCB       = "CB"
	bucketDMCM     = "DMCM"
	bucketWide     = "WIDE"
)

var defaultInvert = []string{"errors_p90", "fouls_p90", "mis_dis_p90"} //nolint:gochecknoglobals // built-in config

// DefaultDefinitions returns the built-in role definitions.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			RoleID:         BallPlayingCB,
			PositionBucket: bucketCB,
			MustHave: map[string]float64{
				"min_minutes":         defaultMinutes,
				"pass_cmp_pct_min":    80,
				"prog_passes_p90_min": 2,
			},
			Weights: map[string]float64{
				"prog_passes_p90":            0.20,
				"passes_final_third_p90":     0.10,
				"pass_cmp_pct":               0.15,
				"long_pass_cmp_p90_or_pct":   0.10,
				"tkl_int_p90":                0.10,
				"clr_p90":                    0.10,
				"aerial_win_pct_or_won_p90":  0.10,
				"prog_carries_p90":           0.05,
				"errors_or_dispossessed_neg": 0.10,
			},
			NegativeMetrics: []string{"errors_or_dispossessed_neg"},
			Features: []string{
				"prog_passes_p90", "passes_final_third_p90", "pass_cmp_pct", "long_pass_cmp_pct",
				"tkl_int_p90", "clr_p90", "aerial_win_pct", "prog_carries_p90", "errors_p90",
			},
			InvertFeatures: defaultInvert,
			Subscores: map[string][]string{
				CategoryProgression: {"prog_passes_p90", "passes_final_third_p90", "prog_carries_p90"},
				CategoryDefending:   {"tkl_int_p90", "clr_p90", "aerial_win_pct"},
				CategoryCreation:    {},
			},
			Security: []string{"pass_cmp_pct", "errors_p90"},
			Evidence: []string{"prog_passes_p90", "passes_final_third_p90", "pass_cmp_pct", "tkl_int_p90", "aerial_win_pct"},
		},
		{
			RoleID:         DeepPlaymaker,
			PositionBucket: bucketDMCM,
			MustHave: map[string]float64{
				"min_minutes":        defaultMinutes,
				"passes_att_p90_min": 40,
				"pass_cmp_pct_min":   82,
			},
			Weights: map[string]float64{
				"passes_att_p90":         0.15,
				"pass_cmp_pct":           0.15,
				"prog_passes_p90":        0.20,
				"passes_final_third_p90": 0.10,
				"key_passes_p90":         0.10,
				"xa_p90":                 0.05,
				"sca_p90":                0.05,
				"prog_carries_p90":       0.05,
				"tkl_int_p90":            0.10,
				"fouls_committed_neg":    0.05,
			},
			NegativeMetrics: []string{"fouls_committed_neg"},
			Features: []string{
				"passes_att_p90", "pass_cmp_pct", "prog_passes_p90", "passes_final_third_p90", "key_passes_p90",
				"xa_p90", "sca_p90", "prog_carries_p90", "tkl_int_p90", "fouls_p90",
			},
			InvertFeatures: defaultInvert,
			Subscores: map[string][]string{
				CategoryProgression: {"prog_passes_p90", "passes_final_third_p90", "prog_carries_p90"},
				CategoryCreation:    {"key_passes_p90", "xa_p90", "sca_p90"},
				CategoryDefending:   {"tkl_int_p90"},
			},
			Security: []string{"pass_cmp_pct", "fouls_p90"},
			Evidence: []string{"passes_att_p90", "prog_passes_p90", "pass_cmp_pct", "xa_p90", "sca_p90"},
		},
		{
			RoleID:         WideCarrier,
			PositionBucket: bucketWide,
			MustHave: map[string]float64{
				"min_minutes":          defaultMinutes,
				"prog_carries_p90_min": 2,
				"succ_takeons_p90_min": 1,
			},
			Weights: map[string]float64{
				"prog_carries_p90":             0.20,
				"carries_pa_p90":               0.10,
				"succ_takeons_p90":             0.15,
				"takeon_succ_pct":              0.05,
				"xa_p90":                       0.15,
				"key_passes_p90":               0.10,
				"sca_p90":                      0.10,
				"crosses_pa_p90":               0.05,
				"Per_90_Minutes_npxG":          0.05,
				"dispossessed_miscontrols_neg": 0.05,
			},
			NegativeMetrics: []string{"dispossessed_miscontrols_neg"},
			Features: []string{
				"prog_carries_p90", "carries_pa_p90", "succ_takeons_p90", "takeon_succ_pct", "xa_p90",
				"key_passes_p90", "sca_p90", "crosses_pa_p90", "Per_90_Minutes_npxG", "mis_dis_p90",
			},
			InvertFeatures: defaultInvert,
			Subscores: map[string][]string{
				CategoryProgression: {"prog_carries_p90", "carries_pa_p90", "succ_takeons_p90"},
				CategoryCreation:    {"xa_p90", "key_passes_p90", "sca_p90", "crosses_pa_p90"},
				CategoryFinishing:   {"Per_90_Minutes_npxG"},
			},
			Security: []string{"takeon_succ_pct", "mis_dis_p90"},
			Evidence: []string{"prog_carries_p90", "succ_takeons_p90", "xa_p90", "sca_p90", "Per_90_Minutes_npxG"},
		},
	}
}

// Defaults returns the built-in roles, resolved. The built-in table is
// validated by tests, so a failure here is a programming error.
func Defaults() []Role {
	out, err := ResolveAll(DefaultDefinitions())
	if err != nil {
		panic(err)
	}
	return out
}
