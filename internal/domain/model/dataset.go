package model

// Dataset is an immutable-by-convention table of records together with the set
// of columns that exist. A column that exists may still hold nulls; a column
// that does not exist is skipped by consumers instead of treated as null.
type Dataset struct {
	Rows []Record

	columns     columnSet // raw columns: identity, context and metrics
	percentiles columnSet // metric names with a pct_<metric> column
	scores      columnSet // role ids with a score_<role_id> column
}

// NewDataset builds a dataset from rows and the raw column names that were
// present in the source table.
func NewDataset(rows []Record, columns []string) *Dataset {
	d := &Dataset{Rows: rows}
	for _, c := range columns {
		d.columns.add(c)
	}
	for i := range d.Rows {
		if d.Rows[i].Metrics == nil {
			d.Rows[i].Metrics = map[string]float64{}
		}
		if d.Rows[i].Percentiles == nil {
			d.Rows[i].Percentiles = map[string]float64{}
		}
		if d.Rows[i].Scores == nil {
			d.Rows[i].Scores = map[string]float64{}
		}
	}
	return d
}

// Len returns the row count.
func (d *Dataset) Len() int { return len(d.Rows) }

// HasColumn reports whether a raw column exists.
func (d *Dataset) HasColumn(name string) bool { return d.columns.has(name) }

// HasColumns reports whether every named raw column exists.
func (d *Dataset) HasColumns(names ...string) bool {
	for _, n := range names {
		if !d.columns.has(n) {
			return false
		}
	}
	return true
}

// Columns returns the raw columns in source order.
func (d *Dataset) Columns() []string { return d.columns.list() }

// MetricColumns returns the raw columns that are numeric metrics, i.e. all
// raw columns except identity and context columns.
func (d *Dataset) MetricColumns() []string {
	var out []string
	for _, c := range d.columns.order {
		if !isContextColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasPercentile reports whether the pct_<metric> column exists.
func (d *Dataset) HasPercentile(metric string) bool { return d.percentiles.has(metric) }

// PercentileColumns returns metric names with a percentile column, in the
// order they were added.
func (d *Dataset) PercentileColumns() []string { return d.percentiles.list() }

// HasScore reports whether the score_<roleID> column exists.
func (d *Dataset) HasScore(roleID string) bool { return d.scores.has(roleID) }

// ScoreColumns returns role ids with a score column, in the order they were added.
func (d *Dataset) ScoreColumns() []string { return d.scores.list() }

// AddPercentileColumn declares the pct_<metric> column. Values are set on rows.
func (d *Dataset) AddPercentileColumn(metric string) { d.percentiles.add(metric) }

// AddScoreColumn declares the score_<roleID> column. Values are set on rows.
func (d *Dataset) AddScoreColumn(roleID string) { d.scores.add(roleID) }

// Clone returns a deep copy so a stage can derive new columns without
// touching its input.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Rows:        make([]Record, len(d.Rows)),
		columns:     d.columns.clone(),
		percentiles: d.percentiles.clone(),
		scores:      d.scores.clone(),
	}
	for i := range d.Rows {
		out.Rows[i] = d.Rows[i].clone()
	}
	return out
}

// Subset returns a dataset sharing the schema of d with only the given rows.
// Rows are copied.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Rows:        make([]Record, len(idx)),
		columns:     d.columns.clone(),
		percentiles: d.percentiles.clone(),
		scores:      d.scores.clone(),
	}
	for i, j := range idx {
		out.Rows[i] = d.Rows[j].clone()
	}
	return out
}

func isContextColumn(c string) bool {
	switch c {
	case ColPlayerTeamSeasonID, ColPlayerID, ColTeamID, ColLeague, ColSeason,
		ColPositionBucket, ColMinutes, ColAge:
		return true
	}
	return false
}

// columnSet is an insertion-ordered set of names.
type columnSet struct {
	order []string
	set   map[string]struct{}
}

func (c *columnSet) add(name string) {
	if c.set == nil {
		c.set = map[string]struct{}{}
	}
	if _, ok := c.set[name]; ok {
		return
	}
	c.set[name] = struct{}{}
	c.order = append(c.order, name)
}

func (c *columnSet) has(name string) bool {
	_, ok := c.set[name]
	return ok
}

func (c *columnSet) list() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *columnSet) clone() columnSet {
	var out columnSet
	for _, n := range c.order {
		out.add(n)
	}
	return out
}
