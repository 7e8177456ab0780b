package mailtl

// Diff records what happened to each text node of a document.
type Diff struct {
	// Changes lists the nodes whose text was replaced, in document order.
	Changes []Change

	// Skipped counts nodes left alone before translation, by reason.
	Skipped map[SkipReason]int

	// Failed lists nodes where at least one segment could not be translated.
	Failed []Change

	seen int
}

// Change is one text node before and after translation.
type Change struct {
	NodeID     string
	Context    string
	Original   string
	Translated string
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Changed   int
	Skipped   int
	Failed    int
	Unchanged int // Candidates that went through translation but came out identical
}

// Stats returns summary statistics for the diff.
func (d *Diff) Stats() DiffStats {
	stats := DiffStats{
		Changed: len(d.Changes),
		Failed:  len(d.Failed),
	}
	for _, n := range d.Skipped {
		stats.Skipped += n
	}
	stats.Unchanged = d.seen - stats.Changed - stats.Skipped
	return stats
}

// HasChanges returns true if any node was replaced.
func (d *Diff) HasChanges() bool {
	return len(d.Changes) > 0
}

// Merge adds the records of other to d.
func (d *Diff) Merge(other *Diff) {
	if other == nil {
		return
	}
	d.Changes = append(d.Changes, other.Changes...)
	d.Failed = append(d.Failed, other.Failed...)
	for reason, n := range other.Skipped {
		d.skip(reason, n)
	}
	d.seen += other.seen
}

func (d *Diff) record(node TextNode, res NodeResult) {
	d.seen++
	if res.Skip != SkipNone {
		d.skip(res.Skip, 1)
		return
	}

	change := Change{
		NodeID:     node.ID,
		Context:    node.Context,
		Original:   res.Original,
		Translated: res.Text,
	}
	if res.Failed > 0 {
		d.Failed = append(d.Failed, change)
	}
	if res.Changed {
		d.Changes = append(d.Changes, change)
	}
}

func (d *Diff) skip(reason SkipReason, n int) {
	if d.Skipped == nil {
		d.Skipped = make(map[SkipReason]int)
	}
	d.Skipped[reason] += n
}
