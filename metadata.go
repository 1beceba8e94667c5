package wavmeta

type sourceKind int

const (
	sourceBext sourceKind = iota
	sourceIXML
	sourceInfo
)

// Metadata aggregates the metadata-bearing chunks found during a container
// walk. The sources slice records encounter order, which drives extraction
// priority: a field filled by an earlier chunk is never overwritten by a
// later one.
type Metadata struct {
	Broadcast *BroadcastExtension
	// IXML is the raw iXML payload, parsed lazily at extraction time.
	IXML []byte
	Info *Info

	sources []sourceKind
}

func (m *Metadata) noteSource(k sourceKind) {
	for _, s := range m.sources {
		if s == k {
			return
		}
	}

	m.sources = append(m.sources, k)
}

// Extract runs the extraction pipeline over rec in chunk encounter order.
// Each stage only fills fields that are still empty. The regex heuristic
// stages (bext free text, INFO subject/comment) are skipped when
// withHeuristics is false; structured iXML extraction always runs.
func (m *Metadata) Extract(rec *Record, withHeuristics bool, logf func(string, ...any)) {
	if m == nil {
		return
	}

	for _, stage := range m.pipeline(withHeuristics, logf) {
		stage(rec)
	}
}

type extractorStage func(*Record)

func (m *Metadata) pipeline(withHeuristics bool, logf func(string, ...any)) []extractorStage {
	var stages []extractorStage

	for _, src := range m.sources {
		switch src {
		case sourceBext:
			if withHeuristics && m.Broadcast != nil {
				text := m.Broadcast.text()
				stages = append(stages, func(r *Record) {
					extractBextText(r, text, logf)
				})
			}
		case sourceIXML:
			payload := m.IXML
			stages = append(stages, func(r *Record) {
				extractIXML(r, payload, logf)
			})
		case sourceInfo:
			if withHeuristics && m.Info != nil {
				info := m.Info
				stages = append(stages, func(r *Record) {
					extractInfoText(r, info, logf)
				})
			}
		}
	}

	return stages
}
