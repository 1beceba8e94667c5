package wavmeta

import "regexp"

// Regex fallbacks for free-text fields. These are best-effort and can
// false-positive on arbitrary text, so callers may disable the whole layer
// with WithoutHeuristics.
var (
	// reSceneTake matches combined scene/take markers such as "S01T02",
	// "SC01_TK02" or "SCNE 5 TAKE 12". Group 1 is the scene number,
	// group 2 the take number. This combined form takes priority over the
	// independent labeled patterns below.
	reSceneTake = regexp.MustCompile(`(?i)S(?:C|CNE)?[_\s]*(\d+)[_\s]*T(?:K|AKE)?[_\s]*(\d+)`)

	reShowLabel   = regexp.MustCompile(`(?i)(?:SHOW|PROGRAM|SERIES)[:\s]+(\w[^,;\r\n]*)`)
	reSceneLabel  = regexp.MustCompile(`(?i)SC(?:ENE|N)?[:\s]+(\w+)`)
	reTakeLabel   = regexp.MustCompile(`(?i)T(?:AKE|K)?[:\s]+(\w+)`)
	reCatLabel    = regexp.MustCompile(`(?i)(?:CAT(?:EGORY)?|TYPE)[:\s]+(\w[^,;\r\n]*)`)
	reSubcatLabel = regexp.MustCompile(`(?i)(?:SUB(?:CAT(?:EGORY)?)?|SUBTYPE)[:\s]+(\w[^,;\r\n]*)`)
)

func firstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}

	return m[1]
}

// extractBextText mines a bext chunk's free-text fields for show, scene and
// take. The bext layout has no structured fields for these, so this regex
// layer is the bext extractor.
func extractBextText(rec *Record, text string, logf func(string, ...any)) {
	if text == "" {
		return
	}

	if rec.fill(FieldShow, firstSubmatch(reShowLabel, text)) {
		logf("bext: show %q", rec.Show)
	}

	if m := reSceneTake.FindStringSubmatch(text); len(m) == 3 {
		if rec.fill(FieldScene, m[1]) {
			logf("bext: scene %q (combined marker)", rec.Scene)
		}

		if rec.fill(FieldTake, m[2]) {
			logf("bext: take %q (combined marker)", rec.Take)
		}
	}

	if rec.fill(FieldScene, firstSubmatch(reSceneLabel, text)) {
		logf("bext: scene %q (label)", rec.Scene)
	}

	if rec.fill(FieldTake, firstSubmatch(reTakeLabel, text)) {
		logf("bext: take %q (label)", rec.Take)
	}
}

// extractInfoText mines INFO subject/comment text for labeled fields.
func extractInfoText(rec *Record, info *Info, logf func(string, ...any)) {
	if info == nil {
		return
	}

	for _, text := range []string{info.Subject, info.Comment} {
		if text == "" {
			continue
		}

		if rec.fill(FieldShow, firstSubmatch(reShowLabel, text)) {
			logf("INFO: show %q", rec.Show)
		}

		if rec.fill(FieldCategory, firstSubmatch(reCatLabel, text)) {
			logf("INFO: category %q", rec.Category)
		}

		if rec.fill(FieldSubcategory, firstSubmatch(reSubcatLabel, text)) {
			logf("INFO: subcategory %q", rec.Subcategory)
		}
	}
}
