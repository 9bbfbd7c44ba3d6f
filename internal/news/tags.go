package news

import (
	"net/url"
	"strings"
)

// FallbackTag is emitted when nothing else matched; a record's tag list is
// never empty.
const FallbackTag = "General"

// Tag priority. Output always follows this ordering so repeated runs over
// unchanged input produce byte-identical tag lists.
var tagOrder = []string{"Tender", "Storage", "PV", "Wind", "Charger", "PowerElectronics", FallbackTag}

// defaultCategories maps each tag to its case-insensitive keyword list.
var defaultCategories = map[string][]string{
	"Storage":          {"storage", "battery", "energy storage", "bess"},
	"PV":               {"solar", "photovoltaic", "pv"},
	"Wind":             {"wind"},
	"Charger":          {"charger", "charging", "ev", "charging pile", "charge point"},
	"PowerElectronics": {"inverter", "converter", "power electronics"},
	"Tender": {
		"tender", "tenders", "tendering", "procurement", "rfp", "rfq", "rfi",
		"bid", "bids", "bidding", "auction", "solicitation", "contract notice",
		"call for", "award", "招标", "投标", "采购", "比选", "询价", "公告", "中标", "成交", "资格预审",
	},
}

// Sources and hosts that publish procurement notices; matching either
// force-includes the Tender tag on top of plain keyword matching.
var tenderHintSources = []string{
	"contracts finder", "gov.uk", "sam.gov", "tenders.gov.au", "ccgp.gov.cn",
	"energy-storage.news", "tenders", "auction",
}

var tenderHintHosts = []string{
	"contractsfinder.service.gov.uk", "sam.gov", "tenders.gov.au",
	"ccgp.gov.cn", "energy-storage.news",
}

// Tagger classifies records into topical tags by keyword matching.
type Tagger struct {
	categories  map[string][]string
	order       []string
	hintSources []string
	hintHosts   []string
}

// NewTagger returns a tagger with the default energy vocabulary.
func NewTagger() *Tagger {
	return &Tagger{
		categories:  defaultCategories,
		order:       tagOrder,
		hintSources: tenderHintSources,
		hintHosts:   tenderHintHosts,
	}
}

// Tags classifies the combined free text of a record, boosted by source and
// link hints. The result is non-empty and canonically ordered.
func (t *Tagger) Tags(text, sourceName, link string) []string {
	matched := make(map[string]bool)
	lower := strings.ToLower(text)

	for category, keywords := range t.categories {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched[category] = true
				break
			}
		}
	}

	if t.hasTenderHint(sourceName, link) {
		matched["Tender"] = true
	}

	if len(matched) == 0 {
		return []string{FallbackTag}
	}

	tags := make([]string, 0, len(matched))
	for _, name := range t.order {
		if matched[name] {
			tags = append(tags, name)
		}
	}
	return tags
}

func (t *Tagger) hasTenderHint(sourceName, link string) bool {
	source := strings.ToLower(sourceName)
	for _, hint := range t.hintSources {
		if source != "" && strings.Contains(source, hint) {
			return true
		}
	}

	host := ""
	if u, err := url.Parse(link); err == nil {
		host = strings.ToLower(u.Host)
	}
	for _, hint := range t.hintHosts {
		if host != "" && strings.Contains(host, hint) {
			return true
		}
	}
	return false
}
