package transform

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// DefaultLocale is the collation locale used when none is configured.
const DefaultLocale = "und"

// NewCollator returns a collator for the BCP 47 tag locale, falling back to
// the root collation for an empty or malformed tag.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Und
	}
	return collate.New(tag)
}

// =============================================================================
// DUPLICATE GROUPS
// =============================================================================

// FindDuplicates returns the rows whose key value occurs at least twice,
// stably sorted by key under col. A nil col uses the root collation.
//
// An empty result is a valid outcome meaning there are no duplicates.
func FindDuplicates(table types.Table, keyColumn string, col *collate.Collator) types.Table {
	if col == nil {
		col = NewCollator(DefaultLocale)
	}

	counts := make(map[string]int, len(table.Rows))
	for _, row := range table.Rows {
		counts[KeyOf(row, keyColumn)]++
	}

	type keyed struct {
		key string
		row types.Row
	}
	kept := make([]keyed, 0)
	for _, row := range table.Rows {
		key := KeyOf(row, keyColumn)
		if counts[key] < 2 {
			continue
		}
		kept = append(kept, keyed{key: key, row: row.Clone()})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return col.CompareString(kept[i].key, kept[j].key) < 0
	})

	out := types.Table{
		Header: append([]string(nil), table.Header...),
		Rows:   make([]types.Row, len(kept)),
	}
	for i, k := range kept {
		out.Rows[i] = k.row
	}
	return out
}
