package csvload

import "strings"

// RegionDelimiter separates multiple region codes/names packed into a
// single cell of the source extract.
const RegionDelimiter = ":::"

// Source column names for the region fields.
const (
	FieldRegionCode = "COD_REGIONE"
	FieldRegionName = "DEN_REGIONE"
)

// ExpandMultiRegion splits a record that encodes several regions in one row
// into one record per region. Both region fields are split on ":::"; if each
// yields a single segment the record is returned unchanged. Otherwise the
// code and name segments are zipped pairwise, truncating to the shorter
// side, and every clone keeps all other fields as-is.
func ExpandMultiRegion(rec Record) []Record {
	codes := strings.Split(rec.Get(FieldRegionCode), RegionDelimiter)
	names := strings.Split(rec.Get(FieldRegionName), RegionDelimiter)
	if len(codes) == 1 && len(names) == 1 {
		return []Record{rec}
	}

	n := len(codes)
	if len(names) < n {
		n = len(names)
	}
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		fields := make(map[string]string, len(rec.Fields))
		for k, v := range rec.Fields {
			fields[k] = v
		}
		fields[FieldRegionCode] = strings.TrimSpace(codes[i])
		fields[FieldRegionName] = strings.TrimSpace(names[i])
		out = append(out, Record{Fields: fields, SourceFile: rec.SourceFile, Line: rec.Line})
	}
	return out
}
