package normalize

import "github.com/tidwall/gjson"

// columnarRecords recognizes column-oriented datasets: an object (or a
// "columns" envelope) whose values are one scalar array per field, all
// the same length. Row i is assembled from the i-th element of every
// column. Returns ok=false when the object is not columnar.
func columnarRecords(root gjson.Result) ([]RawRecord, bool) {
	if cols := root.Get("columns"); cols.IsObject() {
		root = cols
	}
	names := make([]string, 0, 8)
	columns := make([][]gjson.Result, 0, 8)
	length := -1
	ok := true
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			ok = false
			return false
		}
		arr := value.Array()
		for _, v := range arr {
			if v.IsObject() || v.IsArray() {
				ok = false
				return false
			}
		}
		if length == -1 {
			length = len(arr)
		} else if len(arr) != length {
			ok = false
			return false
		}
		names = append(names, key.String())
		columns = append(columns, arr)
		return true
	})
	if !ok || length <= 0 || len(names) == 0 {
		return nil, false
	}
	out := make([]RawRecord, length)
	for i := 0; i < length; i++ {
		rec := make(RawRecord, len(names))
		for c, name := range names {
			if v := columns[c][i]; v.Type != gjson.Null {
				rec[name] = v.Value()
			}
		}
		out[i] = rec
	}
	return out, true
}
