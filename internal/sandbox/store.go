package sandbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// record is one row as the backend would serialise it.
type record map[string]any

func (r record) clone() record {
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r record) int(key string) int64 {
	n, _ := toInt64(r[key])
	return n
}

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var idFields = map[string]bool{
	"id": true, "user_id": true, "client_id": true, "booking_id": true,
	"project_id": true, "employee_id": true, "manager_id": true, "assigned_by": true,
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// table keeps rows newest first, like ORDER BY created_at DESC.
type table struct {
	next int64
	rows []record
}

func (t *table) insert(r record, now time.Time) int64 {
	t.next++
	r["id"] = t.next
	if _, ok := r["created_at"]; !ok {
		r["created_at"] = now.UTC().Format(http.TimeFormat)
	}
	t.rows = append([]record{r}, t.rows...)
	return t.next
}

func (t *table) find(id int64) record {
	for _, r := range t.rows {
		if r.int("id") == id {
			return r
		}
	}
	return nil
}

func (t *table) remove(id int64) bool {
	for i, r := range t.rows {
		if r.int("id") == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true
		}
	}
	return false
}

func (t *table) removeWhere(match func(record) bool) {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	t.rows = kept
}

// where returns copies of the matching rows with hidden fields dropped.
func (t *table) where(match func(record) bool, hidden ...string) []record {
	out := []record{}
	for _, r := range t.rows {
		if match != nil && !match(r) {
			continue
		}
		c := r.clone()
		for _, h := range hidden {
			delete(c, h)
		}
		out = append(out, c)
	}
	return out
}

// store is the whole in-memory database.
type store struct {
	mu sync.Mutex

	users       table
	employees   table
	sites       table
	bookings    table
	projects    table
	assignments table
}

// apply copies the allowed keys present in data into r. It reports whether
// anything was copied.
func apply(r, data record, allowed ...string) bool {
	changed := false
	for _, k := range allowed {
		v, ok := data[k]
		if !ok {
			continue
		}
		if idFields[k] && v != nil {
			if n, ok := toInt64(v); ok {
				v = n
			}
		}
		r[k] = v
		changed = true
	}
	return changed
}

// missing returns the first required key that is absent or empty.
func missing(data record, required ...string) string {
	for _, k := range required {
		v, ok := data[k]
		if !ok || v == nil || v == "" {
			return k
		}
	}
	return ""
}
