package endpoints

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Page selects one page of a paginated list. Zero values leave the backend
// defaults in place.
type Page struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

func (p Page) apply(v url.Values) {
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
}

// values builds query parameters from key/value pairs, dropping blank values
// and the "all" sentinel.
func values(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		val := strings.TrimSpace(pairs[i+1])
		if val == "" || strings.EqualFold(val, "all") {
			continue
		}
		v.Set(pairs[i], val)
	}
	return v
}

func dateParam(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func idParam(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
