package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"broker-backoffice-go/internal/aggregate"
	"broker-backoffice-go/internal/endpoints"

	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

const maxBodyBytes = 1 << 20

func pathId(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", key, raw)
	}
	return &t, nil
}

func parsePage(r *http.Request) (endpoints.Page, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return endpoints.Page{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return endpoints.Page{}, err
	}
	return endpoints.Page{Page: page, Limit: limit}, nil
}

func parseSummaryRange(r *http.Request) (endpoints.SummaryRange, error) {
	from, err := queryDate(r, "from")
	if err != nil {
		return endpoints.SummaryRange{}, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return endpoints.SummaryRange{}, err
	}
	return endpoints.SummaryRange{From: from, To: to}, nil
}

// parseCriteria reads the list-screen filters. userId narrows the backend
// query; search, type, status and the date range filter locally.
func parseCriteria(r *http.Request) (endpoints.TransactionFilter, aggregate.Criteria, error) {
	q := r.URL.Query()

	var backend endpoints.TransactionFilter
	if raw := q.Get("userId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return backend, aggregate.Criteria{}, fmt.Errorf("invalid userId %q", raw)
		}
		backend.UserId = id
	}

	criteria := aggregate.Criteria{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
	}

	from, err := queryDate(r, "from")
	if err != nil {
		return backend, criteria, err
	}
	to, err := queryDate(r, "to")
	if err != nil {
		return backend, criteria, err
	}
	if from != nil || to != nil {
		rng := &aggregate.DateRange{}
		if from != nil {
			rng.From = *from
		}
		if to != nil {
			rng.To = *to
		}
		criteria.Range = rng
	}
	return backend, criteria, nil
}
