package httpx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/amexing/amexing-ops/internal/shared"
)

// DataTablesRequest holds the server-side processing parameters sent by the
// DataTables grid.
type DataTablesRequest struct {
	Draw    int
	Start   int
	Length  int
	Search  string
	SortBy  string
	SortDir string
}

// DataTablesResponse is the envelope the grid expects back.
type DataTablesResponse struct {
	Draw            int `json:"draw"`
	RecordsTotal    int `json:"recordsTotal"`
	RecordsFiltered int `json:"recordsFiltered"`
	Data            any `json:"data"`
}

// ParseDataTables reads grid parameters from the query string. The sort key
// is the `data` attribute of the ordered column; callers whitelist it.
func ParseDataTables(r *http.Request) DataTablesRequest {
	q := r.URL.Query()
	req := DataTablesRequest{
		Draw:    QueryInt(r, "draw", 0),
		Start:   QueryInt(r, "start", 0),
		Length:  QueryInt(r, "length", shared.DefaultPageSize),
		Search:  strings.TrimSpace(q.Get("search[value]")),
		SortDir: strings.ToLower(q.Get("order[0][dir]")),
	}
	if req.Search == "" {
		req.Search = strings.TrimSpace(q.Get("search"))
	}
	if col := q.Get("order[0][column]"); col != "" {
		req.SortBy = q.Get(fmt.Sprintf("columns[%s][data]", col))
	}
	if req.SortBy == "" {
		req.SortBy = q.Get("sortBy")
	}
	if req.SortDir != "asc" && req.SortDir != "desc" {
		req.SortDir = "desc"
	}
	if req.Start < 0 {
		req.Start = 0
	}
	if req.Length <= 0 {
		req.Length = shared.DefaultPageSize
	}
	if req.Length > shared.MaxPageSize {
		req.Length = shared.MaxPageSize
	}
	return req
}

// DataTables writes the grid envelope.
func DataTables(w http.ResponseWriter, req DataTablesRequest, total, filtered int, rows any) {
	JSON(w, http.StatusOK, DataTablesResponse{
		Draw:            req.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            rows,
	})
}
