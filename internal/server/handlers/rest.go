// Package handlers содержит HTTP обработчики dev-бэкенда: REST доступ к
// таблицам в стиле PostgREST и health check.
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/jobtrail/internal/server/middleware"
	"github.com/iudanet/jobtrail/internal/server/storage"
	"github.com/iudanet/jobtrail/pkg/api"
)

// maxBodyBytes ограничение тела запроса
const maxBodyBytes = 1 << 20

// RestHandler serves /rest/v1/{table}. Rows of tables with an owner column
// are visible and writable only by the authenticated user.
type RestHandler struct {
	logger *slog.Logger
	store  storage.Store
}

// NewRestHandler создает REST handler поверх store
func NewRestHandler(logger *slog.Logger, store storage.Store) *RestHandler {
	return &RestHandler{logger: logger, store: store}
}

// Register mounts the handler on mux
func (h *RestHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+api.RestPrefix+"{$}", h.Tables)
	mux.HandleFunc(api.RestPrefix+"{table}", h.ServeTable)
}

// tablesResponse ответ на GET /rest/v1/
type tablesResponse struct {
	Tables []string `json:"tables"`
}

// Tables lists the exposed tables
func (h *RestHandler) Tables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, tablesResponse{Tables: storage.TableNames()})
}

// request разобранный запрос к таблице
type request struct {
	table  *storage.Table
	userID string
	query  storage.Query
	single bool // single клиент ждет объект, а не массив
	repr   bool // repr Prefer: return=representation
	count  bool // count Prefer: count=exact
}

// ServeTable dispatches on the request method
func (h *RestHandler) ServeTable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, api.ErrorResponse{Code: api.CodeUnauthorized, Message: "not authenticated"})
		return
	}

	table, err := storage.LookupTable(r.PathValue("table"))
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}

	req, err := parseRequest(r, table, userID)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, req)
	case http.MethodHead:
		h.head(w, r, req)
	case http.MethodPost:
		h.post(w, r, req)
	case http.MethodPatch:
		h.patch(w, r, req)
	case http.MethodDelete:
		h.delete(w, r, req)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST, PATCH, DELETE")
		api.WriteError(w, http.StatusMethodNotAllowed, api.ErrorResponse{Message: "method not allowed"})
	}
}

func parseRequest(r *http.Request, table *storage.Table, userID string) (*request, error) {
	req := &request{
		table:  table,
		userID: userID,
		single: strings.Contains(r.Header.Get(api.HeaderAccept), api.MediaTypeSingleObject),
	}
	for _, prefer := range r.Header.Values(api.HeaderPrefer) {
		for _, p := range strings.Split(prefer, ",") {
			switch strings.TrimSpace(p) {
			case api.PreferRepresentation:
				req.repr = true
			case api.PreferCountExact:
				req.count = true
			}
		}
	}

	for key, values := range r.URL.Query() {
		switch key {
		case api.ParamOrder:
			order, err := api.ParseOrder(values[0])
			if err != nil {
				return nil, err
			}
			req.query.Order = order
		case api.ParamLimit:
			limit, err := strconv.Atoi(values[0])
			if err != nil || limit < 0 {
				return nil, fmt.Errorf("invalid limit %q", values[0])
			}
			req.query.Limit = limit
		case api.ParamSelect:
			if values[0] != "*" {
				return nil, fmt.Errorf("only select=* is supported")
			}
		case api.HeaderAPIKey:
		default:
			for _, raw := range values {
				f, err := api.ParseFilter(key, raw)
				if err != nil {
					return nil, err
				}
				req.query.Filters = append(req.query.Filters, f)
			}
		}
	}

	if table.OwnerColumn != "" {
		req.query.Filters = append(req.query.Filters, api.Filter{
			Column: table.OwnerColumn,
			Op:     api.OpEq,
			Values: []string{userID},
		})
	}
	return req, nil
}

func (h *RestHandler) get(w http.ResponseWriter, r *http.Request, req *request) {
	rows, err := h.store.Select(r.Context(), req.table.Name, req.query)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}

	if req.single {
		h.writeSingle(w, http.StatusOK, rows)
		return
	}

	total := -1
	if req.count {
		if total, err = h.store.Count(r.Context(), req.table.Name, req.query.Filters); err != nil {
			writeStoreError(w, h.logger, err)
			return
		}
	}
	w.Header().Set(api.HeaderContentRange, api.ContentRange{From: 0, To: len(rows) - 1, Total: total}.String())
	writeJSON(w, h.logger, http.StatusOK, rows)
}

func (h *RestHandler) head(w http.ResponseWriter, r *http.Request, req *request) {
	total, err := h.store.Count(r.Context(), req.table.Name, req.query.Filters)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	w.Header().Set(api.HeaderContentRange, api.ContentRange{From: 0, To: -1, Total: total}.String())
	w.WriteHeader(http.StatusOK)
}

func (h *RestHandler) post(w http.ResponseWriter, r *http.Request, req *request) {
	row, err := decodeRow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if !h.claimOwnership(w, req, row) {
		return
	}

	inserted, err := h.store.Insert(r.Context(), req.table.Name, row)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Info("row created",
		slog.String("table", req.table.Name),
		slog.Any("id", inserted["id"]),
		slog.String("user_id", req.userID),
	)

	switch {
	case !req.repr:
		w.WriteHeader(http.StatusCreated)
	case req.single:
		writeJSON(w, h.logger, http.StatusCreated, inserted)
	default:
		writeJSON(w, h.logger, http.StatusCreated, []storage.Row{inserted})
	}
}

func (h *RestHandler) patch(w http.ResponseWriter, r *http.Request, req *request) {
	if !h.hasUserFilter(req) {
		badRequest(w, "update requires a filter")
		return
	}

	patch, err := decodeRow(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if owner := req.table.OwnerColumn; owner != "" {
		if v, ok := patch[owner]; ok && v != req.userID {
			forbidden(w)
			return
		}
		delete(patch, owner)
	}

	rows, err := h.store.Update(r.Context(), req.table.Name, req.query.Filters, patch)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Info("rows updated",
		slog.String("table", req.table.Name),
		slog.Int("count", len(rows)),
		slog.String("user_id", req.userID),
	)

	switch {
	case req.single:
		h.writeSingle(w, http.StatusOK, rows)
	case req.repr:
		writeJSON(w, h.logger, http.StatusOK, rows)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *RestHandler) delete(w http.ResponseWriter, r *http.Request, req *request) {
	if !h.hasUserFilter(req) {
		badRequest(w, "delete requires a filter")
		return
	}

	n, err := h.store.Delete(r.Context(), req.table.Name, req.query.Filters)
	if err != nil {
		writeStoreError(w, h.logger, err)
		return
	}
	h.logger.Info("rows deleted",
		slog.String("table", req.table.Name),
		slog.Int("count", n),
		slog.String("user_id", req.userID),
	)
	w.WriteHeader(http.StatusNoContent)
}

// hasUserFilter сообщает, задал ли клиент хотя бы один фильтр сам
// (фильтр владельца не в счет)
func (h *RestHandler) hasUserFilter(req *request) bool {
	n := len(req.query.Filters)
	if req.table.OwnerColumn != "" {
		n--
	}
	return n > 0
}

// claimOwnership проставляет владельца новой строки. Строку на чужое имя
// создать нельзя.
func (h *RestHandler) claimOwnership(w http.ResponseWriter, req *request, row storage.Row) bool {
	owner := req.table.OwnerColumn
	if owner == "" {
		return true
	}
	if v, ok := row[owner]; ok && v != nil && v != req.userID {
		forbidden(w)
		return false
	}
	row[owner] = req.userID
	return true
}

// writeSingle отвечает объектом, если строка ровно одна, иначе 406 PGRST116
func (h *RestHandler) writeSingle(w http.ResponseWriter, status int, rows []storage.Row) {
	if len(rows) != 1 {
		api.WriteError(w, http.StatusNotAcceptable, api.ErrorResponse{
			Code:    api.CodeNoRows,
			Message: "JSON object requested, multiple (or no) rows returned",
			Details: fmt.Sprintf("The result contains %d rows", len(rows)),
		})
		return
	}
	writeJSON(w, h.logger, status, rows[0])
}

func forbidden(w http.ResponseWriter) {
	api.WriteError(w, http.StatusForbidden, api.ErrorResponse{
		Code:    api.CodeRowSecurity,
		Message: "row belongs to another user",
	})
}

func decodeRow(r *http.Request) (storage.Row, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("request body too large")
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("request body must be a JSON object")
	}

	var row storage.Row
	if err := json.Unmarshal(trimmed, &row); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return row, nil
}
