// Package api содержит общие для клиента и dev-бэкенда типы REST протокола
// в стиле PostgREST.
package api

import (
	"fmt"
	"strconv"
	"strings"
)

// RestPrefix путь, под которым обслуживаются таблицы
const RestPrefix = "/rest/v1/"

// Заголовки протокола
const (
	HeaderAPIKey        = "apikey"
	HeaderAuthorization = "Authorization"
	HeaderPrefer        = "Prefer"
	HeaderContentRange  = "Content-Range"
	HeaderAccept        = "Accept"
)

// Значения Prefer и Accept
const (
	PreferRepresentation = "return=representation"
	PreferCountExact     = "count=exact"
	// MediaTypeSingleObject просит вернуть одну строку объектом, а не массивом.
	// Если строк нет, сервер отвечает 406 с кодом PGRST116.
	MediaTypeSingleObject = "application/vnd.pgrst.object+json"
)

// Коды ошибок
const (
	CodeUniqueViolation = "23505"    // нарушение уникального ограничения
	CodeNotNull         = "23502"    // NOT NULL
	CodeCheckViolation  = "23514"    // CHECK
	CodeInvalidText     = "22P02"    // невалидное значение типа
	CodeUndefinedTable  = "42P01"    // таблица не существует
	CodeUndefinedColumn = "42703"    // колонка не существует
	CodeRowSecurity     = "42501"    // строка принадлежит другому пользователю
	CodeNoRows          = "PGRST116" // single-object запрос не нашёл строк
	CodeBadRequest      = "PGRST100" // ошибка разбора запроса
	CodeUnauthorized    = "PGRST301" // JWT отсутствует или невалиден
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    string `json:"code"`              // Code код ошибки postgres или PGRST
	Message string `json:"message"`           // Message описание ошибки
	Details string `json:"details,omitempty"` // Details подробности
	Hint    string `json:"hint,omitempty"`    // Hint подсказка
}

// ContentRange разобранный заголовок Content-Range: "0-24/3573" или "*/0"
type ContentRange struct {
	From  int
	To    int
	Total int // Total -1 если сервер не посчитал количество
}

// String formats the range the way the backend sends it
func (r ContentRange) String() string {
	total := "*"
	if r.Total >= 0 {
		total = strconv.Itoa(r.Total)
	}
	if r.To < r.From {
		return "*/" + total
	}
	return fmt.Sprintf("%d-%d/%s", r.From, r.To, total)
}

// ParseContentRange parses a Content-Range header value
func ParseContentRange(value string) (ContentRange, error) {
	r := ContentRange{From: 0, To: -1, Total: -1}

	rangePart, totalPart, ok := strings.Cut(strings.TrimSpace(value), "/")
	if !ok {
		return r, fmt.Errorf("invalid content range %q", value)
	}

	if totalPart != "*" {
		total, err := strconv.Atoi(totalPart)
		if err != nil || total < 0 {
			return r, fmt.Errorf("invalid content range total %q", value)
		}
		r.Total = total
	}

	if rangePart == "*" {
		return r, nil
	}

	fromStr, toStr, ok := strings.Cut(rangePart, "-")
	if !ok {
		return r, fmt.Errorf("invalid content range %q", value)
	}
	from, err := strconv.Atoi(fromStr)
	if err != nil {
		return r, fmt.Errorf("invalid content range start %q", value)
	}
	to, err := strconv.Atoi(toStr)
	if err != nil || to < from {
		return r, fmt.Errorf("invalid content range end %q", value)
	}
	r.From, r.To = from, to
	return r, nil
}
