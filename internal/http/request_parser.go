// This file holds the request parsing helpers shared by the UI handlers.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

// maxSearchTermRunes bounds the free-text filter taken from the query string.
const maxSearchTermRunes = 200

var errMissingCustomerID = errors.New("missing customer id")

// ParseSearchTerm reads the q parameter, strips control characters and caps
// its length. Surrounding whitespace is left to the controller.
func ParseSearchTerm(r *http.Request) string {
	term := sanitizeInput(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(term) > maxSearchTermRunes {
		term = string([]rune(term)[:maxSearchTermRunes])
	}
	return term
}

// ParseCustomerID reads the {id} route parameter.
func ParseCustomerID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	if raw == "" {
		return 0, errMissingCustomerID
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid customer id %q: %w", raw, err)
	}
	return id, nil
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters except tab, newline and carriage
// return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
