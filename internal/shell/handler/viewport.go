package handler

import (
	"net/http"
	"strconv"

	"github.com/mssola/useragent"

	dErrors "navshell/pkg/domain-errors"
)

// Widths assumed when the client does not report its viewport.
const (
	CompactWidth  = 360
	ExpandedWidth = 1280
)

// viewportWidth reads ?width= and falls back to the device class of the
// User-Agent: phones are compact, everything else is expanded.
func viewportWidth(r *http.Request) (int, error) {
	if raw := r.URL.Query().Get("width"); raw != "" {
		width, err := strconv.Atoi(raw)
		if err != nil || width < 0 {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "width must be a non-negative integer")
		}
		return width, nil
	}
	ua := useragent.New(r.UserAgent())
	if ua.Mobile() {
		return CompactWidth, nil
	}
	return ExpandedWidth, nil
}
