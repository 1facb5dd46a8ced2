package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"marketfactory/internal/registry/models"
	dErrors "marketfactory/pkg/domain-errors"
)

// maxViewBodyBytes bounds view-call bodies; pagination args are two integers.
const maxViewBodyBytes = 4 << 10

// PageRequest holds parsed pagination arguments. Any pair of values is valid;
// the service clamps the range.
type PageRequest struct {
	FromIndex models.U64
	Limit     models.U64
}

// PageArgs is the JSON body of the get_markets view call. Both fields accept
// a decimal string or a JSON number.
type PageArgs struct {
	FromIndex *models.U64 `json:"from_index"`
	Limit     *models.U64 `json:"limit"`
}

// Validate checks that both arguments were supplied.
func (a *PageArgs) Validate() error {
	if a == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if a.FromIndex == nil {
		return dErrors.New(dErrors.CodeValidation, "from_index is required")
	}
	if a.Limit == nil {
		return dErrors.New(dErrors.CodeValidation, "limit is required")
	}
	return nil
}

// ParsePageQuery reads from_index and limit from query parameters. A missing
// from_index means 0 and a missing limit means defaultLimit.
func ParsePageQuery(q url.Values, defaultLimit uint64) (PageRequest, error) {
	from, err := parseU64Param(q, "from_index", 0)
	if err != nil {
		return PageRequest{}, err
	}
	limit, err := parseU64Param(q, "limit", models.U64(defaultLimit))
	if err != nil {
		return PageRequest{}, err
	}
	return PageRequest{FromIndex: from, Limit: limit}, nil
}

func parseU64Param(q url.Values, name string, fallback models.U64) (models.U64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := models.ParseU64(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an unsigned 64-bit integer")
	}
	return v, nil
}

// DecodePageArgs decodes and validates a get_markets body.
func DecodePageArgs(w http.ResponseWriter, r *http.Request) (PageRequest, error) {
	body := http.MaxBytesReader(w, r.Body, maxViewBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var args PageArgs
	if err := dec.Decode(&args); err != nil {
		if errors.Is(err, io.EOF) {
			return PageRequest{}, dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return PageRequest{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid get_markets arguments")
	}
	if err := args.Validate(); err != nil {
		return PageRequest{}, err
	}
	return PageRequest{FromIndex: *args.FromIndex, Limit: *args.Limit}, nil
}
