package backend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/twipi/bfhl/bfhl"
	"libdb.so/hrt"
)

// StubResponse is the body returned by [Stub] for POST /bfhl.
type StubResponse struct {
	IsSuccess       bool     `json:"is_success"`
	Numbers         []string `json:"numbers"`
	Alphabets       []string `json:"alphabets"`
	HighestAlphabet []string `json:"highest_alphabet"`
}

// OperationCode is the body returned by [Stub] for GET /bfhl.
type OperationCode struct {
	OperationCode int `json:"operation_code"`
}

// Stub is a local implementation of the BFHL endpoint. It is used for
// development and tests.
type Stub struct {
	router *chi.Mux
	logger *slog.Logger
}

var _ http.Handler = (*Stub)(nil)

// NewStub creates a new [Stub].
func NewStub(logger *slog.Logger) *Stub {
	s := &Stub{
		router: chi.NewRouter(),
		logger: logger,
	}

	r := s.router
	r.Use(middleware.CleanPath)
	r.Use(hrt.Use(hrt.Opts{
		Encoder:     hrt.JSONEncoder,
		ErrorWriter: hrt.TextErrorWriter,
	}))
	r.Get("/bfhl", hrt.Wrap(s.operationCode))
	r.Post("/bfhl", hrt.Wrap(s.process))

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Stub) operationCode(ctx context.Context, _ hrt.None) (OperationCode, error) {
	return OperationCode{OperationCode: 1}, nil
}

func (s *Stub) process(ctx context.Context, req *bfhl.Request) (StubResponse, error) {
	resp := Classify(req.Data)

	s.logger.Debug(
		"processed request",
		"data_len", len(req.Data),
		"numbers", len(resp.Numbers),
		"alphabets", len(resp.Alphabets))

	return resp, nil
}

// Classify sorts data elements into numbers and single letters and picks the
// highest letter, compared case-insensitively. Elements that are neither are
// dropped.
func Classify(data []json.RawMessage) StubResponse {
	resp := StubResponse{
		IsSuccess:       true,
		Numbers:         []string{},
		Alphabets:       []string{},
		HighestAlphabet: []string{},
	}

	var highest string
	for _, elem := range data {
		var num json.Number
		if err := json.Unmarshal(elem, &num); err == nil && num != "" && !isString(elem) {
			resp.Numbers = append(resp.Numbers, num.String())
			continue
		}

		var str string
		if err := json.Unmarshal(elem, &str); err != nil {
			continue
		}

		switch {
		case isDigits(str):
			resp.Numbers = append(resp.Numbers, str)
		case isLetter(str):
			resp.Alphabets = append(resp.Alphabets, str)
			if highest == "" || strings.ToLower(str) > strings.ToLower(highest) {
				highest = str
			}
		}
	}

	if highest != "" {
		resp.HighestAlphabet = append(resp.HighestAlphabet, highest)
	}

	return resp
}

func isString(elem json.RawMessage) bool {
	return len(elem) > 0 && elem[0] == '"'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetter(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && size == len(s) && unicode.IsLetter(r)
}
