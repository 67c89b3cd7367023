package vault

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BatchEntry is one element of a batch import file.
type BatchEntry struct {
	ID          string `json:"id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ImportFailure records why the entry at Index was skipped.
type ImportFailure struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Added    int             `json:"added"`
	Updated  int             `json:"updated"`
	Failed   int             `json:"failed"`
	Failures []ImportFailure `json:"failures,omitempty"`
}

func (r *ImportResult) fail(index int, id, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, ImportFailure{Index: index, ID: id, Reason: reason})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ImportBatch upserts every valid entry. Invalid entries are counted as
// failed and never stop the batch.
func (s *Store) ImportBatch(entries []BatchEntry) ImportResult {
	var result ImportResult
	for i, entry := range entries {
		if reason := validateEntry(entry); reason != "" {
			result.fail(i, entry.ID, reason)
			continue
		}

		created, err := s.upsert(entry.ID, entry.Username, entry.Password, entry.Description)
		if err != nil {
			result.fail(i, entry.ID, err.Error())
			continue
		}
		if created {
			result.Added++
		} else {
			result.Updated++
		}
	}
	return result
}

// ImportJSON reads a JSON array of batch entries and imports it. Elements
// that don't decode as an object are recorded as failures. A document that
// isn't exactly one array fails with ErrValidation before anything is
// imported.
func (s *Store) ImportJSON(r io.Reader) (ImportResult, error) {
	dec := json.NewDecoder(r)
	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return ImportResult{}, fmt.Errorf("%w: malformed batch file: %v", ErrValidation, err)
	}
	if raw == nil {
		return ImportResult{}, fmt.Errorf("%w: batch file must be a JSON array", ErrValidation)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return ImportResult{}, fmt.Errorf("%w: malformed batch file: unexpected data after the array", ErrValidation)
	}

	entries := make([]BatchEntry, 0, len(raw))
	indexes := make([]int, 0, len(raw))
	var result ImportResult
	for i, element := range raw {
		var entry BatchEntry
		if err := json.Unmarshal(element, &entry); err != nil {
			result.fail(i, "", "entry is not a credential object")
			continue
		}
		entries = append(entries, entry)
		indexes = append(indexes, i)
	}

	imported := s.ImportBatch(entries)
	result.Added = imported.Added
	result.Updated = imported.Updated
	result.Failed += imported.Failed
	for _, failure := range imported.Failures {
		failure.Index = indexes[failure.Index]
		result.Failures = append(result.Failures, failure)
	}
	slices.SortFunc(result.Failures, func(a, b ImportFailure) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return result, nil
}

func validateEntry(entry BatchEntry) string {
	err := validate.Struct(entry)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Field())
	}
	return "missing required field(s): " + strings.Join(missing, ", ")
}
