package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/stahnma/gh-repometa/internal/errors"
)

// Blob-backed fields holding documents, kept as plain text.
var TextFields = []string{"codeOfConduct", "codeOwners", "contributing", "license", "readme", "travis"}

// Blob-backed fields holding JSON configuration, decoded into values.
var JSONFields = []string{"w3cJson", "preview"}

// Paged sub-collections whose nodes are cleaned but kept as objects.
var NodeFields = []string{"branchProtectionRules", "milestones"}

const (
	fieldName          = "nameWithOwner"
	fieldFetchedAt     = "fetchedAt"
	fieldErrors        = "errors"
	fieldDefaultBranch = "defaultBranch"
	fieldLabels        = "labels"
	fieldDescriptor    = "w3cJson"
	fieldGroup         = "group"
)

// step transforms one present field. A nil result drops the field quietly;
// an error records the original value under errors[field].
type step func(v any) (any, error)

// invalid carries the value to record when it differs from the field's input.
type invalid struct{ value any }

func (e *invalid) Error() string { return "invalid value" }

var errMalformed = errors.New("malformed value")

type builder struct {
	out  Record
	errs map[string]any
}

// Normalize builds a new Record from raw. raw is never modified.
// Only a missing or non-string nameWithOwner is an error; every other field
// failure lands in the record's errors map.
func Normalize(raw any, now time.Time) (Record, error) {
	in, ok := raw.(map[string]any)
	if !ok || in == nil {
		return nil, &apperrors.NormalizationError{Reason: "not an object", Param: raw}
	}
	name, present := in[fieldName]
	if !present {
		return nil, &apperrors.NormalizationError{Reason: "missing nameWithOwner", Param: raw}
	}
	if s, ok := name.(string); !ok || s == "" {
		return nil, &apperrors.NormalizationError{Reason: "nameWithOwner must be a non-empty string", Param: raw}
	}

	b := &builder{out: make(Record, len(in)+1), errs: map[string]any{}}
	for k, v := range in {
		if !handled(k) {
			b.out[k] = v
		}
	}
	if prev, ok := in[fieldErrors].(map[string]any); ok {
		for k, v := range prev {
			b.errs[k] = v
		}
	}

	if s, ok := in[fieldFetchedAt].(string); ok && s != "" {
		b.out[fieldFetchedAt] = s
	} else {
		b.out[fieldFetchedAt] = now.UTC().Format(TimeLayout)
	}

	for _, f := range JSONFields {
		b.apply(f, in[f], decodeBlob)
	}
	b.normalizeGroup()

	b.apply(fieldDefaultBranch, in[fieldDefaultBranch], branchName)
	for _, f := range NodeFields {
		b.apply(f, in[f], cleanNodes)
	}
	b.apply(fieldLabels, in[fieldLabels], labelNames)

	for _, f := range TextFields {
		b.apply(f, in[f], blobText)
	}

	out := Record(Denoise(b.out))
	if len(b.errs) > 0 {
		out[fieldErrors] = b.errs
	}
	return out, nil
}

func handled(key string) bool {
	switch key {
	case fieldFetchedAt, fieldErrors, fieldDefaultBranch, fieldLabels:
		return true
	}
	for _, group := range [][]string{TextFields, JSONFields, NodeFields} {
		for _, f := range group {
			if f == key {
				return true
			}
		}
	}
	return false
}

// apply runs fn on a present field, isolating any failure to that field.
func (b *builder) apply(field string, v any, fn step) {
	if v == nil || v == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			delete(b.out, field)
			b.errs[field] = v
		}
	}()
	res, err := fn(v)
	if err != nil {
		delete(b.out, field)
		var iv *invalid
		if errors.As(err, &iv) {
			b.errs[field] = iv.value
		} else {
			b.errs[field] = v
		}
		return
	}
	if res == nil {
		delete(b.out, field)
		return
	}
	b.out[field] = res
}

func (b *builder) normalizeGroup() {
	desc, ok := b.out[fieldDescriptor].(map[string]any)
	if !ok {
		return
	}
	group, present := desc[fieldGroup]
	if !present || !truthy(group) {
		return
	}
	cp := make(map[string]any, len(desc))
	for k, v := range desc {
		cp[k] = v
	}
	if ids, err := GroupIDs(group); err != nil {
		delete(cp, fieldGroup)
		b.errs[fieldGroup] = group
	} else {
		cp[fieldGroup] = ids
	}
	b.out[fieldDescriptor] = cp
}

// blobText reduces a {text} wrapper to its non-empty text.
func blobText(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		if s, ok := t["text"].(string); ok && s != "" {
			return s, nil
		}
	}
	return nil, errMalformed
}

// blobKeys are the Blob fields the API may put next to (or instead of) text.
var blobKeys = map[string]bool{
	"text": true, "oid": true, "abbreviatedOid": true,
	"byteSize": true, "isBinary": true, "isTruncated": true,
}

// decodeBlob parses the text of a {text} wrapper as JSON. Values that are
// already decoded pass through. A wrapper without text, including the empty
// object returned for trees and submodules, is malformed.
func decodeBlob(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		text, wrapped := t["text"]
		if !wrapped {
			if isBlobWrapper(t) {
				return nil, errMalformed
			}
			return t, nil
		}
		s, ok := text.(string)
		if !ok {
			return nil, errMalformed
		}
		doc, err := decodeJSON(s)
		if err != nil {
			return nil, err
		}
		// An empty document carries nothing and would read as a bare wrapper.
		if m, ok := doc.(map[string]any); ok && len(m) == 0 {
			return nil, nil
		}
		return doc, nil
	case []any:
		return t, nil
	}
	return nil, errMalformed
}

func isBlobWrapper(m map[string]any) bool {
	for k := range m {
		if !blobKeys[k] {
			return false
		}
	}
	return true
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func branchName(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		if name, ok := t["name"].(string); ok && name != "" {
			return name, nil
		}
		return nil, nil
	}
	return nil, errMalformed
}

// nodes flattens a {nodes: [...]} wrapper. Flat sequences pass through.
func nodes(v any) ([]any, error) {
	switch t := v.(type) {
	case map[string]any:
		n, ok := t["nodes"]
		if !ok || n == nil {
			return nil, nil
		}
		seq, ok := n.([]any)
		if !ok {
			return nil, errMalformed
		}
		return seq, nil
	case []any:
		return t, nil
	}
	return nil, errMalformed
}

func cleanNodes(v any) (any, error) {
	seq, err := nodes(v)
	if err != nil || seq == nil {
		return nil, err
	}
	// The API sometimes answers with a leading null node (seen on w3c/stories).
	if len(seq) > 0 && seq[0] == nil {
		return nil, &invalid{value: seq}
	}
	out := make([]any, 0, len(seq))
	for _, n := range seq {
		if m, ok := n.(map[string]any); ok {
			out = append(out, Denoise(m))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func labelNames(v any) (any, error) {
	if names, ok := v.([]string); ok {
		return append([]string(nil), names...), nil
	}
	seq, err := nodes(v)
	if err != nil || seq == nil {
		return nil, err
	}
	names := make([]string, 0, len(seq))
	for _, n := range seq {
		switch t := n.(type) {
		case string:
			names = append(names, t)
		case map[string]any:
			name, ok := t["name"].(string)
			if !ok {
				return nil, &invalid{value: seq}
			}
			names = append(names, name)
		default:
			return nil, &invalid{value: seq}
		}
	}
	return names, nil
}
