package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"pokedex/src/core/domain"
)

var (
	httpURLPattern = regexp.MustCompile(`^https?://.+`)
	indexPattern   = regexp.MustCompile(`\[\d+\]`)
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return httpURLPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pokemontype", func(fl validator.FieldLevel) bool {
		return domain.IsValidType(fl.Field().String())
	})

	return v
}

// ValidatePokemon re-checks a fully merged record against the create rules.
// Storage adapters without native schema validation use it before writing.
func ValidatePokemon(pk domain.Pokemon) error {
	stats := pk.Stats
	req := CreatePokemonRequest{
		Name:          &pk.Name,
		ThumbnailURL:  &pk.ThumbnailURL,
		LargeImageURL: &pk.LargeImageURL,
		Types:         nonNil(pk.Types),
		Abilities:     nonNil(pk.Abilities),
		Stats: &StatsRequest{
			HP:             &stats.HP,
			Attack:         &stats.Attack,
			Defense:        &stats.Defense,
			SpecialAttack:  &stats.SpecialAttack,
			SpecialDefense: &stats.SpecialDefense,
			Speed:          &stats.Speed,
		},
	}
	return collect(validate.Struct(req), nil)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// DecodeCreate parses and validates a create body. The returned input is
// already normalized.
func DecodeCreate(body []byte) (domain.PokemonInput, error) {
	var req CreatePokemonRequest
	typeErrs, err := decodeBody(body, &req)
	if err != nil {
		return domain.PokemonInput{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	req.Types = domain.NormalizeTypes(req.Types)
	req.Abilities = domain.NormalizeAbilities(req.Abilities)

	if err := collect(validate.Struct(req), typeErrs); err != nil {
		return domain.PokemonInput{}, err
	}
	return req.toInput(), nil
}

// DecodeUpdate parses and validates a partial update body. The returned
// patch is already normalized.
func DecodeUpdate(body []byte) (domain.PokemonPatch, error) {
	var req UpdatePokemonRequest
	typeErrs, err := decodeBody(body, &req)
	if err != nil {
		return domain.PokemonPatch{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Types != nil {
		types := nonNil(domain.NormalizeTypes(*req.Types))
		req.Types = &types
	}
	if req.Abilities != nil {
		abilities := nonNil(domain.NormalizeAbilities(*req.Abilities))
		req.Abilities = &abilities
	}

	if err := collect(validate.Struct(req), typeErrs); err != nil {
		return domain.PokemonPatch{}, err
	}
	return req.toPatch(), nil
}

// ParseListQuery validates the list endpoint query string. Unknown keys are
// rejected; repeated types/abilities values are joined with commas.
func ParseListQuery(values url.Values) (domain.ListQuery, error) {
	var violations []string

	var unknown []string
	for key := range values {
		if !allowedQueryParams[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		violations = append(violations, "Unknown query parameter: "+key)
	}

	req := ListQueryRequest{
		Types:     strings.Join(values["types"], ","),
		Abilities: strings.Join(values["abilities"], ","),
	}

	typeErrs := map[string]string{}
	parseInt := func(key string) *int {
		raw, ok := values[key]
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.Join(raw, "")))
		if err != nil || len(raw) != 1 {
			typeErrs[key] = label(key) + " must be an integer"
			return nil
		}
		return &n
	}
	req.Page = parseInt("page")
	req.Limit = parseInt("limit")

	if err := collect(validate.Struct(req), typeErrs); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			violations = append(violations, de.Violations...)
		}
	}
	if len(violations) > 0 {
		return domain.ListQuery{}, domain.NewValidationError(violations...)
	}

	return domain.ListQuery{
		Types:     req.Types,
		Abilities: req.Abilities,
		Page:      req.Page,
		Limit:     req.Limit,
	}, nil
}

// decodeBody unmarshals body into dst. Unknown fields are ignored. Each field
// is decoded on its own, recursing into nested objects, so every JSON type
// mismatch is returned keyed by field path and reported together with the
// struct violations.
func decodeBody(body []byte, dst any) (map[string]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.NewValidationError("Request body must be a JSON object")
		}
		return nil, domain.NewValidationError("Invalid JSON body")
	}

	typeErrs := map[string]string{}
	decodeFields(fields, reflect.ValueOf(dst).Elem(), "", typeErrs)
	if len(typeErrs) == 0 {
		return nil, nil
	}
	return typeErrs, nil
}

// decodeFields fills the struct v from fields, matching keys against json
// tags the way encoding/json does (exact first, then case-insensitive).
func decodeFields(fields map[string]json.RawMessage, v reflect.Value, prefix string, typeErrs map[string]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		raw, ok := lookupField(fields, name)
		if !ok {
			continue
		}
		path := prefix + name
		fv := v.Field(i)

		if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err != nil {
				typeErrs[path] = typeMessage(path, fv.Type())
				continue
			}
			if nested == nil {
				continue
			}
			fv.Set(reflect.New(fv.Type().Elem()))
			decodeFields(nested, fv.Elem(), path+".", typeErrs)
			continue
		}

		if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				typeErrs[path] = typeMessage(path, typeErr.Type)
			} else {
				typeErrs[path] = label(path) + " has an invalid type"
			}
			fv.Set(reflect.Zero(fv.Type()))
		}
	}
}

func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for key, raw := range fields {
		if strings.EqualFold(key, name) {
			return raw, true
		}
	}
	return nil, false
}

func typeMessage(path string, t reflect.Type) string {
	l := label(path)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return l + " must be an integer"
	case reflect.String:
		if path == "types" || path == "abilities" {
			return l + " must contain only strings"
		}
		return l + " must be a string"
	case reflect.Slice:
		return l + " must be an array"
	case reflect.Struct:
		return l + " must be an object"
	default:
		return l + " has an invalid type"
	}
}

// collect merges JSON type violations with validator violations into a
// single validation error, or returns nil when there are none.
func collect(err error, typeErrs map[string]string) error {
	var violations []string
	seen := map[string]bool{}
	add := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			violations = append(violations, msg)
		}
	}

	paths := make([]string, 0, len(typeErrs))
	for path := range typeErrs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		add(typeErrs[path])
	}

	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate: %w", err)
		}
		for _, fe := range verrs {
			path := fieldPath(fe.Namespace())
			if _, ok := typeErrs[strings.TrimSuffix(path, "[]")]; ok {
				continue
			}
			add(message(fe, path))
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return domain.NewValidationError(violations...)
}

// fieldPath strips the root struct name and element indexes from a
// validator namespace: "CreatePokemonRequest.types[2]" -> "types[]".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return indexPattern.ReplaceAllString(ns, "[]")
}

func message(fe validator.FieldError, path string) string {
	l := label(path)
	switch fe.Tag() {
	case "required":
		switch path {
		case "types", "abilities", "stats":
			return l + " are required"
		case "abilities[]":
			return "Abilities must not be empty"
		}
		return l + " is required"
	case "min":
		switch path {
		case "name", "thumbnailUrl", "largeImageUrl":
			return l + " is required"
		case "types":
			return "At least one type is required"
		case "abilities":
			return "At least one ability is required"
		case "page", "limit":
			return l + " must be greater than 0"
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", l, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be less than or equal to %s", l, fe.Param())
	case "httpurl":
		return l + " must be a valid URL"
	case "pokemontype":
		return fmt.Sprintf("Invalid Pokemon type: %v", fe.Value())
	default:
		return l + " is invalid"
	}
}

func (r CreatePokemonRequest) toInput() domain.PokemonInput {
	return domain.PokemonInput{
		Name:          *r.Name,
		ThumbnailURL:  *r.ThumbnailURL,
		LargeImageURL: *r.LargeImageURL,
		Types:         r.Types,
		Abilities:     r.Abilities,
		Stats:         r.Stats.toStats(),
	}
}

func (r UpdatePokemonRequest) toPatch() domain.PokemonPatch {
	p := domain.PokemonPatch{
		Name:          r.Name,
		ThumbnailURL:  r.ThumbnailURL,
		LargeImageURL: r.LargeImageURL,
	}
	if r.Types != nil {
		p.Types = *r.Types
	}
	if r.Abilities != nil {
		p.Abilities = *r.Abilities
	}
	if r.Stats != nil {
		s := r.Stats.toStats()
		p.Stats = &s
	}
	return p
}

func (s *StatsRequest) toStats() domain.Stats {
	return domain.Stats{
		HP:             *s.HP,
		Attack:         *s.Attack,
		Defense:        *s.Defense,
		SpecialAttack:  *s.SpecialAttack,
		SpecialDefense: *s.SpecialDefense,
		Speed:          *s.Speed,
	}
}
