// Package validate checks request structs against rules declared in a
// `validate` struct tag.
//
// Rules are comma separated; `in=` takes the rest of its comma list until
// the next known rule:
//
//	required        non-zero, non-blank (nil pointers count as empty)
//	nullable        skip all rules when empty
//	email           address shape
//	url             absolute http/https URL
//	slug            lower-case letters, digits and single dashes
//	hexcolor        #rgb or #rrggbb
//	min=N / max=N   string length, or numeric bound for numbers
//	gte=N / lte=N   numeric bounds
//	in=a,b,c        one of the listed values
//
// Pointer fields are dereferenced, so optional update payloads can use
// *string with `validate:"nullable,min=2"`.
//
//	type CreateShop struct {
//	    Name string `json:"name" validate:"required,min=2,max=120"`
//	    Slug string `json:"slug" validate:"nullable,slug"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Struct validates the exported fields of v that carry a `validate` tag and
// returns field name → first failing message.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := splitRules(tag)

		if isEmpty(value) {
			if contains(rules, "nullable") {
				continue
			}
			if contains(rules, "required") {
				errs[name] = fmt.Sprintf("The %s field is required.", name)
			}
			continue
		}

		value = deref(value)
		for _, rule := range rules {
			if rule == "required" || rule == "nullable" {
				continue
			}
			if msg := check(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

type ruleFunc func(field, param string, v reflect.Value) string

var rules map[string]ruleFunc

func init() {
	rules = map[string]ruleFunc{
		"email": func(field, _ string, v reflect.Value) string {
			if !emailRE.MatchString(asString(v)) {
				return fmt.Sprintf("The %s must be a valid email address.", field)
			}
			return ""
		},
		"url": func(field, _ string, v reflect.Value) string {
			u, err := url.ParseRequestURI(asString(v))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Sprintf("The %s must be a valid URL.", field)
			}
			return ""
		},
		"slug": func(field, _ string, v reflect.Value) string {
			if !slugRE.MatchString(asString(v)) {
				return fmt.Sprintf("The %s may only contain lower-case letters, numbers and dashes.", field)
			}
			return ""
		},
		"hexcolor": func(field, _ string, v reflect.Value) string {
			if !hexColorRE.MatchString(asString(v)) {
				return fmt.Sprintf("The %s must be a hex colour like #1a2b3c.", field)
			}
			return ""
		},
		"min": func(field, param string, v reflect.Value) string {
			n := parseFloat(param)
			if isNumber(v) {
				if toFloat(v) < n {
					return fmt.Sprintf("The %s must be at least %s.", field, param)
				}
			} else if float64(length(v)) < n {
				return fmt.Sprintf("The %s must be at least %s characters.", field, param)
			}
			return ""
		},
		"max": func(field, param string, v reflect.Value) string {
			n := parseFloat(param)
			if isNumber(v) {
				if toFloat(v) > n {
					return fmt.Sprintf("The %s must not be greater than %s.", field, param)
				}
			} else if float64(length(v)) > n {
				return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
			}
			return ""
		},
		"gte": func(field, param string, v reflect.Value) string {
			if toFloat(v) < parseFloat(param) {
				return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
			}
			return ""
		},
		"lte": func(field, param string, v reflect.Value) string {
			if toFloat(v) > parseFloat(param) {
				return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
			}
			return ""
		},
		"in": func(field, param string, v reflect.Value) string {
			raw := asString(v)
			for _, a := range strings.Split(param, ",") {
				if raw == strings.TrimSpace(a) {
					return ""
				}
			}
			return fmt.Sprintf("The selected %s is invalid.", field)
		},
	}
}

func check(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	fn, ok := rules[key]
	if !ok {
		return ""
	}
	return fn(field, param, v)
}

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRE     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	hexColorRE = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isEmpty(v.Elem())
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumber(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return parseFloat(asString(v))
}

func length(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(asString(v)))
}

func asString(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

// splitRules splits a tag on commas, gluing list values back onto the
// preceding `in=` rule: "required,in=a,b,max=3" → [required in=a,b max=3].
func splitRules(tag string) []string {
	var out []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n := len(out)
		if n > 0 && strings.HasPrefix(out[n-1], "in=") && !isRuleName(tok) {
			out[n-1] += "," + tok
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isRuleName(tok string) bool {
	key, _, _ := strings.Cut(tok, "=")
	if key == "required" || key == "nullable" {
		return true
	}
	_, ok := rules[key]
	return ok
}

func contains(list []string, target string) bool {
	for _, r := range list {
		if r == target {
			return true
		}
	}
	return false
}
