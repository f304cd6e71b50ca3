package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ChannelNamePattern is the pattern every channel name must match.
const ChannelNamePattern = `^[a-z0-9_-]{1,30}$`

var channelNameRe = regexp.MustCompile(ChannelNamePattern)

// ValidChannelName reports whether name is an acceptable channel name.
func ValidChannelName(name string) bool {
	return channelNameRe.MatchString(name)
}

// normalizer is implemented by payloads that rewrite fields before validation.
type normalizer interface {
	normalize()
}

func (p *MessagePayload) normalize() {
	p.Content = strings.TrimSpace(p.Content)
}

// payloadValidator decodes raw command payloads and checks them against their struct tags.
type payloadValidator struct {
	validate *validator.Validate
}

func newPayloadValidator() *payloadValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// Registration only fails for empty tags or builtin name clashes.
	_ = v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		return ValidChannelName(fl.Field().String())
	})
	return &payloadValidator{validate: v}
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// decode unmarshals payload into the struct dst points to and validates it.
// Keys must match json field names exactly. Every violated rule yields one message.
func (pv *payloadValidator) decode(payload json.RawMessage, dst any) error {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode payload: %T is not a pointer to struct", dst)
	}
	target = target.Elem()

	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return validationError([]string{"payload must be an object"})
		}
		return validationError([]string{"payload must be a JSON object"})
	}

	var messages []string
	skip := make(map[string]bool)

	for i := range target.NumField() {
		fld := target.Type().Field(i)
		name := jsonName(fld)
		if !fld.IsExported() || name == "" {
			continue
		}
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target.Field(i).Addr().Interface()); err != nil {
			messages = append(messages, fmt.Sprintf("%s must be of type %s", name, typeName(fld.Type)))
			skip[name] = true
		}
	}

	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}

	if err := pv.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate payload: %w", err)
		}
		for _, fe := range fieldErrs {
			if skip[fe.Field()] {
				continue
			}
			messages = append(messages, describe(fe))
		}
	}

	if len(messages) > 0 {
		return validationError(messages)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "channel":
		return fe.Field() + " does not match pattern " + ChannelNamePattern
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind().String()
}
