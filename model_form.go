package admin

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun/schema"
)

// FormValues are submitted form values keyed by column name
type FormValues map[string]string

var timeType = reflect.TypeOf(time.Time{})

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const datetimeLocal = "2006-01-02T15:04"

// FormField is one input of the create and edit pages
type FormField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Checked  bool
	Required bool
	Error    string
}

// formValues reads the view form columns from the request body
func (m *ModelView) formValues(c *fiber.Ctx) FormValues {
	values := FormValues{}
	for _, f := range m.form {
		values[f.Name] = c.FormValue(f.Name)
	}
	return values
}

func (m *ModelView) required(f *schema.Field) bool {
	if f.IndirectType.Kind() == reflect.Bool {
		return false
	}
	return f.NotNull && f.SQLDefault == "" && !f.AutoIncrement && !f.NullZero
}

// populate validates values and assigns them to the record fields
func (m *ModelView) populate(rec reflect.Value, values FormValues, created bool) error {
	strct := rec.Elem()
	verrs := ValidationErrors{}

	for _, f := range m.form {
		if f.IsPK && !created {
			continue
		}

		raw := strings.TrimSpace(values[f.Name])

		rules := make([]validation.Rule, 0, 1+len(m.FormRules[f.Name]))
		if m.required(f) {
			rules = append(rules, validation.Required.Error(m.Label(f.Name)+" is required"))
		}
		rules = append(rules, m.FormRules[f.Name]...)
		rules = append(rules, m.FormRules[f.GoName]...)

		if err := validation.Validate(raw, rules...); err != nil {
			verrs[f.Name] = err.Error()
			continue
		}

		if err := assignField(f, strct, raw); err != nil {
			verrs[f.Name] = err.Error()
		}
	}

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// assignField converts raw to the field type. Empty input clears the field.
func assignField(f *schema.Field, strct reflect.Value, raw string) error {
	dst := f.Value(strct)

	if raw == "" {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() == reflect.Pointer {
		ptr := reflect.New(dst.Type().Elem())
		if err := assignValue(ptr.Elem(), raw); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	}

	if err := assignValue(dst, raw); err != nil {
		// types the form does not know about, sql.Null* and friends
		if serr := f.ScanValue(strct, raw); serr == nil {
			return nil
		}
		return err
	}
	return nil
}

func assignValue(dst reflect.Value, raw string) error {
	if dst.Type() == timeType {
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return fmt.Errorf("invalid date %q", raw)
	}

	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, dst.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		dst.SetFloat(n)
	case reflect.Map, reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 && dst.Kind() == reflect.Slice {
			dst.SetBytes([]byte(raw))
			return nil
		}
		ptr := reflect.New(dst.Type())
		if err := json.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
			return fmt.Errorf("invalid JSON: %v", err)
		}
		dst.Set(ptr.Elem())
	default:
		return fmt.Errorf("unsupported field type %s", dst.Type())
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return b, nil
}

// formatValue renders a field value as text
func formatValue(v reflect.Value) string {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04:05")
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		fallthrough
	case reflect.Map, reflect.Struct:
		b, err := json.Marshal(v.Interface())
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v.Interface())
}

func inputType(f *schema.Field) string {
	t := f.IndirectType
	if t == timeType {
		return "datetime-local"
	}
	switch t.Kind() {
	case reflect.Bool:
		return "checkbox"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Map, reflect.Slice:
		return "textarea"
	}
	if strings.Contains(f.Name, "password") {
		return "password"
	}
	return "text"
}

// formFields builds the inputs for record, or from submitted values when
// the form is re-rendered after a validation error.
func (m *ModelView) formFields(record any, submitted FormValues, verrs ValidationErrors, created bool) []FormField {
	var strct reflect.Value
	if record != nil {
		strct = reflect.Indirect(reflect.ValueOf(record))
	}

	out := make([]FormField, 0, len(m.form))
	for _, f := range m.form {
		if f.IsPK && !created {
			continue
		}

		field := FormField{
			Name:     f.Name,
			Label:    m.Label(f.Name),
			Type:     inputType(f),
			Required: m.required(f),
			Error:    verrs[f.Name],
		}

		switch {
		case submitted != nil:
			field.Value = submitted[f.Name]
		case strct.IsValid():
			v := f.Value(strct)
			field.Value = formatValue(v)
			if field.Type == "datetime-local" && field.Value != "" {
				if t, ok := reflect.Indirect(v).Interface().(time.Time); ok {
					field.Value = t.Format(datetimeLocal)
				}
			}
		}

		if field.Type == "checkbox" {
			b, _ := parseBool(field.Value)
			field.Checked = b
		}

		out = append(out, field)
	}
	return out
}
