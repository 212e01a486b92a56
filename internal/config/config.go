package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/casing"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "AUDIOHAL_"

// option is one tagged field of a flat options struct.
type option struct {
	flag  string
	toml  string
	env   string
	value reflect.Value
}

// LoadConfig fills opts, a pointer to a flat options struct, from the TOML
// file named by its Config field and then from AUDIOHAL_ env vars. Flags the
// user set on cmd are left alone, so the order is CLI > env > file.
//
// A value that fails to convert is reported and leaves its field unchanged;
// the remaining fields are still applied.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("options must be a pointer to a struct, got %T", opts)
	}
	fields, path := collectOptions(v.Elem())

	table, err := readTable(path)
	if err != nil {
		return err
	}

	changed := map[string]bool{}
	if cmd != nil {
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	}

	var errs []error
	for _, o := range fields {
		if changed[o.flag] {
			continue
		}
		if raw, ok := lookup(table, o.toml); ok {
			if err := setFieldValue(o.value, raw); err != nil {
				errs = append(errs, fmt.Errorf("%s %s: %w", path, o.toml, err))
			}
		}
		if o.env == "" {
			continue
		}
		if s := os.Getenv(EnvPrefix + o.env); s != "" {
			if err := setFieldValue(o.value, s); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, o.env, err))
			}
		}
	}
	return errors.Join(errs...)
}

// collectOptions lists the settable tagged fields of v and returns the value
// of its Config field. Flag names follow humacli: the name tag, else the
// kebab-cased field name.
func collectOptions(v reflect.Value) ([]option, string) {
	var (
		out  []option
		path string
	)
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Name == "Config" && fv.Kind() == reflect.String {
			path = fv.String()
			continue
		}
		o := option{
			flag:  sf.Tag.Get("name"),
			toml:  sf.Tag.Get("toml"),
			env:   sf.Tag.Get("env"),
			value: fv,
		}
		if o.toml == "" && o.env == "" {
			continue
		}
		if o.flag == "" {
			o.flag = casing.Kebab(sf.Name)
		}
		out = append(out, o)
	}
	return out, path
}

// readTable decodes the file at path. A blank path or missing file yields an
// empty table.
func readTable(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var table map[string]any
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}
	return table, nil
}

// lookup walks a dotted key such as "server.port" through nested tables.
func lookup(table map[string]any, key string) (any, bool) {
	if key == "" || table == nil {
		return nil, false
	}
	head, rest, nested := strings.Cut(key, ".")
	value, ok := table[head]
	if !ok || !nested {
		return value, ok
	}
	sub, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(sub, rest)
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	errNaN       = errors.New("NaN is not a usable value")
)

// setFieldValue stores raw into field. raw is either a decoded TOML value or
// an env string. Durations accept a Go duration string or integer
// milliseconds, and string slices accept a TOML array or a comma list.
func setFieldValue(field reflect.Value, raw any) error {
	if s, ok := raw.(string); ok && field.Kind() != reflect.String {
		return setFieldValueFromString(field, s)
	}

	out := reflect.New(field.Type()).Elem()
	switch {
	case field.Type() == durationType:
		ms, ok := raw.(int64)
		if !ok {
			return mismatch(field, raw)
		}
		out.SetInt(int64(time.Duration(ms) * time.Millisecond))
	case field.Kind() == reflect.String:
		s, ok := raw.(string)
		if !ok {
			return mismatch(field, raw)
		}
		out.SetString(s)
	case field.Kind() == reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return mismatch(field, raw)
		}
		out.SetBool(b)
	case isInt(field.Kind()):
		n, ok := raw.(int64)
		if !ok {
			return mismatch(field, raw)
		}
		if out.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		out.SetInt(n)
	case isFloat(field.Kind()):
		var f float64
		switch n := raw.(type) {
		case float64:
			f = n
		case int64:
			f = float64(n)
		default:
			return mismatch(field, raw)
		}
		if math.IsNaN(f) {
			return errNaN
		}
		out.SetFloat(f)
	case isStrings(field.Type()):
		items, ok := raw.([]any)
		if !ok {
			return mismatch(field, raw)
		}
		list := reflect.MakeSlice(field.Type(), 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("list item %v is not a string", item)
			}
			list = reflect.Append(list, reflect.ValueOf(s).Convert(field.Type().Elem()))
		}
		out = list
	default:
		return fmt.Errorf("unsupported option type %s", field.Type())
	}
	field.Set(out)
	return nil
}

func setFieldValueFromString(field reflect.Value, s string) error {
	out := reflect.New(field.Type()).Elem()
	switch {
	case field.Type() == durationType:
		d, err := parseDuration(s)
		if err != nil {
			return err
		}
		out.SetInt(int64(d))
	case field.Kind() == reflect.String:
		out.SetString(s)
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		out.SetBool(b)
	case isInt(field.Kind()):
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		out.SetInt(n)
	case isFloat(field.Kind()):
		f, err := strconv.ParseFloat(strings.TrimSpace(s), field.Type().Bits())
		if err != nil {
			return err
		}
		if math.IsNaN(f) {
			return errNaN
		}
		out.SetFloat(f)
	case isStrings(field.Type()):
		list := reflect.MakeSlice(field.Type(), 0, strings.Count(s, ",")+1)
		for part := range strings.SplitSeq(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = reflect.Append(list, reflect.ValueOf(part).Convert(field.Type().Elem()))
			}
		}
		out = list
	default:
		return fmt.Errorf("unsupported option type %s", field.Type())
	}
	field.Set(out)
	return nil
}

// parseDuration accepts "250ms" style strings and bare milliseconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func mismatch(field reflect.Value, raw any) error {
	return fmt.Errorf("cannot use %T value %v as %s", raw, raw, field.Type())
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isStrings(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String
}
