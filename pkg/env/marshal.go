// Package env renders config structs back into .env files.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Values collects the non-zero fields of the struct c points to, keyed by
// their env tag name. Nested structs are flattened.
func Values(c any) (map[string]string, error) {
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, errors.New("env: expected a non-nil pointer to a struct")
	}
	values := make(map[string]string)
	collect(v.Elem(), values)
	return values, nil
}

func collect(v reflect.Value, values map[string]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		val := v.Field(i)

		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			if val.Kind() == reflect.Struct {
				collect(val, values)
			}
			continue
		}
		if val.IsZero() {
			continue
		}
		values[key] = formatValue(val)
	}
}

// MarshalEnv renders c as sorted, quoted KEY="value" lines.
func MarshalEnv(c any) (string, error) {
	values, err := Values(c)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	out, err := godotenv.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("env: marshal: %w", err)
	}
	return out + "\n", nil
}

// WriteFile merges c into the .env file at path, keeping keys it does not
// set. The file is readable by the owner only.
func WriteFile(path string, c any) error {
	values, err := Values(c)
	if err != nil {
		return err
	}

	merged, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("env: read %s: %w", path, err)
		}
		merged = make(map[string]string)
	}
	for k, v := range values {
		merged[k] = v
	}

	out, err := godotenv.Marshal(merged)
	if err != nil {
		return fmt.Errorf("env: marshal: %w", err)
	}
	return os.WriteFile(path, []byte(out+"\n"), 0o600)
}

func formatValue(v reflect.Value) string {
	if v.Type() == durationType {
		return time.Duration(v.Int()).String()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
