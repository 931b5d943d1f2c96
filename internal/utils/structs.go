package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names declared on a record type, in
// field order.
func StructTagValues(input any) []string {
	targetType := structType(input)

	result := make([]string, 0, targetType.NumField())
	for i := 0; i < targetType.NumField(); i++ {
		if column, ok := columnName(targetType.Field(i)); ok {
			result = append(result, column)
		}
	}

	return result
}

// StructToMap maps column names to field values for inserts. Columns named in
// omit are skipped.
func StructToMap(input any, omit ...string) map[string]any {
	itemValue := reflect.ValueOf(input)
	if itemValue.Kind() == reflect.Ptr {
		itemValue = itemValue.Elem()
	}
	itemType := structType(input)

	skip := make(map[string]bool, len(omit))
	for _, column := range omit {
		skip[column] = true
	}

	result := make(map[string]any, itemType.NumField())
	for i := 0; i < itemType.NumField(); i++ {
		column, ok := columnName(itemType.Field(i))
		if !ok || skip[column] {
			continue
		}
		result[column] = itemValue.Field(i).Interface()
	}

	return result
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func structType(input any) reflect.Type {
	t := reflect.TypeOf(input)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return t
}

func columnName(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}

	tagValue := field.Tag.Get(ColumnTag)
	if tagValue == "" || tagValue == "-" {
		return "", false
	}

	return tagValue, true
}
