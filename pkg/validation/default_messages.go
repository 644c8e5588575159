package validation

import (
	"fmt"
	"strings"
)

// tagFormats render a constraint for a property. %[1]s is the property,
// %[2]s the tag parameter.
var tagFormats = map[string]string{
	"required":         "%[1]s tidak boleh kosong",
	"required_without": "%[1]s wajib diisi jika field lain kosong",
	"email":            "%[1]s harus berupa alamat email yang valid",
	"numeric":          "%[1]s harus berupa angka",
	"alphanum":         "%[1]s hanya boleh berisi huruf dan angka",
	"len":              "%[1]s harus %[2]s karakter",
	"datetime":         "%[1]s harus berformat %[2]s",
	"oneof":            "%[1]s harus salah satu dari: %[2]s",
	"eqfield":          "%[1]s harus sama dengan %[2]s",
	"latitude":         "%[1]s harus berupa latitude yang valid",
	"longitude":        "%[1]s harus berupa longitude yang valid",
	"boolean":          "%[1]s harus bernilai true atau false",
	"url":              "%[1]s harus berupa URL yang valid",
	"uuid":             "%[1]s harus berupa UUID yang valid",
}

// DefaultMessage is the fallback when no field-specific message exists.
// min and max read as a length for strings and slices and as a value for
// numbers; kind tells them apart.
func DefaultMessage(property, tag, param string, numeric bool) string {
	switch tag {
	case "min", "gte":
		if numeric {
			return fmt.Sprintf("%s minimal bernilai %s", property, param)
		}
		return fmt.Sprintf("%s minimal %s karakter", property, param)
	case "max", "lte":
		if numeric {
			return fmt.Sprintf("%s maksimal bernilai %s", property, param)
		}
		return fmt.Sprintf("%s maksimal %s karakter", property, param)
	}

	if format, ok := tagFormats[tag]; ok {
		return fmt.Sprintf(format, property, strings.ReplaceAll(param, " ", ", "))
	}
	return fmt.Sprintf("%s tidak valid", property)
}
