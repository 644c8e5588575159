package validation

// fieldMessages override DefaultMessage for fields whose wording matters to
// the mobile app, keyed by struct field then validator tag.
var fieldMessages = map[string]map[string]string{
	"Email": {
		"required": "email tidak boleh kosong",
		"email":    "email tidak valid",
	},
	"Phone": {
		"required": "nomor telepon tidak boleh kosong",
		"numeric":  "nomor telepon harus berupa angka",
		"min":      "nomor telepon minimal 10 digit",
		"max":      "nomor telepon maksimal 15 digit",
	},
	"ReceiverPhone": {
		"numeric": "nomor telepon penerima harus berupa angka",
		"min":     "nomor telepon penerima minimal 10 digit",
		"max":     "nomor telepon penerima maksimal 15 digit",
	},
	"Password": {
		"required": "password tidak boleh kosong",
		"min":      "password minimal 8 karakter",
	},
	"NewPassword": {
		"required": "password baru tidak boleh kosong",
		"min":      "password baru minimal 8 karakter",
	},
	"Name": {
		"required": "nama tidak boleh kosong",
		"min":      "nama minimal 2 karakter",
	},
	"Code": {
		"required": "kode OTP tidak boleh kosong",
		"len":      "kode OTP harus 4 digit",
		"numeric":  "kode OTP harus berupa angka",
	},
	"CityID": {
		"required": "kota tidak boleh kosong",
	},
}

// CustomMessage returns the override for structField and tag, if any.
func CustomMessage(structField, tag string) (string, bool) {
	msg, ok := fieldMessages[structField][tag]
	return msg, ok
}
